package service

import (
	"context"
	"recruit_backend/internal/model"
	"time"
)

// QuestionBankStore reads the template catalog.
type QuestionBankStore interface {
	FindTemplate(ctx context.Context, id uint) (*model.AssessmentTemplate, error)
	ListQuestions(ctx context.Context, templateID uint) ([]model.AssessmentQuestion, error)
}

// AttemptStore persists attempts and their answers. Conditional writes return
// repository.ErrStateConflict when the attempt already left the expected status, and
// CreateAttempt returns gorm.ErrDuplicatedKey when the triple already has an active attempt.
type AttemptStore interface {
	FindAttempt(ctx context.Context, id uint) (*model.AssessmentAttempt, error)
	FindLatestAttempt(ctx context.Context, key model.AttemptKey, status model.AttemptStatus) (*model.AssessmentAttempt, error)
	ListAttemptsByCandidate(ctx context.Context, candidateID uint) ([]model.AssessmentAttempt, error)
	ListFinishedAttempts(ctx context.Context, limit int) ([]model.AssessmentAttempt, error)
	CreateAttempt(ctx context.Context, a *model.AssessmentAttempt) error
	ExpireAttempt(ctx context.Context, id uint, at time.Time) (bool, error)
	CompleteAttempt(ctx context.Context, a *model.AssessmentAttempt, answers []model.AssessmentAnswer) error
	SaveDraftAnswer(ctx context.Context, ans *model.AssessmentAnswer) error
	ListAnswers(ctx context.Context, attemptID uint) ([]model.AssessmentAnswer, error)
	FindAnswer(ctx context.Context, attemptID, questionID uint) (*model.AssessmentAnswer, error)
	ApplyReview(ctx context.Context, review model.AnswerReview, decide func(score, maxScore int) bool) (*model.AssessmentAttempt, error)
	ListAwaitingReview(ctx context.Context, limit int) ([]model.ReviewQueueItem, error)
}

// JobStore reads jobs and applications owned by the job module.
type JobStore interface {
	ListAppliedJobIDs(ctx context.Context, candidateID uint) ([]uint, error)
	ListRequiredAssessments(ctx context.Context, jobIDs []uint) ([]model.JobAssessment, error)
	JobOffersTemplate(ctx context.Context, jobID, templateID uint) (bool, error)
}

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

// Viewer is the caller reading or mutating an attempt.
type Viewer struct {
	UserID uint
	Admin  bool
}
