package service

import (
	"context"
	"fmt"
	"recruit_backend/internal/model"
	"recruit_backend/pkg/tracing"
	"time"
)

type QuestionResult struct {
	QuestionID     uint               `json:"questionId"`
	Text           string             `json:"questionText"`
	Type           model.QuestionType `json:"questionType"`
	Options        []string           `json:"options,omitempty"`
	Points         int                `json:"points"`
	Answer         model.AnswerValue  `json:"answer"`
	IsCorrect      *bool              `json:"isCorrect"`
	PointsEarned   *int               `json:"pointsEarned"`
	PendingReview  bool               `json:"pendingReview"`
	CorrectAnswers []string           `json:"correctAnswers,omitempty"`
}

type AttemptResult struct {
	AttemptID     uint                `json:"attemptId"`
	CandidateID   uint                `json:"candidateId"`
	TemplateID    uint                `json:"templateId"`
	TemplateTitle string              `json:"templateTitle"`
	JobID         *uint               `json:"jobId"`
	Status        model.AttemptStatus `json:"status"`
	Score         *int                `json:"score"`
	MaxScore      *int                `json:"maxScore"`
	Passed        *bool               `json:"passed"`
	StartedAt     time.Time           `json:"startedAt"`
	CompletedAt   *time.Time          `json:"completedAt"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
	PendingReview int                 `json:"pendingReview"`
	Questions     []QuestionResult    `json:"questions"`
}

type ResultService struct {
	attemptLifecycle
}

func NewResultService(attempts AttemptStore, bank *QuestionBankService, clock Clock) *ResultService {
	return &ResultService{attemptLifecycle{attempts: attempts, bank: bank, clock: clock}}
}

// GetResults reports an attempt with a per-question breakdown. Correct answers are only
// included once the attempt is over.
func (s *ResultService) GetResults(ctx context.Context, viewer Viewer, attemptID uint) (result *AttemptResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "assessment.results", attemptID)
	defer func() { endSpan(span, err) }()

	attempt, err := s.ownedAttempt(ctx, viewer, attemptID)
	if err != nil {
		return nil, err
	}
	bundle, err := s.bank.Load(ctx, attempt.TemplateID)
	if err != nil {
		return nil, err
	}
	tmpl := &bundle.Template
	if err := s.expireIfOverdue(ctx, attempt, tmpl); err != nil {
		return nil, err
	}

	answers, err := s.attempts.ListAnswers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	byQuestion := make(map[uint]model.AssessmentAnswer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	result = &AttemptResult{
		AttemptID:     attempt.ID,
		CandidateID:   attempt.CandidateID,
		TemplateID:    attempt.TemplateID,
		TemplateTitle: tmpl.Title,
		JobID:         attempt.JobID,
		Status:        attempt.Status,
		Score:         attempt.Score,
		MaxScore:      attempt.MaxScore,
		Passed:        attempt.Passed,
		StartedAt:     attempt.StartedAt,
		CompletedAt:   attempt.CompletedAt,
		Questions:     make([]QuestionResult, 0, len(bundle.Questions)),
	}
	if attempt.InProgress() {
		result.ExpiresAt = tmpl.Deadline(attempt.StartedAt)
	}
	terminal := !attempt.InProgress()

	for _, q := range bundle.Questions {
		qr := QuestionResult{
			QuestionID: q.ID,
			Text:       q.Text,
			Type:       q.Type,
			Points:     q.Points,
		}
		if !q.Manual() {
			qr.Options = append([]string(nil), q.Options...)
		}
		if ans, ok := byQuestion[q.ID]; ok {
			qr.Answer = ans.Value
			qr.IsCorrect = ans.IsCorrect
			qr.PointsEarned = ans.PointsEarned
			qr.PendingReview = attempt.Status == model.AttemptCompleted && q.Manual() && ans.IsCorrect == nil
		}
		if qr.PendingReview {
			result.PendingReview++
		}
		if terminal {
			qr.CorrectAnswers = append([]string(nil), q.CorrectAnswers...)
		}
		result.Questions = append(result.Questions, qr)
	}
	return result, nil
}

const (
	defaultResultListLimit = 50
	maxResultListLimit     = 500
)

// AttemptSummary is one row of the admin result views.
type AttemptSummary struct {
	AttemptID     uint                `json:"attemptId"`
	CandidateID   uint                `json:"candidateId"`
	TemplateID    uint                `json:"templateId"`
	TemplateTitle string              `json:"templateTitle"`
	JobID         *uint               `json:"jobId"`
	Status        model.AttemptStatus `json:"status"`
	Score         *int                `json:"score"`
	MaxScore      *int                `json:"maxScore"`
	Passed        *bool               `json:"passed"`
	StartedAt     time.Time           `json:"startedAt"`
	CompletedAt   *time.Time          `json:"completedAt"`
}

// ListResults returns finished attempts of every candidate, most recently finished first.
func (s *ResultService) ListResults(ctx context.Context, limit int) ([]AttemptSummary, error) {
	switch {
	case limit <= 0:
		limit = defaultResultListLimit
	case limit > maxResultListLimit:
		limit = maxResultListLimit
	}
	attempts, err := s.attempts.ListFinishedAttempts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return s.summarize(ctx, attempts)
}

// ListCandidateResults returns every attempt of one candidate in start order. Overdue
// attempts are expired on the way, so the listing never shows a stale in_progress.
func (s *ResultService) ListCandidateResults(ctx context.Context, candidateID uint) ([]AttemptSummary, error) {
	attempts, err := s.attempts.ListAttemptsByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list attempts of candidate %d: %w", candidateID, err)
	}
	for i := range attempts {
		if !attempts[i].InProgress() {
			continue
		}
		bundle, err := s.bank.Load(ctx, attempts[i].TemplateID)
		if err != nil {
			return nil, err
		}
		if err := s.expireIfOverdue(ctx, &attempts[i], &bundle.Template); err != nil {
			return nil, err
		}
	}
	return s.summarize(ctx, attempts)
}

func (s *ResultService) summarize(ctx context.Context, attempts []model.AssessmentAttempt) ([]AttemptSummary, error) {
	titles := make(map[uint]string)
	out := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		title, ok := titles[a.TemplateID]
		if !ok {
			bundle, err := s.bank.Load(ctx, a.TemplateID)
			if err != nil {
				return nil, err
			}
			title = bundle.Template.Title
			titles[a.TemplateID] = title
		}
		out = append(out, AttemptSummary{
			AttemptID:     a.ID,
			CandidateID:   a.CandidateID,
			TemplateID:    a.TemplateID,
			TemplateTitle: title,
			JobID:         a.JobID,
			Status:        a.Status,
			Score:         a.Score,
			MaxScore:      a.MaxScore,
			Passed:        a.Passed,
			StartedAt:     a.StartedAt,
			CompletedAt:   a.CompletedAt,
		})
	}
	return out, nil
}
