package service

import (
	"context"
	"errors"
	"fmt"
	"recruit_backend/internal/model"
	"recruit_backend/internal/repository"
	"recruit_backend/internal/util"
	"recruit_backend/pkg/logger"
	"recruit_backend/pkg/monitoring"
	"recruit_backend/pkg/tracing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultReviewQueueLimit = 100

type ReviewService struct {
	attemptLifecycle
}

func NewReviewService(attempts AttemptStore, bank *QuestionBankService, clock Clock) *ReviewService {
	return &ReviewService{attemptLifecycle{attempts: attempts, bank: bank, clock: clock}}
}

type ReviewInput struct {
	ReviewerID   uint
	AttemptID    uint
	QuestionID   uint
	IsCorrect    bool
	PointsEarned int
}

type ReviewResult struct {
	AttemptID uint  `json:"attemptId"`
	Score     *int  `json:"score"`
	MaxScore  *int  `json:"maxScore"`
	Passed    *bool `json:"passed"`
}

// ReviewAnswer scores one short answer on a completed attempt, then recomputes the
// attempt score from all earned points and re-applies the pass rule.
func (s *ReviewService) ReviewAnswer(ctx context.Context, in ReviewInput) (result *ReviewResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "assessment.review_answer", in.AttemptID)
	defer func() { endSpan(span, err) }()

	attempt, err := s.load(ctx, in.AttemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptCompleted {
		return nil, util.ErrAttemptNotCompleted
	}

	bundle, err := s.bank.Load(ctx, attempt.TemplateID)
	if err != nil {
		return nil, err
	}
	q, ok := bundle.Question(in.QuestionID)
	if !ok {
		return nil, util.ErrQuestionNotFound
	}
	if !q.Manual() {
		return nil, util.ErrNotManuallyGradable
	}
	if in.PointsEarned < 0 || in.PointsEarned > q.Points {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", util.ErrInvalidPoints, in.PointsEarned, q.Points)
	}

	tmpl := bundle.Template
	updated, err := s.attempts.ApplyReview(ctx, model.AnswerReview{
		AttemptID:    in.AttemptID,
		QuestionID:   in.QuestionID,
		ReviewerID:   in.ReviewerID,
		IsCorrect:    in.IsCorrect,
		PointsEarned: in.PointsEarned,
		ReviewedAt:   s.now(),
	}, tmpl.Passed)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, util.ErrAnswerNotFound
	case errors.Is(err, repository.ErrStateConflict):
		return nil, util.ErrAttemptNotCompleted
	case err != nil:
		return nil, fmt.Errorf("apply review: %w", err)
	}

	monitoring.RecordEvent(monitoring.EventReviewed)
	logger.Log.Info("Short answer reviewed",
		zap.Uint("attemptId", in.AttemptID),
		zap.Uint("questionId", in.QuestionID),
		zap.Uint("reviewerId", in.ReviewerID),
		zap.Int("pointsEarned", in.PointsEarned),
	)

	return &ReviewResult{
		AttemptID: updated.ID,
		Score:     updated.Score,
		MaxScore:  updated.MaxScore,
		Passed:    updated.Passed,
	}, nil
}

// ListAwaitingReview returns completed attempts with short answers nobody has scored yet.
func (s *ReviewService) ListAwaitingReview(ctx context.Context, limit int) ([]model.ReviewQueueItem, error) {
	if limit <= 0 {
		limit = defaultReviewQueueLimit
	}
	items, err := s.attempts.ListAwaitingReview(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list review queue: %w", err)
	}
	if items == nil {
		items = []model.ReviewQueueItem{}
	}
	return items, nil
}
