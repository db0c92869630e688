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
)

// ScoreSheet is the outcome of grading one attempt.
type ScoreSheet struct {
	Score         int
	MaxScore      int
	PendingReview int
	Answers       []model.AssessmentAnswer
}

// ScoreAttempt grades answers against the template's questions. Every question counts
// toward MaxScore; short answers stay ungraded until a reviewer scores them. Answers to
// questions outside the template are ignored.
func ScoreAttempt(attemptID uint, questions []model.AssessmentQuestion, answers map[uint]model.AnswerValue) (*ScoreSheet, error) {
	sheet := &ScoreSheet{}
	for i := range questions {
		q := &questions[i]
		def, err := q.Definition()
		if err != nil {
			return nil, err
		}
		sheet.MaxScore += q.Points

		value, answered := answers[q.ID]
		grade := def.Grade(value)
		row := model.AssessmentAnswer{AttemptID: attemptID, QuestionID: q.ID, Value: value}
		if grade.Determinable {
			correct := grade.Correct
			earned := 0
			if correct {
				earned = q.Points
			}
			sheet.Score += earned
			row.IsCorrect = &correct
			row.PointsEarned = &earned
		} else if answered {
			sheet.PendingReview++
		}
		if answered {
			sheet.Answers = append(sheet.Answers, row)
		}
	}
	return sheet, nil
}

type ScoringService struct {
	attemptLifecycle
}

func NewScoringService(attempts AttemptStore, bank *QuestionBankService, clock Clock) *ScoringService {
	return &ScoringService{attemptLifecycle{attempts: attempts, bank: bank, clock: clock}}
}

type SubmitResult struct {
	AttemptID     uint                `json:"attemptId"`
	Status        model.AttemptStatus `json:"status"`
	Score         *int                `json:"score"`
	MaxScore      *int                `json:"maxScore"`
	Passed        *bool               `json:"passed"`
	PendingReview int                 `json:"pendingReview"`
}

// Submit finalises an in-progress attempt. Submitted answers override auto-saved ones.
// A submission past the time budget expires the attempt without scoring it.
func (s *ScoringService) Submit(ctx context.Context, candidateID, attemptID uint, submitted map[uint]model.AnswerValue) (result *SubmitResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "assessment.submit", attemptID)
	defer func() { endSpan(span, err) }()

	attempt, err := s.ownedAttempt(ctx, Viewer{UserID: candidateID}, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.InProgress() {
		return nil, util.ErrAttemptNotActive
	}

	bundle, err := s.bank.Load(ctx, attempt.TemplateID)
	if err != nil {
		return nil, err
	}
	tmpl := &bundle.Template

	for questionID, value := range submitted {
		q, ok := bundle.Question(questionID)
		if !ok {
			return nil, util.ErrQuestionNotFound
		}
		if err := checkAnswerShape(q, value); err != nil {
			return nil, err
		}
	}

	now := s.now()
	if tmpl.Overdue(attempt.StartedAt, now) {
		if err := s.expireIfOverdue(ctx, attempt, tmpl); err != nil {
			return nil, err
		}
		if attempt.Status != model.AttemptExpired {
			return nil, util.ErrAttemptNotActive
		}
		return &SubmitResult{AttemptID: attempt.ID, Status: model.AttemptExpired}, nil
	}

	drafts, err := s.attempts.ListAnswers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list draft answers: %w", err)
	}
	merged := make(map[uint]model.AnswerValue, len(drafts)+len(submitted))
	for _, d := range drafts {
		merged[d.QuestionID] = d.Value
	}
	for questionID, value := range submitted {
		merged[questionID] = value
	}

	sheet, err := ScoreAttempt(attemptID, bundle.Questions, merged)
	if err != nil {
		return nil, err
	}

	passed := tmpl.Passed(sheet.Score, sheet.MaxScore)
	attempt.Status = model.AttemptCompleted
	attempt.CompletedAt = &now
	attempt.Score = &sheet.Score
	attempt.MaxScore = &sheet.MaxScore
	attempt.Passed = &passed

	err = s.attempts.CompleteAttempt(ctx, attempt, sheet.Answers)
	if errors.Is(err, repository.ErrStateConflict) {
		return nil, util.ErrAttemptNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("complete attempt: %w", err)
	}

	monitoring.RecordEvent(monitoring.EventCompleted)
	monitoring.ObserveScore(attempt.TemplateID, sheet.Score, sheet.MaxScore)
	logger.Log.Info("Assessment attempt completed",
		zap.Uint("attemptId", attempt.ID),
		zap.Int("score", sheet.Score),
		zap.Int("maxScore", sheet.MaxScore),
		zap.Bool("passed", passed),
		zap.Int("pendingReview", sheet.PendingReview),
	)

	return &SubmitResult{
		AttemptID:     attempt.ID,
		Status:        attempt.Status,
		Score:         attempt.Score,
		MaxScore:      attempt.MaxScore,
		Passed:        attempt.Passed,
		PendingReview: sheet.PendingReview,
	}, nil
}
