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
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Concurrent starts for one triple converge within a couple of rounds: the loser of the
// insert race finds the winner's row on its next read.
const maxStartRounds = 3

type AttemptService struct {
	attemptLifecycle
}

func NewAttemptService(attempts AttemptStore, bank *QuestionBankService, clock Clock) *AttemptService {
	return &AttemptService{attemptLifecycle{attempts: attempts, bank: bank, clock: clock}}
}

type StartResult struct {
	AttemptID uint                `json:"attemptId"`
	Status    model.AttemptStatus `json:"status"`
	Resumed   bool                `json:"resumed"`
	StartedAt time.Time           `json:"startedAt"`
	ExpiresAt *time.Time          `json:"expiresAt"`
}

func startResult(a *model.AssessmentAttempt, tmpl *model.AssessmentTemplate, resumed bool) *StartResult {
	return &StartResult{
		AttemptID: a.ID,
		Status:    a.Status,
		Resumed:   resumed,
		StartedAt: a.StartedAt,
		ExpiresAt: tmpl.Deadline(a.StartedAt),
	}
}

// Start opens an attempt for the triple or resumes the one already in progress. A triple
// with a completed attempt cannot be started again.
func (s *AttemptService) Start(ctx context.Context, key model.AttemptKey) (result *StartResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "assessment.start", 0)
	defer func() { endSpan(span, err) }()

	bundle, err := s.bank.Load(ctx, key.TemplateID)
	if err != nil {
		return nil, err
	}
	tmpl := &bundle.Template
	if !tmpl.IsActive {
		return nil, util.ErrTemplateNotFound
	}

	for round := 0; round < maxStartRounds; round++ {
		done, err := s.attempts.FindLatestAttempt(ctx, key, model.AttemptCompleted)
		if err == nil {
			monitoring.RecordEvent(monitoring.EventAlreadyCompleted)
			return nil, &util.AlreadyCompletedError{AttemptID: done.ID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find completed attempt: %w", err)
		}

		active, err := s.attempts.FindLatestAttempt(ctx, key, model.AttemptInProgress)
		switch {
		case err == nil:
			if err := s.expireIfOverdue(ctx, active, tmpl); err != nil {
				return nil, err
			}
			if active.InProgress() {
				monitoring.RecordEvent(monitoring.EventResumed)
				logger.Log.Debug("Assessment attempt resumed", zap.Uint("attemptId", active.ID))
				return startResult(active, tmpl, true), nil
			}
			// expired or completed meanwhile; re-evaluate
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("find active attempt: %w", err)
		}

		attempt := model.NewAttempt(key, s.now())
		err = s.attempts.CreateAttempt(ctx, attempt)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create attempt: %w", err)
		}

		monitoring.RecordEvent(monitoring.EventStarted)
		logger.Log.Info("Assessment attempt started",
			zap.Uint("attemptId", attempt.ID),
			zap.Uint("candidateId", key.CandidateID),
			zap.Uint("templateId", key.TemplateID),
		)
		return startResult(attempt, tmpl, false), nil
	}
	return nil, fmt.Errorf("start attempt for %s: %w", key.ActiveKey(), repository.ErrStateConflict)
}

// RecordAnswer auto-saves one answer. It never scores and is safe to repeat.
func (s *AttemptService) RecordAnswer(ctx context.Context, candidateID, attemptID, questionID uint, value model.AnswerValue) (err error) {
	ctx, span := tracing.StartSpan(ctx, "assessment.record_answer", attemptID)
	defer func() { endSpan(span, err) }()

	attempt, err := s.ownedAttempt(ctx, Viewer{UserID: candidateID}, attemptID)
	if err != nil {
		return err
	}
	if !attempt.InProgress() {
		return util.ErrAttemptNotActive
	}

	bundle, err := s.bank.Load(ctx, attempt.TemplateID)
	if err != nil {
		return err
	}
	if err := s.expireIfOverdue(ctx, attempt, &bundle.Template); err != nil {
		return err
	}
	if !attempt.InProgress() {
		return util.ErrAttemptNotActive
	}

	q, ok := bundle.Question(questionID)
	if !ok {
		return util.ErrQuestionNotFound
	}
	if err := checkAnswerShape(q, value); err != nil {
		return err
	}

	err = s.attempts.SaveDraftAnswer(ctx, &model.AssessmentAnswer{
		AttemptID:  attemptID,
		QuestionID: questionID,
		Value:      value,
	})
	switch {
	case errors.Is(err, repository.ErrStateConflict):
		return util.ErrAttemptNotActive
	case errors.Is(err, gorm.ErrRecordNotFound):
		return util.ErrAttemptNotFound
	case err != nil:
		return fmt.Errorf("save answer: %w", err)
	}
	monitoring.RecordEvent(monitoring.EventAnswerRecorded)
	return nil
}

func checkAnswerShape(q *model.AssessmentQuestion, value model.AnswerValue) error {
	def, err := q.Definition()
	if err != nil {
		return err
	}
	if err := def.CheckShape(value); err != nil {
		return fmt.Errorf("%w: question %d: %v", util.ErrInvalidAnswerShape, q.ID, err)
	}
	return nil
}
