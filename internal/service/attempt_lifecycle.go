package service

import (
	"context"
	"errors"
	"fmt"
	"recruit_backend/internal/model"
	"recruit_backend/internal/util"
	"recruit_backend/pkg/logger"
	"recruit_backend/pkg/monitoring"
	"recruit_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// domainOutcomes are refusals the API reports to callers. Spans ending with one of them
// are not failures.
var domainOutcomes = []error{
	util.ErrTemplateNotFound,
	util.ErrAttemptNotFound,
	util.ErrQuestionNotFound,
	util.ErrAnswerNotFound,
	util.ErrJobNotLinked,
	util.ErrAlreadyCompleted,
	util.ErrAttemptNotActive,
	util.ErrAttemptNotCompleted,
	util.ErrNotManuallyGradable,
	util.ErrInvalidAnswerShape,
	util.ErrInvalidPoints,
	util.ErrPermissionDenied,
}

func endSpan(span trace.Span, err error) {
	tracing.EndSpan(span, err, domainOutcomes...)
}

// attemptLifecycle holds what every attempt operation shares: loading with ownership
// checks and the lazy expiry of overdue attempts.
type attemptLifecycle struct {
	attempts AttemptStore
	bank     *QuestionBankService
	clock    Clock
}

func (l *attemptLifecycle) now() time.Time {
	if l.clock == nil {
		return time.Now()
	}
	return l.clock()
}

func (l *attemptLifecycle) load(ctx context.Context, id uint) (*model.AssessmentAttempt, error) {
	a, err := l.attempts.FindAttempt(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load attempt %d: %w", id, err)
	}
	return a, nil
}

// ownedAttempt loads an attempt the viewer may see. Admins see every attempt.
func (l *attemptLifecycle) ownedAttempt(ctx context.Context, viewer Viewer, id uint) (*model.AssessmentAttempt, error) {
	a, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.Admin && a.CandidateID != viewer.UserID {
		return nil, util.ErrPermissionDenied
	}
	return a, nil
}

// expireIfOverdue moves an in-progress attempt past its time budget to expired. On return
// a reflects the stored state, including when another request finalised it first.
func (l *attemptLifecycle) expireIfOverdue(ctx context.Context, a *model.AssessmentAttempt, tmpl *model.AssessmentTemplate) error {
	if !a.InProgress() {
		return nil
	}
	now := l.now()
	if !tmpl.Overdue(a.StartedAt, now) {
		return nil
	}

	expired, err := l.attempts.ExpireAttempt(ctx, a.ID, now)
	if err != nil {
		return fmt.Errorf("expire attempt %d: %w", a.ID, err)
	}
	if !expired {
		fresh, err := l.load(ctx, a.ID)
		if err != nil {
			return err
		}
		*a = *fresh
		return nil
	}

	a.Status = model.AttemptExpired
	a.CompletedAt = &now
	a.ActiveKey = nil
	monitoring.RecordEvent(monitoring.EventExpired)
	logger.Log.Info("Assessment attempt expired",
		zap.Uint("attemptId", a.ID),
		zap.Uint("candidateId", a.CandidateID),
		zap.Uint("templateId", a.TemplateID),
		zap.Duration("elapsed", now.Sub(a.StartedAt)),
	)
	return nil
}
