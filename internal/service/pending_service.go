package service

import (
	"context"
	"errors"
	"fmt"
	"recruit_backend/internal/model"
	"recruit_backend/internal/util"
	"recruit_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

type PendingStatus string

const (
	PendingNotStarted PendingStatus = "not_started"
	PendingInProgress PendingStatus = "in_progress"
)

// PendingAssessment is one entry of a candidate's worklist.
type PendingAssessment struct {
	JobID           uint          `json:"jobId"`
	TemplateID      uint          `json:"templateId"`
	TemplateTitle   string        `json:"templateTitle"`
	DurationMinutes int           `json:"durationMinutes"`
	Status          PendingStatus `json:"status"`
	AttemptID       *uint         `json:"attemptId,omitempty"`
	StartedAt       *time.Time    `json:"startedAt,omitempty"`
	ExpiresAt       *time.Time    `json:"expiresAt,omitempty"`
}

type PendingService struct {
	attemptLifecycle
	Jobs JobStore
}

func NewPendingService(jobs JobStore, attempts AttemptStore, bank *QuestionBankService, clock Clock) *PendingService {
	return &PendingService{
		attemptLifecycle: attemptLifecycle{attempts: attempts, bank: bank, clock: clock},
		Jobs:             jobs,
	}
}

type pairKey struct {
	jobID      uint
	templateID uint
}

type pairState struct {
	completed bool
	active    *model.AssessmentAttempt
}

// ListPending returns the required assessments the candidate still owes across every job
// applied to, grouped by job and then by the job's assessment order. Completed ones are left out.
func (s *PendingService) ListPending(ctx context.Context, candidateID uint) ([]PendingAssessment, error) {
	jobIDs, err := s.Jobs.ListAppliedJobIDs(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list applied jobs: %w", err)
	}
	pending := make([]PendingAssessment, 0)
	if len(jobIDs) == 0 {
		return pending, nil
	}

	links, err := s.Jobs.ListRequiredAssessments(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("list required assessments: %w", err)
	}
	attempts, err := s.attempts.ListAttemptsByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	states := make(map[pairKey]*pairState)
	for i := range attempts {
		a := &attempts[i]
		if a.JobID == nil {
			continue
		}
		k := pairKey{jobID: *a.JobID, templateID: a.TemplateID}
		st, ok := states[k]
		if !ok {
			st = &pairState{}
			states[k] = st
		}
		switch a.Status {
		case model.AttemptCompleted:
			st.completed = true
		case model.AttemptInProgress:
			st.active = a
		}
	}

	seen := make(map[pairKey]bool, len(links))
	for _, link := range links {
		k := pairKey{jobID: link.JobID, templateID: link.TemplateID}
		if seen[k] {
			continue
		}
		seen[k] = true

		st := states[k]
		if st != nil && st.completed {
			continue
		}

		bundle, err := s.bank.Load(ctx, link.TemplateID)
		if errors.Is(err, util.ErrTemplateNotFound) {
			logger.Log.Warn("Job requires a missing assessment template",
				zap.Uint("jobId", link.JobID), zap.Uint("templateId", link.TemplateID))
			continue
		}
		if err != nil {
			return nil, err
		}
		tmpl := &bundle.Template
		if !tmpl.IsActive {
			continue
		}

		item := PendingAssessment{
			JobID:           link.JobID,
			TemplateID:      link.TemplateID,
			TemplateTitle:   tmpl.Title,
			DurationMinutes: tmpl.DurationMinutes,
			Status:          PendingNotStarted,
		}
		if st != nil && st.active != nil {
			if err := s.expireIfOverdue(ctx, st.active, tmpl); err != nil {
				return nil, err
			}
			switch {
			case st.active.InProgress():
				id := st.active.ID
				started := st.active.StartedAt
				item.Status = PendingInProgress
				item.AttemptID = &id
				item.StartedAt = &started
				item.ExpiresAt = tmpl.Deadline(started)
			case st.active.Status == model.AttemptCompleted:
				continue
			}
		}
		pending = append(pending, item)
	}
	return pending, nil
}

// VerifyJobLink checks that the job uses the template, for job-scoped starts.
func (s *PendingService) VerifyJobLink(ctx context.Context, jobID, templateID uint) error {
	ok, err := s.Jobs.JobOffersTemplate(ctx, jobID, templateID)
	if err != nil {
		return fmt.Errorf("check job assessment link: %w", err)
	}
	if !ok {
		return util.ErrJobNotLinked
	}
	return nil
}
