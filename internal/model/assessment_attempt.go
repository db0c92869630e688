package model

import (
	"fmt"
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptExpired    AttemptStatus = "expired"
)

// AttemptKey identifies the (candidate, template, job) triple an attempt belongs to.
type AttemptKey struct {
	CandidateID uint
	TemplateID  uint
	JobID       *uint
}

func (k AttemptKey) jobOrZero() uint {
	if k.JobID == nil {
		return 0
	}
	return *k.JobID
}

// ActiveKey is the value of the unique guard column while an attempt is in progress.
func (k AttemptKey) ActiveKey() string {
	return fmt.Sprintf("%d:%d:%d", k.CandidateID, k.TemplateID, k.jobOrZero())
}

// AssessmentAttempt is one candidate's run at a template, optionally for a job.
// ActiveKey is non-null only while the attempt is in progress and carries a
// unique index, so storage rejects a second concurrent in-progress row.
// swagger:model AssessmentAttempt
type AssessmentAttempt struct {
	BaseModel
	CandidateID uint          `gorm:"index:idx_attempt_triple,priority:1;not null" json:"candidateId"`
	TemplateID  uint          `gorm:"index:idx_attempt_triple,priority:2;not null" json:"templateId"`
	JobID       *uint         `gorm:"index:idx_attempt_triple,priority:3" json:"jobId"`
	Status      AttemptStatus `gorm:"size:20;not null;index" json:"status"`
	ActiveKey   *string       `gorm:"size:64;uniqueIndex:uniq_attempt_active" json:"-"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt"`
	Score       *int          `json:"score"`
	MaxScore    *int          `json:"maxScore"`
	Passed      *bool         `json:"passed"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}

func (a *AssessmentAttempt) Key() AttemptKey {
	return AttemptKey{CandidateID: a.CandidateID, TemplateID: a.TemplateID, JobID: a.JobID}
}

func (a *AssessmentAttempt) InProgress() bool {
	return a.Status == AttemptInProgress
}

// NewAttempt builds an in-progress attempt with its guard column set.
func NewAttempt(key AttemptKey, startedAt time.Time) *AssessmentAttempt {
	active := key.ActiveKey()
	return &AssessmentAttempt{
		CandidateID: key.CandidateID,
		TemplateID:  key.TemplateID,
		JobID:       key.JobID,
		Status:      AttemptInProgress,
		ActiveKey:   &active,
		StartedAt:   startedAt,
	}
}

// SameJob compares nullable job ids.
func SameJob(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
