package model

import "time"

// AssessmentAnswer holds at most one row per (attempt, question). A nil IsCorrect
// on a short-answer row means it is still waiting for a reviewer.
// swagger:model AssessmentAnswer
type AssessmentAnswer struct {
	BaseModel
	AttemptID    uint        `gorm:"not null;uniqueIndex:uniq_answer_attempt_question,priority:1" json:"attemptId"`
	QuestionID   uint        `gorm:"not null;uniqueIndex:uniq_answer_attempt_question,priority:2" json:"questionId"`
	Value        AnswerValue `gorm:"type:json" json:"value"`
	IsCorrect    *bool       `json:"isCorrect"`
	PointsEarned *int        `json:"pointsEarned"`
	ReviewedBy   *uint       `json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time  `json:"reviewedAt,omitempty"`
}

func (AssessmentAnswer) TableName() string {
	return "assessment_answers"
}

// AnswerReview is a reviewer's verdict on one short answer.
type AnswerReview struct {
	AttemptID    uint
	QuestionID   uint
	ReviewerID   uint
	IsCorrect    bool
	PointsEarned int
	ReviewedAt   time.Time
}

// ReviewQueueItem is a completed attempt that still has unreviewed short answers.
type ReviewQueueItem struct {
	AttemptID      uint       `json:"attemptId"`
	CandidateID    uint       `json:"candidateId"`
	TemplateID     uint       `json:"templateId"`
	JobID          *uint      `json:"jobId"`
	CompletedAt    *time.Time `json:"completedAt"`
	PendingAnswers int        `json:"pendingAnswers"`
}
