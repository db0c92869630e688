package model

import "time"

type PassingScoreUnit string

const (
	PassingUnitPoints  PassingScoreUnit = "points"
	PassingUnitPercent PassingScoreUnit = "percent"
)

// swagger:model AssessmentCategory
type AssessmentCategory struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (AssessmentCategory) TableName() string {
	return "assessment_categories"
}

// AssessmentTemplate is a timed test definition. DurationMinutes == 0 means no time limit.
// swagger:model AssessmentTemplate
type AssessmentTemplate struct {
	BaseModel
	Title           string           `gorm:"size:255;not null" json:"title"`
	Description     string           `gorm:"type:text" json:"description"`
	CategoryID      uint             `gorm:"index" json:"categoryId"`
	DurationMinutes int              `gorm:"not null" json:"durationMinutes"`
	PassingScore    int              `gorm:"not null" json:"passingScore"`
	PassingUnit     PassingScoreUnit `gorm:"size:16;not null" json:"passingUnit"`
	IsActive        bool             `gorm:"not null" json:"isActive"`
	CreatedBy       uint             `json:"createdBy"`
}

func (AssessmentTemplate) TableName() string {
	return "assessment_templates"
}

func (t *AssessmentTemplate) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

func (t *AssessmentTemplate) HasTimeLimit() bool {
	return t.DurationMinutes > 0
}

// Overdue reports whether an attempt started at startedAt has used up the time budget.
func (t *AssessmentTemplate) Overdue(startedAt, now time.Time) bool {
	if !t.HasTimeLimit() {
		return false
	}
	return now.Sub(startedAt) > t.Duration()
}

// Deadline is nil for templates without a time limit.
func (t *AssessmentTemplate) Deadline(startedAt time.Time) *time.Time {
	if !t.HasTimeLimit() {
		return nil
	}
	d := startedAt.Add(t.Duration())
	return &d
}

// Passed applies the template's pass rule. An empty unit is treated as points.
func (t *AssessmentTemplate) Passed(score, maxScore int) bool {
	if t.PassingUnit == PassingUnitPercent {
		if maxScore <= 0 {
			return t.PassingScore <= 0
		}
		return score*100 >= t.PassingScore*maxScore
	}
	return score >= t.PassingScore
}
