package model

// Job, Application and JobAssessment are owned by the job/application module.
// The assessment engine only reads them.

// swagger:model Job
type Job struct {
	BaseModel
	Title      string `gorm:"size:255;not null" json:"title"`
	Department string `gorm:"size:255" json:"department"`
	Status     string `gorm:"size:20;not null" json:"status"` // active, closed
}

func (Job) TableName() string {
	return "jobs"
}

// swagger:model Application
type Application struct {
	BaseModel
	JobID       uint   `gorm:"index;not null" json:"jobId"`
	CandidateID uint   `gorm:"index;not null" json:"candidateId"`
	Status      string `gorm:"size:20;not null" json:"status"` // applied, shortlisted, interview, hired, onboarded, rejected
}

func (Application) TableName() string {
	return "applications"
}

// swagger:model JobAssessment
type JobAssessment struct {
	BaseModel
	JobID      uint `gorm:"index;not null" json:"jobId"`
	TemplateID uint `gorm:"index;not null" json:"templateId"`
	IsRequired bool `gorm:"not null" json:"isRequired"`
}

func (JobAssessment) TableName() string {
	return "job_assessments"
}
