package repository

import (
	"context"
	"recruit_backend/internal/model"

	"gorm.io/gorm"
)

// JobRepository reads the job/application tables owned by the job module.
type JobRepository struct {
	DB *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{DB: db}
}

func (r *JobRepository) ListAppliedJobIDs(ctx context.Context, candidateID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&model.Application{}).
		Where("candidate_id = ?", candidateID).
		Distinct("job_id").
		Order("job_id asc").
		Pluck("job_id", &ids).Error
	return ids, err
}

func (r *JobRepository) ListRequiredAssessments(ctx context.Context, jobIDs []uint) ([]model.JobAssessment, error) {
	var links []model.JobAssessment
	if len(jobIDs) == 0 {
		return links, nil
	}
	err := r.DB.WithContext(ctx).
		Where("job_id IN ? AND is_required = ?", jobIDs, true).
		Order("job_id asc, id asc").
		Find(&links).Error
	return links, err
}

func (r *JobRepository) JobOffersTemplate(ctx context.Context, jobID, templateID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.JobAssessment{}).
		Where("job_id = ? AND template_id = ?", jobID, templateID).
		Count(&count).Error
	return count > 0, err
}

func (r *JobRepository) SaveJob(ctx context.Context, j *model.Job) error {
	return r.DB.WithContext(ctx).Save(j).Error
}

func (r *JobRepository) SaveJobAssessment(ctx context.Context, ja *model.JobAssessment) error {
	return r.DB.WithContext(ctx).Save(ja).Error
}

func (r *JobRepository) SaveApplication(ctx context.Context, a *model.Application) error {
	return r.DB.WithContext(ctx).Save(a).Error
}
