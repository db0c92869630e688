package repository

import (
	"context"
	"recruit_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionBankRepository struct {
	DB *gorm.DB
}

func NewQuestionBankRepository(db *gorm.DB) *QuestionBankRepository {
	return &QuestionBankRepository{DB: db}
}

func (r *QuestionBankRepository) FindTemplate(ctx context.Context, id uint) (*model.AssessmentTemplate, error) {
	var t model.AssessmentTemplate
	if err := r.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *QuestionBankRepository) ListQuestions(ctx context.Context, templateID uint) ([]model.AssessmentQuestion, error) {
	var qs []model.AssessmentQuestion
	err := r.DB.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("order_index asc, id asc").
		Find(&qs).Error
	return qs, err
}

func (r *QuestionBankRepository) SaveCategory(ctx context.Context, c *model.AssessmentCategory) error {
	return r.DB.WithContext(ctx).Save(c).Error
}

// SaveTemplate writes a template with its questions. Rows with an id are updated in place.
func (r *QuestionBankRepository) SaveTemplate(ctx context.Context, t *model.AssessmentTemplate, questions []model.AssessmentQuestion) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].TemplateID = t.ID
			if err := tx.Save(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
