package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"recruit_backend/internal/model"
	"recruit_backend/internal/util"
	"recruit_backend/pkg/cache"
	"recruit_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const templateCacheKey = "assessment:template:%d"

// TemplateBundle is a template with its ordered questions, as cached.
type TemplateBundle struct {
	Template  model.AssessmentTemplate   `json:"template"`
	Questions []model.AssessmentQuestion `json:"questions"`
}

func (b *TemplateBundle) Question(id uint) (*model.AssessmentQuestion, bool) {
	for i := range b.Questions {
		if b.Questions[i].ID == id {
			return &b.Questions[i], true
		}
	}
	return nil, false
}

// QuestionBankService serves the read-only catalog through a read-through cache.
type QuestionBankService struct {
	Store QuestionBankStore
	Cache cache.Cache
	TTL   time.Duration
}

func NewQuestionBankService(store QuestionBankStore, c cache.Cache, ttl time.Duration) *QuestionBankService {
	return &QuestionBankService{Store: store, Cache: c, TTL: ttl}
}

func (s *QuestionBankService) cacheKey(templateID uint) string {
	return fmt.Sprintf(templateCacheKey, templateID)
}

// Load returns the template and its questions, ordered by orderIndex then id.
func (s *QuestionBankService) Load(ctx context.Context, templateID uint) (*TemplateBundle, error) {
	key := s.cacheKey(templateID)
	if s.Cache != nil {
		raw, err := s.Cache.Get(ctx, key)
		if err == nil {
			var bundle TemplateBundle
			if err := json.Unmarshal(raw, &bundle); err == nil {
				return &bundle, nil
			}
			logger.Log.Warn("Discarding undecodable template cache entry", zap.String("key", key))
		} else if !errors.Is(err, cache.ErrMiss) {
			logger.Log.Warn("Template cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	tmpl, err := s.Store.FindTemplate(ctx, templateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load template %d: %w", templateID, err)
	}
	questions, err := s.Store.ListQuestions(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("load questions of template %d: %w", templateID, err)
	}
	bundle := &TemplateBundle{Template: *tmpl, Questions: questions}

	if s.Cache != nil {
		if raw, err := json.Marshal(bundle); err == nil {
			if err := s.Cache.Set(ctx, key, raw, s.TTL); err != nil {
				logger.Log.Warn("Template cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return bundle, nil
}

// Invalidate drops cached copies of the given templates.
func (s *QuestionBankService) Invalidate(ctx context.Context, templateIDs ...uint) error {
	if s.Cache == nil || len(templateIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(templateIDs))
	for _, id := range templateIDs {
		keys = append(keys, s.cacheKey(id))
	}
	return s.Cache.Delete(ctx, keys...)
}

type CandidateQuestion struct {
	ID         uint               `json:"id"`
	Text       string             `json:"questionText"`
	Type       model.QuestionType `json:"questionType"`
	Options    []string           `json:"options,omitempty"`
	Points     int                `json:"points"`
	OrderIndex int                `json:"orderIndex"`
}

// CandidateView is what a candidate sees while taking a test: no correct answers.
type CandidateView struct {
	TemplateID      uint                `json:"templateId"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	DurationMinutes int                 `json:"durationMinutes"`
	Questions       []CandidateQuestion `json:"questions"`
}

func (s *QuestionBankService) CandidateView(ctx context.Context, templateID uint) (*CandidateView, error) {
	bundle, err := s.Load(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !bundle.Template.IsActive {
		return nil, util.ErrTemplateNotFound
	}

	view := &CandidateView{
		TemplateID:      bundle.Template.ID,
		Title:           bundle.Template.Title,
		Description:     bundle.Template.Description,
		DurationMinutes: bundle.Template.DurationMinutes,
		Questions:       make([]CandidateQuestion, 0, len(bundle.Questions)),
	}
	for _, q := range bundle.Questions {
		cq := CandidateQuestion{
			ID:         q.ID,
			Text:       q.Text,
			Type:       q.Type,
			Points:     q.Points,
			OrderIndex: q.OrderIndex,
		}
		if !q.Manual() {
			cq.Options = append([]string(nil), q.Options...)
		}
		view.Questions = append(view.Questions, cq)
	}
	return view, nil
}
