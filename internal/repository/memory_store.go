package repository

import (
	"context"
	"recruit_backend/internal/model"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

type answerKey struct {
	attemptID  uint
	questionID uint
}

// MemoryStore keeps the whole assessment schema in process memory. It backs
// database.driver=memory and the service tests, and reports the same gorm sentinels
// (ErrRecordNotFound, ErrDuplicatedKey) as the SQL repositories.
type MemoryStore struct {
	mu  sync.Mutex
	seq uint

	categories     map[uint]model.AssessmentCategory
	templates      map[uint]model.AssessmentTemplate
	questions      map[uint]model.AssessmentQuestion
	attempts       map[uint]model.AssessmentAttempt
	activeAttempts map[string]uint
	answers        map[answerKey]model.AssessmentAnswer
	jobs           map[uint]model.Job
	applications   map[uint]model.Application
	jobAssessments map[uint]model.JobAssessment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories:     make(map[uint]model.AssessmentCategory),
		templates:      make(map[uint]model.AssessmentTemplate),
		questions:      make(map[uint]model.AssessmentQuestion),
		attempts:       make(map[uint]model.AssessmentAttempt),
		activeAttempts: make(map[string]uint),
		answers:        make(map[answerKey]model.AssessmentAnswer),
		jobs:           make(map[uint]model.Job),
		applications:   make(map[uint]model.Application),
		jobAssessments: make(map[uint]model.JobAssessment),
	}
}

// stamp assigns an id when missing and keeps the shared sequence ahead of explicit ids.
func (s *MemoryStore) stamp(b *model.BaseModel) {
	now := time.Now()
	if b.ID == 0 {
		s.seq++
		b.ID = s.seq
	} else if b.ID > s.seq {
		s.seq = b.ID
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func copyAttempt(a model.AssessmentAttempt) *model.AssessmentAttempt {
	out := a
	if a.ActiveKey != nil {
		k := *a.ActiveKey
		out.ActiveKey = &k
	}
	return &out
}

// question bank

func (s *MemoryStore) FindTemplate(_ context.Context, id uint) (*model.AssessmentTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (s *MemoryStore) ListQuestions(_ context.Context, templateID uint) ([]model.AssessmentQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var qs []model.AssessmentQuestion
	for _, q := range s.questions {
		if q.TemplateID == templateID {
			qs = append(qs, q)
		}
	}
	sort.Slice(qs, func(i, j int) bool {
		if qs[i].OrderIndex != qs[j].OrderIndex {
			return qs[i].OrderIndex < qs[j].OrderIndex
		}
		return qs[i].ID < qs[j].ID
	})
	return qs, nil
}

func (s *MemoryStore) SaveCategory(_ context.Context, c *model.AssessmentCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&c.BaseModel)
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) SaveTemplate(_ context.Context, t *model.AssessmentTemplate, questions []model.AssessmentQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&t.BaseModel)
	s.templates[t.ID] = *t
	for i := range questions {
		questions[i].TemplateID = t.ID
		s.stamp(&questions[i].BaseModel)
		s.questions[questions[i].ID] = questions[i]
	}
	return nil
}

// jobs

func (s *MemoryStore) ListAppliedJobIDs(_ context.Context, candidateID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[uint]bool)
	var ids []uint
	for _, a := range s.applications {
		if a.CandidateID == candidateID && !seen[a.JobID] {
			seen[a.JobID] = true
			ids = append(ids, a.JobID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) ListRequiredAssessments(_ context.Context, jobIDs []uint) ([]model.JobAssessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[uint]bool, len(jobIDs))
	for _, id := range jobIDs {
		wanted[id] = true
	}
	var links []model.JobAssessment
	for _, ja := range s.jobAssessments {
		if ja.IsRequired && wanted[ja.JobID] {
			links = append(links, ja)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].JobID != links[j].JobID {
			return links[i].JobID < links[j].JobID
		}
		return links[i].ID < links[j].ID
	})
	return links, nil
}

func (s *MemoryStore) JobOffersTemplate(_ context.Context, jobID, templateID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ja := range s.jobAssessments {
		if ja.JobID == jobID && ja.TemplateID == templateID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) SaveJob(_ context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&j.BaseModel)
	s.jobs[j.ID] = *j
	return nil
}

func (s *MemoryStore) SaveJobAssessment(_ context.Context, ja *model.JobAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&ja.BaseModel)
	s.jobAssessments[ja.ID] = *ja
	return nil
}

func (s *MemoryStore) SaveApplication(_ context.Context, a *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&a.BaseModel)
	s.applications[a.ID] = *a
	return nil
}

// attempts

func (s *MemoryStore) FindAttempt(_ context.Context, id uint) (*model.AssessmentAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyAttempt(a), nil
}

func (s *MemoryStore) FindLatestAttempt(_ context.Context, key model.AttemptKey, status model.AttemptStatus) (*model.AssessmentAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *model.AssessmentAttempt
	for _, a := range s.attempts {
		if a.CandidateID != key.CandidateID || a.TemplateID != key.TemplateID ||
			!model.SameJob(a.JobID, key.JobID) || a.Status != status {
			continue
		}
		if latest == nil || a.StartedAt.After(latest.StartedAt) ||
			(a.StartedAt.Equal(latest.StartedAt) && a.ID > latest.ID) {
			latest = copyAttempt(a)
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (s *MemoryStore) ListAttemptsByCandidate(_ context.Context, candidateID uint) ([]model.AssessmentAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AssessmentAttempt
	for _, a := range s.attempts {
		if a.CandidateID == candidateID {
			out = append(out, *copyAttempt(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ListFinishedAttempts(_ context.Context, limit int) ([]model.AssessmentAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AssessmentAttempt
	for _, a := range s.attempts {
		if a.Status != model.AttemptInProgress {
			out = append(out, *copyAttempt(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].CompletedAt, out[j].CompletedAt
		if ci != nil && cj != nil && !ci.Equal(*cj) {
			return ci.After(*cj)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) CreateAttempt(_ context.Context, a *model.AssessmentAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ActiveKey != nil {
		if _, taken := s.activeAttempts[*a.ActiveKey]; taken {
			return gorm.ErrDuplicatedKey
		}
	}
	s.stamp(&a.BaseModel)
	s.attempts[a.ID] = *copyAttempt(*a)
	if a.ActiveKey != nil {
		s.activeAttempts[*a.ActiveKey] = a.ID
	}
	return nil
}

// finish must be called with mu held.
func (s *MemoryStore) finish(stored *model.AssessmentAttempt) {
	if stored.ActiveKey != nil {
		delete(s.activeAttempts, *stored.ActiveKey)
		stored.ActiveKey = nil
	}
	stored.UpdatedAt = time.Now()
	s.attempts[stored.ID] = *stored
}

func (s *MemoryStore) ExpireAttempt(_ context.Context, id uint, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.attempts[id]
	if !ok || stored.Status != model.AttemptInProgress {
		return false, nil
	}
	stored.Status = model.AttemptExpired
	stored.CompletedAt = &at
	s.finish(&stored)
	return true, nil
}

func (s *MemoryStore) CompleteAttempt(_ context.Context, a *model.AssessmentAttempt, answers []model.AssessmentAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.attempts[a.ID]
	if !ok || stored.Status != model.AttemptInProgress {
		return ErrStateConflict
	}
	stored.Status = a.Status
	stored.CompletedAt = a.CompletedAt
	stored.Score = a.Score
	stored.MaxScore = a.MaxScore
	stored.Passed = a.Passed
	s.finish(&stored)
	for i := range answers {
		s.upsertAnswer(&answers[i])
	}
	return nil
}

// upsertAnswer must be called with mu held.
func (s *MemoryStore) upsertAnswer(ans *model.AssessmentAnswer) {
	key := answerKey{attemptID: ans.AttemptID, questionID: ans.QuestionID}
	if existing, ok := s.answers[key]; ok {
		ans.BaseModel = existing.BaseModel
		ans.ReviewedBy = existing.ReviewedBy
		ans.ReviewedAt = existing.ReviewedAt
	}
	s.stamp(&ans.BaseModel)
	s.answers[key] = *ans
}

func (s *MemoryStore) SaveDraftAnswer(_ context.Context, ans *model.AssessmentAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.attempts[ans.AttemptID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != model.AttemptInProgress {
		return ErrStateConflict
	}
	ans.IsCorrect = nil
	ans.PointsEarned = nil
	s.upsertAnswer(ans)
	return nil
}

func (s *MemoryStore) ListAnswers(_ context.Context, attemptID uint) ([]model.AssessmentAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AssessmentAnswer
	for k, ans := range s.answers {
		if k.attemptID == attemptID {
			out = append(out, ans)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (s *MemoryStore) FindAnswer(_ context.Context, attemptID, questionID uint) (*model.AssessmentAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ans, ok := s.answers[answerKey{attemptID: attemptID, questionID: questionID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &ans, nil
}

func (s *MemoryStore) ApplyReview(_ context.Context, review model.AnswerReview, decide func(score, maxScore int) bool) (*model.AssessmentAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.attempts[review.AttemptID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if stored.Status != model.AttemptCompleted {
		return nil, ErrStateConflict
	}
	key := answerKey{attemptID: review.AttemptID, questionID: review.QuestionID}
	ans, ok := s.answers[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	isCorrect := review.IsCorrect
	points := review.PointsEarned
	reviewer := review.ReviewerID
	reviewedAt := review.ReviewedAt
	ans.IsCorrect = &isCorrect
	ans.PointsEarned = &points
	ans.ReviewedBy = &reviewer
	ans.ReviewedAt = &reviewedAt
	ans.UpdatedAt = time.Now()
	s.answers[key] = ans

	score := 0
	for k, a := range s.answers {
		if k.attemptID == review.AttemptID && a.PointsEarned != nil {
			score += *a.PointsEarned
		}
	}
	maxScore := 0
	if stored.MaxScore != nil {
		maxScore = *stored.MaxScore
	}
	passed := decide(score, maxScore)
	stored.Score = &score
	stored.Passed = &passed
	stored.UpdatedAt = time.Now()
	s.attempts[stored.ID] = stored
	return copyAttempt(stored), nil
}

func (s *MemoryStore) ListAwaitingReview(_ context.Context, limit int) ([]model.ReviewQueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make(map[uint]int)
	for k, ans := range s.answers {
		q, ok := s.questions[k.questionID]
		if !ok || !q.Manual() || ans.IsCorrect != nil {
			continue
		}
		if a, ok := s.attempts[k.attemptID]; ok && a.Status == model.AttemptCompleted {
			pending[k.attemptID]++
		}
	}

	items := make([]model.ReviewQueueItem, 0, len(pending))
	for id, n := range pending {
		a := s.attempts[id]
		items = append(items, model.ReviewQueueItem{
			AttemptID:      a.ID,
			CandidateID:    a.CandidateID,
			TemplateID:     a.TemplateID,
			JobID:          a.JobID,
			CompletedAt:    a.CompletedAt,
			PendingAnswers: n,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		ci, cj := items[i].CompletedAt, items[j].CompletedAt
		if ci != nil && cj != nil && !ci.Equal(*cj) {
			return ci.Before(*cj)
		}
		return items[i].AttemptID < items[j].AttemptID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
