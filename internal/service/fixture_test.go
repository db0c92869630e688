package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"recruit_backend/internal/model"
	"recruit_backend/internal/repository"
	"recruit_backend/pkg/cache"

	"github.com/stretchr/testify/require"
)

const (
	tmplBasics   uint = 10 // Q11 single (1pt), Q12 multiple (2pt), pass at 2 points
	tmplWritten  uint = 20 // Q21 single (1pt), Q22 short answer (2pt), pass at 3 points
	tmplSprint   uint = 30 // one minute, Q31 true/false (1pt)
	tmplRetired  uint = 40 // inactive
	tmplUntimed  uint = 50 // no time limit, Q51 single (1pt)
	qSingle      uint = 11
	qMulti       uint = 12
	qWrittenMCQ  uint = 21
	qShort       uint = 22
	qSprint      uint = 31
	qUntimed     uint = 51
	jobBackend   uint = 100
	jobPlatform  uint = 200
	candidateAda uint = 1
	candidateBob uint = 2
	reviewerID   uint = 9
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store    *repository.MemoryStore
	cache    *cache.MemoryCache
	clock    *fakeClock
	bank     *QuestionBankService
	attempts *AttemptService
	scoring  *ScoringService
	pending  *PendingService
	review   *ReviewService
	results  *ResultService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	c := cache.NewMemoryCache()
	clock := &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	bank := NewQuestionBankService(store, c, time.Minute)

	f := &fixture{
		store:    store,
		cache:    c,
		clock:    clock,
		bank:     bank,
		attempts: NewAttemptService(store, bank, clock.Now),
		scoring:  NewScoringService(store, bank, clock.Now),
		pending:  NewPendingService(store, store, bank, clock.Now),
		review:   NewReviewService(store, bank, clock.Now),
		results:  NewResultService(store, bank, clock.Now),
	}
	f.seed(t)
	return f
}

func template(id uint, title string, minutes, passing int, active bool) *model.AssessmentTemplate {
	return &model.AssessmentTemplate{
		BaseModel:       model.BaseModel{ID: id},
		Title:           title,
		DurationMinutes: minutes,
		PassingScore:    passing,
		PassingUnit:     model.PassingUnitPoints,
		IsActive:        active,
	}
}

func q(id uint, typ model.QuestionType, points, order int, options, correct []string) model.AssessmentQuestion {
	return model.AssessmentQuestion{
		BaseModel:      model.BaseModel{ID: id},
		Text:           "question",
		Type:           typ,
		Options:        options,
		CorrectAnswers: correct,
		Points:         points,
		OrderIndex:     order,
	}
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.store.SaveTemplate(ctx, template(tmplBasics, "Go basics", 30, 2, true), []model.AssessmentQuestion{
		q(qSingle, model.QuestionMCQSingle, 1, 1, []string{"A", "B", "C"}, []string{"B"}),
		q(qMulti, model.QuestionMCQMultiple, 2, 2, []string{"X", "Y", "Z"}, []string{"X", "Z"}),
	}))
	require.NoError(t, f.store.SaveTemplate(ctx, template(tmplWritten, "Written", 30, 3, true), []model.AssessmentQuestion{
		q(qWrittenMCQ, model.QuestionMCQSingle, 1, 1, []string{"A", "B"}, []string{"A"}),
		q(qShort, model.QuestionShortAnswer, 2, 2, nil, nil),
	}))
	require.NoError(t, f.store.SaveTemplate(ctx, template(tmplSprint, "Sprint", 1, 1, true), []model.AssessmentQuestion{
		q(qSprint, model.QuestionTrueFalse, 1, 1, []string{"true", "false"}, []string{"true"}),
	}))
	require.NoError(t, f.store.SaveTemplate(ctx, template(tmplRetired, "Retired", 30, 1, false), nil))
	require.NoError(t, f.store.SaveTemplate(ctx, template(tmplUntimed, "Untimed", 0, 1, true), []model.AssessmentQuestion{
		q(qUntimed, model.QuestionMCQSingle, 1, 1, []string{"A", "B"}, []string{"A"}),
	}))

	for _, j := range []uint{jobBackend, jobPlatform} {
		require.NoError(t, f.store.SaveJob(ctx, &model.Job{BaseModel: model.BaseModel{ID: j}, Title: "job", Status: "active"}))
	}
	links := []model.JobAssessment{
		{BaseModel: model.BaseModel{ID: 101}, JobID: jobBackend, TemplateID: tmplBasics, IsRequired: true},
		{BaseModel: model.BaseModel{ID: 102}, JobID: jobBackend, TemplateID: tmplSprint, IsRequired: false},
		{BaseModel: model.BaseModel{ID: 201}, JobID: jobPlatform, TemplateID: tmplWritten, IsRequired: true},
	}
	for i := range links {
		require.NoError(t, f.store.SaveJobAssessment(ctx, &links[i]))
	}
}

func (f *fixture) apply(t *testing.T, candidateID, jobID uint) {
	t.Helper()
	require.NoError(t, f.store.SaveApplication(context.Background(), &model.Application{
		JobID: jobID, CandidateID: candidateID, Status: "applied",
	}))
}

func jobRef(id uint) *uint { return &id }

func (f *fixture) start(t *testing.T, candidateID, templateID uint, jobID *uint) *StartResult {
	t.Helper()
	res, err := f.attempts.Start(context.Background(), model.AttemptKey{
		CandidateID: candidateID, TemplateID: templateID, JobID: jobID,
	})
	require.NoError(t, err)
	return res
}
