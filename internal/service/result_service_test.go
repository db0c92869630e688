package service

import (
	"context"
	"testing"
	"time"

	"recruit_backend/internal/model"
	"recruit_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetResultsBreakdown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	attemptID := submitWritten(t, f, candidateAda)

	res, err := f.results.GetResults(ctx, Viewer{UserID: candidateAda}, attemptID)
	require.NoError(t, err)

	assert.Equal(t, model.AttemptCompleted, res.Status)
	assert.Equal(t, 1, *res.Score)
	assert.Equal(t, 3, *res.MaxScore)
	assert.Equal(t, 1, res.PendingReview)
	require.Len(t, res.Questions, 2)

	mcq := res.Questions[0]
	assert.Equal(t, qWrittenMCQ, mcq.QuestionID)
	assert.True(t, *mcq.IsCorrect)
	assert.Equal(t, []string{"A"}, mcq.CorrectAnswers)
	assert.False(t, mcq.PendingReview)

	short := res.Questions[1]
	assert.Equal(t, qShort, short.QuestionID)
	assert.True(t, short.PendingReview)
	assert.Nil(t, short.PointsEarned)
	assert.Empty(t, short.Options)
}

func TestGetResultsHidesAnswersWhileInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t, candidateAda, tmplBasics, nil)
	require.NoError(t, f.attempts.RecordAnswer(ctx, candidateAda, started.AttemptID, qSingle, model.TextAnswer("B")))

	res, err := f.results.GetResults(ctx, Viewer{UserID: candidateAda}, started.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptInProgress, res.Status)
	assert.Nil(t, res.Score)
	assert.NotNil(t, res.ExpiresAt)
	for _, q := range res.Questions {
		assert.Empty(t, q.CorrectAnswers)
	}
	assert.Equal(t, model.TextAnswer("B"), res.Questions[0].Answer)
	assert.True(t, res.Questions[1].Answer.IsZero())
}

func TestGetResultsAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t, candidateAda, tmplBasics, nil)

	_, err := f.results.GetResults(ctx, Viewer{UserID: candidateBob}, started.AttemptID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.results.GetResults(ctx, Viewer{UserID: reviewerID, Admin: true}, started.AttemptID)
	assert.NoError(t, err)

	_, err = f.results.GetResults(ctx, Viewer{UserID: candidateAda}, 9999)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestGetResultsExpiresStaleAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t, candidateAda, tmplSprint, nil)

	f.clock.Advance(5 * time.Minute)
	res, err := f.results.GetResults(ctx, Viewer{UserID: candidateAda}, started.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptExpired, res.Status)
	assert.Nil(t, res.Score)
	assert.Nil(t, res.ExpiresAt)
	assert.Equal(t, []string{"true"}, res.Questions[0].CorrectAnswers)
}

func TestListResultsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	written := submitWritten(t, f, candidateAda)

	f.clock.Advance(time.Minute)
	basics := f.start(t, candidateBob, tmplBasics, nil)
	_, err := f.scoring.Submit(ctx, candidateBob, basics.AttemptID, map[uint]model.AnswerValue{
		qSingle: model.TextAnswer("B"),
	})
	require.NoError(t, err)
	f.start(t, candidateAda, tmplUntimed, nil)

	list, err := f.results.ListResults(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, basics.AttemptID, list[0].AttemptID)
	assert.Equal(t, "Go basics", list[0].TemplateTitle)
	assert.Equal(t, 1, *list[0].Score)
	assert.Equal(t, written, list[1].AttemptID)
	assert.Equal(t, "Written", list[1].TemplateTitle)

	limited, err := f.results.ListResults(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, basics.AttemptID, limited[0].AttemptID)
}

func TestListCandidateResultsExpiresOverdueAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	written := submitWritten(t, f, candidateAda)
	sprint := f.start(t, candidateAda, tmplSprint, jobRef(jobBackend))
	f.start(t, candidateBob, tmplBasics, nil)

	f.clock.Advance(5 * time.Minute)
	list, err := f.results.ListCandidateResults(ctx, candidateAda)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, written, list[0].AttemptID)
	assert.Equal(t, model.AttemptCompleted, list[0].Status)
	assert.Equal(t, sprint.AttemptID, list[1].AttemptID)
	assert.Equal(t, model.AttemptExpired, list[1].Status)
	assert.Equal(t, jobBackend, *list[1].JobID)

	stored, err := f.store.FindAttempt(ctx, sprint.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptExpired, stored.Status)

	none, err := f.results.ListCandidateResults(ctx, 4242)
	require.NoError(t, err)
	assert.Empty(t, none)
}
