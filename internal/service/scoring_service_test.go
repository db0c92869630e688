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

func TestSubmitScoresSingleAndMultipleChoice(t *testing.T) {
	tests := []struct {
		name    string
		answers map[uint]model.AnswerValue
		score   int
		passed  bool
	}{
		{
			name:    "all correct with reversed multi-select",
			answers: map[uint]model.AnswerValue{qSingle: model.TextAnswer("B"), qMulti: model.ChoiceAnswer("Z", "X")},
			score:   3,
			passed:  true,
		},
		{
			name:    "partial multi-select earns nothing",
			answers: map[uint]model.AnswerValue{qSingle: model.TextAnswer("A"), qMulti: model.ChoiceAnswer("X")},
			score:   0,
			passed:  false,
		},
		{
			name:    "only the multi-select right",
			answers: map[uint]model.AnswerValue{qMulti: model.ChoiceAnswer("X", "Z")},
			score:   2,
			passed:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			started := f.start(t, candidateAda, tmplBasics, nil)

			res, err := f.scoring.Submit(context.Background(), candidateAda, started.AttemptID, tc.answers)
			require.NoError(t, err)

			assert.Equal(t, model.AttemptCompleted, res.Status)
			require.NotNil(t, res.Score)
			require.NotNil(t, res.MaxScore)
			require.NotNil(t, res.Passed)
			assert.Equal(t, tc.score, *res.Score)
			assert.Equal(t, 3, *res.MaxScore)
			assert.Equal(t, tc.passed, *res.Passed)

			stored, err := f.store.FindAttempt(context.Background(), started.AttemptID)
			require.NoError(t, err)
			assert.Equal(t, model.AttemptCompleted, stored.Status)
			assert.Equal(t, tc.score, *stored.Score)
			assert.NotNil(t, stored.CompletedAt)
			assert.Nil(t, stored.ActiveKey)
		})
	}
}

func TestSubmitAfterTimeLimitExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t, candidateAda, tmplSprint, nil)

	f.clock.Advance(61 * time.Second)
	res, err := f.scoring.Submit(ctx, candidateAda, started.AttemptID, map[uint]model.AnswerValue{
		qSprint: model.TextAnswer("true"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.AttemptExpired, res.Status)
	assert.Nil(t, res.Score)
	assert.Nil(t, res.MaxScore)
	assert.Nil(t, res.Passed)

	stored, err := f.store.FindAttempt(ctx, started.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptExpired, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, f.clock.Now(), *stored.CompletedAt)
	assert.Nil(t, stored.Score)

	answers, err := f.store.ListAnswers(ctx, started.AttemptID)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestSubmitExactlyAtTheLimitIsScored(t *testing.T) {
	f := newFixture(t)
	started := f.start(t, candidateAda, tmplSprint, nil)

	f.clock.Advance(60 * time.Second)
	res, err := f.scoring.Submit(context.Background(), candidateAda, started.AttemptID, map[uint]model.AnswerValue{
		qSprint: model.TextAnswer("true"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, res.Status)
	assert.Equal(t, 1, *res.Score)
}

func TestSubmitIsOneShot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t, candidateAda, tmplBasics, nil)

	_, err := f.scoring.Submit(ctx, candidateAda, started.AttemptID, nil)
	require.NoError(t, err)
	_, err = f.scoring.Submit(ctx, candidateAda, started.AttemptID, map[uint]model.AnswerValue{qSingle: model.TextAnswer("B")})
	assert.ErrorIs(t, err, util.ErrAttemptNotActive)
}

func TestSubmitMergesAutoSavedAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t, candidateAda, tmplBasics, nil)

	require.NoError(t, f.attempts.RecordAnswer(ctx, candidateAda, started.AttemptID, qSingle, model.TextAnswer("A")))
	require.NoError(t, f.attempts.RecordAnswer(ctx, candidateAda, started.AttemptID, qMulti, model.ChoiceAnswer("X", "Z")))

	res, err := f.scoring.Submit(ctx, candidateAda, started.AttemptID, map[uint]model.AnswerValue{
		qSingle: model.TextAnswer("B"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, *res.Score)

	answers, err := f.store.ListAnswers(ctx, started.AttemptID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	for _, a := range answers {
		require.NotNil(t, a.IsCorrect)
		assert.True(t, *a.IsCorrect)
	}
	assert.Equal(t, model.TextAnswer("B"), answers[0].Value)
}

func TestSubmitRejectsBadInputBeforeWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t, candidateAda, tmplBasics, nil)

	_, err := f.scoring.Submit(ctx, candidateAda, started.AttemptID, map[uint]model.AnswerValue{qMulti: model.TextAnswer("X")})
	assert.ErrorIs(t, err, util.ErrInvalidAnswerShape)

	_, err = f.scoring.Submit(ctx, candidateAda, started.AttemptID, map[uint]model.AnswerValue{qSprint: model.TextAnswer("true")})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)

	_, err = f.scoring.Submit(ctx, candidateBob, started.AttemptID, nil)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	stored, err := f.store.FindAttempt(ctx, started.AttemptID)
	require.NoError(t, err)
	assert.True(t, stored.InProgress())
}

func TestSubmitLeavesShortAnswersForReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t, candidateAda, tmplWritten, nil)

	res, err := f.scoring.Submit(ctx, candidateAda, started.AttemptID, map[uint]model.AnswerValue{
		qWrittenMCQ: model.TextAnswer("A"),
		qShort:      model.TextAnswer("channels hand off values between goroutines"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, *res.Score)
	assert.Equal(t, 3, *res.MaxScore)
	assert.False(t, *res.Passed)
	assert.Equal(t, 1, res.PendingReview)

	short, err := f.store.FindAnswer(ctx, started.AttemptID, qShort)
	require.NoError(t, err)
	assert.Nil(t, short.IsCorrect)
	assert.Nil(t, short.PointsEarned)
}

func TestScoreAttemptCountsUnansweredQuestions(t *testing.T) {
	questions := []model.AssessmentQuestion{
		q(1, model.QuestionMCQSingle, 1, 1, []string{"A", "B"}, []string{"A"}),
		q(2, model.QuestionTrueFalse, 3, 2, []string{"true", "false"}, []string{"false"}),
		q(3, model.QuestionShortAnswer, 5, 3, nil, nil),
	}

	sheet, err := ScoreAttempt(7, questions, map[uint]model.AnswerValue{2: model.TextAnswer("false"), 99: model.TextAnswer("A")})
	require.NoError(t, err)
	assert.Equal(t, 3, sheet.Score)
	assert.Equal(t, 9, sheet.MaxScore)
	assert.Equal(t, 0, sheet.PendingReview)
	require.Len(t, sheet.Answers, 1)
	assert.Equal(t, uint(2), sheet.Answers[0].QuestionID)
	assert.Equal(t, uint(7), sheet.Answers[0].AttemptID)
}

func TestScoreAttemptRejectsBrokenQuestion(t *testing.T) {
	questions := []model.AssessmentQuestion{
		q(1, model.QuestionMCQSingle, 1, 1, []string{"A", "B"}, []string{"A", "B"}),
	}
	_, err := ScoreAttempt(1, questions, nil)
	assert.ErrorIs(t, err, model.ErrInvalidQuestion)
}

func TestSubmitWithPercentPassRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tmpl := template(60, "Percent", 30, 50, true)
	tmpl.PassingUnit = model.PassingUnitPercent
	require.NoError(t, f.store.SaveTemplate(ctx, tmpl, []model.AssessmentQuestion{
		q(61, model.QuestionMCQSingle, 1, 1, []string{"A", "B"}, []string{"A"}),
		q(62, model.QuestionMCQSingle, 1, 2, []string{"A", "B"}, []string{"B"}),
	}))

	started := f.start(t, candidateAda, 60, nil)
	res, err := f.scoring.Submit(ctx, candidateAda, started.AttemptID, map[uint]model.AnswerValue{61: model.TextAnswer("A")})
	require.NoError(t, err)
	assert.Equal(t, 1, *res.Score)
	assert.True(t, *res.Passed)
}
