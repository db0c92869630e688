package repository

import (
	"context"
	"testing"
	"time"

	"recruit_backend/internal/model"
	"recruit_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	tmplWritten uint = 1 // Q1 single (1pt), Q2 short answer (2pt), pass at 3 points
	qChoice     uint = 1
	qShort      uint = 2
	candidateID uint = 7
	reviewerID  uint = 9
)

var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// newTestDB opens a private in-memory sqlite database with the production schema. A single
// connection keeps every statement on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedWritten(t *testing.T, db *gorm.DB) *model.AssessmentTemplate {
	t.Helper()
	tmpl := &model.AssessmentTemplate{
		BaseModel:       model.BaseModel{ID: tmplWritten},
		Title:           "Written",
		DurationMinutes: 30,
		PassingScore:    3,
		PassingUnit:     model.PassingUnitPoints,
		IsActive:        true,
	}
	require.NoError(t, NewQuestionBankRepository(db).SaveTemplate(context.Background(), tmpl, []model.AssessmentQuestion{
		{BaseModel: model.BaseModel{ID: qShort}, Text: "Explain channels", Type: model.QuestionShortAnswer, Points: 2, OrderIndex: 2},
		{BaseModel: model.BaseModel{ID: qChoice}, Text: "Pick A", Type: model.QuestionMCQSingle, Options: []string{"A", "B"}, CorrectAnswers: []string{"A"}, Points: 1, OrderIndex: 1},
	}))
	return tmpl
}

func ptr[T any](v T) *T { return &v }
