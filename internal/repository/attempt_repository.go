package repository

import (
	"context"
	"errors"
	"recruit_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStateConflict is returned when a conditional update finds the attempt no longer in the
// expected status, i.e. another request finalised it first.
var ErrStateConflict = errors.New("attempt state changed concurrently")

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func tripleScope(key model.AttemptKey) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("candidate_id = ? AND template_id = ?", key.CandidateID, key.TemplateID)
		if key.JobID == nil {
			return db.Where("job_id IS NULL")
		}
		return db.Where("job_id = ?", *key.JobID)
	}
}

func answerUpsert(columns ...string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}
}

func (r *AttemptRepository) FindAttempt(ctx context.Context, id uint) (*model.AssessmentAttempt, error) {
	var a model.AssessmentAttempt
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindLatestAttempt returns the most recently started attempt of the triple in the given status.
func (r *AttemptRepository) FindLatestAttempt(ctx context.Context, key model.AttemptKey, status model.AttemptStatus) (*model.AssessmentAttempt, error) {
	var a model.AssessmentAttempt
	err := r.DB.WithContext(ctx).
		Scopes(tripleScope(key)).
		Where("status = ?", status).
		Order("started_at desc, id desc").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListAttemptsByCandidate(ctx context.Context, candidateID uint) ([]model.AssessmentAttempt, error) {
	var attempts []model.AssessmentAttempt
	err := r.DB.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("started_at asc, id asc").
		Find(&attempts).Error
	return attempts, err
}

// ListFinishedAttempts returns completed and expired attempts, most recently finished first.
func (r *AttemptRepository) ListFinishedAttempts(ctx context.Context, limit int) ([]model.AssessmentAttempt, error) {
	var attempts []model.AssessmentAttempt
	query := r.DB.WithContext(ctx).
		Where("status <> ?", model.AttemptInProgress).
		Order("completed_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&attempts).Error
	return attempts, err
}

// CreateAttempt inserts an in-progress attempt. A second in-progress row for the same triple
// violates uniq_attempt_active and comes back as gorm.ErrDuplicatedKey.
func (r *AttemptRepository) CreateAttempt(ctx context.Context, a *model.AssessmentAttempt) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

// ExpireAttempt moves an in-progress attempt to expired. It reports false when the attempt
// had already left in_progress.
func (r *AttemptRepository) ExpireAttempt(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&model.AssessmentAttempt{}).
		Where("id = ? AND status = ?", id, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":       model.AttemptExpired,
			"completed_at": at,
			"active_key":   nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CompleteAttempt finalises the attempt and writes its graded answers in one transaction.
func (r *AttemptRepository) CompleteAttempt(ctx context.Context, a *model.AssessmentAttempt, answers []model.AssessmentAnswer) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.AssessmentAttempt{}).
			Where("id = ? AND status = ?", a.ID, model.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":       a.Status,
				"completed_at": a.CompletedAt,
				"score":        a.Score,
				"max_score":    a.MaxScore,
				"passed":       a.Passed,
				"active_key":   nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateConflict
		}
		if len(answers) == 0 {
			return nil
		}
		return tx.Clauses(answerUpsert("value", "is_correct", "points_earned")).Create(&answers).Error
	})
}

// SaveDraftAnswer upserts an ungraded answer while the attempt is still in progress. The attempt
// row stays locked until the answer is written so a concurrent submit cannot slip in between.
func (r *AttemptRepository) SaveDraftAnswer(ctx context.Context, ans *model.AssessmentAnswer) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt model.AssessmentAttempt
		if err := lockAttempt(tx, ans.AttemptID, &attempt); err != nil {
			return err
		}
		if attempt.Status != model.AttemptInProgress {
			return ErrStateConflict
		}
		ans.IsCorrect = nil
		ans.PointsEarned = nil
		return tx.Clauses(answerUpsert("value", "is_correct", "points_earned")).Create(ans).Error
	})
}

func lockAttempt(tx *gorm.DB, id uint, attempt *model.AssessmentAttempt) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(attempt, id).Error
}

func (r *AttemptRepository) ListAnswers(ctx context.Context, attemptID uint) ([]model.AssessmentAnswer, error) {
	var answers []model.AssessmentAnswer
	err := r.DB.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("question_id asc").
		Find(&answers).Error
	return answers, err
}

func (r *AttemptRepository) FindAnswer(ctx context.Context, attemptID, questionID uint) (*model.AssessmentAnswer, error) {
	var ans model.AssessmentAnswer
	err := r.DB.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&ans).Error
	if err != nil {
		return nil, err
	}
	return &ans, nil
}

// ApplyReview records a reviewer's verdict, recomputes the attempt score from every answer's
// points and lets decide settle the pass flag.
func (r *AttemptRepository) ApplyReview(ctx context.Context, review model.AnswerReview, decide func(score, maxScore int) bool) (*model.AssessmentAttempt, error) {
	var attempt model.AssessmentAttempt
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAttempt(tx, review.AttemptID, &attempt); err != nil {
			return err
		}
		if attempt.Status != model.AttemptCompleted {
			return ErrStateConflict
		}

		// Existence is checked up front: MySQL reports changed rows, so a re-review that
		// repeats the same values affects nothing.
		var answer model.AssessmentAnswer
		if err := tx.Select("id").
			Where("attempt_id = ? AND question_id = ?", review.AttemptID, review.QuestionID).
			First(&answer).Error; err != nil {
			return err
		}
		if err := tx.Model(&answer).Updates(map[string]interface{}{
			"is_correct":    review.IsCorrect,
			"points_earned": review.PointsEarned,
			"reviewed_by":   review.ReviewerID,
			"reviewed_at":   review.ReviewedAt,
		}).Error; err != nil {
			return err
		}

		var score int
		if err := tx.Model(&model.AssessmentAnswer{}).
			Where("attempt_id = ?", review.AttemptID).
			Select("COALESCE(SUM(points_earned), 0)").
			Scan(&score).Error; err != nil {
			return err
		}

		maxScore := 0
		if attempt.MaxScore != nil {
			maxScore = *attempt.MaxScore
		}
		passed := decide(score, maxScore)
		attempt.Score = &score
		attempt.Passed = &passed
		return tx.Model(&attempt).Updates(map[string]interface{}{
			"score":  score,
			"passed": passed,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// ListAwaitingReview lists completed attempts that still hold unreviewed short answers,
// oldest completion first.
func (r *AttemptRepository) ListAwaitingReview(ctx context.Context, limit int) ([]model.ReviewQueueItem, error) {
	var items []model.ReviewQueueItem
	query := r.DB.WithContext(ctx).
		Table("assessment_attempts AS a").
		Select("a.id AS attempt_id, a.candidate_id, a.template_id, a.job_id, a.completed_at, COUNT(ans.id) AS pending_answers").
		Joins("JOIN assessment_answers AS ans ON ans.attempt_id = a.id AND ans.deleted_at IS NULL").
		Joins("JOIN assessment_questions AS q ON q.id = ans.question_id").
		Where("a.status = ? AND a.deleted_at IS NULL", model.AttemptCompleted).
		Where("q.type = ? AND ans.is_correct IS NULL", model.QuestionShortAnswer).
		Group("a.id, a.candidate_id, a.template_id, a.job_id, a.completed_at").
		Order("a.completed_at asc, a.id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&items).Error
	return items, err
}
