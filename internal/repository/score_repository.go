package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ptdat2/Magpie/internal/model"
)

type ScoreRepository interface {
	// Upsert writes the score keyed by attempt_id, replacing any earlier
	// computation for the same attempt.
	Upsert(ctx context.Context, score *model.Score) error
	FindByAttemptID(ctx context.Context, attemptID uint) (*model.Score, error)
}

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Upsert(ctx context.Context, score *model.Score) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"correct_count", "wrong_count", "skipped_count", "total_questions",
				"score", "accuracy", "net_correct", "explanation", "computed_at", "updated_at",
			}),
		}).
		Create(score).Error
}

func (r *scoreRepository) FindByAttemptID(ctx context.Context, attemptID uint) (*model.Score, error) {
	var score model.Score
	err := r.db.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}
