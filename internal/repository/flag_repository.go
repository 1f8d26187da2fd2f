package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ptdat2/Magpie/internal/model"
)

type FlagRepository interface {
	// Append records the flag and, when transition is set, moves the attempt
	// to FLAGGED in the same transaction.
	Append(ctx context.Context, flag *model.Flag, transition bool) error
	FindByAttemptID(ctx context.Context, attemptID uint) ([]model.Flag, error)
}

type flagRepository struct {
	db *gorm.DB
}

func NewFlagRepository(db *gorm.DB) FlagRepository {
	return &flagRepository{db: db}
}

func (r *flagRepository) Append(ctx context.Context, flag *model.Flag, transition bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(flag).Error; err != nil {
			return err
		}
		if !transition {
			return nil
		}
		return tx.Model(&model.Attempt{}).
			Where("id = ?", flag.AttemptID).
			Update("status", model.StatusFlagged).Error
	})
}

func (r *flagRepository) FindByAttemptID(ctx context.Context, attemptID uint) ([]model.Flag, error) {
	var flags []model.Flag
	err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&flags).Error
	return flags, err
}
