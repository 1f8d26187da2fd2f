package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ptdat2/Magpie/internal/model"
)

// MaintenanceRepository holds destructive operational helpers that do not
// belong to any one aggregate.
type MaintenanceRepository interface {
	// Reset hard-deletes all ingested data so a fresh import can start from
	// a clean slate. Child tables go first to keep foreign keys satisfied.
	Reset(ctx context.Context) error
}

type maintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) Reset(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&model.Flag{},
			&model.Score{},
			&model.Attempt{},
			&model.Student{},
			&model.Test{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
