package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ptdat2/Magpie/internal/model"
)

type StudentRepository interface {
	// Create inserts the student, silently doing nothing on a normalized-key
	// conflict so concurrent first sightings cannot fail; callers must
	// re-fetch when ID stays zero.
	Create(ctx context.Context, student *model.Student) error
	Update(ctx context.Context, student *model.Student) error
	FindByID(ctx context.Context, id uint) (*model.Student, error)
	FindByNormalizedEmail(ctx context.Context, email string) (*model.Student, error)
	FindByNormalizedPhone(ctx context.Context, phone string) (*model.Student, error)
	Count(ctx context.Context) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepository) FindByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).First(&student, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindByNormalizedEmail(ctx context.Context, email string) (*model.Student, error) {
	return r.findByKey(ctx, "normalized_email = ?", email)
}

func (r *studentRepository) FindByNormalizedPhone(ctx context.Context, phone string) (*model.Student, error) {
	return r.findByKey(ctx, "normalized_phone = ?", phone)
}

func (r *studentRepository) findByKey(ctx context.Context, cond string, value string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).Where(cond, value).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).Count(&n).Error
	return n, err
}
