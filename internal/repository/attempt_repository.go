package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ptdat2/Magpie/internal/model"
)

// AttemptFilter narrows and pages the attempt listing.
type AttemptFilter struct {
	TestID        *uint
	StudentID     *uint
	Status        *string
	HasDuplicates *bool
	DateFrom      *time.Time
	DateTo        *time.Time
	Search        string
	Page          int
	PageSize      int
}

type AttemptRepository interface {
	// Create persists a single attempt row (used for DEDUPED attempts,
	// which carry no score).
	Create(ctx context.Context, attempt *model.Attempt) error
	// CreateWithScore persists the attempt and its score atomically.
	CreateWithScore(ctx context.Context, attempt *model.Attempt, score *model.Score) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	FindByID(ctx context.Context, id uint) (*model.Attempt, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*model.Attempt, error)
	FindBySourceEventID(ctx context.Context, sourceEventID string) (*model.Attempt, error)
	// FindCandidates returns same-student same-test attempts started within
	// [startedAt-window, startedAt+window], both ends inclusive, ordered by
	// started_at then id. All statuses are returned so the dedup engine can
	// hop a DEDUPED candidate to its canonical root.
	FindCandidates(ctx context.Context, studentID, testID uint, startedAt time.Time, window time.Duration) ([]model.Attempt, error)
	// FindDuplicatesOf returns the attempts folded into the given canonical.
	FindDuplicatesOf(ctx context.Context, canonicalID uint) ([]model.Attempt, error)
	// FindScoredByTest returns scored (and flagged) attempts of a test with
	// Student and Score loaded, for ranking.
	FindScoredByTest(ctx context.Context, testID uint) ([]model.Attempt, error)
	List(ctx context.Context, filter AttemptFilter) ([]model.Attempt, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return dupEventErr(r.db.WithContext(ctx).Create(attempt).Error)
}

func (r *attemptRepository) CreateWithScore(ctx context.Context, attempt *model.Attempt, score *model.Score) error {
	return dupEventErr(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		score.AttemptID = attempt.ID
		return tx.Create(score).Error
	}))
}

// dupEventErr maps the source_event_id unique violation, the only duplicated
// key an attempt insert can hit, onto the domain error.
func dupEventErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrDuplicateEvent
	}
	return err
}

func (r *attemptRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *attemptRepository) FindByID(ctx context.Context, id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).First(&attempt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithDetails(ctx context.Context, id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Test").
		Preload("Score").
		Preload("Flags").
		First(&attempt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindBySourceEventID(ctx context.Context, sourceEventID string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Where("source_event_id = ?", sourceEventID).
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindCandidates(ctx context.Context, studentID, testID uint, startedAt time.Time, window time.Duration) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Where("started_at BETWEEN ? AND ?", startedAt.Add(-window), startedAt.Add(window)).
		Order("started_at ASC, id ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindDuplicatesOf(ctx context.Context, canonicalID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Score").
		Where("duplicate_of_attempt_id = ?", canonicalID).
		Order("started_at ASC, id ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindScoredByTest(ctx context.Context, testID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Score").
		Where("test_id = ? AND status IN ?", testID, []string{model.StatusScored, model.StatusFlagged}).
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) List(ctx context.Context, filter AttemptFilter) ([]model.Attempt, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Attempt{})

	if filter.TestID != nil {
		query = query.Where("attempts.test_id = ?", *filter.TestID)
	}
	if filter.StudentID != nil {
		query = query.Where("attempts.student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("attempts.status = ?", *filter.Status)
	}
	if filter.HasDuplicates != nil {
		if *filter.HasDuplicates {
			query = query.Where("attempts.duplicate_of_attempt_id IS NOT NULL")
		} else {
			query = query.Where("attempts.duplicate_of_attempt_id IS NULL")
		}
	}
	if filter.DateFrom != nil {
		query = query.Where("attempts.started_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("attempts.started_at <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.
			Joins("JOIN students ON students.id = attempts.student_id").
			Where("students.full_name ILIKE ? OR students.email ILIKE ? OR students.phone ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var attempts []model.Attempt
	err := query.
		Preload("Student").
		Preload("Test").
		Preload("Score").
		Preload("Flags").
		Order("attempts.started_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *attemptRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
