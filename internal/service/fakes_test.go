package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ptdat2/Magpie/internal/model"
	"github.com/ptdat2/Magpie/internal/repository"
)

// In-memory fakes mirroring the gorm repositories, including the swallowed
// insert conflicts and the preloads the services rely on.

type fakeStudentRepo struct {
	mu     sync.Mutex
	rows   map[uint]model.Student
	nextID uint
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{rows: make(map[uint]model.Student), nextID: 1}
}

func (f *fakeStudentRepo) Create(_ context.Context, student *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if student.NormalizedEmail != nil && row.NormalizedEmail != nil && *student.NormalizedEmail == *row.NormalizedEmail {
			return nil // conflict swallowed, ID stays zero
		}
		if student.NormalizedPhone != nil && row.NormalizedPhone != nil && *student.NormalizedPhone == *row.NormalizedPhone {
			return nil
		}
	}
	student.ID = f.nextID
	f.nextID++
	student.CreatedAt = time.Now()
	f.rows[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id uint) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &row, nil
}

func (f *fakeStudentRepo) FindByNormalizedEmail(_ context.Context, email string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.NormalizedEmail != nil && *row.NormalizedEmail == email {
			c := row
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeStudentRepo) FindByNormalizedPhone(_ context.Context, phone string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.NormalizedPhone != nil && *row.NormalizedPhone == phone {
			c := row
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeStudentRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeTestRepo struct {
	mu     sync.Mutex
	rows   map[uint]model.Test
	nextID uint
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{rows: make(map[uint]model.Test), nextID: 1}
}

func (f *fakeTestRepo) Create(_ context.Context, test *model.Test) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Name == test.Name {
			return nil
		}
	}
	test.ID = f.nextID
	f.nextID++
	test.CreatedAt = time.Now()
	f.rows[test.ID] = *test
	return nil
}

func (f *fakeTestRepo) FindByID(_ context.Context, id uint) (*model.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &row, nil
}

func (f *fakeTestRepo) FindByName(_ context.Context, name string) (*model.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Name == name {
			c := row
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeTestRepo) FindAll(_ context.Context) ([]model.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tests := make([]model.Test, 0, len(f.rows))
	for _, row := range f.rows {
		tests = append(tests, row)
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].Name < tests[j].Name })
	return tests, nil
}

func (f *fakeTestRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeScoreRepo struct {
	mu     sync.Mutex
	rows   map[uint]model.Score // keyed by attempt ID
	nextID uint
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{rows: make(map[uint]model.Score), nextID: 1}
}

func (f *fakeScoreRepo) Upsert(_ context.Context, score *model.Score) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.rows[score.AttemptID]; ok {
		score.ID = existing.ID
	} else {
		score.ID = f.nextID
		f.nextID++
	}
	f.rows[score.AttemptID] = *score
	return nil
}

func (f *fakeScoreRepo) FindByAttemptID(_ context.Context, attemptID uint) (*model.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[attemptID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &row, nil
}

type fakeFlagRepo struct {
	mu       sync.Mutex
	rows     []model.Flag
	nextID   uint
	attempts *fakeAttemptRepo
}

func newFakeFlagRepo() *fakeFlagRepo {
	return &fakeFlagRepo{nextID: 1}
}

func (f *fakeFlagRepo) Append(_ context.Context, flag *model.Flag, transition bool) error {
	f.mu.Lock()
	flag.ID = f.nextID
	f.nextID++
	flag.CreatedAt = time.Now()
	f.rows = append(f.rows, *flag)
	f.mu.Unlock()

	if transition {
		return f.attempts.UpdateStatus(context.Background(), flag.AttemptID, model.StatusFlagged)
	}
	return nil
}

func (f *fakeFlagRepo) FindByAttemptID(_ context.Context, attemptID uint) ([]model.Flag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var flags []model.Flag
	for _, row := range f.rows {
		if row.AttemptID == attemptID {
			flags = append(flags, row)
		}
	}
	return flags, nil
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	rows     map[uint]model.Attempt
	nextID   uint
	students *fakeStudentRepo
	tests    *fakeTestRepo
	scores   *fakeScoreRepo
	flags    *fakeFlagRepo
}

func newFakeAttemptRepo(students *fakeStudentRepo, tests *fakeTestRepo, scores *fakeScoreRepo, flags *fakeFlagRepo) *fakeAttemptRepo {
	return &fakeAttemptRepo{
		rows:     make(map[uint]model.Attempt),
		nextID:   1,
		students: students,
		tests:    tests,
		scores:   scores,
		flags:    flags,
	}
}

func (f *fakeAttemptRepo) Create(_ context.Context, attempt *model.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.SourceEventID == attempt.SourceEventID {
			return model.ErrDuplicateEvent
		}
	}
	attempt.ID = f.nextID
	f.nextID++
	attempt.CreatedAt = time.Now()
	f.rows[attempt.ID] = *attempt
	return nil
}

func (f *fakeAttemptRepo) CreateWithScore(ctx context.Context, attempt *model.Attempt, score *model.Score) error {
	if err := f.Create(ctx, attempt); err != nil {
		return err
	}
	score.AttemptID = attempt.ID
	return f.scores.Upsert(ctx, score)
}

func (f *fakeAttemptRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return model.ErrNotFound
	}
	row.Status = status
	f.rows[id] = row
	return nil
}

func (f *fakeAttemptRepo) FindByID(_ context.Context, id uint) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &row, nil
}

func (f *fakeAttemptRepo) FindByIDWithDetails(ctx context.Context, id uint) (*model.Attempt, error) {
	attempt, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.preload(attempt)
	flags, _ := f.flags.FindByAttemptID(ctx, id)
	attempt.Flags = flags
	return attempt, nil
}

func (f *fakeAttemptRepo) FindBySourceEventID(_ context.Context, sourceEventID string) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.SourceEventID == sourceEventID {
			c := row
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeAttemptRepo) FindCandidates(_ context.Context, studentID, testID uint, startedAt time.Time, window time.Duration) ([]model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	from, to := startedAt.Add(-window), startedAt.Add(window)
	var attempts []model.Attempt
	for _, row := range f.rows {
		if row.StudentID != studentID || row.TestID != testID {
			continue
		}
		if row.StartedAt.Before(from) || row.StartedAt.After(to) {
			continue
		}
		attempts = append(attempts, row)
	}
	sortByStartedThenID(attempts)
	return attempts, nil
}

func (f *fakeAttemptRepo) FindDuplicatesOf(_ context.Context, canonicalID uint) ([]model.Attempt, error) {
	f.mu.Lock()
	var attempts []model.Attempt
	for _, row := range f.rows {
		if row.DuplicateOfAttemptID != nil && *row.DuplicateOfAttemptID == canonicalID {
			attempts = append(attempts, row)
		}
	}
	f.mu.Unlock()

	sortByStartedThenID(attempts)
	for i := range attempts {
		f.preload(&attempts[i])
	}
	return attempts, nil
}

func (f *fakeAttemptRepo) FindScoredByTest(_ context.Context, testID uint) ([]model.Attempt, error) {
	f.mu.Lock()
	var attempts []model.Attempt
	for _, row := range f.rows {
		if row.TestID == testID && (row.Status == model.StatusScored || row.Status == model.StatusFlagged) {
			attempts = append(attempts, row)
		}
	}
	f.mu.Unlock()

	sort.Slice(attempts, func(i, j int) bool { return attempts[i].ID < attempts[j].ID })
	for i := range attempts {
		f.preload(&attempts[i])
	}
	return attempts, nil
}

func (f *fakeAttemptRepo) List(ctx context.Context, filter repository.AttemptFilter) ([]model.Attempt, int64, error) {
	f.mu.Lock()
	var matched []model.Attempt
	for _, row := range f.rows {
		if filter.TestID != nil && row.TestID != *filter.TestID {
			continue
		}
		if filter.StudentID != nil && row.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		if filter.HasDuplicates != nil && *filter.HasDuplicates != (row.DuplicateOfAttemptID != nil) {
			continue
		}
		if filter.DateFrom != nil && row.StartedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && row.StartedAt.After(*filter.DateTo) {
			continue
		}
		if filter.Search != "" && !f.studentMatches(row.StudentID, filter.Search) {
			continue
		}
		matched = append(matched, row)
	}
	f.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartedAt.Equal(matched[j].StartedAt) {
			return matched[i].StartedAt.After(matched[j].StartedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	matched = matched[start:end]

	for i := range matched {
		f.preload(&matched[i])
		flags, _ := f.flags.FindByAttemptID(ctx, matched[i].ID)
		matched[i].Flags = flags
	}
	return matched, total, nil
}

func (f *fakeAttemptRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, row := range f.rows {
		counts[row.Status]++
	}
	return counts, nil
}

// studentMatches mimics the ILIKE search over joined student fields.
func (f *fakeAttemptRepo) studentMatches(studentID uint, search string) bool {
	f.students.mu.Lock()
	defer f.students.mu.Unlock()
	row, ok := f.students.rows[studentID]
	if !ok {
		return false
	}
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(row.FullName), needle) {
		return true
	}
	if row.Email != nil && strings.Contains(strings.ToLower(*row.Email), needle) {
		return true
	}
	if row.Phone != nil && strings.Contains(strings.ToLower(*row.Phone), needle) {
		return true
	}
	return false
}

func (f *fakeAttemptRepo) preload(attempt *model.Attempt) {
	if student, err := f.students.FindByID(context.Background(), attempt.StudentID); err == nil {
		attempt.Student = *student
	}
	if test, err := f.tests.FindByID(context.Background(), attempt.TestID); err == nil {
		attempt.Test = *test
	}
	if score, err := f.scores.FindByAttemptID(context.Background(), attempt.ID); err == nil {
		attempt.Score = score
	}
}

func sortByStartedThenID(attempts []model.Attempt) {
	sort.Slice(attempts, func(i, j int) bool {
		if !attempts[i].StartedAt.Equal(attempts[j].StartedAt) {
			return attempts[i].StartedAt.Before(attempts[j].StartedAt)
		}
		return attempts[i].ID < attempts[j].ID
	})
}

type fakeMaintenanceRepo struct {
	fx *fixture
}

func (f *fakeMaintenanceRepo) Reset(_ context.Context) error {
	f.fx.flags.mu.Lock()
	f.fx.flags.rows = nil
	f.fx.flags.mu.Unlock()
	f.fx.scores.mu.Lock()
	f.fx.scores.rows = make(map[uint]model.Score)
	f.fx.scores.mu.Unlock()
	f.fx.attempts.mu.Lock()
	f.fx.attempts.rows = make(map[uint]model.Attempt)
	f.fx.attempts.mu.Unlock()
	f.fx.students.mu.Lock()
	f.fx.students.rows = make(map[uint]model.Student)
	f.fx.students.mu.Unlock()
	f.fx.tests.mu.Lock()
	f.fx.tests.rows = make(map[uint]model.Test)
	f.fx.tests.mu.Unlock()
	return nil
}

// fixture wires one consistent set of fakes for a test.
type fixture struct {
	students *fakeStudentRepo
	tests    *fakeTestRepo
	scores   *fakeScoreRepo
	flags    *fakeFlagRepo
	attempts *fakeAttemptRepo
}

func newFixture() *fixture {
	students := newFakeStudentRepo()
	tests := newFakeTestRepo()
	scores := newFakeScoreRepo()
	flags := newFakeFlagRepo()
	attempts := newFakeAttemptRepo(students, tests, scores, flags)
	flags.attempts = attempts
	return &fixture{students: students, tests: tests, scores: scores, flags: flags, attempts: attempts}
}

func (f *fixture) identityService() IdentityService {
	return NewIdentityService(f.students, f.tests)
}

func (f *fixture) ingestService() IngestService {
	return NewIngestService(f.identityService(), f.attempts, dedupEngine(), 0, NewKeyLocks(), nil)
}

func (f *fixture) attemptService() AttemptService {
	return NewAttemptService(f.attempts, f.scores, f.flags, f.tests, f.students, NewKeyLocks(), nil)
}

func (f *fixture) uploadService() UploadService {
	return NewUploadService(f.ingestService(), &fakeMaintenanceRepo{fx: f})
}
