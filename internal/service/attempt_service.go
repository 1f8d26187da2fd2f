package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/ptdat2/Magpie/internal/dto"
	"github.com/ptdat2/Magpie/internal/metrics"
	"github.com/ptdat2/Magpie/internal/model"
	"github.com/ptdat2/Magpie/internal/repository"
	"github.com/ptdat2/Magpie/internal/scoring"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// AttemptService serves the review surface: inspecting attempts, recomputing
// scores, flagging, and walking duplicate threads.
type AttemptService interface {
	List(ctx context.Context, query dto.ListAttemptsQuery) (*dto.AttemptListResponse, error)
	Get(ctx context.Context, id uint) (*dto.AttemptResponse, error)
	// Recompute rescores an attempt in place. DEDUPED attempts have no score
	// of their own and yield model.ErrInvalidState.
	Recompute(ctx context.Context, id uint) (*dto.ScoreResponse, error)
	// Flag appends a review flag. The first flag moves the attempt to
	// FLAGGED; INGESTED attempts cannot be flagged.
	Flag(ctx context.Context, id uint, req dto.FlagRequest) (*dto.FlagResponse, error)
	DuplicateThread(ctx context.Context, id uint) (*dto.DuplicateThreadResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type attemptService struct {
	attemptRepo repository.AttemptRepository
	scoreRepo   repository.ScoreRepository
	flagRepo    repository.FlagRepository
	testRepo    repository.TestRepository
	studentRepo repository.StudentRepository
	locks       *KeyLocks
	metrics     *metrics.IngestMetrics
}

func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	scoreRepo repository.ScoreRepository,
	flagRepo repository.FlagRepository,
	testRepo repository.TestRepository,
	studentRepo repository.StudentRepository,
	locks *KeyLocks,
	m *metrics.IngestMetrics,
) AttemptService {
	return &attemptService{
		attemptRepo: attemptRepo,
		scoreRepo:   scoreRepo,
		flagRepo:    flagRepo,
		testRepo:    testRepo,
		studentRepo: studentRepo,
		locks:       locks,
		metrics:     m,
	}
}

func (s *attemptService) List(ctx context.Context, query dto.ListAttemptsQuery) (*dto.AttemptListResponse, error) {
	filter := repository.AttemptFilter{
		TestID:        query.TestID,
		StudentID:     query.StudentID,
		Status:        query.Status,
		HasDuplicates: query.HasDuplicates,
		Search:        query.Search,
		Page:          query.Page,
		PageSize:      query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	// Unparseable date filters are ignored rather than rejected.
	if query.DateFrom != nil {
		if t, ok := parseEventTime(*query.DateFrom); ok {
			filter.DateFrom = &t
		}
	}
	if query.DateTo != nil {
		if t, ok := parseEventTime(*query.DateTo); ok {
			filter.DateTo = &t
		}
	}

	attempts, total, err := s.attemptRepo.List(ctx, filter)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("List: failed to list attempts")
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	items := make([]dto.AttemptResponse, 0, len(attempts))
	for i := range attempts {
		items = append(items, toAttemptResponse(&attempts[i]))
	}
	return &dto.AttemptListResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *attemptService) Get(ctx context.Context, id uint) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAttemptResponse(attempt)
	return &resp, nil
}

func (s *attemptService) Recompute(ctx context.Context, id uint) (*dto.ScoreResponse, error) {
	unlock := s.locks.Lock(fmt.Sprintf("attempt:%d", id))
	defer unlock()

	attempt, err := s.attemptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.StatusDeduped {
		s.metrics.RecordRecompute("rejected")
		return nil, fmt.Errorf("attempt %d is a duplicate and has no score: %w", id, model.ErrInvalidState)
	}

	test, err := s.testRepo.FindByID(ctx, attempt.TestID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint("attemptID", id).Uint("testID", attempt.TestID).Msg("Recompute: failed to load test")
		return nil, fmt.Errorf("failed to load test %d: %w", attempt.TestID, err)
	}

	computed := scoring.Compute(attempt.Answers, test.MarkingScheme, nil)
	score := model.Score{
		AttemptID:      id,
		CorrectCount:   computed.Correct,
		WrongCount:     computed.Wrong,
		SkippedCount:   computed.Skipped,
		TotalQuestions: computed.TotalQuestions,
		Score:          computed.Score,
		Accuracy:       computed.Accuracy,
		NetCorrect:     computed.NetCorrect,
		ComputedAt:     time.Now().UTC(),
	}
	if explanation, err := computed.Explanation(); err == nil {
		score.Explanation = datatypes.JSON(explanation)
	}

	if err := s.scoreRepo.Upsert(ctx, &score); err != nil {
		s.metrics.RecordRecompute("error")
		zerolog.Ctx(ctx).Error().Err(err).Uint("attemptID", id).Msg("Recompute: failed to upsert score")
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	// A flagged attempt stays flagged across recomputes.
	if attempt.Status != model.StatusScored && attempt.Status != model.StatusFlagged {
		if err := s.attemptRepo.UpdateStatus(ctx, id, model.StatusScored); err != nil {
			s.metrics.RecordRecompute("error")
			return nil, fmt.Errorf("failed to update attempt status: %w", err)
		}
	}

	s.metrics.RecordRecompute("ok")
	zerolog.Ctx(ctx).Info().Uint("attemptID", id).Float64("score", computed.Score).Msg("Recompute: score recomputed")
	return toScoreResponse(&score), nil
}

func (s *attemptService) Flag(ctx context.Context, id uint, req dto.FlagRequest) (*dto.FlagResponse, error) {
	unlock := s.locks.Lock(fmt.Sprintf("attempt:%d", id))
	defer unlock()

	attempt, err := s.attemptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.StatusIngested {
		return nil, fmt.Errorf("attempt %d has not been classified yet: %w", id, model.ErrInvalidState)
	}

	flag := model.Flag{
		AttemptID: id,
		Reason:    req.Reason,
		FlaggedBy: req.FlaggedBy,
	}
	transition := attempt.Status != model.StatusFlagged
	if err := s.flagRepo.Append(ctx, &flag, transition); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint("attemptID", id).Msg("Flag: failed to append flag")
		return nil, fmt.Errorf("failed to flag attempt: %w", err)
	}

	s.metrics.RecordFlag()
	zerolog.Ctx(ctx).Info().Uint("attemptID", id).Bool("transitioned", transition).Msg("Flag: attempt flagged")
	var resp dto.FlagResponse
	copier.Copy(&resp, &flag)
	return &resp, nil
}

func (s *attemptService) DuplicateThread(ctx context.Context, id uint) (*dto.DuplicateThreadResponse, error) {
	attempt, err := s.attemptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	canonicalID := attempt.ID
	if attempt.DuplicateOfAttemptID != nil {
		canonicalID = *attempt.DuplicateOfAttemptID
	}

	canonical, err := s.attemptRepo.FindByIDWithDetails(ctx, canonicalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canonical attempt %d: %w", canonicalID, err)
	}
	duplicates, err := s.attemptRepo.FindDuplicatesOf(ctx, canonicalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load duplicates of attempt %d: %w", canonicalID, err)
	}

	resp := &dto.DuplicateThreadResponse{
		Canonical:  toAttemptResponse(canonical),
		Duplicates: make([]dto.AttemptResponse, 0, len(duplicates)),
	}
	for i := range duplicates {
		resp.Duplicates = append(resp.Duplicates, toAttemptResponse(&duplicates[i]))
	}
	return resp, nil
}

func (s *attemptService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	students, err := s.studentRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	tests, err := s.testRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tests: %w", err)
	}
	byStatus, err := s.attemptRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}
	rate := 0.0
	if total > 0 {
		rate = float64(byStatus[model.StatusDeduped]) / float64(total)
	}

	return &dto.StatsResponse{
		Students:      students,
		Tests:         tests,
		Attempts:      total,
		ByStatus:      byStatus,
		DuplicateRate: rate,
	}, nil
}

func toAttemptResponse(attempt *model.Attempt) dto.AttemptResponse {
	var resp dto.AttemptResponse
	copier.Copy(&resp, attempt)

	resp.Student = nil
	if attempt.Student.ID != 0 {
		var student dto.StudentResponse
		copier.Copy(&student, &attempt.Student)
		resp.Student = &student
	}
	resp.Test = nil
	if attempt.Test.ID != 0 {
		var test dto.TestResponse
		copier.Copy(&test, &attempt.Test)
		resp.Test = &test
	}
	resp.Score = toScoreResponse(attempt.Score)
	resp.Flags = make([]dto.FlagResponse, 0, len(attempt.Flags))
	for i := range attempt.Flags {
		var f dto.FlagResponse
		copier.Copy(&f, &attempt.Flags[i])
		resp.Flags = append(resp.Flags, f)
	}
	return resp
}

func toScoreResponse(score *model.Score) *dto.ScoreResponse {
	if score == nil {
		return nil
	}
	resp := &dto.ScoreResponse{
		AttemptID:      score.AttemptID,
		Correct:        score.CorrectCount,
		Wrong:          score.WrongCount,
		Skipped:        score.SkippedCount,
		TotalQuestions: score.TotalQuestions,
		Accuracy:       score.Accuracy,
		NetCorrect:     score.NetCorrect,
		Score:          score.Score,
		ComputedAt:     score.ComputedAt,
	}
	if len(score.Explanation) > 0 {
		var explanation any
		if err := json.Unmarshal(score.Explanation, &explanation); err == nil {
			resp.Explanation = explanation
		}
	}
	return resp
}
