package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ptdat2/Magpie/internal/dedup"
	"github.com/ptdat2/Magpie/internal/dto"
	"github.com/ptdat2/Magpie/internal/metrics"
	"github.com/ptdat2/Magpie/internal/model"
	"github.com/ptdat2/Magpie/internal/repository"
	"github.com/ptdat2/Magpie/internal/scoring"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// Per-event outcomes reported in ingest results. SCORED and DEDUPED mirror the
// attempt statuses; SKIPPED and ERROR describe events that produced no new
// attempt.
const (
	ResultScored  = model.StatusScored
	ResultDeduped = model.StatusDeduped
	ResultSkipped = "SKIPPED"
	ResultError   = "ERROR"
)

// IngestService runs attempt events through the full pipeline: idempotency
// check, identity resolution, duplicate detection, scoring.
type IngestService interface {
	IngestBatch(ctx context.Context, events []dto.AttemptEvent) *dto.IngestResponse
	IngestOne(ctx context.Context, event dto.AttemptEvent) dto.EventResult
}

type ingestService struct {
	identity    IdentityService
	attemptRepo repository.AttemptRepository
	engine      *dedup.Engine
	window      time.Duration
	locks       *KeyLocks
	metrics     *metrics.IngestMetrics
}

func NewIngestService(
	identity IdentityService,
	attemptRepo repository.AttemptRepository,
	engine *dedup.Engine,
	window time.Duration,
	locks *KeyLocks,
	m *metrics.IngestMetrics,
) IngestService {
	if window <= 0 {
		window = dedup.DefaultWindow
	}
	return &ingestService{
		identity:    identity,
		attemptRepo: attemptRepo,
		engine:      engine,
		window:      window,
		locks:       locks,
		metrics:     m,
	}
}

func (s *ingestService) IngestBatch(ctx context.Context, events []dto.AttemptEvent) *dto.IngestResponse {
	start := time.Now()
	resp := &dto.IngestResponse{Results: make([]dto.EventResult, 0, len(events))}

	for i := range events {
		tally(resp, s.IngestOne(ctx, events[i]))
	}

	s.metrics.ObserveBatch(len(events), time.Since(start))
	zerolog.Ctx(ctx).Info().
		Int("events", len(events)).
		Int("ingested", resp.Ingested).
		Int("duplicates", resp.Duplicates).
		Int("errors", resp.Errors).
		Int("skipped", resp.Skipped).
		Dur("took", time.Since(start)).
		Msg("IngestBatch: batch complete")
	return resp
}

func (s *ingestService) IngestOne(ctx context.Context, event dto.AttemptEvent) dto.EventResult {
	result := s.processEvent(ctx, event)
	s.metrics.RecordEvent(outcomeLabel(result.Status))
	return result
}

func (s *ingestService) processEvent(ctx context.Context, event dto.AttemptEvent) dto.EventResult {
	logger := zerolog.Ctx(ctx)
	result := dto.EventResult{SourceEventID: event.SourceEventID}

	startedAt, err := requireEventTime(event.StartedAt)
	if err != nil {
		result.Status = ResultError
		result.Message = fmt.Sprintf("malformed started_at: %v", err)
		return result
	}
	submittedAt := optionalEventTime(event.SubmittedAt)

	student, err := s.identity.ResolveStudent(ctx, event.Student.FullName, event.Student.Email, event.Student.Phone)
	if err != nil {
		if err == model.ErrNoIdentity {
			result.Status = ResultError
			result.Message = "student must have at least one valid contact field (email or phone)"
			return result
		}
		logger.Error().Err(err).Str("sourceEventID", event.SourceEventID).Msg("IngestOne: failed to resolve student")
		result.Status = ResultError
		result.Message = fmt.Sprintf("failed to resolve student: %v", err)
		return result
	}

	test, err := s.identity.ResolveTest(ctx, event.Test.Name, event.Test.MaxMarks, event.Test.MarkingScheme)
	if err != nil {
		logger.Error().Err(err).Str("sourceEventID", event.SourceEventID).Msg("IngestOne: failed to resolve test")
		result.Status = ResultError
		result.Message = fmt.Sprintf("failed to resolve test: %v", err)
		return result
	}

	// Everything from the replay check to the final write happens under the
	// (student, test) lock, so two near-identical events cannot both become
	// canonical.
	unlock := s.locks.Lock(fmt.Sprintf("%d:%d", student.ID, test.ID))
	defer unlock()

	existing, err := s.attemptRepo.FindBySourceEventID(ctx, event.SourceEventID)
	if err == nil {
		result.Status = ResultSkipped
		result.AttemptID = &existing.ID
		result.Message = fmt.Sprintf("Already ingested (attempt %d)", existing.ID)
		return result
	}
	if err != model.ErrNotFound {
		logger.Error().Err(err).Str("sourceEventID", event.SourceEventID).Msg("IngestOne: replay check failed")
		result.Status = ResultError
		result.Message = fmt.Sprintf("failed to check source event: %v", err)
		return result
	}

	attempt := model.Attempt{
		SourceEventID: event.SourceEventID,
		StudentID:     student.ID,
		TestID:        test.ID,
		StartedAt:     startedAt,
		SubmittedAt:   submittedAt,
		Answers:       model.AnswerMap(event.Answers),
		Status:        model.StatusIngested,
	}
	if attempt.Answers == nil {
		attempt.Answers = model.AnswerMap{}
	}
	if event.Channel != nil {
		attempt.Channel = strings.TrimSpace(*event.Channel)
	}
	if raw, err := json.Marshal(event); err == nil {
		attempt.RawPayload = datatypes.JSON(raw)
	}

	candidates, err := s.attemptRepo.FindCandidates(ctx, student.ID, test.ID, startedAt, s.window)
	if err != nil {
		logger.Error().Err(err).Str("sourceEventID", event.SourceEventID).Msg("IngestOne: candidate lookup failed")
		result.Status = ResultError
		result.Message = fmt.Sprintf("failed to look up candidates: %v", err)
		return result
	}

	if match := s.engine.FindDuplicate(attempt.Answers, candidates); match != nil {
		attempt.Status = model.StatusDeduped
		attempt.DuplicateOfAttemptID = &match.CanonicalID
		attempt.SimilarityScore = &match.Similarity
		if err := s.attemptRepo.Create(ctx, &attempt); err != nil {
			if errors.Is(err, model.ErrDuplicateEvent) {
				return s.skippedReplay(ctx, event.SourceEventID)
			}
			logger.Error().Err(err).Str("sourceEventID", event.SourceEventID).Msg("IngestOne: failed to save duplicate attempt")
			result.Status = ResultError
			result.Message = fmt.Sprintf("failed to save attempt: %v", err)
			return result
		}
		logger.Info().
			Uint("attemptID", attempt.ID).
			Uint("canonicalID", match.CanonicalID).
			Float64("similarity", match.Similarity).
			Msg("IngestOne: attempt marked as duplicate")
		result.Status = ResultDeduped
		result.AttemptID = &attempt.ID
		result.Message = fmt.Sprintf("Duplicate of attempt %d", match.CanonicalID)
		return result
	}

	computed := scoring.Compute(attempt.Answers, test.MarkingScheme, nil)
	score := model.Score{
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

	attempt.Status = model.StatusScored
	if err := s.attemptRepo.CreateWithScore(ctx, &attempt, &score); err != nil {
		if errors.Is(err, model.ErrDuplicateEvent) {
			return s.skippedReplay(ctx, event.SourceEventID)
		}
		logger.Error().Err(err).Str("sourceEventID", event.SourceEventID).Msg("IngestOne: failed to save scored attempt")
		result.Status = ResultError
		result.Message = fmt.Sprintf("failed to save attempt: %v", err)
		return result
	}

	logger.Info().
		Uint("attemptID", attempt.ID).
		Float64("score", computed.Score).
		Int("warnings", len(computed.Warnings)).
		Msg("IngestOne: attempt scored")
	result.Status = ResultScored
	result.AttemptID = &attempt.ID
	result.Message = "Ingested and scored successfully"
	result.Warnings = computed.Warnings
	return result
}

// skippedReplay reports an event whose source_event_id already landed. The
// replay pre-check catches almost all of these; the unique index backstops
// batches racing on different (student, test) locks.
func (s *ingestService) skippedReplay(ctx context.Context, sourceEventID string) dto.EventResult {
	result := dto.EventResult{
		SourceEventID: sourceEventID,
		Status:        ResultSkipped,
		Message:       "Already ingested",
	}
	if existing, err := s.attemptRepo.FindBySourceEventID(ctx, sourceEventID); err == nil {
		result.AttemptID = &existing.ID
		result.Message = fmt.Sprintf("Already ingested (attempt %d)", existing.ID)
	}
	return result
}

// tally folds one event result into the batch counters. Events that scored
// with warnings count toward both ingested and warnings.
func tally(resp *dto.IngestResponse, result dto.EventResult) {
	resp.Results = append(resp.Results, result)
	switch result.Status {
	case ResultScored:
		resp.Ingested++
	case ResultDeduped:
		resp.Duplicates++
	case ResultSkipped:
		resp.Skipped++
	default:
		resp.Errors++
	}
	if len(result.Warnings) > 0 {
		resp.Warnings++
	}
}

func outcomeLabel(status string) string {
	switch status {
	case ResultScored:
		return metrics.OutcomeScored
	case ResultDeduped:
		return metrics.OutcomeDeduped
	case ResultSkipped:
		return metrics.OutcomeSkipped
	default:
		return metrics.OutcomeError
	}
}
