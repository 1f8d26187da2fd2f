package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/ptdat2/Magpie/internal/dedup"
	"github.com/ptdat2/Magpie/internal/dto"
	"github.com/ptdat2/Magpie/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dedupEngine() *dedup.Engine {
	return dedup.NewEngine(0)
}

func strPtr(s string) *string {
	return &s
}

func markingScheme(correct, wrong, skip float64) model.MarkingScheme {
	return model.MarkingScheme{Correct: &correct, Wrong: &wrong, Skip: &skip}
}

func answerSheet(n int, value string) map[string]string {
	answers := make(map[string]string, n)
	for i := 1; i <= n; i++ {
		answers[strconv.Itoa(i)] = value
	}
	return answers
}

// baseEvent is a well-formed event for one student and one test; tests tweak
// copies of it.
func baseEvent(sourceID string) dto.AttemptEvent {
	return dto.AttemptEvent{
		SourceEventID: sourceID,
		Student: dto.StudentPayload{
			FullName: "anjali kumar",
			Email:    strPtr("Anjali.Kumar+prep@gmail.com"),
			Phone:    strPtr("+91-98765-43210"),
		},
		Test: dto.TestPayload{
			Name:          "JEE Main Mock 1",
			MaxMarks:      300,
			MarkingScheme: markingScheme(4, -1, 0),
		},
		StartedAt:   strPtr("2026-01-10T09:00:00Z"),
		SubmittedAt: strPtr("2026-01-10T12:00:00Z"),
		Answers:     answerSheet(20, "A"),
		Channel:     strPtr("web"),
	}
}

func TestIngestOneScoresNewAttempt(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	result := svc.IngestOne(context.Background(), baseEvent("evt-1"))

	require.Equal(t, ResultScored, result.Status, "a fresh event should score")
	require.NotNil(t, result.AttemptID)
	assert.Equal(t, "Ingested and scored successfully", result.Message)
	assert.Empty(t, result.Warnings, "complete scheme should produce no warnings")

	attempt, err := fx.attempts.FindByID(context.Background(), *result.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusScored, attempt.Status)
	assert.Equal(t, "evt-1", attempt.SourceEventID)
	assert.NotEmpty(t, attempt.RawPayload, "original event should be kept for audit")

	score, err := fx.scores.FindByAttemptID(context.Background(), attempt.ID)
	require.NoError(t, err)
	// No answer key, so every non-skip answer counts as correct.
	assert.Equal(t, 20, score.CorrectCount)
	assert.Equal(t, 0, score.WrongCount)
	assert.InDelta(t, 80.0, score.Score, 1e-9)
	assert.InDelta(t, 100.0, score.Accuracy, 1e-9)
	assert.Equal(t, 20, score.NetCorrect)
	assert.NotEmpty(t, score.Explanation)
}

func TestIngestOneRejectsMalformedStartedAt(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	event := baseEvent("evt-bad-ts")
	event.StartedAt = strPtr("not-a-timestamp")
	result := svc.IngestOne(context.Background(), event)

	require.Equal(t, ResultError, result.Status)
	assert.Contains(t, result.Message, "started_at")
	assert.Nil(t, result.AttemptID)

	event.SourceEventID = "evt-missing-ts"
	event.StartedAt = nil
	result = svc.IngestOne(context.Background(), event)
	assert.Equal(t, ResultError, result.Status, "missing started_at is an error, not a default")

	counts, err := fx.attempts.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts, "failed events must not persist attempts")
}

func TestIngestOneRejectsEventWithoutUsableIdentity(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	event := baseEvent("evt-no-id")
	event.Student.Email = strPtr("not-an-email")
	event.Student.Phone = strPtr("12345") // fewer than ten digits
	result := svc.IngestOne(context.Background(), event)

	require.Equal(t, ResultError, result.Status)
	assert.Contains(t, result.Message, "contact")

	students, err := fx.students.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, students)
}

func TestIngestOneSkipsReplayedEvent(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	first := svc.IngestOne(context.Background(), baseEvent("evt-1"))
	require.Equal(t, ResultScored, first.Status)

	replay := baseEvent("evt-1")
	replay.Answers = answerSheet(5, "D") // payload differences do not matter
	second := svc.IngestOne(context.Background(), replay)

	require.Equal(t, ResultSkipped, second.Status)
	require.NotNil(t, second.AttemptID)
	assert.Equal(t, *first.AttemptID, *second.AttemptID)
	assert.Equal(t, fmt.Sprintf("Already ingested (attempt %d)", *first.AttemptID), second.Message)

	counts, err := fx.attempts.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.StatusScored], "replay must not create a second attempt")
}

// blindReplayRepo never sees earlier events in the pre-check, simulating a
// replay racing in from another batch between the check and the insert.
type blindReplayRepo struct {
	*fakeAttemptRepo
}

func (r *blindReplayRepo) FindBySourceEventID(context.Context, string) (*model.Attempt, error) {
	return nil, model.ErrNotFound
}

func TestIngestOneSkipsReplayCaughtByUniqueIndex(t *testing.T) {
	fx := newFixture()
	svc := NewIngestService(fx.identityService(), &blindReplayRepo{fx.attempts}, dedupEngine(), 0, NewKeyLocks(), nil)

	first := svc.IngestOne(context.Background(), baseEvent("evt-1"))
	require.Equal(t, ResultScored, first.Status)

	second := svc.IngestOne(context.Background(), baseEvent("evt-1"))
	require.Equal(t, ResultSkipped, second.Status, "insert conflict must degrade to a skip, not an error")

	counts, err := fx.attempts.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.StatusScored])
}

func TestIngestOneMarksNearDuplicateInsideWindow(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	first := svc.IngestOne(context.Background(), baseEvent("evt-1"))
	require.Equal(t, ResultScored, first.Status)

	retry := baseEvent("evt-2")
	retry.StartedAt = strPtr("2026-01-10T09:05:00Z")
	result := svc.IngestOne(context.Background(), retry)

	require.Equal(t, ResultDeduped, result.Status)
	assert.Equal(t, fmt.Sprintf("Duplicate of attempt %d", *first.AttemptID), result.Message)

	attempt, err := fx.attempts.FindByID(context.Background(), *result.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeduped, attempt.Status)
	require.NotNil(t, attempt.DuplicateOfAttemptID)
	assert.Equal(t, *first.AttemptID, *attempt.DuplicateOfAttemptID)
	require.NotNil(t, attempt.SimilarityScore)
	assert.InDelta(t, 1.0, *attempt.SimilarityScore, 1e-9)

	_, err = fx.scores.FindByAttemptID(context.Background(), attempt.ID)
	assert.ErrorIs(t, err, model.ErrNotFound, "duplicates carry no score of their own")
}

func TestIngestOneScoresRetryOutsideWindow(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	require.Equal(t, ResultScored, svc.IngestOne(context.Background(), baseEvent("evt-1")).Status)

	retry := baseEvent("evt-2")
	retry.StartedAt = strPtr("2026-01-10T09:08:00Z") // one minute past the window
	result := svc.IngestOne(context.Background(), retry)

	assert.Equal(t, ResultScored, result.Status)
}

func TestIngestOneWindowBoundaryIsInclusive(t *testing.T) {
	t.Run("exactly seven minutes apart dedupes", func(t *testing.T) {
		fx := newFixture()
		svc := fx.ingestService()
		require.Equal(t, ResultScored, svc.IngestOne(context.Background(), baseEvent("evt-1")).Status)

		retry := baseEvent("evt-2")
		retry.StartedAt = strPtr("2026-01-10T09:07:00Z")
		assert.Equal(t, ResultDeduped, svc.IngestOne(context.Background(), retry).Status)
	})

	t.Run("one second past seven minutes scores", func(t *testing.T) {
		fx := newFixture()
		svc := fx.ingestService()
		require.Equal(t, ResultScored, svc.IngestOne(context.Background(), baseEvent("evt-1")).Status)

		retry := baseEvent("evt-2")
		retry.StartedAt = strPtr("2026-01-10T09:07:01Z")
		assert.Equal(t, ResultScored, svc.IngestOne(context.Background(), retry).Status)
	})
}

func TestIngestOneScoresDissimilarAttemptInsideWindow(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	require.Equal(t, ResultScored, svc.IngestOne(context.Background(), baseEvent("evt-1")).Status)

	other := baseEvent("evt-2")
	other.StartedAt = strPtr("2026-01-10T09:03:00Z")
	other.Answers = answerSheet(20, "B")
	result := svc.IngestOne(context.Background(), other)

	assert.Equal(t, ResultScored, result.Status, "disagreeing answers are a genuine retake")
}

func TestIngestOneFlattensDuplicateChains(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	first := svc.IngestOne(context.Background(), baseEvent("evt-1"))
	require.Equal(t, ResultScored, first.Status)

	second := baseEvent("evt-2")
	second.StartedAt = strPtr("2026-01-10T09:05:00Z")
	require.Equal(t, ResultDeduped, svc.IngestOne(context.Background(), second).Status)

	// Only the DEDUPED attempt is inside this window, but the link must still
	// point at the canonical root.
	third := baseEvent("evt-3")
	third.StartedAt = strPtr("2026-01-10T09:10:00Z")
	result := svc.IngestOne(context.Background(), third)

	require.Equal(t, ResultDeduped, result.Status)
	attempt, err := fx.attempts.FindByID(context.Background(), *result.AttemptID)
	require.NoError(t, err)
	require.NotNil(t, attempt.DuplicateOfAttemptID)
	assert.Equal(t, *first.AttemptID, *attempt.DuplicateOfAttemptID, "chains must flatten to the root")
}

func TestIngestOneKeepsStudentsApart(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	require.Equal(t, ResultScored, svc.IngestOne(context.Background(), baseEvent("evt-1")).Status)

	other := baseEvent("evt-2")
	other.Student = dto.StudentPayload{
		FullName: "rahul verma",
		Email:    strPtr("rahul.verma@outlook.com"),
	}
	other.StartedAt = strPtr("2026-01-10T09:02:00Z")
	result := svc.IngestOne(context.Background(), other)

	assert.Equal(t, ResultScored, result.Status, "identical answers from different students are not duplicates")
}

func TestIngestOneReportsSchemeWarnings(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	event := baseEvent("evt-1")
	event.Test.Name = "Scheme-less Mock"
	event.Test.MarkingScheme = model.MarkingScheme{}
	result := svc.IngestOne(context.Background(), event)

	require.Equal(t, ResultScored, result.Status, "missing scheme fields default to zero but still score")
	assert.Len(t, result.Warnings, 3)
}

func TestIngestBatchCountsOutcomes(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	duplicate := baseEvent("evt-2")
	duplicate.StartedAt = strPtr("2026-01-10T09:04:00Z")

	replay := baseEvent("evt-1")

	malformed := baseEvent("evt-3")
	malformed.StartedAt = strPtr("sometime")

	warned := baseEvent("evt-4")
	warned.Student.Email = strPtr("someone.else@gmail.com")
	warned.Student.Phone = nil
	warned.Test.Name = "Scheme-less Mock"
	warned.Test.MarkingScheme = model.MarkingScheme{}

	resp := svc.IngestBatch(context.Background(), []dto.AttemptEvent{
		baseEvent("evt-1"), duplicate, replay, malformed, warned,
	})

	assert.Equal(t, 2, resp.Ingested)
	assert.Equal(t, 1, resp.Duplicates)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, 1, resp.Errors)
	assert.Equal(t, 1, resp.Warnings, "warnings counts scored-with-warnings events")
	require.Len(t, resp.Results, 5)
	assert.Equal(t, ResultScored, resp.Results[0].Status)
	assert.Equal(t, ResultDeduped, resp.Results[1].Status)
	assert.Equal(t, ResultSkipped, resp.Results[2].Status)
	assert.Equal(t, ResultError, resp.Results[3].Status)
	assert.Equal(t, ResultScored, resp.Results[4].Status)
}

func TestIngestConcurrentRetriesYieldOneCanonical(t *testing.T) {
	fx := newFixture()
	svc := fx.ingestService()

	const n = 8
	var wg sync.WaitGroup
	results := make([]dto.EventResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			event := baseEvent(fmt.Sprintf("evt-%d", i))
			event.StartedAt = strPtr(fmt.Sprintf("2026-01-10T09:0%d:00Z", i%6))
			results[i] = svc.IngestOne(context.Background(), event)
		}(i)
	}
	wg.Wait()

	var scoredID *uint
	scored, deduped := 0, 0
	for _, r := range results {
		switch r.Status {
		case ResultScored:
			scored++
			scoredID = r.AttemptID
		case ResultDeduped:
			deduped++
		default:
			t.Fatalf("unexpected result status %q: %s", r.Status, r.Message)
		}
	}
	require.Equal(t, 1, scored, "exactly one attempt may win the race")
	require.Equal(t, n-1, deduped)

	duplicates, err := fx.attempts.FindDuplicatesOf(context.Background(), *scoredID)
	require.NoError(t, err)
	assert.Len(t, duplicates, n-1, "all losers must link to the single canonical")
}
