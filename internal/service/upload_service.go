package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ptdat2/Magpie/internal/dto"
	"github.com/ptdat2/Magpie/internal/model"
	"github.com/ptdat2/Magpie/internal/repository"
	"github.com/ptdat2/Magpie/internal/scoring"
	"github.com/rs/zerolog"
)

// ErrUnsupportedFile marks uploads that are neither .json nor .csv.
var ErrUnsupportedFile = errors.New("unsupported file type, expected .json or .csv")

// UploadService turns uploaded files into attempt events, profiles them, and
// feeds them through the ingestion pipeline.
type UploadService interface {
	// ParseFile decodes a .json (array or {"events": [...]}) or .csv upload
	// into attempt events. Any returned error is a client error.
	ParseFile(filename string, content []byte) ([]dto.AttemptEvent, error)
	// Analyze profiles parsed events without touching the database.
	Analyze(events []dto.AttemptEvent) dto.UploadAnalysis
	// IngestEvents validates each event and runs it through the pipeline,
	// reporting invalid ones as per-event errors instead of failing the file.
	IngestEvents(ctx context.Context, events []dto.AttemptEvent) *dto.IngestResponse
	// Reset clears all ingested data.
	Reset(ctx context.Context) error
}

type uploadService struct {
	ingest          IngestService
	maintenanceRepo repository.MaintenanceRepository
	validate        *validator.Validate
}

func NewUploadService(ingest IngestService, maintenanceRepo repository.MaintenanceRepository) UploadService {
	return &uploadService{
		ingest:          ingest,
		maintenanceRepo: maintenanceRepo,
		validate:        validator.New(),
	}
}

func (s *uploadService) ParseFile(filename string, content []byte) ([]dto.AttemptEvent, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".json"):
		return parseJSONEvents(content)
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		return parseCSVEvents(content)
	default:
		return nil, ErrUnsupportedFile
	}
}

func parseJSONEvents(content []byte) ([]dto.AttemptEvent, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var events []dto.AttemptEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return events, nil
	}

	var wrapper struct {
		Events []dto.AttemptEvent `json:"events"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if wrapper.Events == nil {
		return nil, errors.New("JSON must be an array of events or an object with an events array")
	}
	return wrapper.Events, nil
}

// parseCSVEvents maps one CSV row to one event. Well-known columns fill the
// envelope; any column whose name reduces to digits (1, Q1, q17) is treated
// as an answer.
func parseCSVEvents(content []byte) ([]dto.AttemptEvent, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) < 2 {
		return []dto.AttemptEvent{}, nil
	}

	header := records[0]
	events := make([]dto.AttemptEvent, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make(map[string]string, len(header))
		for col, name := range header {
			if col < len(record) {
				row[strings.TrimSpace(name)] = strings.TrimSpace(record[col])
			}
		}

		event := dto.AttemptEvent{
			SourceEventID: fieldOr(row, "csv_evt_"+strconv.Itoa(i), "source_event_id"),
			Student: dto.StudentPayload{
				FullName: fieldOr(row, "", "full_name", "student_name"),
				Email:    optionalField(row, "email", "student_email"),
				Phone:    optionalField(row, "phone", "student_phone"),
			},
			Test: dto.TestPayload{
				Name:          fieldOr(row, "Unknown Test", "test_name", "test"),
				MaxMarks:      intFieldOr(row, "max_marks", 300),
				MarkingScheme: schemeFieldOr(row, "negative_marking"),
			},
			StartedAt:   optionalField(row, "started_at"),
			SubmittedAt: optionalField(row, "submitted_at"),
			Answers:     map[string]string{},
			Channel:     optionalField(row, "channel"),
		}

		for key, val := range row {
			if key == "" || val == "" {
				continue
			}
			clean := strings.ReplaceAll(strings.ToUpper(key), "Q", "")
			if isDigits(clean) {
				event.Answers[clean] = strings.ToUpper(val)
			}
		}
		events = append(events, event)
	}
	return events, nil
}

func fieldOr(row map[string]string, fallback string, keys ...string) string {
	for _, key := range keys {
		if v := row[key]; v != "" {
			return v
		}
	}
	return fallback
}

func optionalField(row map[string]string, keys ...string) *string {
	for _, key := range keys {
		if v := row[key]; v != "" {
			return &v
		}
	}
	return nil
}

func intFieldOr(row map[string]string, key string, fallback int) int {
	if n, err := strconv.Atoi(row[key]); err == nil {
		return n
	}
	return fallback
}

func schemeFieldOr(row map[string]string, key string) model.MarkingScheme {
	if raw := row[key]; raw != "" {
		var scheme model.MarkingScheme
		if err := json.Unmarshal([]byte(raw), &scheme); err == nil {
			return scheme
		}
	}
	correct, wrong, skip := 4.0, -1.0, 0.0
	return model.MarkingScheme{Correct: &correct, Wrong: &wrong, Skip: &skip}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (s *uploadService) Analyze(events []dto.AttemptEvent) dto.UploadAnalysis {
	total := len(events)
	if total == 0 {
		return dto.UploadAnalysis{
			Message:    "No events found in file",
			Tests:      []dto.TestBreakdown{},
			TopAnswers: []dto.AnswerCount{},
		}
	}

	students := make(map[string]bool)
	emails := make(map[string]bool)
	phones := make(map[string]bool)
	testCounts := make(map[string]int)
	testMaxMarks := make(map[string]int)
	answerDist := make(map[string]int)
	channels := make(map[string]int)
	pairCounts := make(map[string]int)
	var timestamps []time.Time
	var durations []float64
	totalAnswers, skipCount := 0, 0

	for i := range events {
		evt := &events[i]
		email := deref(evt.Student.Email)
		phone := deref(evt.Student.Phone)
		if email != "" {
			emails[strings.ToLower(strings.TrimSpace(email))] = true
		}
		if phone != "" {
			phones[strings.TrimSpace(phone)] = true
		}
		students[evt.Student.FullName+"|"+email+"|"+phone] = true

		testName := evt.Test.Name
		if testName == "" {
			testName = "Unknown"
		}
		testCounts[testName]++
		if _, ok := testMaxMarks[testName]; !ok {
			testMaxMarks[testName] = evt.Test.MaxMarks
		}
		pairCounts[email+"|"+testName]++

		totalAnswers += len(evt.Answers)
		for _, a := range evt.Answers {
			v := strings.ToUpper(strings.TrimSpace(a))
			answerDist[v]++
			if v == scoring.SkipToken {
				skipCount++
			}
		}

		if evt.Channel != nil && *evt.Channel != "" {
			channels[*evt.Channel]++
		}

		started := optionalEventTime(evt.StartedAt)
		if started != nil {
			timestamps = append(timestamps, *started)
		}
		submitted := optionalEventTime(evt.SubmittedAt)
		if started != nil && submitted != nil {
			if minutes := submitted.Sub(*started).Minutes(); minutes > 0 && minutes < 1440 {
				durations = append(durations, round1(minutes))
			}
		}
	}

	analysis := dto.UploadAnalysis{
		TotalEvents:            total,
		UniqueStudents:         len(students),
		UniqueEmails:           len(emails),
		UniquePhones:           len(phones),
		AvgQuestionsPerAttempt: round1(float64(totalAnswers) / float64(total)),
		TotalAnswers:           totalAnswers,
		AnsweredCount:          totalAnswers - skipCount,
		SkipCount:              skipCount,
	}
	if totalAnswers > 0 {
		analysis.SkipRatePercent = round1(float64(skipCount) / float64(totalAnswers) * 100)
	}
	if len(channels) > 0 {
		analysis.Channels = channels
	}

	analysis.Tests = make([]dto.TestBreakdown, 0, len(testCounts))
	for name, count := range testCounts {
		analysis.Tests = append(analysis.Tests, dto.TestBreakdown{Name: name, Count: count, MaxMarks: testMaxMarks[name]})
	}
	sort.Slice(analysis.Tests, func(i, j int) bool {
		if analysis.Tests[i].Count != analysis.Tests[j].Count {
			return analysis.Tests[i].Count > analysis.Tests[j].Count
		}
		return analysis.Tests[i].Name < analysis.Tests[j].Name
	})

	analysis.TopAnswers = make([]dto.AnswerCount, 0, len(answerDist))
	for answer, count := range answerDist {
		analysis.TopAnswers = append(analysis.TopAnswers, dto.AnswerCount{Answer: answer, Count: count})
	}
	sort.Slice(analysis.TopAnswers, func(i, j int) bool {
		if analysis.TopAnswers[i].Count != analysis.TopAnswers[j].Count {
			return analysis.TopAnswers[i].Count > analysis.TopAnswers[j].Count
		}
		return analysis.TopAnswers[i].Answer < analysis.TopAnswers[j].Answer
	})
	if len(analysis.TopAnswers) > 10 {
		analysis.TopAnswers = analysis.TopAnswers[:10]
	}

	if len(durations) > 0 {
		stats := &dto.DurationStats{SampleCount: len(durations), MinMinutes: durations[0], MaxMinutes: durations[0]}
		sum := 0.0
		for _, d := range durations {
			sum += d
			stats.MinMinutes = math.Min(stats.MinMinutes, d)
			stats.MaxMinutes = math.Max(stats.MaxMinutes, d)
		}
		stats.AvgMinutes = round1(sum / float64(len(durations)))
		analysis.DurationStats = stats
	}

	if len(timestamps) > 0 {
		earliest, latest := timestamps[0], timestamps[0]
		for _, ts := range timestamps[1:] {
			if ts.Before(earliest) {
				earliest = ts
			}
			if ts.After(latest) {
				latest = ts
			}
		}
		analysis.DateRange = &dto.DateRange{
			Earliest: earliest.Format(time.RFC3339),
			Latest:   latest.Format(time.RFC3339),
			SpanDays: int(latest.Sub(earliest).Hours() / 24),
		}
	}

	for _, count := range pairCounts {
		if count > 1 {
			analysis.PotentialDuplicateGroups++
		}
	}
	return analysis
}

func (s *uploadService) IngestEvents(ctx context.Context, events []dto.AttemptEvent) *dto.IngestResponse {
	start := time.Now()
	resp := &dto.IngestResponse{Results: make([]dto.EventResult, 0, len(events))}

	for i := range events {
		if err := s.validate.Struct(&events[i]); err != nil {
			id := events[i].SourceEventID
			if id == "" {
				id = "unknown"
			}
			tally(resp, dto.EventResult{
				SourceEventID: id,
				Status:        ResultError,
				Message:       fmt.Sprintf("invalid event: %v", err),
			})
			continue
		}
		tally(resp, s.ingest.IngestOne(ctx, events[i]))
	}

	zerolog.Ctx(ctx).Info().
		Int("events", len(events)).
		Int("ingested", resp.Ingested).
		Int("duplicates", resp.Duplicates).
		Int("errors", resp.Errors).
		Int("skipped", resp.Skipped).
		Dur("took", time.Since(start)).
		Msg("IngestEvents: file ingestion complete")
	return resp
}

func (s *uploadService) Reset(ctx context.Context) error {
	if err := s.maintenanceRepo.Reset(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Reset: failed to clear ingested data")
		return fmt.Errorf("failed to reset data: %w", err)
	}
	zerolog.Ctx(ctx).Info().Msg("Reset: all ingested data cleared")
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
