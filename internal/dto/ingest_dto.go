package dto

import "github.com/ptdat2/Magpie/internal/model"

// StudentPayload is the identity block of an incoming attempt event. Email
// and phone are both optional but at least one must survive normalization.
type StudentPayload struct {
	FullName string  `json:"full_name" binding:"required" validate:"required"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

// TestPayload names the test an attempt belongs to. The first event seen for
// a name fixes max_marks and negative_marking for that test.
type TestPayload struct {
	Name          string              `json:"name" binding:"required" validate:"required"`
	MaxMarks      int                 `json:"max_marks"`
	MarkingScheme model.MarkingScheme `json:"negative_marking"`
}

// AttemptEvent is one element of an ingestion batch, exactly as produced by
// the upstream collectors. Timestamps arrive as strings because collectors
// emit a mix of ISO-8601 variants; parsing failures are per-event errors.
type AttemptEvent struct {
	SourceEventID string            `json:"source_event_id" binding:"required" validate:"required"`
	Student       StudentPayload    `json:"student" binding:"required" validate:"required"`
	Test          TestPayload       `json:"test" binding:"required" validate:"required"`
	StartedAt     *string           `json:"started_at"`
	SubmittedAt   *string           `json:"submitted_at"`
	Answers       map[string]string `json:"answers"`
	Channel       *string           `json:"channel"`
}

// IngestRequest is a batch of attempt events.
type IngestRequest struct {
	Events []AttemptEvent `json:"events" binding:"required,dive"`
}

// EventResult reports what happened to one event of a batch.
type EventResult struct {
	SourceEventID string   `json:"source_event_id"`
	AttemptID     *uint    `json:"attempt_id,omitempty"`
	Status        string   `json:"status"` // SCORED, DEDUPED, SKIPPED, ERROR
	Message       string   `json:"message"`
	Warnings      []string `json:"warnings,omitempty"`
}

// IngestResponse aggregates a batch run. An event that scored with warnings
// counts in both ingested and warnings.
type IngestResponse struct {
	Ingested   int           `json:"ingested"`
	Duplicates int           `json:"duplicates"`
	Errors     int           `json:"errors"`
	Skipped    int           `json:"skipped"`
	Warnings   int           `json:"warnings"`
	Results    []EventResult `json:"results"`
}
