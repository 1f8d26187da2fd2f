package dto

// TestBreakdown is the per-test event count inside an upload analysis.
type TestBreakdown struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	MaxMarks int    `json:"max_marks"`
}

// AnswerCount is one row of the answer-token distribution.
type AnswerCount struct {
	Answer string `json:"answer"`
	Count  int    `json:"count"`
}

// DurationStats summarizes attempt durations derived from events that carry
// both timestamps. Durations outside (0, 24h) are treated as clock noise.
type DurationStats struct {
	AvgMinutes  float64 `json:"avg_minutes"`
	MinMinutes  float64 `json:"min_minutes"`
	MaxMinutes  float64 `json:"max_minutes"`
	SampleCount int     `json:"sample_count"`
}

// DateRange is the started_at span of an uploaded file.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
	SpanDays int    `json:"span_days"`
}

// UploadAnalysis is the pre-ingestion profile of an uploaded file.
type UploadAnalysis struct {
	Filename                 string         `json:"filename,omitempty"`
	FileSizeKB               float64        `json:"file_size_kb,omitempty"`
	TotalEvents              int            `json:"total_events"`
	Message                  string         `json:"message,omitempty"`
	UniqueStudents           int            `json:"unique_students"`
	UniqueEmails             int            `json:"unique_emails"`
	UniquePhones             int            `json:"unique_phones"`
	Tests                    []TestBreakdown `json:"tests"`
	AvgQuestionsPerAttempt   float64        `json:"avg_questions_per_attempt"`
	TotalAnswers             int            `json:"total_answers"`
	AnsweredCount            int            `json:"answered_count"`
	SkipCount                int            `json:"skip_count"`
	SkipRatePercent          float64        `json:"skip_rate_percent"`
	TopAnswers               []AnswerCount  `json:"top_answers"`
	Channels                 map[string]int `json:"channels,omitempty"`
	DurationStats            *DurationStats `json:"duration_stats,omitempty"`
	DateRange                *DateRange     `json:"date_range,omitempty"`
	PotentialDuplicateGroups int            `json:"potential_duplicate_groups"`
}

// UploadAnalyzeResponse returns the analysis together with the parsed events
// so a client can review and then ingest without re-uploading.
type UploadAnalyzeResponse struct {
	Analysis UploadAnalysis `json:"analysis"`
	Events   []AttemptEvent `json:"events"`
}

// ResetResponse acknowledges a data reset.
type ResetResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
