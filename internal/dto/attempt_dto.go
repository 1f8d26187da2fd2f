package dto

import (
	"time"

	"github.com/ptdat2/Magpie/internal/model"
)

// StudentResponse is the student block embedded in attempt views.
type StudentResponse struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TestResponse describes a test definition.
type TestResponse struct {
	ID            uint                `json:"id"`
	Name          string              `json:"name"`
	MaxMarks      int                 `json:"max_marks"`
	MarkingScheme model.MarkingScheme `json:"negative_marking"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ScoreResponse is the persisted scoring result of an attempt.
type ScoreResponse struct {
	AttemptID      uint      `json:"attempt_id"`
	Correct        int       `json:"correct"`
	Wrong          int       `json:"wrong"`
	Skipped        int       `json:"skipped"`
	TotalQuestions int       `json:"total_questions"`
	Accuracy       float64   `json:"accuracy"`
	NetCorrect     int       `json:"net_correct"`
	Score          float64   `json:"score"`
	ComputedAt     time.Time `json:"computed_at"`
	Explanation    any       `json:"explanation,omitempty"`
}

// FlagResponse is one review flag on an attempt.
type FlagResponse struct {
	ID        uint      `json:"id"`
	AttemptID uint      `json:"attempt_id"`
	Reason    string    `json:"reason"`
	FlaggedBy string    `json:"flagged_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AttemptResponse is the full attempt view with its relations.
type AttemptResponse struct {
	ID                   uint              `json:"id"`
	StudentID            uint              `json:"student_id"`
	TestID               uint              `json:"test_id"`
	SourceEventID        string            `json:"source_event_id"`
	StartedAt            time.Time         `json:"started_at"`
	SubmittedAt          *time.Time        `json:"submitted_at,omitempty"`
	Channel              string            `json:"channel,omitempty"`
	Answers              map[string]string `json:"answers"`
	Status               string            `json:"status"`
	DuplicateOfAttemptID *uint             `json:"duplicate_of_attempt_id,omitempty"`
	SimilarityScore      *float64          `json:"similarity_score,omitempty"`
	Student              *StudentResponse  `json:"student,omitempty"`
	Test                 *TestResponse     `json:"test,omitempty"`
	Score                *ScoreResponse    `json:"score,omitempty"`
	Flags                []FlagResponse    `json:"flags"`
	CreatedAt            time.Time         `json:"created_at"`
}

// AttemptListResponse pages the attempt listing.
type AttemptListResponse struct {
	Items    []AttemptResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ListAttemptsQuery carries the supported listing filters.
type ListAttemptsQuery struct {
	TestID        *uint   `form:"test_id"`
	StudentID     *uint   `form:"student_id"`
	Status        *string `form:"status"`
	HasDuplicates *bool   `form:"has_duplicates"`
	DateFrom      *string `form:"date_from"`
	DateTo        *string `form:"date_to"`
	Search        string  `form:"search"`
	Page          int     `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize      int     `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// FlagRequest asks for an attempt to be flagged for review.
type FlagRequest struct {
	Reason    string `json:"reason" binding:"required"`
	FlaggedBy string `json:"flagged_by"`
}

// DuplicateThreadResponse is a duplicate group: the canonical attempt plus
// every attempt folded into it.
type DuplicateThreadResponse struct {
	Canonical  AttemptResponse   `json:"canonical"`
	Duplicates []AttemptResponse `json:"duplicates"`
}

// LeaderboardEntry is one ranked row of a test leaderboard.
type LeaderboardEntry struct {
	Rank        int        `json:"rank"`
	StudentID   uint       `json:"student_id"`
	FullName    string     `json:"full_name"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	AttemptID   uint       `json:"attempt_id"`
	Score       float64    `json:"score"`
	Accuracy    float64    `json:"accuracy"`
	NetCorrect  int        `json:"net_correct"`
	Correct     int        `json:"correct"`
	Wrong       int        `json:"wrong"`
	Skipped     int        `json:"skipped"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// LeaderboardResponse ranks students by their best attempt on a test.
type LeaderboardResponse struct {
	TestID   uint               `json:"test_id"`
	TestName string             `json:"test_name"`
	Entries  []LeaderboardEntry `json:"entries"`
}

// StatsResponse summarizes the ingested corpus for the dashboard.
type StatsResponse struct {
	Students      int64            `json:"students"`
	Tests         int64            `json:"tests"`
	Attempts      int64            `json:"attempts"`
	ByStatus      map[string]int64 `json:"by_status"`
	DuplicateRate float64          `json:"duplicate_rate"`
}
