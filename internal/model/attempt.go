package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attempt statuses. INGESTED is transient within the ingestion transaction;
// persisted attempts are DEDUPED, SCORED or FLAGGED.
const (
	StatusIngested = "INGESTED"
	StatusDeduped  = "DEDUPED"
	StatusScored   = "SCORED"
	StatusFlagged  = "FLAGGED"
)

type Attempt struct {
	ID                   uint           `gorm:"primarykey" json:"id"`
	SourceEventID        string         `json:"source_event_id" gorm:"not null;uniqueIndex"`
	StudentID            uint           `json:"student_id" gorm:"not null;index:idx_attempts_student_test_started,priority:1"`
	Student              Student        `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	TestID               uint           `json:"test_id" gorm:"not null;index:idx_attempts_student_test_started,priority:2"`
	Test                 Test           `json:"test,omitempty" gorm:"foreignKey:TestID"`
	StartedAt            time.Time      `json:"started_at" gorm:"not null;index:idx_attempts_student_test_started,priority:3"`
	SubmittedAt          *time.Time     `json:"submitted_at,omitempty"`
	Channel              string         `json:"channel,omitempty"` // "web", "mobile_app", "paper_scan", ...
	Answers              AnswerMap      `json:"answers" gorm:"type:jsonb"`
	RawPayload           datatypes.JSON `json:"raw_payload,omitempty" gorm:"type:jsonb"`
	Status               string         `json:"status" gorm:"not null;default:'INGESTED';index"`
	DuplicateOfAttemptID *uint          `json:"duplicate_of_attempt_id,omitempty" gorm:"index"`
	DuplicateOf          *Attempt       `json:"-" gorm:"foreignKey:DuplicateOfAttemptID"`
	SimilarityScore      *float64       `json:"similarity_score,omitempty"`
	Score                *Score         `json:"score,omitempty" gorm:"foreignKey:AttemptID"`
	Flags                []Flag         `json:"flags,omitempty" gorm:"foreignKey:AttemptID"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsDuplicate reports whether the attempt was folded into another attempt.
func (a *Attempt) IsDuplicate() bool {
	return a.Status == StatusDeduped
}

// EffectiveTime is the submission time used for ordering, falling back to
// started_at when the event carried no submitted_at.
func (a *Attempt) EffectiveTime() time.Time {
	if a.SubmittedAt != nil {
		return *a.SubmittedAt
	}
	return a.StartedAt
}
