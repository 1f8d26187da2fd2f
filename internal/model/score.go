package model

import (
	"time"

	"gorm.io/datatypes"
)

// Score is the deterministic scoring result of one attempt. At most one row
// exists per attempt; recomputation overwrites it in place.
type Score struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	AttemptID      uint           `json:"attempt_id" gorm:"not null;uniqueIndex"`
	CorrectCount   int            `json:"correct_count"`
	WrongCount     int            `json:"wrong_count"`
	SkippedCount   int            `json:"skipped_count"`
	TotalQuestions int            `json:"total_questions"`
	Score          float64        `json:"score"`
	Accuracy       float64        `json:"accuracy"`    // percentage, 2 decimals
	NetCorrect     int            `json:"net_correct"` // correct - wrong
	Explanation    datatypes.JSON `json:"explanation,omitempty" gorm:"type:jsonb"`
	ComputedAt     time.Time      `json:"computed_at" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
