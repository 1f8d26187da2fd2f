package model

import (
	"time"
)

// Flag is an append-only review note on an attempt. Flags are never edited
// or removed; the first one moves the attempt to FLAGGED.
type Flag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AttemptID uint      `json:"attempt_id" gorm:"not null;index"`
	Reason    string    `json:"reason" gorm:"type:text;not null"`
	FlaggedBy string    `json:"flagged_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
