package model

import (
	"time"
)

// Student is the resolved owner of attempts. Raw contact values are kept as
// submitted; the normalized columns carry the canonical forms used for
// identity matching and are unique where present.
type Student struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	FullName        string    `json:"full_name" gorm:"not null"`
	Email           *string   `json:"email,omitempty"`
	NormalizedEmail *string   `json:"normalized_email,omitempty" gorm:"uniqueIndex"`
	Phone           *string   `json:"phone,omitempty"`
	NormalizedPhone *string   `json:"normalized_phone,omitempty" gorm:"uniqueIndex"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
