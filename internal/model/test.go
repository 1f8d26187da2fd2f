package model

import (
	"time"
)

// Test is a test definition discovered from ingested events. The first event
// naming a test fixes its max marks and marking scheme; later events with a
// different definition do not overwrite it.
type Test struct {
	ID            uint          `gorm:"primarykey" json:"id"`
	Name          string        `json:"name" gorm:"not null;uniqueIndex"` // "JEE Main Mock #3"
	MaxMarks      int           `json:"max_marks"`
	MarkingScheme MarkingScheme `json:"negative_marking" gorm:"column:negative_marking;type:jsonb"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
