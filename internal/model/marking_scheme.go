package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MarkingScheme holds the per-question mark weights of a test. Fields are
// pointers so an absent weight can be told apart from an explicit zero;
// absent weights are treated as 0 at scoring time and surfaced as warnings.
type MarkingScheme struct {
	Correct *float64 `json:"correct,omitempty"`
	Wrong   *float64 `json:"wrong,omitempty"`
	Skip    *float64 `json:"skip,omitempty"`
}

func (m MarkingScheme) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MarkingScheme) Scan(value interface{}) error {
	if value == nil {
		*m = MarkingScheme{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type for MarkingScheme: %T", value)
	}
	return json.Unmarshal(raw, m)
}

// CorrectWeight returns the correct-answer weight, defaulting to 0.
func (m MarkingScheme) CorrectWeight() float64 {
	if m.Correct == nil {
		return 0
	}
	return *m.Correct
}

// WrongWeight returns the wrong-answer weight, defaulting to 0.
func (m MarkingScheme) WrongWeight() float64 {
	if m.Wrong == nil {
		return 0
	}
	return *m.Wrong
}

// SkipWeight returns the skipped-answer weight, defaulting to 0.
func (m MarkingScheme) SkipWeight() float64 {
	if m.Skip == nil {
		return 0
	}
	return *m.Skip
}
