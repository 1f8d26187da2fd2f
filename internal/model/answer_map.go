package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AnswerMap maps a question identifier to the submitted answer, stored as a
// JSONB column.
type AnswerMap map[string]string

func (a AnswerMap) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal(AnswerMap{})
	}
	return json.Marshal(a)
}

func (a *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*a = AnswerMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type for AnswerMap: %T", value)
	}
	return json.Unmarshal(raw, a)
}
