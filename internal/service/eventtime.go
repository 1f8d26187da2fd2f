package service

import (
	"fmt"
	"strings"
	"time"
)

// Collectors emit a mix of ISO-8601 shapes: with and without zone offsets,
// with T or space separators, sometimes date-only. Zoneless values are read
// as UTC.
var eventTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseEventTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// requireEventTime parses a mandatory timestamp field.
func requireEventTime(raw *string) (time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return time.Time{}, fmt.Errorf("timestamp is required")
	}
	t, ok := parseEventTime(*raw)
	if !ok {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", *raw)
	}
	return t, nil
}

// optionalEventTime parses a timestamp that may be absent or junk; both cases
// yield nil rather than an error.
func optionalEventTime(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, ok := parseEventTime(*raw)
	if !ok {
		return nil
	}
	return &t
}
