package model

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoIdentity is returned when an event carries neither a usable
	// email nor a usable phone number.
	ErrNoIdentity = errors.New("no usable identity: email and phone both missing or invalid")

	// ErrInvalidState is returned when an operation is not allowed for the
	// attempt's current status, e.g. recomputing a DEDUPED attempt.
	ErrInvalidState = errors.New("operation not allowed in current attempt state")

	// ErrDuplicateEvent is returned when a source_event_id has already been
	// ingested.
	ErrDuplicateEvent = errors.New("source event already ingested")
)
