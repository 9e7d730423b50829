package resolver

import (
	"errors"
	"fmt"
)

// EventErrorCode categorizes rejected events.
type EventErrorCode string

const (
	// ErrCodeInvalidEvent indicates a missing package name or a negative uid.
	ErrCodeInvalidEvent EventErrorCode = "INVALID_EVENT"

	// ErrCodeUnknownKind indicates an event kind the resolver does not handle.
	ErrCodeUnknownKind EventErrorCode = "UNKNOWN_KIND"
)

// EventError is returned by Process for events that cannot be applied.
type EventError struct {
	Code    EventErrorCode
	Message string
	EventID string
	Seq     int64
}

func (e *EventError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("%s: %s (event=%s, seq=%d)", e.Code, e.Message, e.EventID, e.Seq)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidEvent reports whether err is an INVALID_EVENT EventError.
// Uses errors.As to handle wrapped errors.
func IsInvalidEvent(err error) bool {
	var ee *EventError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeInvalidEvent
	}
	return false
}

// IsUnknownKind reports whether err is an UNKNOWN_KIND EventError.
func IsUnknownKind(err error) bool {
	var ee *EventError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeUnknownKind
	}
	return false
}

func newInvalidEvent(ev Event, msg string) *EventError {
	return &EventError{Code: ErrCodeInvalidEvent, Message: msg, EventID: ev.ID, Seq: ev.Seq}
}
