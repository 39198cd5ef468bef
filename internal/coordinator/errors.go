package coordinator

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes coordinator errors.
type ErrorCode string

const (
	// ErrCodeStopped indicates the coordinator no longer accepts events.
	ErrCodeStopped ErrorCode = "STOPPED"

	// ErrCodeInvalidEvent indicates an event is missing required data.
	ErrCodeInvalidEvent ErrorCode = "INVALID_EVENT"

	// ErrCodeSinkFailed indicates the rendering sink rejected an update.
	ErrCodeSinkFailed ErrorCode = "SINK_FAILED"
)

// Error is a coordinator failure with a category and optional subject.
type Error struct {
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ParticipantID identifies the affected member, when there is one.
	ParticipantID string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ParticipantID != "" {
		msg += fmt.Sprintf(" (participant=%s)", e.ParticipantID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsStopped reports whether err is an ErrCodeStopped error.
func IsStopped(err error) bool {
	return hasCode(err, ErrCodeStopped)
}

// IsInvalidEvent reports whether err is an ErrCodeInvalidEvent error.
func IsInvalidEvent(err error) bool {
	return hasCode(err, ErrCodeInvalidEvent)
}

// IsSinkError reports whether err is an ErrCodeSinkFailed error.
func IsSinkError(err error) bool {
	return hasCode(err, ErrCodeSinkFailed)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func errStopped() *Error {
	return &Error{Code: ErrCodeStopped, Message: "coordinator stopped"}
}

func errInvalidEvent(t EventType, msg string) *Error {
	return &Error{Code: ErrCodeInvalidEvent, Message: fmt.Sprintf("%s event: %s", t, msg)}
}

func errSink(participantID, what string, err error) *Error {
	return &Error{
		Code:          ErrCodeSinkFailed,
		Message:       "apply " + what,
		ParticipantID: participantID,
		Err:           err,
	}
}
