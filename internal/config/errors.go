package config

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes configuration errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the config file could not be read.
	ErrCodeNotFound ErrorCode = "CONFIG_NOT_FOUND"

	// ErrCodeInvalid indicates the config does not satisfy the schema.
	ErrCodeInvalid ErrorCode = "CONFIG_INVALID"

	// ErrCodeEnv indicates an environment variable could not be parsed.
	ErrCodeEnv ErrorCode = "CONFIG_ENV"
)

// Error is a configuration failure.
type Error struct {
	Code ErrorCode
	// Path is the offending file, when there is one.
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an ErrCodeNotFound error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsInvalid reports whether err is an ErrCodeInvalid error.
func IsInvalid(err error) bool {
	return hasCode(err, ErrCodeInvalid)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
