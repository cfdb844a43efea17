// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the structured error type shared across the
// squeue differential poller and the OCEL synthesizer.
package errors

import (
	"fmt"
	"time"
)

// Kind classifies an Error by where in the pipeline it originated, so
// callers can decide whether to retry, abort, or surface it to an
// operator without inspecting Code strings.
type Kind string

const (
	// KindTransport covers failures running or communicating with squeue:
	// process spawn failures, SSH session errors, non-zero exits,
	// timeouts.
	KindTransport Kind = "TRANSPORT"
	// KindParse covers failures turning squeue/archive bytes into typed
	// values: wrong field counts, unparseable durations or timestamps.
	KindParse Kind = "PARSE"
	// KindIO covers failures reading or writing the archive or OCEL log
	// on disk.
	KindIO Kind = "IO"
	// KindInvariant covers a pipeline stage observing data that violates
	// an assumption the next stage depends on (e.g. a delta replayed out
	// of order, or an OCEL relationship target that was never declared
	// as an object).
	KindInvariant Kind = "INVARIANT"
	// KindUser covers invalid configuration or CLI usage.
	KindUser Kind = "USER"
)

// Code is a short, stable identifier for one specific failure reason
// within a Kind, suitable for metrics labels and log filtering.
type Code string

const (
	CodeExecFailed        Code = "EXEC_FAILED"
	CodeExecTimeout       Code = "EXEC_TIMEOUT"
	CodeSSHDial           Code = "SSH_DIAL"
	CodeSSHAuth           Code = "SSH_AUTH"
	CodeSSHSession        Code = "SSH_SESSION"
	CodeSessionGone       Code = "SESSION_GONE"
	CodeFieldCount        Code = "FIELD_COUNT"
	CodeFieldValue        Code = "FIELD_VALUE"
	CodeDurationShape     Code = "DURATION_SHAPE"
	CodeArchiveWrite      Code = "ARCHIVE_WRITE"
	CodeArchiveRead       Code = "ARCHIVE_READ"
	CodeOCELWrite         Code = "OCEL_WRITE"
	CodeOutOfOrderDelta   Code = "OUT_OF_ORDER_DELTA"
	CodeDanglingReference Code = "DANGLING_REFERENCE"
	CodeDuplicateObjectID Code = "DUPLICATE_OBJECT_ID"
	CodeDuplicateEventID  Code = "DUPLICATE_EVENT_ID"
	CodeInvalidConfig     Code = "INVALID_CONFIG"
	CodeInvalidFlag       Code = "INVALID_FLAG"
	CodeUnknown           Code = "UNKNOWN"
)

// Error is the structured error type returned across package boundaries in
// this module.
type Error struct {
	Kind      Kind      `json:"kind"`
	Code      Code      `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Retryable bool      `json:"retryable"`
	// Terminal marks a failure that will never clear on its own: the
	// session or resource it concerns is gone for good, and a caller
	// looping on retry should stop rather than keep trying.
	Terminal bool  `json:"terminal"`
	Cause    error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s/%s] %s: %s", e.Kind, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Kind, e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Code. Two errors
// with different Kind but the same Code are never expected to exist.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsRetryable reports whether the operation that produced e may succeed if
// retried unchanged (e.g. a transient network blip).
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// IsTerminal reports whether e marks its resource as permanently gone
// rather than transiently failing.
func (e *Error) IsTerminal() bool {
	return e.Terminal
}

var retryableCodes = map[Code]bool{
	CodeExecTimeout: true,
	CodeSSHDial:     true,
}

var terminalCodes = map[Code]bool{
	CodeSessionGone: true,
	CodeSSHAuth:     true,
}

// New returns an *Error of the given kind and code.
func New(kind Kind, code Code, message string) *Error {
	return &Error{
		Kind:      kind,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Retryable: retryableCodes[code],
		Terminal:  terminalCodes[code],
	}
}

// Wrap returns an *Error of the given kind and code, chaining cause so
// errors.Unwrap and errors.As keep working.
func Wrap(kind Kind, code Code, message string, cause error) *Error {
	e := New(kind, code, message)
	e.Cause = cause
	return e
}
