// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"context"
	stderrors "errors"
)

// Transport wraps a squeue execution failure (local subprocess or SSH).
func Transport(code Code, message string, cause error) *Error {
	e := Wrap(KindTransport, code, message, cause)
	if stderrors.Is(cause, context.DeadlineExceeded) {
		e.Retryable = true
	}
	return e
}

// Parse wraps a row- or duration-parsing failure.
func Parse(code Code, message string, cause error) *Error {
	return Wrap(KindParse, code, message, cause)
}

// IO wraps an archive or OCEL log filesystem failure.
func IO(code Code, message string, cause error) *Error {
	return Wrap(KindIO, code, message, cause)
}

// Invariant reports a pipeline stage observing data that violates an
// assumption a later stage depends on. Invariant errors are never
// retryable: retrying without fixing the input produces the same
// violation.
func Invariant(code Code, message string) *Error {
	return New(KindInvariant, code, message)
}

// User reports invalid configuration or CLI usage.
func User(code Code, message string) *Error {
	return New(KindUser, code, message)
}

// As reports whether err is (or wraps) an *Error, writing it into target
// when so. Thin convenience wrapper over the standard library's errors.As
// so callers do not need to import both packages under different names.
func As(err error, target **Error) bool {
	return stderrors.As(err, target)
}

// IsTerminal reports whether err is (or wraps) an *Error whose resource is
// permanently gone, as opposed to a transient failure worth retrying.
func IsTerminal(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Terminal
}
