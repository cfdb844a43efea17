// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package errors_test

import (
	"errors"
	"fmt"
	"testing"

	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_ErrorString(t *testing.T) {
	e := sqerrors.New(sqerrors.KindParse, sqerrors.CodeFieldCount, "wrong column count")
	assert.Equal(t, "[PARSE/FIELD_COUNT] wrong column count", e.Error())

	e.Details = "expected 25, got 24"
	assert.Equal(t, "[PARSE/FIELD_COUNT] wrong column count: expected 25, got 24", e.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	e := sqerrors.Wrap(sqerrors.KindTransport, sqerrors.CodeExecFailed, "squeue failed", cause)

	assert.ErrorIs(t, e, cause)
	assert.Equal(t, cause, errors.Unwrap(e))
}

func TestError_Is(t *testing.T) {
	a := sqerrors.New(sqerrors.KindIO, sqerrors.CodeArchiveWrite, "disk full")
	b := sqerrors.New(sqerrors.KindIO, sqerrors.CodeArchiveWrite, "different message, same code")
	c := sqerrors.New(sqerrors.KindIO, sqerrors.CodeArchiveRead, "different code")

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c))
}

func TestError_IsRetryable(t *testing.T) {
	assert.True(t, sqerrors.New(sqerrors.KindTransport, sqerrors.CodeExecTimeout, "timed out").IsRetryable())
	assert.False(t, sqerrors.New(sqerrors.KindInvariant, sqerrors.CodeDanglingReference, "bad ref").IsRetryable())
}

func TestError_IsTerminal(t *testing.T) {
	assert.True(t, sqerrors.New(sqerrors.KindTransport, sqerrors.CodeSSHAuth, "rejected").IsTerminal())
	assert.True(t, sqerrors.New(sqerrors.KindTransport, sqerrors.CodeSessionGone, "gone").IsTerminal())
	assert.False(t, sqerrors.New(sqerrors.KindTransport, sqerrors.CodeSSHDial, "dial failed").IsTerminal())
}
