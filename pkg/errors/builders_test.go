// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package errors_test

import (
	"fmt"
	"testing"

	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport(t *testing.T) {
	cause := fmt.Errorf("ssh: dial failed")
	e := sqerrors.Transport(sqerrors.CodeSSHDial, "could not reach login node", cause)

	assert.Equal(t, sqerrors.KindTransport, e.Kind)
	assert.ErrorIs(t, e, cause)
}

func TestInvariant_NeverRetryable(t *testing.T) {
	e := sqerrors.Invariant(sqerrors.CodeOutOfOrderDelta, "delta timestamp precedes last applied delta")
	assert.Equal(t, sqerrors.KindInvariant, e.Kind)
	assert.False(t, e.IsRetryable())
}

func TestAs(t *testing.T) {
	var target *sqerrors.Error
	err := error(sqerrors.User(sqerrors.CodeInvalidFlag, "unknown filter mode"))

	require.True(t, sqerrors.As(err, &target))
	assert.Equal(t, sqerrors.KindUser, target.Kind)
}

func TestIsTerminal(t *testing.T) {
	terminal := sqerrors.Transport(sqerrors.CodeSSHAuth, "authenticate to host", fmt.Errorf("ssh: unable to authenticate"))
	transient := sqerrors.Transport(sqerrors.CodeSSHDial, "dial host", fmt.Errorf("connection refused"))

	assert.True(t, sqerrors.IsTerminal(terminal))
	assert.False(t, sqerrors.IsTerminal(transient))
	assert.False(t, sqerrors.IsTerminal(fmt.Errorf("plain error")))
}
