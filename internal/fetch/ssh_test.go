// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jontk/squeue-ocel/api"
)

func TestSplitUser(t *testing.T) {
	user, host := splitUser("ab123456@login.cluster.example.edu:22")
	assert.Equal(t, "ab123456", user)
	assert.Equal(t, "login.cluster.example.edu:22", host)
}

func TestSplitUser_NoUser(t *testing.T) {
	user, host := splitUser("login.cluster.example.edu:22")
	assert.Empty(t, user)
	assert.Equal(t, "login.cluster.example.edu:22", host)
}

func TestBuildRemoteCommand(t *testing.T) {
	cmd := buildRemoteCommand(api.SnapshotFilter{Mode: api.FilterMine})
	assert.Contains(t, cmd, "squeue ")
	assert.Contains(t, cmd, "--me")
}

func TestSSHExecutor_CloseWithoutDial(t *testing.T) {
	e := NewSSHExecutor("user@example.com:22", nil, nil, 0)
	assert.NoError(t, e.Close())
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, isAuthFailure(fmt.Errorf("ssh: handshake failed: ssh: unable to authenticate, attempted methods [none publickey], no supported methods remain")))
	assert.False(t, isAuthFailure(fmt.Errorf("dial tcp 10.0.0.1:22: connect: connection refused")))
}
