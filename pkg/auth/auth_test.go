// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordProvider_NoMFA(t *testing.T) {
	p := NewPasswordProvider("ab123456", "hunter2", nil)
	assert.Equal(t, "password", p.Type())

	methods, err := p.AuthMethods(context.Background())
	require.NoError(t, err)
	assert.Len(t, methods, 1)
}

func TestPasswordProvider_WithMFA(t *testing.T) {
	var called bool
	p := NewPasswordProvider("ab123456", "hunter2", func(ctx context.Context) (string, error) {
		called = true
		return "123456", nil
	})

	methods, err := p.AuthMethods(context.Background())
	require.NoError(t, err)
	assert.Len(t, methods, 2, "password + keyboard-interactive auth methods")
	assert.False(t, called, "the mfa getter must not run until the server actually challenges")
}

func TestKeyProvider_MissingFile(t *testing.T) {
	p := NewKeyProvider("/nonexistent/id_ed25519", "")
	_, err := p.AuthMethods(context.Background())
	assert.Error(t, err)
}

func TestKeyProvider_InvalidKeyContents(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/not-a-key"
	require.NoError(t, os.WriteFile(path, []byte("this is not a private key"), 0o600))

	p := NewKeyProvider(path, "")
	_, err := p.AuthMethods(context.Background())
	assert.Error(t, err)
}
