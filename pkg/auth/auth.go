// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package auth provides SSH authentication providers for the remote squeue
// executor.
package auth

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// Provider builds the ssh.AuthMethod set used to dial a login node.
type Provider interface {
	// AuthMethods returns the ssh.AuthMethod values to offer the server.
	AuthMethods(ctx context.Context) ([]ssh.AuthMethod, error)

	// Type returns the authentication scheme's name, for logging.
	Type() string
}

// PasswordProvider authenticates with a static password, optionally
// followed by a keyboard-interactive MFA code. Clusters that require a
// second factor (e.g. a TOTP code) reject a plain password auth method, so
// this provider offers keyboard-interactive as well whenever an MFA code
// getter is configured.
type PasswordProvider struct {
	username string
	password string
	mfaCode  func(ctx context.Context) (string, error)
}

// NewPasswordProvider returns a Provider authenticating with username and
// password. mfaCode may be nil when the cluster does not require a second
// factor.
func NewPasswordProvider(username, password string, mfaCode func(ctx context.Context) (string, error)) *PasswordProvider {
	return &PasswordProvider{username: username, password: password, mfaCode: mfaCode}
}

func (p *PasswordProvider) AuthMethods(ctx context.Context) ([]ssh.AuthMethod, error) {
	methods := []ssh.AuthMethod{ssh.Password(p.password)}

	if p.mfaCode != nil {
		methods = append(methods, ssh.KeyboardInteractive(func(name, instruction string, questions []string, echos []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range questions {
				code, err := p.mfaCode(ctx)
				if err != nil {
					return nil, fmt.Errorf("auth: mfa code: %w", err)
				}
				answers[i] = code
			}
			return answers, nil
		}))
	}

	return methods, nil
}

func (p *PasswordProvider) Type() string { return "password" }

// KeyProvider authenticates with a private key file, optionally protected
// by a passphrase.
type KeyProvider struct {
	path       string
	passphrase string
}

// NewKeyProvider returns a Provider reading a private key from path.
// passphrase may be empty for an unencrypted key.
func NewKeyProvider(path, passphrase string) *KeyProvider {
	return &KeyProvider{path: path, passphrase: passphrase}
}

func (k *KeyProvider) AuthMethods(ctx context.Context) ([]ssh.AuthMethod, error) {
	keyBytes, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("auth: read key file %s: %w", k.path, err)
	}

	var signer ssh.Signer
	if k.passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(k.passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(keyBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("auth: parse key file %s: %w", k.path, err)
	}

	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}

func (k *KeyProvider) Type() string { return "key" }
