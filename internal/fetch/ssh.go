// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/pkg/auth"
	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
)

// SSHExecutor runs squeue on a remote login node over a single,
// lazily-dialed SSH connection shared across polling rounds.
type SSHExecutor struct {
	addr        string
	provider    auth.Provider
	dialTimeout time.Duration
	hostKeyCB   ssh.HostKeyCallback

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHExecutor returns an SSHExecutor dialing addr ("host:port") using
// provider for authentication. hostKeyCB is passed through to
// ssh.ClientConfig verbatim; use ssh.FixedHostKey for a pinned known_hosts
// entry, or ssh.InsecureIgnoreHostKey only in throwaway test environments.
func NewSSHExecutor(addr string, provider auth.Provider, hostKeyCB ssh.HostKeyCallback, dialTimeout time.Duration) *SSHExecutor {
	return &SSHExecutor{
		addr:        addr,
		provider:    provider,
		dialTimeout: dialTimeout,
		hostKeyCB:   hostKeyCB,
	}
}

func (e *SSHExecutor) dial(ctx context.Context) (*ssh.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return e.client, nil
	}

	methods, err := e.provider.AuthMethods(ctx)
	if err != nil {
		return nil, sqerrors.Transport(sqerrors.CodeSSHDial, "build ssh auth methods", err)
	}

	user, host := splitUser(e.addr)
	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            methods,
		HostKeyCallback: e.hostKeyCB,
		Timeout:         e.dialTimeout,
		ClientVersion:   "SSH-2.0-squeue-ocel",
	}

	client, err := ssh.Dial("tcp", host, cfg)
	if err != nil {
		if isAuthFailure(err) {
			return nil, sqerrors.Transport(sqerrors.CodeSSHAuth, fmt.Sprintf("authenticate to %s", host), err)
		}
		return nil, sqerrors.Transport(sqerrors.CodeSSHDial, fmt.Sprintf("dial %s", host), err)
	}

	e.client = client
	return client, nil
}

// isAuthFailure reports whether err is the handshake failure
// golang.org/x/crypto/ssh returns when every configured auth method was
// rejected. Unlike a dial timeout or connection refusal, rejected
// credentials will not start working on their own: the caller should treat
// this as a session that can never be established, not a transient one.
func isAuthFailure(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate")
}

func (e *SSHExecutor) RunSqueue(ctx context.Context, filter api.SnapshotFilter) ([]byte, error) {
	client, err := e.dial(ctx)
	if err != nil {
		return nil, err
	}

	session, err := client.NewSession()
	if err != nil {
		e.mu.Lock()
		e.client = nil
		e.mu.Unlock()
		return nil, sqerrors.Transport(sqerrors.CodeSSHSession, "open session", err)
	}
	defer session.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-done:
		}
	}()

	cmd := buildRemoteCommand(filter)
	out, err := session.CombinedOutput(cmd)
	if err != nil {
		if ctx.Err() != nil {
			return nil, sqerrors.Transport(sqerrors.CodeExecTimeout, "squeue over ssh timed out", ctx.Err())
		}
		return nil, sqerrors.Transport(sqerrors.CodeExecFailed, "squeue over ssh exited with an error: "+string(out), err)
	}

	return out, nil
}

func (e *SSHExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

// buildRemoteCommand renders the squeue invocation as a single shell
// string, matching how it is dispatched over an SSH session's exec
// channel rather than argv. The format string is single-quoted so the
// remote shell does not read its "|" separators as pipes.
func buildRemoteCommand(filter api.SnapshotFilter) string {
	args := buildArgs(filter)
	for i, a := range args {
		if strings.HasPrefix(a, "--format=") {
			args[i] = "--format='" + strings.TrimPrefix(a, "--format=") + "'"
		}
	}
	return "squeue " + strings.Join(args, " ")
}

func splitUser(addr string) (user, host string) {
	if idx := strings.Index(addr, "@"); idx >= 0 {
		return addr[:idx], addr[idx+1:]
	}
	return "", addr
}
