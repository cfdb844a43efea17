// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package api

import "context"

// FilterMode selects which jobs a snapshot fetch should request from
// squeue.
type FilterMode int

const (
	// FilterAll requests every job squeue will show the invoking user
	// (--all).
	FilterAll FilterMode = iota
	// FilterMine requests only the invoking user's own jobs (--me).
	FilterMine
	// FilterJobIDs requests a specific set of job ids (-j).
	FilterJobIDs
)

// SnapshotFilter parameterizes one fetch round.
type SnapshotFilter struct {
	Mode   FilterMode
	JobIDs []string // meaningful only when Mode == FilterJobIDs
}

// SessionExecutor runs the squeue command and returns its raw stdout. It is
// the seam between the snapshot fetcher (C3) and wherever squeue actually
// runs: a local subprocess on the poller's own host, or a remote command
// over SSH when the poller runs somewhere without direct scheduler access.
//
// Implementations must not interpret the output; that is the row parser's
// (C1) job.
type SessionExecutor interface {
	// RunSqueue executes squeue with the given filter and SqueueFieldOrder
	// format string, returning its stdout verbatim. A non-nil error means
	// the command could not be run or exited non-zero; partial stdout on
	// error is not returned.
	RunSqueue(ctx context.Context, filter SnapshotFilter) ([]byte, error)

	// Close releases any held resources (e.g. an SSH connection). Safe to
	// call multiple times.
	Close() error
}
