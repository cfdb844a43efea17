// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"time"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/internal/parse"
	"github.com/jontk/squeue-ocel/pkg/logging"
	"github.com/jontk/squeue-ocel/pkg/retry"
)

// Fetcher combines a SessionExecutor with retry and row parsing to
// implement the full C3 contract: given a filter, produce the wall-clock
// instant the snapshot was received and its decoded JobRecords.
type Fetcher struct {
	executor api.SessionExecutor
	backoff  retry.BackoffStrategy
	logger   logging.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBackoff overrides the retry strategy for transient executor
// failures. Defaults to retry.NewExponentialBackoff().
func WithBackoff(b retry.BackoffStrategy) FetcherOption {
	return func(f *Fetcher) { f.backoff = b }
}

// WithFetcherLogger attaches a logger for malformed-row diagnostics.
func WithFetcherLogger(l logging.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher wraps executor as a Fetcher.
func NewFetcher(executor api.SessionExecutor, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		executor: executor,
		backoff:  retry.NewExponentialBackoff(),
		logger:   logging.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot captures one squeue round: T is the wall-clock instant the raw
// output was received (not re-derivable from any filename downstream),
// and Rows is the decoded line set with empty and malformed lines already
// filtered out.
type Snapshot struct {
	At   time.Time
	Rows []api.JobRecord
}

// Fetch runs the executor (retrying transient failures per the configured
// backoff) and parses its output into a Snapshot.
func (f *Fetcher) Fetch(ctx context.Context, filter api.SnapshotFilter) (Snapshot, error) {
	var raw []byte
	var at time.Time

	err := retry.Retry(ctx, f.backoff, func() error {
		out, err := f.executor.RunSqueue(ctx, filter)
		if err != nil {
			return err
		}
		raw, at = out, time.Now()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{At: at, Rows: parse.ParseLines(raw, f.logger)}, nil
}
