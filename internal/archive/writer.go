// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/internal/diff"
	"github.com/jontk/squeue-ocel/internal/worker"
	"github.com/jontk/squeue-ocel/pkg/logging"
	"github.com/jontk/squeue-ocel/pkg/metrics"
)

// State is the poll loop's (C6) running memory between rounds: which jobs
// have been seen before, and their last known snapshot. It is not
// goroutine-safe on its own — WriteRound owns the map mutations for the
// duration of one round and the poll loop must not call WriteRound
// concurrently with itself.
type State struct {
	KnownJobs map[string]api.JobRecord
	AllIDs    map[string]bool
}

// NewState returns an empty State ready for the first round.
func NewState() *State {
	return &State{
		KnownJobs: make(map[string]api.JobRecord),
		AllIDs:    make(map[string]bool),
	}
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithConcurrency bounds how many jobs WriteRound processes at once.
// Defaults to 8.
func WithConcurrency(n int) WriterOption {
	return func(w *Writer) { w.concurrency = n }
}

// WithLogger attaches a logger for round diagnostics (id reappearance,
// row-count mismatches). Defaults to a no-op logger.
func WithLogger(l logging.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

// WithMetrics attaches a collector for per-delta and per-write counters.
// Defaults to metrics.GetDefaultCollector().
func WithMetrics(c metrics.Collector) WriterOption {
	return func(w *Writer) { w.metrics = c }
}

// Writer is C5: it takes one squeue snapshot round and writes the
// differential archive for it.
type Writer struct {
	archive     Archive
	concurrency int
	logger      logging.Logger
	metrics     metrics.Collector
}

// NewWriter returns a Writer for the given archive.
func NewWriter(a Archive, opts ...WriterOption) *Writer {
	w := &Writer{
		archive:     a,
		concurrency: 8,
		logger:      logging.NoOpLogger{},
		metrics:     metrics.GetDefaultCollector(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteRound processes one round of rows observed at t: it records the
// round's id set, writes an initial snapshot for every job seen for the
// first time, writes a delta file for every known job whose fields
// changed, and silently skips known jobs with no changes (testable
// property: two identical consecutive snapshots produce no DELTA file).
//
// state is mutated in place to reflect the new KnownJobs/AllIDs after the
// round completes, even if WriteRound returns an error — failures are
// per-job and do not roll back siblings that succeeded.
func (w *Writer) WriteRound(ctx context.Context, rows []api.JobRecord, state *State, t time.Time) error {
	ids := make(map[string]bool, len(rows))
	for _, r := range rows {
		ids[r.JobID] = true
	}
	if len(ids) != len(rows) {
		w.logger.Warn("duplicate job ids in squeue round", "rows", len(rows), "distinct_ids", len(ids))
	}

	if err := os.MkdirAll(w.archive.Root, 0o755); err != nil {
		return fmt.Errorf("archive: create root: %w", err)
	}
	if err := writeJSONAtomic(w.archive.RoundIDsPath(t), ids); err != nil {
		return fmt.Errorf("archive: write round id set: %w", err)
	}

	var mu sync.Mutex
	next := make(map[string]api.JobRecord, len(rows))

	err := worker.Run(ctx, w.concurrency, rows, func(ctx context.Context, row api.JobRecord) error {
		prev, known := state.KnownJobs[row.JobID]

		if known {
			d := diff.Diff(prev, row, t)
			if !d.IsEmpty() {
				werr := writeJSONAtomic(w.archive.JobDeltaPath(row.JobID, t), d)
				w.metrics.RecordArchiveWrite("delta", werr)
				if werr != nil {
					return fmt.Errorf("archive: write delta for job %s: %w", row.JobID, werr)
				}
				w.metrics.RecordDelta(row.JobID)
			}
		} else {
			if state.AllIDs[row.JobID] {
				w.logger.Warn("job id reappeared after previously disappearing", "job_id", row.JobID)
			}
			if err := os.MkdirAll(w.archive.JobDir(row.JobID), 0o755); err != nil {
				return fmt.Errorf("archive: create job dir for %s: %w", row.JobID, err)
			}
			werr := writeJSONAtomic(w.archive.JobSnapshotPath(row.JobID, t), row)
			w.metrics.RecordArchiveWrite("snapshot", werr)
			if werr != nil {
				return fmt.Errorf("archive: write initial snapshot for job %s: %w", row.JobID, werr)
			}
		}

		mu.Lock()
		next[row.JobID] = row
		mu.Unlock()
		return nil
	})

	state.KnownJobs = next
	for id := range ids {
		state.AllIDs[id] = true
	}

	return err
}

func writeJSONAtomic(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
