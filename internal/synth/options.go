// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package synth implements C7: replaying one job's archived snapshot and
// delta stream into an OCEL Job object and its lifecycle events.
package synth

import (
	"time"

	"github.com/jontk/squeue-ocel/pkg/logging"
	"github.com/jontk/squeue-ocel/pkg/metrics"
)

// Options configures a synthesis run. Zero value is usable — DefaultOptions
// fills in every field a caller doesn't set explicitly.
type Options struct {
	// SchedulerUTCOffset is the fixed offset squeue's naive timestamps are
	// interpreted under before conversion to UTC.
	SchedulerUTCOffset time.Duration

	// AccountExtractor recovers an account id when the raw account is the
	// placeholder "default". Defaults to RWTHAccountExtractor.
	AccountExtractor AccountExtractor

	// UnifyStartEvent is carried in Options but SynthesizeJob does not read
	// it: setting it changes no output. Start is always derived from
	// start_time, and the RUNNING state transition never produces an event
	// of its own.
	UnifyStartEvent bool

	// Concurrency bounds how many job directories are synthesized at once.
	Concurrency int

	// Logger receives diagnostics (out-of-order delta warnings, per-job
	// failures). Defaults to a no-op logger.
	Logger logging.Logger

	// Metrics records per-job synthesis counts/durations. Defaults to
	// metrics.GetDefaultCollector().
	Metrics metrics.Collector

	// DisableReasonOnAllTerminalEvents reverts to attaching "reason" only
	// on Job Failed, instead of on every terminal lifecycle event
	// (Completed/Cancelled/Failed/Timeout/OOM/NodeFail) whose JobRecord
	// carries a non-empty reason at that point. Left false (the extended
	// behavior enabled) unless a consumer wants the bare behavior back.
	DisableReasonOnAllTerminalEvents bool

	// DisableCPURestampAtCompleting skips re-snapshotting the job's cpus
	// count as a Job object attribute when the state transitions to
	// COMPLETING. Left false (enabled) unless a consumer wants the bare
	// behavior back.
	DisableCPURestampAtCompleting bool
}

// DefaultOptions returns an Options with every field set to its default:
// +01:00 scheduler offset, the RWTH account extractor, unified-start
// disabled, concurrency 8, and a no-op logger.
func DefaultOptions() Options {
	return Options{
		SchedulerUTCOffset: DefaultSchedulerUTCOffset,
		AccountExtractor:   RWTHAccountExtractor{},
		UnifyStartEvent:    false,
		Concurrency:        8,
		Logger:             logging.NoOpLogger{},
		Metrics:            metrics.GetDefaultCollector(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.AccountExtractor == nil {
		o.AccountExtractor = d.AccountExtractor
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	if o.Metrics == nil {
		o.Metrics = d.Metrics
	}
	if o.SchedulerUTCOffset == 0 {
		o.SchedulerUTCOffset = d.SchedulerUTCOffset
	}
	return o
}
