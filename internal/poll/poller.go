// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package poll implements C6: the poll loop orchestrating C3 (fetch) ->
// C1 (row parsing, inside the fetcher) -> C4 (diff, inside the archive
// writer) -> C5 (archive write) on a configurable interval, publishing
// each round to the squeue-rows event bus.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/internal/archive"
	"github.com/jontk/squeue-ocel/internal/bus"
	"github.com/jontk/squeue-ocel/internal/fetch"
	pipelinectx "github.com/jontk/squeue-ocel/pkg/context"
	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
	"github.com/jontk/squeue-ocel/pkg/logging"
	"github.com/jontk/squeue-ocel/pkg/metrics"
)

// subWaitInterval bounds shutdown latency: the configured interval is
// decomposed into sub-waits of at most this long, each followed by a
// cancellation check, rather than a single sleep or bare ticker.
const subWaitInterval = time.Second

// DefaultInterval is used when Options.Interval is zero.
const DefaultInterval = 5 * time.Second

// status is the C6 state machine: {Idle} -start-> {Running(n)} -tick->
// {Running(n+1)}; {Running} -cancel|fetcher-gone-> {Idle}.
type status int

const (
	statusIdle status = iota
	statusRunning
)

// Options configures a Poller.
type Options struct {
	Interval time.Duration
	Filter   api.SnapshotFilter
	Bus      *bus.Bus
	Logger   logging.Logger

	// Metrics records round/archive outcomes. Defaults to
	// metrics.GetDefaultCollector() (a no-op unless the caller installed
	// one via metrics.SetDefaultCollector).
	Metrics metrics.Collector

	// Timeouts bounds each round's fetch and archive-write stages.
	// Defaults to pkg/context's DefaultTimeoutConfig.
	Timeouts *pipelinectx.TimeoutConfig
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Logger == nil {
		o.Logger = logging.NoOpLogger{}
	}
	if o.Metrics == nil {
		o.Metrics = metrics.GetDefaultCollector()
	}
	if o.Timeouts == nil {
		o.Timeouts = pipelinectx.DefaultTimeoutConfig()
	}
	return o
}

// Poller runs the C3->C1->C4->C5 pipeline on a timer. It is not
// reentrant: starting a Poller that is already Running returns an error
// instead of racing a second loop against the first.
type Poller struct {
	fetcher *fetch.Fetcher
	writer  *archive.Writer
	opts    Options

	mu     sync.Mutex
	st     status
	round  int
	cancel context.CancelFunc
}

// New returns a Poller driving fetcher's snapshots into writer's archive.
func New(fetcher *fetch.Fetcher, writer *archive.Writer, opts Options) *Poller {
	return &Poller{
		fetcher: fetcher,
		writer:  writer,
		opts:    opts.withDefaults(),
	}
}

// Start begins polling in a background goroutine and returns immediately.
// Calling Start while already Running returns an error.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.st == statusRunning {
		p.mu.Unlock()
		return sqerrors.New(sqerrors.KindUser, sqerrors.CodeInvalidConfig, "poller already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.st = statusRunning
	p.round = 0
	p.mu.Unlock()

	go p.loop(loopCtx)
	return nil
}

// Stop cancels the running loop. Safe to call on an already-Idle Poller.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Round reports the number of completed rounds (0 before the first tick).
func (p *Poller) Round() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.round
}

func (p *Poller) loop(ctx context.Context) {
	defer p.setIdle()

	state := archive.NewState()

	p.tick(ctx, state)
	for {
		if !p.sleepInterval(ctx) {
			return
		}
		if ctx.Err() != nil {
			return
		}
		p.tick(ctx, state)
	}
}

// sleepInterval waits p.opts.Interval, decomposed into subWaitInterval
// sub-waits so cancellation is observed within ~1s regardless of how long
// the configured interval is. Returns false if ctx was cancelled first.
func (p *Poller) sleepInterval(ctx context.Context) bool {
	remaining := p.opts.Interval
	for remaining > 0 {
		wait := subWaitInterval
		if wait > remaining {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		remaining -= wait
	}
	return true
}

func (p *Poller) tick(ctx context.Context, state *archive.State) {
	start := time.Now()

	fetchCtx, fetchCancel := pipelinectx.WithTimeout(ctx, pipelinectx.OpFetch, p.opts.Timeouts)
	snap, err := p.fetcher.Fetch(fetchCtx, p.opts.Filter)
	fetchCancel()
	if err != nil {
		p.opts.Metrics.RecordError("fetch", err)
		if sqerrors.IsTerminal(err) {
			p.opts.Logger.Error("squeue session permanently unavailable, stopping poll loop", "error", err.Error())
			p.Stop()
			return
		}
		p.opts.Logger.Warn("squeue fetch failed, skipping round", "error", err.Error())
		return
	}

	archiveCtx, archiveCancel := pipelinectx.WithTimeout(ctx, pipelinectx.OpArchive, p.opts.Timeouts)
	writeErr := p.writer.WriteRound(archiveCtx, snap.Rows, state, snap.At)
	archiveCancel()
	if writeErr != nil {
		p.opts.Logger.Warn("archive write failed for round", "error", writeErr.Error(), "at", snap.At.String())
		p.opts.Metrics.RecordError("archive", writeErr)
	}
	p.opts.Metrics.RecordArchiveWrite("round", writeErr)
	p.opts.Metrics.RecordRound(len(snap.Rows), time.Since(start))

	if p.opts.Bus != nil {
		p.opts.Bus.Publish(bus.RoundEvent{At: snap.At, Rows: snap.Rows})
	}

	p.mu.Lock()
	p.round++
	p.mu.Unlock()
}

func (p *Poller) setIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.st = statusIdle
}
