// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package poll_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/internal/archive"
	"github.com/jontk/squeue-ocel/internal/bus"
	"github.com/jontk/squeue-ocel/internal/fetch"
	"github.com/jontk/squeue-ocel/internal/poll"
	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
	"github.com/jontk/squeue-ocel/pkg/retry"
)

const pollSampleRow = "acct1|1|n/a|1|1|1|N/A|(null)|feat|0|grp1|1|INVALID|INVALID|myjob|4000M|INVALID|5.0|main|PENDING|Resources|N/A|2025-01-04T00:50:00|/home/u/work|/home/u/bin/run.sh"

type countingExecutor struct {
	calls int32
}

func (e *countingExecutor) RunSqueue(ctx context.Context, filter api.SnapshotFilter) ([]byte, error) {
	atomic.AddInt32(&e.calls, 1)
	return []byte(pollSampleRow), nil
}

func (e *countingExecutor) Close() error { return nil }

type goneExecutor struct {
	calls int32
}

func (e *goneExecutor) RunSqueue(ctx context.Context, filter api.SnapshotFilter) ([]byte, error) {
	atomic.AddInt32(&e.calls, 1)
	return nil, sqerrors.Transport(sqerrors.CodeSSHAuth, "authenticate to login node", nil)
}

func (e *goneExecutor) Close() error { return nil }

func newTestPoller(t *testing.T, exec *countingExecutor, interval time.Duration, b *bus.Bus) *poll.Poller {
	t.Helper()
	f := fetch.NewFetcher(exec, fetch.WithBackoff(&retry.ConstantBackoff{Delay: time.Millisecond, MaxAttempts: 1}))
	w := archive.NewWriter(archive.New(t.TempDir()))
	return poll.New(f, w, poll.Options{Interval: interval, Bus: b})
}

func TestPoller_RunsInitialRoundImmediately(t *testing.T) {
	exec := &countingExecutor{}
	p := newTestPoller(t, exec, time.Hour, nil)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	require.Eventually(t, func() bool { return p.Round() == 1 }, time.Second, 5*time.Millisecond)
}

func TestPoller_StartWhileRunningErrors(t *testing.T) {
	exec := &countingExecutor{}
	p := newTestPoller(t, exec, time.Hour, nil)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	err := p.Start(context.Background())
	assert.Error(t, err)
}

func TestPoller_StopEndsTheLoop(t *testing.T) {
	exec := &countingExecutor{}
	p := newTestPoller(t, exec, 10*time.Millisecond, nil)

	require.NoError(t, p.Start(context.Background()))
	require.Eventually(t, func() bool { return p.Round() >= 1 }, time.Second, 5*time.Millisecond)

	p.Stop()
	roundAtStop := p.Round()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, roundAtStop, p.Round())
}

func TestPoller_PublishesRoundsToBus(t *testing.T) {
	exec := &countingExecutor{}
	b := bus.New()
	_, events, unsubscribe := b.Subscribe()
	defer unsubscribe()

	p := newTestPoller(t, exec, time.Hour, b)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	select {
	case ev := <-events:
		require.Len(t, ev.Rows, 1)
		assert.Equal(t, "1", ev.Rows[0].JobID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published round")
	}
}

func TestPoller_TerminalFetchErrorStopsTheLoopAndRestarts(t *testing.T) {
	exec := &goneExecutor{}
	f := fetch.NewFetcher(exec, fetch.WithBackoff(&retry.ConstantBackoff{Delay: time.Millisecond, MaxAttempts: 1}))
	w := archive.NewWriter(archive.New(t.TempDir()))
	p := poll.New(f, w, poll.Options{Interval: 5 * time.Millisecond})

	require.NoError(t, p.Start(context.Background()))

	require.Eventually(t, func() bool {
		return p.Round() == 0 && atomic.LoadInt32(&exec.calls) >= 1
	}, time.Second, 5*time.Millisecond)

	callsAtStop := atomic.LoadInt32(&exec.calls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, callsAtStop, atomic.LoadInt32(&exec.calls), "loop kept polling a permanently gone session")

	require.NoError(t, p.Start(context.Background()), "a poller idled by a terminal error must be restartable")
	p.Stop()
}

func TestPoller_ContextCancelStopsLoop(t *testing.T) {
	exec := &countingExecutor{}
	f := fetch.NewFetcher(exec, fetch.WithBackoff(&retry.ConstantBackoff{Delay: time.Millisecond, MaxAttempts: 1}))
	w := archive.NewWriter(archive.New(t.TempDir()))
	p := poll.New(f, w, poll.Options{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	require.Eventually(t, func() bool { return p.Round() >= 1 }, time.Second, 5*time.Millisecond)

	cancel()
	roundAtCancel := p.Round()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, roundAtCancel, p.Round())
}
