// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/squeue-ocel/api"
	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
	"github.com/jontk/squeue-ocel/pkg/retry"
)

const fetchSampleRow = "acct1|1|n/a|1|1|1|N/A|(null)|feat|0|grp1|1|INVALID|INVALID|myjob|4000M|INVALID|5.0|main|PENDING|Resources|N/A|2025-01-04T00:50:00|/home/u/work|/home/u/bin/run.sh"

type stubExecutor struct {
	calls   int
	outputs [][]byte
	errs    []error
	closed  bool
}

func (s *stubExecutor) RunSqueue(ctx context.Context, filter api.SnapshotFilter) ([]byte, error) {
	i := s.calls
	s.calls++
	var out []byte
	var err error
	if i < len(s.outputs) {
		out = s.outputs[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return out, err
}

func (s *stubExecutor) Close() error { s.closed = true; return nil }

func noBackoff() retry.BackoffStrategy {
	return &retry.ConstantBackoff{Delay: time.Millisecond, MaxAttempts: 2}
}

func TestFetch_SuccessParsesRows(t *testing.T) {
	exec := &stubExecutor{outputs: [][]byte{[]byte(fetchSampleRow)}}
	f := NewFetcher(exec, WithBackoff(noBackoff()))

	snap, err := f.Fetch(context.Background(), api.SnapshotFilter{Mode: api.FilterAll})
	require.NoError(t, err)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "1", snap.Rows[0].JobID)
	assert.False(t, snap.At.IsZero())
}

func TestFetch_RetriesTransientFailure(t *testing.T) {
	exec := &stubExecutor{
		outputs: [][]byte{nil, []byte(fetchSampleRow)},
		errs:    []error{sqerrors.Transport(sqerrors.CodeExecFailed, "boom", nil), nil},
	}
	f := NewFetcher(exec, WithBackoff(noBackoff()))

	snap, err := f.Fetch(context.Background(), api.SnapshotFilter{Mode: api.FilterAll})
	require.NoError(t, err)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, 2, exec.calls)
}

func TestFetch_ExhaustsRetriesAndFails(t *testing.T) {
	boom := sqerrors.Transport(sqerrors.CodeExecFailed, "boom", nil)
	exec := &stubExecutor{errs: []error{boom, boom, boom}}
	f := NewFetcher(exec, WithBackoff(noBackoff()))

	_, err := f.Fetch(context.Background(), api.SnapshotFilter{Mode: api.FilterAll})
	require.Error(t, err)
}
