// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package fetch implements C3: running squeue and returning its raw
// output, either as a local subprocess or over SSH.
package fetch

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/jontk/squeue-ocel/api"
	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
)

// LocalExecutor runs squeue as a subprocess on the current host.
type LocalExecutor struct {
	// SqueuePath overrides the squeue binary location. Defaults to
	// "squeue", resolved via $PATH.
	SqueuePath string
}

// NewLocalExecutor returns a LocalExecutor using the default squeue
// binary resolution.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{SqueuePath: "squeue"}
}

func (e *LocalExecutor) RunSqueue(ctx context.Context, filter api.SnapshotFilter) ([]byte, error) {
	args := buildArgs(filter)
	bin := e.SqueuePath
	if bin == "" {
		bin = "squeue"
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, sqerrors.Transport(sqerrors.CodeExecTimeout, "squeue timed out", ctx.Err())
		}
		return nil, sqerrors.Transport(sqerrors.CodeExecFailed, "squeue exited with an error: "+stderr.String(), err)
	}

	return stdout.Bytes(), nil
}

func (e *LocalExecutor) Close() error { return nil }

// buildArgs translates a SnapshotFilter into squeue's command-line flags.
func buildArgs(filter api.SnapshotFilter) []string {
	args := []string{"-h", "-a", "-M", "all", "-t", "all", "--format=" + api.SqueueFieldOrder}

	switch filter.Mode {
	case api.FilterMine:
		args = append(args, "--me")
	case api.FilterJobIDs:
		if len(filter.JobIDs) > 0 {
			args = append(args, "-j", joinComma(filter.JobIDs))
		}
	case api.FilterAll:
		// -a (every user's jobs) is already part of the base flags above.
	}

	return args
}

func joinComma(ss []string) string {
	out := ss[0]
	for _, s := range ss[1:] {
		out += "," + s
	}
	return out
}
