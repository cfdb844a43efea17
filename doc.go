// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

/*
Package squeueocel documents the squeue-ocel toolchain, a pair of
command-line programs that turn a running SLURM scheduler's job queue into
a durable, object-centric audit trail.

# Overview

The toolchain has two halves, each its own binary:

  - cmd/squeue-poller (C1-C6): repeatedly runs `squeue` (locally or over
    SSH), parses its pipe-delimited output, diffs each row against the
    previous round, and archives the differences to a per-job directory
    tree. It can optionally serve the live round stream over WebSocket
    and Server-Sent Events for UI clients.
  - cmd/ocel-synth (C7-C8): replays an archive written by squeue-poller
    into Job/Account/Group/Host/Partition objects and a sequence of
    lifecycle events (submitted, started, completed, ...), then assembles
    and writes an OCEL 2.0 JSON log.

The two binaries communicate only through the archive on disk — there is
no in-process coupling between polling and synthesis, so an archive can be
replayed repeatedly, offline, without a live scheduler connection.

# Package layout

	api/               wire and domain types shared by both binaries
	internal/parse     C1/C2: row and duration parsing
	internal/fetch     C3: snapshot fetching over a SessionExecutor (local or SSH)
	internal/diff      C4: field-level diffing between rounds
	internal/archive   C5: the on-disk archive format (writer and reader)
	internal/poll      C6: the poll loop that ties fetch+archive together
	internal/bus       live round distribution (WebSocket/SSE)
	internal/synth     C7: per-job lifecycle event synthesis
	internal/ocel      C8: OCEL log assembly and validation
	pkg/auth           SSH authentication providers (password, key)
	pkg/config         environment- and flag-driven configuration
	pkg/logging        structured logging
	pkg/retry          generic retry/backoff primitives
	cmd/squeue-poller  daemon entrypoint
	cmd/ocel-synth     batch entrypoint

# Installation

	go install github.com/jontk/squeue-ocel/cmd/squeue-poller@latest
	go install github.com/jontk/squeue-ocel/cmd/ocel-synth@latest

# Basic usage

	squeue-poller --archive ./archive --interval 30s
	ocel-synth --archive ./archive --output ./ocel.json
*/
package squeueocel
