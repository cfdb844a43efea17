// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package api defines the wire and domain types shared between the squeue
// differential poller and the OCEL synthesizer: the parsed JobRecord, its
// diffable delta encoding, the archive's session-executor seam, and the
// OCEL object-centric event log structures emitted at the end of the
// pipeline.
package api
