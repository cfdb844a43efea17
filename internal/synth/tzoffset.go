// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package synth

import "time"

// DefaultSchedulerUTCOffset is the timezone squeue's unqualified
// timestamps (e.g. submit_time, start_time) are assumed to be recorded in,
// before conversion to UTC. It matches the offset the archive was
// originally captured under; operators whose scheduler runs in a
// different zone should override it via Options.SchedulerUTCOffset.
const DefaultSchedulerUTCOffset = time.Hour

// toUTC interprets t (a naive timestamp with no zone info, as squeue emits)
// as having been recorded at a fixed offset from UTC and converts it.
func toUTC(t time.Time, offset time.Duration) time.Time {
	fixed := time.FixedZone("scheduler", int(offset.Seconds()))
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), fixed)
	return local.UTC()
}
