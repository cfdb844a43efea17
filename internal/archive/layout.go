// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package archive implements C5 (the differential archive writer) and the
// replay-side file layout that the OCEL synthesizer (C7) reads back.
//
// An archive is a directory tree rooted at Root:
//
//	<root>/<cleaned-round-time>.json       the set of job ids seen this round
//	<root>/<job-id>/<cleaned-round-time>.json     initial full snapshot
//	<root>/<job-id>/DELTA-<cleaned-round-time>.json   one round's field changes
//
// Round timestamps are RFC 3339 with every ":" replaced by "_" so they are
// safe to use as filenames on filesystems that reject colons.
package archive

import (
	"path/filepath"
	"strings"
	"time"
)

// Archive addresses the files making up one differential archive rooted at
// Root.
type Archive struct {
	Root string
}

// New returns an Archive rooted at root.
func New(root string) Archive {
	return Archive{Root: root}
}

// CleanTime renders t as an RFC 3339 timestamp safe for use in a filename.
func CleanTime(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format(time.RFC3339), ":", "_")
}

// ParseCleanTime reverses CleanTime.
func ParseCleanTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.ReplaceAll(s, "_", ":"))
}

// RoundIDsPath is the file recording every job id present in the round
// observed at t.
func (a Archive) RoundIDsPath(t time.Time) string {
	return filepath.Join(a.Root, CleanTime(t)+".json")
}

// JobDir is the per-job subdirectory holding a job's initial snapshot and
// subsequent deltas.
func (a Archive) JobDir(jobID string) string {
	return filepath.Join(a.Root, jobID)
}

// JobSnapshotPath is the full initial snapshot written the first time
// jobID is observed.
func (a Archive) JobSnapshotPath(jobID string, t time.Time) string {
	return filepath.Join(a.JobDir(jobID), CleanTime(t)+".json")
}

// JobDeltaPath is one round's delta file for jobID.
func (a Archive) JobDeltaPath(jobID string, t time.Time) string {
	return filepath.Join(a.JobDir(jobID), "DELTA-"+CleanTime(t)+".json")
}

// deltaFilePrefix is the prefix that distinguishes a delta file from a job
// directory's initial snapshot file when listing a job directory.
const deltaFilePrefix = "DELTA-"
