// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jontk/squeue-ocel/api"
)

// JobHistory is one job's full recorded lifecycle: its initial snapshot and
// the ordered sequence of deltas observed after it.
type JobHistory struct {
	JobID      string
	Snapshot   api.JobRecord
	SnapshotAt time.Time
	Deltas     []TimedDelta
}

// TimedDelta pairs a recorded delta with the round time it was written at,
// derived from its filename rather than its (possibly absent) internal
// timestamp.
type TimedDelta struct {
	At    time.Time
	Delta api.JobDelta
}

// ListJobIDs returns every job id that has a subdirectory under the
// archive root, i.e. every job that was observed at least once.
func (a Archive) ListJobIDs() ([]string, error) {
	entries, err := os.ReadDir(a.Root)
	if err != nil {
		return nil, fmt.Errorf("archive: read root: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ReadJobHistory loads jobID's initial snapshot and every subsequent delta,
// in chronological order. A job directory with no snapshot file (only
// deltas, which should never happen under normal writer operation) is
// reported as an error rather than silently skipped.
func (a Archive) ReadJobHistory(jobID string) (JobHistory, error) {
	dir := a.JobDir(jobID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return JobHistory{}, fmt.Errorf("archive: read job dir %s: %w", jobID, err)
	}

	var snapshotName string
	var deltaNames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasPrefix(name, deltaFilePrefix) {
			deltaNames = append(deltaNames, name)
		} else if snapshotName == "" {
			snapshotName = name
		} else if name < snapshotName {
			// Guard against two non-delta files in one job dir: keep the
			// earliest by filename, which is also the earliest by time
			// since CleanTime-derived names sort lexically by instant.
			snapshotName = name
		}
	}

	if snapshotName == "" {
		return JobHistory{}, fmt.Errorf("archive: job %s has no initial snapshot file", jobID)
	}

	snapshotAt, err := ParseCleanTime(strings.TrimSuffix(snapshotName, ".json"))
	if err != nil {
		return JobHistory{}, fmt.Errorf("archive: parse snapshot time for job %s: %w", jobID, err)
	}

	var snapshot api.JobRecord
	if err := readJSON(filepath.Join(dir, snapshotName), &snapshot); err != nil {
		return JobHistory{}, fmt.Errorf("archive: read snapshot for job %s: %w", jobID, err)
	}

	sort.Strings(deltaNames)

	deltas := make([]TimedDelta, 0, len(deltaNames))
	for _, name := range deltaNames {
		at, err := ParseCleanTime(strings.TrimSuffix(strings.TrimPrefix(name, deltaFilePrefix), ".json"))
		if err != nil {
			return JobHistory{}, fmt.Errorf("archive: parse delta time for job %s file %s: %w", jobID, name, err)
		}

		var d api.JobDelta
		if err := readJSON(filepath.Join(dir, name), &d); err != nil {
			return JobHistory{}, fmt.Errorf("archive: read delta for job %s file %s: %w", jobID, name, err)
		}
		if err := d.Validate(); err != nil {
			return JobHistory{}, fmt.Errorf("archive: job %s file %s: %w", jobID, name, err)
		}

		deltas = append(deltas, TimedDelta{At: at, Delta: d})
	}

	return JobHistory{JobID: jobID, Snapshot: snapshot, SnapshotAt: snapshotAt, Deltas: deltas}, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
