// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jontk/squeue-ocel/api"
)

// RowTimeLayout is the timestamp shape squeue emits for %e, %S, and %V:
// a naive (zone-less) local wall-clock time. Callers that need an absolute
// instant must first resolve which offset that wall-clock time was
// observed in — squeue does not say, which is why the synthesizer takes an
// explicit configured offset rather than assuming UTC.
const RowTimeLayout = "2006-01-02T15:04:05"

const (
	sentinelNA       = "n/a"
	sentinelNAUpper  = "N/A"
	sentinelNull     = "(null)"
	sentinelInvalid  = "INVALID"
)

// ParseRow parses one pipe-delimited squeue line produced by the
// api.SqueueFieldOrder format string into an api.JobRecord.
func ParseRow(line string) (api.JobRecord, error) {
	cols := strings.Split(line, "|")
	if len(cols) != api.SqueueFieldCount {
		return api.JobRecord{}, fmt.Errorf("parse: expected %d fields, got %d in row %q", api.SqueueFieldCount, len(cols), line)
	}

	var rec api.JobRecord
	var err error

	rec.Account = cols[0]
	rec.JobID = cols[1]

	rec.ExecHost = optionalString(cols[2], sentinelNA)

	if rec.MinCPUs, err = parseInt(cols[3]); err != nil {
		return api.JobRecord{}, fmt.Errorf("parse: min_cpus: %w", err)
	}
	if rec.CPUs, err = parseInt(cols[4]); err != nil {
		return api.JobRecord{}, fmt.Errorf("parse: cpus: %w", err)
	}
	if rec.Nodes, err = parseInt(cols[5]); err != nil {
		return api.JobRecord{}, fmt.Errorf("parse: nodes: %w", err)
	}

	if rec.EndTime, err = optionalRowTime(cols[6], sentinelNAUpper); err != nil {
		return api.JobRecord{}, fmt.Errorf("parse: end_time: %w", err)
	}

	rec.Dependency = optionalString(cols[7], sentinelNull)
	rec.Features = cols[8]
	rec.ArrayJobID = cols[9]
	rec.Group = cols[10]
	rec.StepJobID = parseStepJobID(cols[11])

	rec.TimeLimit = optionalDuration(cols[12], sentinelInvalid)
	rec.TimeLeft = optionalDuration(cols[13], sentinelInvalid)

	rec.Name = cols[14]
	rec.MinMemory = cols[15]

	rec.Time = optionalDuration(cols[16], sentinelInvalid)

	if rec.Priority, err = strconv.ParseFloat(cols[17], 64); err != nil {
		return api.JobRecord{}, fmt.Errorf("parse: priority: %w", err)
	}

	rec.Partition = cols[18]
	rec.State = api.JobState(cols[19])
	rec.Reason = cols[20]

	startTime, err := optionalRowTime(cols[21], sentinelNAUpper)
	if err != nil {
		return api.JobRecord{}, fmt.Errorf("parse: start_time: %w", err)
	}
	rec.StartTime = startTime

	submitTime, err := time.Parse(RowTimeLayout, cols[22])
	if err != nil {
		return api.JobRecord{}, fmt.Errorf("parse: submit_time: %w", err)
	}
	rec.SubmitTime = submitTime

	rec.WorkDir = cols[23]
	rec.Command = cols[24]

	return rec, nil
}

func optionalString(v, sentinel string) *string {
	if v == sentinel {
		return nil
	}
	out := v
	return &out
}

func optionalRowTime(v, sentinel string) (*time.Time, error) {
	if v == sentinel {
		return nil, nil
	}
	t, err := time.Parse(RowTimeLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// optionalDuration parses v as a duration, returning nil for the sentinel
// and for any value ParseDuration rejects — a malformed duration is absent
// data, never a fatal row error (mirrors the original's
// parse_slurm_duration(s).map(Some).unwrap_or_default()).
func optionalDuration(v, sentinel string) *time.Duration {
	if v == sentinel {
		return nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return nil
	}
	return &d
}

func parseInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// parseStepJobID splits a STEPJOBID field such as "49869434_2" or
// "49616001_[3-10%1]" on the first underscore into a base job id and an
// optional array index or range expression.
func parseStepJobID(v string) api.StepJobID {
	if idx := strings.IndexByte(v, '_'); idx >= 0 {
		return api.StepJobID{Base: v[:idx], Index: v[idx+1:]}
	}
	return api.StepJobID{Base: v}
}
