// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package diff implements C4: computing the field-level delta between two
// consecutive squeue snapshots of the same job.
package diff

import (
	"time"

	"github.com/jontk/squeue-ocel/api"
)

// Diff compares prev and next, which must describe the same job, and
// returns the ordered set of field changes between them. time_left and
// time are never compared — they are volatile (api.VolatileFields) and
// excluded per testable property: two rounds that differ only in the
// scheduler's live countdown must not produce a delta.
//
// Changes are appended in api.JobRecord's declaration order so that the
// same pair of snapshots always produces the same delta byte-for-byte,
// regardless of how the snapshots themselves were constructed.
func Diff(prev, next api.JobRecord, at time.Time) api.JobDelta {
	d := api.JobDelta{JobID: next.JobID, At: at}

	if prev.Account != next.Account {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldAccount, Str: next.Account})
	}
	if prev.Group != next.Group {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldGroup, Str: next.Group})
	}
	if prev.Partition != next.Partition {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldPartition, Str: next.Partition})
	}
	if prev.Name != next.Name {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldName, Str: next.Name})
	}
	if prev.Command != next.Command {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldCommand, Str: next.Command})
	}
	if prev.WorkDir != next.WorkDir {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldWorkDir, Str: next.WorkDir})
	}
	if !samePtrString(prev.ExecHost, next.ExecHost) {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldExecHost, StrPtr: next.ExecHost})
	}
	if prev.MinCPUs != next.MinCPUs {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldMinCPUs, Int: next.MinCPUs})
	}
	if prev.CPUs != next.CPUs {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldCPUs, Int: next.CPUs})
	}
	if prev.Nodes != next.Nodes {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldNodes, Int: next.Nodes})
	}
	if prev.MinMemory != next.MinMemory {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldMinMemory, Str: next.MinMemory})
	}
	if prev.Priority != next.Priority {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldPriority, Float: next.Priority})
	}
	if !samePtrString(prev.Dependency, next.Dependency) {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldDependency, StrPtr: next.Dependency})
	}
	if prev.Features != next.Features {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldFeatures, Str: next.Features})
	}
	if prev.ArrayJobID != next.ArrayJobID {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldArrayJobID, Str: next.ArrayJobID})
	}
	if prev.StepJobID != next.StepJobID {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldStepJobID, Str: stepJobIDString(next.StepJobID)})
	}
	if !samePtrDuration(prev.TimeLimit, next.TimeLimit) {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldTimeLimit, Dur: next.TimeLimit})
	}
	if !prev.SubmitTime.Equal(next.SubmitTime) {
		t := next.SubmitTime
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldSubmitTime, Time: &t})
	}
	if !samePtrTime(prev.StartTime, next.StartTime) {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldStartTime, Time: next.StartTime})
	}
	if !samePtrTime(prev.EndTime, next.EndTime) {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldEndTime, Time: next.EndTime})
	}
	if prev.State != next.State {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldState, Str: string(next.State)})
	}
	if prev.Reason != next.Reason {
		d.Changes = append(d.Changes, api.FieldChange{Field: api.FieldReason, Str: next.Reason})
	}

	return d
}

func stepJobIDString(s api.StepJobID) string {
	if s.Index == "" {
		return s.Base
	}
	return s.Base + "_" + s.Index
}

func samePtrString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func samePtrDuration(a, b *time.Duration) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func samePtrTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
