// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"time"

	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
)

// Field identifies one JobRecord column. The differential archive writer
// (C5) and the lifecycle synthesizer (C7) both switch on Field, so its set
// must stay exactly in step with JobRecord's fields.
type Field string

const (
	FieldAccount    Field = "account"
	FieldGroup      Field = "group"
	FieldPartition  Field = "partition"
	FieldName       Field = "name"
	FieldCommand    Field = "command"
	FieldWorkDir    Field = "work_dir"
	FieldExecHost   Field = "exec_host"
	FieldMinCPUs    Field = "min_cpus"
	FieldCPUs       Field = "cpus"
	FieldNodes      Field = "nodes"
	FieldMinMemory  Field = "min_memory"
	FieldPriority   Field = "priority"
	FieldDependency Field = "dependency"
	FieldFeatures   Field = "features"
	FieldArrayJobID Field = "array_job_id"
	FieldStepJobID  Field = "step_job_id"
	FieldTimeLimit  Field = "time_limit"
	FieldSubmitTime Field = "submit_time"
	FieldStartTime  Field = "start_time"
	FieldEndTime    Field = "end_time"
	FieldState      Field = "state"
	FieldReason     Field = "reason"
)

// VolatileFields are excluded from diffing: they change on every poll from
// wall-clock passage alone (time_left counts down, time counts up) and
// carry no information about the job itself.
var VolatileFields = map[Field]bool{
	"time_left": true,
	"time":      true,
}

// knownFields is every Field tag a delta is ever allowed to carry, diffed
// or not. It must stay in step with the Field const block above; a delta
// file whose Field falls outside this set was written by something other
// than this pipeline's own differ (C4) and is rejected rather than
// silently replayed.
var knownFields = map[Field]bool{
	FieldAccount:    true,
	FieldGroup:      true,
	FieldPartition:  true,
	FieldName:       true,
	FieldCommand:    true,
	FieldWorkDir:    true,
	FieldExecHost:   true,
	FieldMinCPUs:    true,
	FieldCPUs:       true,
	FieldNodes:      true,
	FieldMinMemory:  true,
	FieldPriority:   true,
	FieldDependency: true,
	FieldFeatures:   true,
	FieldArrayJobID: true,
	FieldStepJobID:  true,
	FieldTimeLimit:  true,
	FieldSubmitTime: true,
	FieldStartTime:  true,
	FieldEndTime:    true,
	FieldState:      true,
	FieldReason:     true,
}

// FieldChange is one changed column between two consecutive snapshots of
// the same job, keyed by Field with the new value carried in the matching
// typed accessor. Exactly one of the typed fields is meaningful for a given
// Field; which one is determined by the Field itself, mirroring a
// hand-written tagged union rather than a reflective diff.
type FieldChange struct {
	Field Field

	Str    string         // account, group, partition, name, command, work_dir,
	                       // min_memory, features, array_job_id,
	                       // step_job_id, reason, state (raw JobState string)
	StrPtr *string        // exec_host, dependency (nil when the new value is absent)
	Int    int            // min_cpus, cpus, nodes
	Float  float64        // priority
	Dur    *time.Duration // time_limit
	Time   *time.Time     // submit_time, start_time, end_time
}

// JobDelta is the ordered set of field changes observed for one job between
// two consecutive poll rounds. Order follows JobRecord's declaration order
// (testable property 8: identical input rounds must produce
// byte-identical delta orderings across runs, independent of map iteration
// order elsewhere in the pipeline).
type JobDelta struct {
	JobID   string
	At      time.Time
	Changes []FieldChange
}

// IsEmpty reports whether the delta carries no changes. An empty delta is
// never written to the archive (C5 §5 edge case: two identical consecutive
// snapshots produce no DELTA file).
func (d JobDelta) IsEmpty() bool {
	return len(d.Changes) == 0
}

// Validate checks that every change's Field is one this pipeline
// recognizes. Called when a delta is read back off disk (C7), never when
// it is produced (C4 only ever emits known fields by construction).
func (d JobDelta) Validate() error {
	for _, ch := range d.Changes {
		if !knownFields[ch.Field] {
			return sqerrors.Parse(sqerrors.CodeFieldValue, fmt.Sprintf("job %s: unknown delta field tag %q", d.JobID, ch.Field), nil)
		}
	}
	return nil
}
