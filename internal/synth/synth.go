// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package synth

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/internal/archive"
	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
)

// epoch is the "since forever" sentinel timestamp for a Job object's
// static seed attributes (command, work_dir, cpus, min_memory at T0),
// which are refined by real-timestamped entries as soon as a delta
// changes them.
var epoch = time.Unix(0, 0).UTC()

// JobResult is one job's synthesized Job object and lifecycle events,
// plus the secondary object ids it discovered along the way (for the
// caller to union across jobs before handing everything to C8).
type JobResult struct {
	Object     api.Object
	Events     []api.Event
	Account    string
	Groups     []string
	Hosts      []string
	Partitions []string
}

// SynthesizeJob replays one job's recorded history (initial snapshot plus
// ordered deltas) into a JobResult. It never returns an error for a
// malformed individual delta file — archive.ReadJobHistory already failed
// fast on structural read errors before this is called; SynthesizeJob
// itself is pure in-memory replay and cannot fail.
func SynthesizeJob(hist archive.JobHistory, opts Options) JobResult {
	opts = opts.withDefaults()

	row := hist.Snapshot
	t0 := hist.SnapshotAt
	account := normalizeAccount(row.Account, row.WorkDir, opts.AccountExtractor)

	obj := api.Object{
		ID:   row.JobID,
		Type: api.ObjectTypeJob,
		Attributes: []api.ObjectAttribute{
			{Name: "command", Value: commandBasename(row.Command), Time: epoch},
			{Name: "work_dir", Value: row.WorkDir, Time: epoch},
			{Name: "cpus", Value: row.CPUs, Time: epoch},
			{Name: "min_memory", Value: row.MinMemory, Time: epoch},
			{Name: "state", Value: string(row.State), Time: t0},
		},
		Relationships: []api.Relationship{
			{ObjectID: "acc_" + account, Qualifier: "submitted by"},
			{ObjectID: "group_" + row.Group, Qualifier: "submitted by group"},
			{ObjectID: "part_" + row.Partition, Qualifier: "submitted on"},
		},
	}

	groups := map[string]struct{}{row.Group: {}}
	partitions := map[string]struct{}{row.Partition: {}}
	hosts := map[string]struct{}{}

	if row.ExecHost != nil {
		obj.Relationships = append(obj.Relationships, api.Relationship{ObjectID: "host_" + *row.ExecHost, Qualifier: "executed on"})
		hosts[*row.ExecHost] = struct{}{}
	}

	seq := 0
	nextID := func(prefix string) string {
		id := fmt.Sprintf("%s-%s-%d", prefix, row.JobID, seq)
		seq++
		return id
	}

	events := []api.Event{{
		ID:   nextID("submit"),
		Type: api.EventTypeSubmitJob,
		Time: toUTC(row.SubmitTime, opts.SchedulerUTCOffset),
		Relationships: []api.Relationship{
			{ObjectID: row.JobID, Qualifier: "job"},
			{ObjectID: "acc_" + account, Qualifier: "submitter"},
		},
	}}

	var startEvent *api.Event
	if row.State != api.JobStatePending && row.StartTime != nil {
		e := bootstrapStartEvent(row, opts, nextID)
		startEvent = &e
	}

	lastTi := t0
	for _, td := range hist.Deltas {
		if td.At.Before(lastTi) {
			opts.Logger.Warn("delta going backwards in time", "job_id", row.JobID, "last", lastTi, "this", td.At)
		}
		lastTi = td.At

		startChanged := false
		for _, ch := range td.Delta.Changes {
			switch ch.Field {
			case api.FieldCommand:
				row.Command = ch.Str
				obj.Attributes = append(obj.Attributes, api.ObjectAttribute{Name: "command", Value: commandBasename(ch.Str), Time: td.At})
			case api.FieldWorkDir:
				row.WorkDir = ch.Str
				obj.Attributes = append(obj.Attributes, api.ObjectAttribute{Name: "work_dir", Value: ch.Str, Time: td.At})
			case api.FieldMinMemory:
				row.MinMemory = ch.Str
				obj.Attributes = append(obj.Attributes, api.ObjectAttribute{Name: "min_memory", Value: ch.Str, Time: td.At})
			case api.FieldPriority:
				row.Priority = ch.Float
				obj.Attributes = append(obj.Attributes, api.ObjectAttribute{Name: "priority", Value: ch.Float, Time: td.At})
			case api.FieldExecHost:
				if ch.StrPtr != nil {
					h := *ch.StrPtr
					row.ExecHost = ch.StrPtr
					hosts[h] = struct{}{}
					obj.Relationships = append(obj.Relationships, api.Relationship{ObjectID: "host_" + h, Qualifier: "executed on"})
				}
			case api.FieldGroup:
				row.Group = ch.Str
				groups[ch.Str] = struct{}{}
			case api.FieldPartition:
				row.Partition = ch.Str
				partitions[ch.Str] = struct{}{}
			case api.FieldAccount:
				// No effect: the job's "submitted by" relationship is fixed
				// at creation time and never rewritten, and the new account
				// id is not registered as an object (JobResult.Account keeps
				// the initial, normalized account).
			case api.FieldCPUs:
				// Updates the running record only (read by the COMPLETING
				// cpus re-stamp); no event, no attribute.
				row.CPUs = ch.Int
			case api.FieldReason:
				row.Reason = ch.Str
			case api.FieldState:
				newState := api.JobState(ch.Str)
				row.State = newState
				obj.Attributes = append(obj.Attributes, api.ObjectAttribute{Name: "state", Value: ch.Str, Time: td.At})
				if newState == api.JobStateCompleting && !opts.DisableCPURestampAtCompleting {
					obj.Attributes = append(obj.Attributes, api.ObjectAttribute{Name: "cpus", Value: row.CPUs, Time: td.At})
				}
				if ev, ok := stateEvent(newState, row, td.At, nextID, opts); ok {
					events = append(events, ev)
				}
			case api.FieldStartTime:
				if ch.Time != nil {
					row.StartTime = ch.Time
					startChanged = true
				}
			default:
				// job_id, min_cpus, nodes, end_time, dependency,
				// features, array_job_id, step_job_id, time_limit, name,
				// submit_time: no event, no object update.
			}
		}

		// A start_time change is resolved after the whole delta is applied,
		// so a state or exec_host change in the same delta is already seen.
		if startChanged && row.State != api.JobStatePending {
			if startEvent != nil {
				startEvent.Time = toUTC(*row.StartTime, opts.SchedulerUTCOffset)
			} else {
				e := bootstrapStartEvent(row, opts, nextID)
				startEvent = &e
			}
		}
	}

	if startEvent != nil {
		events = append(events, *startEvent)
	}

	return JobResult{
		Object:     obj,
		Events:     events,
		Account:    account,
		Groups:     setKeys(groups),
		Hosts:      setKeys(hosts),
		Partitions: setKeys(partitions),
	}
}

func bootstrapStartEvent(row api.JobRecord, opts Options, nextID func(string) string) api.Event {
	e := api.Event{
		ID:   nextID("start"),
		Type: api.EventTypeJobStarted,
		Time: toUTC(*row.StartTime, opts.SchedulerUTCOffset),
		Relationships: []api.Relationship{
			{ObjectID: row.JobID, Qualifier: "job"},
			{ObjectID: "group_" + row.Group, Qualifier: "for"},
		},
	}
	if row.ExecHost != nil {
		e.Relationships = append(e.Relationships, api.Relationship{ObjectID: "host_" + *row.ExecHost, Qualifier: "host"})
	}
	return e
}

// stateEvent maps an observed state transition to a lifecycle event per
// Table B. RUNNING and PENDING transitions (and the open OTHER variant)
// are ignored — Start is derived only from start_time, and a bounce back
// to PENDING is unexpected and carries no event.
func stateEvent(state api.JobState, row api.JobRecord, at time.Time, nextID func(string) string, opts Options) (api.Event, bool) {
	var prefix, eventType string
	switch state {
	case api.JobStateRunning, api.JobStatePending:
		return api.Event{}, false
	case api.JobStateCompleting:
		prefix, eventType = "ending", api.EventTypeJobEnding
	case api.JobStateCompleted:
		prefix, eventType = "ended", api.EventTypeJobCompleted
	case api.JobStateCancelled:
		prefix, eventType = "cancelled", api.EventTypeJobCancelled
	case api.JobStateFailed:
		prefix, eventType = "failed", api.EventTypeJobFailed
	case api.JobStateTimeout:
		prefix, eventType = "timeout", api.EventTypeJobTimeout
	case api.JobStateOutOfMemory:
		prefix, eventType = "oom", api.EventTypeJobOutOfMemory
	case api.JobStateNodeFail:
		prefix, eventType = "node-fail", api.EventTypeJobNodeFail
	default:
		return api.Event{}, false
	}

	ev := api.Event{
		ID:            nextID(prefix),
		Type:          eventType,
		Time:          at,
		Relationships: []api.Relationship{{ObjectID: row.JobID, Qualifier: "job"}},
	}
	reasonEligible := eventType == api.EventTypeJobFailed || (!opts.DisableReasonOnAllTerminalEvents && isTerminalEventType(eventType))
	if reasonEligible && row.Reason != "" {
		ev.Attributes = []api.EventAttribute{{Name: "reason", Value: row.Reason}}
	}
	return ev, true
}

// isTerminalEventType reports whether t marks the end of a job's
// lifecycle. Job Ending (the COMPLETING transition) is deliberately
// excluded: it precedes the terminal state, it does not conclude it.
func isTerminalEventType(t string) bool {
	switch t {
	case api.EventTypeJobCompleted, api.EventTypeJobCancelled, api.EventTypeJobFailed,
		api.EventTypeJobTimeout, api.EventTypeJobOutOfMemory, api.EventTypeJobNodeFail:
		return true
	default:
		return false
	}
}

func commandBasename(command string) string {
	if command == "" {
		return command
	}
	return path.Base(command)
}

// SynthesizeAll replays every job directory under arc concurrently,
// sharding job ids across opts.Concurrency goroutines so each shard's
// accounts/groups/hosts/partitions discovery accumulates without a shared
// lock; shards are unioned once all complete. A job directory that fails
// to read (missing snapshot, corrupt JSON) is logged and skipped — it
// never aborts the run.
func SynthesizeAll(ctx context.Context, arc archive.Archive, opts Options) (Collected, error) {
	opts = opts.withDefaults()

	ids, err := arc.ListJobIDs()
	if err != nil {
		return Collected{}, sqerrors.IO(sqerrors.CodeArchiveRead, "list job directories", err)
	}

	shards := shardJobIDs(ids, opts.Concurrency)
	accs := make([]*accumulator, len(shards))

	var wg sync.WaitGroup
	wg.Add(len(shards))
	for i, shard := range shards {
		i, shard := i, shard
		go func() {
			defer wg.Done()
			acc := newAccumulator()
			accs[i] = acc
			for _, jobID := range shard {
				select {
				case <-ctx.Done():
					return
				default:
				}

				hist, err := arc.ReadJobHistory(jobID)
				if err != nil {
					opts.Logger.Error("skipping job during synthesis", "job_id", jobID, "error", err)
					opts.Metrics.RecordError("synth", err)
					continue
				}
				start := time.Now()
				result := SynthesizeJob(hist, opts)
				opts.Metrics.RecordSynthesisJob(len(result.Events), time.Since(start))
				acc.add(result)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Collected{}, err
	}

	return mergeAccumulators(accs), nil
}
