// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package ocel implements C8: assembling the per-job output of C7 into a
// single OCEL 2.0 log, materializing secondary objects, declaring object
// and event type schemas, and checking the global identifier invariants
// before the log is considered valid.
package ocel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/internal/synth"
	sqerrors "github.com/jontk/squeue-ocel/pkg/errors"
)

// Assemble flattens a synth.Collected result into a full OCEL Log: it
// copies every Job object/event verbatim, materializes one Account/Group/
// Host/Partition object per discovered id with the §3 prefix scheme,
// and declares the five object types and nine event types this pipeline
// ever produces.
//
// Assemble then checks the global invariants (object id uniqueness, event
// id uniqueness, every relationship target resolves) and returns an
// Invariant error — fatal to synthesis, per the error-kind policy — if any
// fails, rather than writing a log with dangling references.
func Assemble(c synth.Collected) (api.Log, error) {
	log := api.Log{
		ObjectTypes: objectTypes(),
		EventTypes:  eventTypes(),
	}

	for _, jr := range c.Jobs {
		log.Objects = append(log.Objects, jr.Object)
		log.Events = append(log.Events, jr.Events...)
	}

	for _, id := range c.Accounts {
		log.Objects = append(log.Objects, api.Object{ID: "acc_" + id, Type: api.ObjectTypeAccount})
	}
	for _, id := range c.Groups {
		log.Objects = append(log.Objects, api.Object{ID: "group_" + id, Type: api.ObjectTypeGroup})
	}
	for _, id := range c.Hosts {
		log.Objects = append(log.Objects, api.Object{ID: "host_" + id, Type: api.ObjectTypeHost})
	}
	for _, id := range c.Partitions {
		log.Objects = append(log.Objects, api.Object{ID: "part_" + id, Type: api.ObjectTypePartition})
	}

	if err := checkInvariants(log); err != nil {
		return api.Log{}, err
	}

	return log, nil
}

func objectTypes() []api.ObjectType {
	return []api.ObjectType{
		{
			Name: api.ObjectTypeJob,
			Attributes: []api.TypeAttribute{
				{Name: "state", Type: api.AttributeTypeString},
				{Name: "command", Type: api.AttributeTypeString},
				{Name: "work_dir", Type: api.AttributeTypeString},
				{Name: "cpus", Type: api.AttributeTypeInteger},
				{Name: "min_memory", Type: api.AttributeTypeString},
				{Name: "priority", Type: api.AttributeTypeFloat},
			},
		},
		{Name: api.ObjectTypeAccount},
		{Name: api.ObjectTypeGroup},
		{Name: api.ObjectTypeHost},
		{Name: api.ObjectTypePartition},
	}
}

func eventTypes() []api.EventType {
	reason := []api.TypeAttribute{{Name: "reason", Type: api.AttributeTypeString}}
	return []api.EventType{
		{Name: api.EventTypeSubmitJob},
		{Name: api.EventTypeJobStarted},
		{Name: api.EventTypeJobEnding},
		{Name: api.EventTypeJobCompleted, Attributes: reason},
		{Name: api.EventTypeJobCancelled, Attributes: reason},
		{Name: api.EventTypeJobFailed, Attributes: reason},
		{Name: api.EventTypeJobTimeout, Attributes: reason},
		{Name: api.EventTypeJobOutOfMemory, Attributes: reason},
		{Name: api.EventTypeJobNodeFail, Attributes: reason},
	}
}

// checkInvariants enforces the three global invariants spec.md §4.8/§8
// demands at emit time: unique object ids, unique event ids, and every
// relationship target resolving to a present object.
func checkInvariants(log api.Log) error {
	objectIDs := make(map[string]bool, len(log.Objects))
	for _, o := range log.Objects {
		if objectIDs[o.ID] {
			return sqerrors.Invariant(sqerrors.CodeDuplicateObjectID, fmt.Sprintf("duplicate object id %q", o.ID))
		}
		objectIDs[o.ID] = true
	}

	eventIDs := make(map[string]bool, len(log.Events))
	for _, e := range log.Events {
		if eventIDs[e.ID] {
			return sqerrors.Invariant(sqerrors.CodeDuplicateEventID, fmt.Sprintf("duplicate event id %q", e.ID))
		}
		eventIDs[e.ID] = true
	}

	for _, o := range log.Objects {
		for _, r := range o.Relationships {
			if !objectIDs[r.ObjectID] {
				return sqerrors.Invariant(sqerrors.CodeDanglingReference, fmt.Sprintf("object %q relationship %q targets unknown object %q", o.ID, r.Qualifier, r.ObjectID))
			}
		}
	}
	for _, e := range log.Events {
		for _, r := range e.Relationships {
			if !objectIDs[r.ObjectID] {
				return sqerrors.Invariant(sqerrors.CodeDanglingReference, fmt.Sprintf("event %q relationship %q targets unknown object %q", e.ID, r.Qualifier, r.ObjectID))
			}
		}
	}

	return nil
}

// WriteFile serializes log as OCEL JSON 2.0 to path.
func WriteFile(path string, log api.Log) error {
	f, err := os.Create(path)
	if err != nil {
		return sqerrors.IO(sqerrors.CodeOCELWrite, "create ocel output file", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(log); err != nil {
		return sqerrors.IO(sqerrors.CodeOCELWrite, "encode ocel log", err)
	}
	return nil
}
