// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package api

import "time"

// The types below implement the OCEL (object-centric event log) 2.0 JSON
// shape: https://www.ocel-standard.org/2.0/ocel20-specification.pdf.
// synth (C7) builds the Objects/Events; ocel (C8) assembles the full Log
// and is the only component that touches ObjectTypes/EventTypes.

// AttributeType is an OCEL 2.0 attribute type name.
type AttributeType string

const (
	AttributeTypeString    AttributeType = "string"
	AttributeTypeTime      AttributeType = "time"
	AttributeTypeInteger   AttributeType = "integer"
	AttributeTypeFloat     AttributeType = "float"
	AttributeTypeBoolean   AttributeType = "boolean"
)

// TypeAttribute declares one attribute name and type on an ObjectType or
// EventType.
type TypeAttribute struct {
	Name string        `json:"name"`
	Type AttributeType `json:"type"`
}

// ObjectType is one entry in the log's top-level "objectTypes" array.
type ObjectType struct {
	Name       string          `json:"name"`
	Attributes []TypeAttribute `json:"attributes,omitempty"`
}

// EventType is one entry in the log's top-level "eventTypes" array.
type EventType struct {
	Name       string          `json:"name"`
	Attributes []TypeAttribute `json:"attributes,omitempty"`
}

// ObjectAttribute is one timestamped value of an object's attribute; OCEL
// 2.0 objects carry attribute history, not a single current value, since an
// object such as a Job changes state over its lifetime.
type ObjectAttribute struct {
	Name  string    `json:"name"`
	Value any       `json:"value"`
	Time  time.Time `json:"time"`
}

// Relationship is a qualified edge from an object or event to another
// object, e.g. a Job related to an Account with qualifier "submitted by".
type Relationship struct {
	ObjectID  string `json:"objectId"`
	Qualifier string `json:"qualifier"`
}

// Object is one entry in the log's top-level "objects" array: a Job,
// Account, Group, Host, or Partition.
type Object struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Attributes    []ObjectAttribute `json:"attributes,omitempty"`
	Relationships []Relationship    `json:"relationships,omitempty"`
}

// EventAttribute is one named value attached to an event, e.g. a "Job
// Failed" event's reason.
type EventAttribute struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Event is one entry in the log's top-level "events" array: a single
// lifecycle transition such as "Submit Job" or "Job Completed".
type Event struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	Time          time.Time        `json:"time"`
	Attributes    []EventAttribute `json:"attributes,omitempty"`
	Relationships []Relationship   `json:"relationships,omitempty"`
}

// Log is the full OCEL 2.0 document C8 assembles and writes to disk.
type Log struct {
	ObjectTypes []ObjectType `json:"objectTypes"`
	EventTypes  []EventType  `json:"eventTypes"`
	Objects     []Object     `json:"objects"`
	Events      []Event      `json:"events"`
}

// The nine lifecycle event type names this package emits. Declared as
// constants rather than free strings because both C7 (which stamps them
// onto Event.Type) and C8 (which declares them in EventTypes) must agree on
// the exact spelling.
const (
	EventTypeSubmitJob      = "Submit Job"
	EventTypeJobStarted     = "Job Started"
	EventTypeJobEnding      = "Job Ending"
	EventTypeJobCompleted   = "Job Completed"
	EventTypeJobCancelled   = "Job Cancelled"
	EventTypeJobFailed      = "Job Failed"
	EventTypeJobTimeout     = "Job Timeout"
	EventTypeJobOutOfMemory = "Job Out Of Memory"
	EventTypeJobNodeFail    = "Job Node Fail"
)

// The five object type names this package emits.
const (
	ObjectTypeJob       = "Job"
	ObjectTypeAccount   = "Account"
	ObjectTypeGroup     = "Group"
	ObjectTypeHost      = "Host"
	ObjectTypePartition = "Partition"
)
