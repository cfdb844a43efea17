// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package bus implements the §6 collaborator (c) event bus: the poll loop
// publishes a "squeue-rows" update after every round, and any number of UI
// subscribers (in-process, or remote over the websocket broadcast server in
// websocket.go) receive it.
package bus

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/pkg/logging"
)

// RoundEvent is one "squeue-rows" update: the full row set observed at At.
type RoundEvent struct {
	At   time.Time       `json:"at"`
	Rows []api.JobRecord `json:"rows"`
}

// Bus is an in-process publish/subscribe hub for RoundEvents. A slow or
// gone subscriber never blocks the poll loop: Publish drops the event for
// any subscriber whose buffer is full rather than waiting.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]chan RoundEvent
	bufferSize  int
	logger      logging.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithBufferSize sets each subscriber's channel capacity. Defaults to 4.
func WithBufferSize(n int) Option {
	return func(b *Bus) { b.bufferSize = n }
}

// WithLogger attaches a logger for dropped-event diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// New returns an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[uuid.UUID]chan RoundEvent),
		bufferSize:  4,
		logger:      logging.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscriber and returns its id, a receive-only
// channel of RoundEvents, and an unsubscribe function the caller must call
// to release it.
func (b *Bus) Subscribe() (uuid.UUID, <-chan RoundEvent, func()) {
	id := uuid.New()
	ch := make(chan RoundEvent, b.bufferSize)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch, func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Publish fans ev out to every current subscriber. A subscriber with a
// full buffer is skipped and the drop is logged — Publish never blocks.
func (b *Bus) Publish(ev RoundEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("dropping squeue-rows event for slow subscriber", "subscriber_id", id.String())
		}
	}
}

// SubscriberCount reports how many subscribers are currently registered.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
