// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/squeue-ocel/api"
)

func TestSubscribePublishDelivers(t *testing.T) {
	b := New()
	_, ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	ev := RoundEvent{At: time.Now(), Rows: []api.JobRecord{{JobID: "1"}}}
	b.Publish(ev)

	select {
	case got := <-ch:
		assert.Equal(t, ev, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	b := New()
	_, ch1, unsub1 := b.Subscribe()
	defer unsub1()
	_, ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Publish(RoundEvent{At: time.Now()})

	for _, ch := range []<-chan RoundEvent{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for fan-out event")
		}
	}
}

func TestPublishDropsWhenSubscriberBufferFull(t *testing.T) {
	b := New(WithBufferSize(1))
	_, ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Publish(RoundEvent{At: time.Now()})
	b.Publish(RoundEvent{At: time.Now().Add(time.Second)}) // dropped, buffer full

	require.Len(t, ch, 1)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	_, ch, unsubscribe := b.Subscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
}

func TestSubscriberCount(t *testing.T) {
	b := New()
	assert.Equal(t, 0, b.SubscriberCount())

	_, _, unsubscribe := b.Subscribe()
	assert.Equal(t, 1, b.SubscriberCount())

	unsubscribe()
	assert.Equal(t, 0, b.SubscriberCount())
}
