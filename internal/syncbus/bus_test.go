package syncbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aydinov/lifecoach/internal/tasktree"
)

func TestPublishReachesOtherSubscribersOnly(t *testing.T) {
	bus := New()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()
	c := bus.Subscribe()

	cs := 30
	a.Publish(Mutation{Op: OpPatch, TaskID: 5, Patch: &tasktree.Patch{CompletedSeconds: &cs}})

	for _, sub := range []*Subscription{b, c} {
		select {
		case m := <-sub.Messages():
			assert.Equal(t, OpPatch, m.Op)
			assert.Equal(t, 5, m.TaskID)
			require.NotNil(t, m.Patch)
			assert.Equal(t, 30, *m.Patch.CompletedSeconds)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the mutation")
		}
	}

	select {
	case m := <-a.Messages():
		t.Fatalf("publisher received its own mutation: %+v", m)
	default:
	}
}

func TestClosedSubscriptionStopsReceiving(t *testing.T) {
	bus := New()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()
	b.Close()

	a.Publish(Mutation{Op: OpDelete, TaskID: 1})

	_, open := <-b.Messages()
	assert.False(t, open, "closed subscription's channel should be closed")
}

func TestBusCloseClosesSubscribers(t *testing.T) {
	bus := New()
	a := bus.Subscribe()
	bus.Close()

	_, open := <-a.Messages()
	assert.False(t, open)

	// Subscribing after close yields a dead subscription, not a panic.
	late := bus.Subscribe()
	_, open = <-late.Messages()
	assert.False(t, open)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := New()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			a.Publish(Mutation{Op: OpDelete, TaskID: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// b still holds the first buffered messages
	m := <-b.Messages()
	assert.Equal(t, 0, m.TaskID)
}
