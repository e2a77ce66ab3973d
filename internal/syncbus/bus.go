// Package syncbus is the cross-tab broadcast channel that keeps every
// open view of the same task forest consistent. Each tab subscribes
// once; publishing delivers to every other subscriber but never back
// to the publisher. Delivery is best-effort: a subscriber that stops
// draining its channel loses messages instead of blocking the bus.
package syncbus

import (
	"sync"

	"github.com/google/uuid"

	"github.com/aydinov/lifecoach/internal/tasktree"
)

// Op is the kind of change a Mutation carries.
type Op string

const (
	OpPatch  Op = "patch"
	OpCreate Op = "create"
	OpDelete Op = "delete"
)

// Mutation is one locally-applied change, broadcast so sibling tabs
// can apply it terminally (no re-publish, no remote call).
type Mutation struct {
	Op     Op
	TaskID int

	// Patch is set for OpPatch.
	Patch *tasktree.Patch

	// Task and ParentID are set for OpCreate. ParentID 0 means the
	// task was created at the top level.
	Task     *tasktree.Task
	ParentID int
}

const subscriberBuffer = 64

// Bus is an in-process broadcast channel for one task-tree namespace.
type Bus struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]chan Mutation
	closed bool
}

// New creates an open bus with no subscribers.
func New() *Bus {
	return &Bus{subs: make(map[uuid.UUID]chan Mutation)}
}

// Subscribe registers a new tab on the bus.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		id:  uuid.New(),
		bus: b,
		ch:  make(chan Mutation, subscriberBuffer),
	}
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub.ch
	return sub
}

// Close tears down the bus and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

func (b *Bus) publish(from uuid.UUID, m Mutation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		if id == from {
			continue
		}
		select {
		case ch <- m:
		default:
			// Subscriber is not draining; drop rather than block.
		}
	}
}

// Subscription is one tab's handle on the bus.
type Subscription struct {
	id   uuid.UUID
	bus  *Bus
	ch   chan Mutation
	once sync.Once
}

// Publish broadcasts a mutation to every other subscriber. The
// publishing subscription never receives its own mutations.
func (s *Subscription) Publish(m Mutation) {
	s.bus.publish(s.id, m)
}

// Messages returns the channel of inbound mutations from other tabs.
// The channel is closed when the subscription or the bus closes.
func (s *Subscription) Messages() <-chan Mutation {
	return s.ch
}

// Close removes the subscription from the bus.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		if _, ok := s.bus.subs[s.id]; ok {
			close(s.ch)
			delete(s.bus.subs, s.id)
		}
	})
}
