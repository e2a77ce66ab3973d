// Package timer implements the countdown state machine bound to the
// task currently in focus. The engine owns no clock of its own: a
// caller (the focus TUI or a Runner) feeds it one Tick per second.
// Every pause, reset, completion and forced handoff is turned into a
// mutation record and handed to the Sink, which is the single gateway
// for persisting task changes.
package timer

import (
	"sync"

	"github.com/aydinov/lifecoach/internal/tasktree"
)

// State of the countdown.
type State int

const (
	// Idle means no task holds countdown focus.
	Idle State = iota
	// Paused means a task is bound but the countdown is stopped.
	Paused
	// Running means the countdown decrements once per tick.
	Running
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Running:
		return "running"
	default:
		return "idle"
	}
}

// Sink receives the mutation records the timer produces.
type Sink interface {
	Apply(taskID int, patch tasktree.Patch) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotify sets the completion notification, fired once when a
// countdown reaches zero.
func WithNotify(fn func(tasktree.Task)) Option {
	return func(e *Engine) { e.notify = fn }
}

// Engine is the timer state machine. At most one task is bound at any
// time; selecting a different task forces the previous one to persist
// its elapsed delta first.
type Engine struct {
	mu     sync.Mutex
	sink   Sink
	notify func(tasktree.Task)

	state     State
	task      tasktree.Task
	remaining int
}

// New creates an idle engine emitting mutations into sink.
func New(sink Sink, opts ...Option) *Engine {
	e := &Engine{sink: sink}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select binds the engine to t. A previously running task persists its
// elapsed delta before losing focus. Untimed tasks cannot hold focus;
// selecting one leaves the engine idle.
func (e *Engine) Select(t tasktree.Task) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Running && e.task.ID != t.ID {
		if err := e.persistElapsed(); err != nil {
			return err
		}
	}
	if !t.Timed() {
		e.state = Idle
		e.task = tasktree.Task{}
		e.remaining = 0
		return nil
	}
	e.task = t
	e.remaining = t.RemainingSeconds()
	e.state = Paused
	return nil
}

// Start moves a paused countdown to running. A task still in "To Do"
// moves to "In Progress" as a side effect.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Paused {
		return nil
	}
	if e.task.Status == tasktree.StatusToDo {
		status := tasktree.StatusInProgress
		if err := e.sink.Apply(e.task.ID, tasktree.Patch{Status: &status}); err != nil {
			return err
		}
		e.task.Status = tasktree.StatusInProgress
	}
	e.state = Running
	return nil
}

// Pause stops the countdown and persists the elapsed seconds.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Running {
		return nil
	}
	e.state = Paused
	return e.persistElapsed()
}

// Tick advances a running countdown by one second. Once remaining hits
// zero the completion mutation is emitted exactly once, even if stray
// ticks keep arriving before the caller cancels its clock.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Running || e.remaining <= 0 {
		return nil
	}
	e.remaining--
	if e.remaining > 0 {
		return nil
	}
	return e.complete()
}

// Reset winds the countdown back to the full duration and persists
// completedSeconds = 0. The engine ends up paused on the same task.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Idle {
		return nil
	}
	e.remaining = e.task.TotalSeconds()
	e.task.CompletedSeconds = 0
	e.state = Paused
	zero := 0
	return e.sink.Apply(e.task.ID, tasktree.Patch{CompletedSeconds: &zero})
}

// DurationChanged reconciles the countdown after the bound task's
// duration was edited, keeping the already-elapsed portion intact.
func (e *Engine) DurationChanged(newMinutes int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Idle || e.task.DurationMinutes == nil {
		return
	}
	e.remaining += (newMinutes - *e.task.DurationMinutes) * 60
	if e.remaining < 0 {
		e.remaining = 0
	}
	e.task.DurationMinutes = &newMinutes
}

// Close releases focus. A running countdown persists its elapsed delta
// exactly as Pause does.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.state == Running {
		err = e.persistElapsed()
	}
	e.state = Idle
	e.task = tasktree.Task{}
	e.remaining = 0
	return err
}

// State returns the current countdown state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Task returns the bound task snapshot, if any.
func (e *Engine) Task() (tasktree.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.task, e.state != Idle
}

// Remaining returns the seconds left on the countdown.
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remaining
}

// persistElapsed emits completedSeconds for the bound task. Callers
// hold e.mu.
func (e *Engine) persistElapsed() error {
	elapsed := e.task.TotalSeconds() - e.remaining
	e.task.CompletedSeconds = elapsed
	return e.sink.Apply(e.task.ID, tasktree.Patch{CompletedSeconds: &elapsed})
}

// complete emits the terminal mutation and drops to idle. Callers hold
// e.mu.
func (e *Engine) complete() error {
	total := e.task.TotalSeconds()
	status := tasktree.StatusDone
	err := e.sink.Apply(e.task.ID, tasktree.Patch{
		CompletedSeconds: &total,
		Status:           &status,
	})
	if e.notify != nil {
		e.notify(e.task)
	}
	e.state = Idle
	e.task = tasktree.Task{}
	e.remaining = 0
	return err
}
