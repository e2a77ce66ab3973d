// Package engine is the optimistic mutation pipeline: the single
// gateway through which every task change flows. A mutation is applied
// to the in-memory forest immediately, broadcast to sibling tabs, and
// persisted to the remote store in the background; if the remote call
// fails, the pre-mutation snapshot is restored and the error is
// surfaced. The remote store stays the source of truth — this engine
// is a cache with reconciliation, not a database.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aydinov/lifecoach/internal/syncbus"
	"github.com/aydinov/lifecoach/internal/tasktree"
)

// ErrRemoteCallFailed marks errors surfaced after an optimistic apply
// was rolled back because the remote store rejected the mutation.
var ErrRemoteCallFailed = errors.New("remote call failed")

const (
	callQueueSize = 256
	remoteTimeout = 10 * time.Second
)

// CreateTaskRequest holds the data needed to create a new task.
// Identity originates server-side, so creation is pessimistic: the
// task enters the local forest only after the remote store assigns it
// an id.
type CreateTaskRequest struct {
	Title           string
	Description     string
	Priority        tasktree.Priority
	DueDate         *time.Time
	DurationMinutes *int
	Tags            []string
	ParentID        int // 0 creates a top-level task
}

// Remote is the persistence boundary the engine relies on. Failure is
// any non-success response or transport error; the engine treats them
// all uniformly with the rollback rule.
type Remote interface {
	FetchTasks(ctx context.Context) ([]tasktree.Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (tasktree.Task, error)
	UpdateTask(ctx context.Context, id int, patch tasktree.Patch) error
	DeleteTask(ctx context.Context, id int) error
	CreateComment(ctx context.Context, taskID int, text string) (tasktree.Comment, error)
	DeleteComment(ctx context.Context, taskID, commentID int) error
	CreateLinkAttachment(ctx context.Context, taskID int, url string) (tasktree.Attachment, error)
	DeleteAttachment(ctx context.Context, taskID, attachmentID int) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithErrorHandler sets the callback invoked when a background remote
// call fails and the local forest has been rolled back.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Engine) { e.onError = fn }
}

type call struct {
	desc     string
	snapshot []tasktree.Task
	run      func(context.Context) error
}

// Engine owns one tab's view of the task forest.
type Engine struct {
	mu     sync.Mutex
	forest []tasktree.Task
	closed bool

	remote  Remote
	sub     *syncbus.Subscription
	onError func(error)

	calls        chan call
	pending      sync.WaitGroup
	dispatchDone chan struct{}
	pumpDone     chan struct{}
}

// New builds an engine over an initial forest (usually fetched from
// the remote store) and starts its background workers: one dispatcher
// that delivers remote calls strictly in order, and one pump that
// applies mutations broadcast by sibling tabs.
func New(forest []tasktree.Task, remote Remote, sub *syncbus.Subscription, opts ...Option) *Engine {
	e := &Engine{
		forest:       forest,
		remote:       remote,
		sub:          sub,
		onError:      func(error) {},
		calls:        make(chan call, callQueueSize),
		dispatchDone: make(chan struct{}),
		pumpDone:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	go e.dispatch()
	go e.pump()
	return e
}

// Forest returns the current forest. Tree operations are persistent,
// so the returned slice is safe to hold across later mutations.
func (e *Engine) Forest() []tasktree.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.forest
}

// Find looks up a task anywhere in the forest.
func (e *Engine) Find(id int) (tasktree.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, _, ok := tasktree.FindWithPath(e.forest, id)
	return t, ok
}

// Apply runs a field patch through the pipeline: validate, apply
// locally (cascading completedSeconds deltas to every ancestor),
// broadcast, then persist in the background. A patch to a vanished id
// is a silent no-op. Apply satisfies the timer engine's Sink.
func (e *Engine) Apply(taskID int, patch tasktree.Patch) error {
	e.mu.Lock()
	task, _, ok := tasktree.FindWithPath(e.forest, taskID)
	if !ok {
		e.mu.Unlock()
		return nil
	}
	if patch.DurationMinutes != nil {
		if err := tasktree.CheckDurationEdit(task, *patch.DurationMinutes); err != nil {
			e.mu.Unlock()
			return err
		}
	}
	snapshot, applied := e.applyPatchLocked(taskID, patch)
	e.mu.Unlock()
	if !applied {
		return nil
	}

	e.sub.Publish(syncbus.Mutation{Op: syncbus.OpPatch, TaskID: taskID, Patch: &patch})
	e.enqueue(fmt.Sprintf("update task #%d", taskID), snapshot, func(ctx context.Context) error {
		return e.remote.UpdateTask(ctx, taskID, patch)
	})
	return nil
}

// Delete removes a task and its whole subtree, optimistically.
func (e *Engine) Delete(taskID int) error {
	e.mu.Lock()
	if _, _, ok := tasktree.FindWithPath(e.forest, taskID); !ok {
		e.mu.Unlock()
		return nil
	}
	snapshot := e.forest
	e.forest = tasktree.DeleteSubtree(e.forest, taskID)
	e.mu.Unlock()

	e.sub.Publish(syncbus.Mutation{Op: syncbus.OpDelete, TaskID: taskID})
	e.enqueue(fmt.Sprintf("delete task #%d", taskID), snapshot, func(ctx context.Context) error {
		return e.remote.DeleteTask(ctx, taskID)
	})
	return nil
}

// CreateTask creates a task remotely, then inserts the server-assigned
// result into the forest. Unlike every other mutation this one is
// pessimistic: there is nothing to show optimistically before the
// server hands out an id.
func (e *Engine) CreateTask(ctx context.Context, req CreateTaskRequest) (tasktree.Task, error) {
	if req.ParentID != 0 && req.DurationMinutes != nil {
		e.mu.Lock()
		parent, _, ok := tasktree.FindWithPath(e.forest, req.ParentID)
		e.mu.Unlock()
		if ok {
			if err := tasktree.CheckSubtaskBudget(parent, *req.DurationMinutes); err != nil {
				return tasktree.Task{}, err
			}
		}
	}

	created, err := e.remote.CreateTask(ctx, req)
	if err != nil {
		return tasktree.Task{}, fmt.Errorf("create task: %w", errors.Join(ErrRemoteCallFailed, err))
	}

	e.mu.Lock()
	e.forest, _ = tasktree.Insert(e.forest, req.ParentID, created)
	e.mu.Unlock()

	e.sub.Publish(syncbus.Mutation{
		Op:       syncbus.OpCreate,
		TaskID:   created.ID,
		Task:     &created,
		ParentID: req.ParentID,
	})
	return created, nil
}

// AddComment persists the comment first (the id is server-assigned),
// then applies and broadcasts the updated comment list.
func (e *Engine) AddComment(ctx context.Context, taskID int, text string) (tasktree.Comment, error) {
	comment, err := e.remote.CreateComment(ctx, taskID, text)
	if err != nil {
		return tasktree.Comment{}, fmt.Errorf("add comment: %w", errors.Join(ErrRemoteCallFailed, err))
	}

	e.mu.Lock()
	task, _, ok := tasktree.FindWithPath(e.forest, taskID)
	if !ok {
		e.mu.Unlock()
		return comment, nil
	}
	comments := append(append([]tasktree.Comment(nil), task.Comments...), comment)
	patch := tasktree.Patch{Comments: &comments}
	e.applyPatchLocked(taskID, patch)
	e.mu.Unlock()

	e.sub.Publish(syncbus.Mutation{Op: syncbus.OpPatch, TaskID: taskID, Patch: &patch})
	return comment, nil
}

// DeleteComment removes a comment optimistically.
func (e *Engine) DeleteComment(taskID, commentID int) error {
	e.mu.Lock()
	task, _, ok := tasktree.FindWithPath(e.forest, taskID)
	if !ok {
		e.mu.Unlock()
		return nil
	}
	comments := make([]tasktree.Comment, 0, len(task.Comments))
	for _, c := range task.Comments {
		if c.ID != commentID {
			comments = append(comments, c)
		}
	}
	if len(comments) == len(task.Comments) {
		e.mu.Unlock()
		return nil
	}
	patch := tasktree.Patch{Comments: &comments}
	snapshot, _ := e.applyPatchLocked(taskID, patch)
	e.mu.Unlock()

	e.sub.Publish(syncbus.Mutation{Op: syncbus.OpPatch, TaskID: taskID, Patch: &patch})
	e.enqueue(fmt.Sprintf("delete comment #%d", commentID), snapshot, func(ctx context.Context) error {
		return e.remote.DeleteComment(ctx, taskID, commentID)
	})
	return nil
}

// AddLinkAttachment persists a link attachment, then applies and
// broadcasts the updated attachment list.
func (e *Engine) AddLinkAttachment(ctx context.Context, taskID int, url string) (tasktree.Attachment, error) {
	attachment, err := e.remote.CreateLinkAttachment(ctx, taskID, url)
	if err != nil {
		return tasktree.Attachment{}, fmt.Errorf("add attachment: %w", errors.Join(ErrRemoteCallFailed, err))
	}

	e.mu.Lock()
	task, _, ok := tasktree.FindWithPath(e.forest, taskID)
	if !ok {
		e.mu.Unlock()
		return attachment, nil
	}
	attachments := append(append([]tasktree.Attachment(nil), task.Attachments...), attachment)
	patch := tasktree.Patch{Attachments: &attachments}
	e.applyPatchLocked(taskID, patch)
	e.mu.Unlock()

	e.sub.Publish(syncbus.Mutation{Op: syncbus.OpPatch, TaskID: taskID, Patch: &patch})
	return attachment, nil
}

// DeleteAttachment removes an attachment optimistically.
func (e *Engine) DeleteAttachment(taskID, attachmentID int) error {
	e.mu.Lock()
	task, _, ok := tasktree.FindWithPath(e.forest, taskID)
	if !ok {
		e.mu.Unlock()
		return nil
	}
	attachments := make([]tasktree.Attachment, 0, len(task.Attachments))
	for _, a := range task.Attachments {
		if a.ID != attachmentID {
			attachments = append(attachments, a)
		}
	}
	if len(attachments) == len(task.Attachments) {
		e.mu.Unlock()
		return nil
	}
	patch := tasktree.Patch{Attachments: &attachments}
	snapshot, _ := e.applyPatchLocked(taskID, patch)
	e.mu.Unlock()

	e.sub.Publish(syncbus.Mutation{Op: syncbus.OpPatch, TaskID: taskID, Patch: &patch})
	e.enqueue(fmt.Sprintf("delete attachment #%d", attachmentID), snapshot, func(ctx context.Context) error {
		return e.remote.DeleteAttachment(ctx, taskID, attachmentID)
	})
	return nil
}

// Flush blocks until every queued remote call has been delivered (or
// rolled back). Useful before a one-shot CLI process exits.
func (e *Engine) Flush() {
	e.pending.Wait()
}

// Close drains the remote queue and stops the background workers.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.pending.Wait()
	close(e.calls)
	<-e.dispatchDone
	e.sub.Close()
	<-e.pumpDone
}

// applyPatchLocked merges the patch into the forest and cascades any
// completedSeconds delta to every ancestor of the target. It returns
// the pre-mutation snapshot and whether anything changed. Callers hold
// e.mu.
func (e *Engine) applyPatchLocked(taskID int, patch tasktree.Patch) ([]tasktree.Task, bool) {
	old, path, ok := tasktree.FindWithPath(e.forest, taskID)
	if !ok {
		return e.forest, false
	}
	snapshot := e.forest

	// completedSeconds never leaves [0, duration*60] on a timed task.
	if patch.CompletedSeconds != nil {
		cs := *patch.CompletedSeconds
		if cs < 0 {
			cs = 0
		}
		if old.Timed() && cs > old.TotalSeconds() {
			cs = old.TotalSeconds()
		}
		patch.CompletedSeconds = &cs
	}

	next := tasktree.ApplyPatch(e.forest, taskID, patch)

	if patch.CompletedSeconds != nil {
		delta := *patch.CompletedSeconds - old.CompletedSeconds
		if delta != 0 {
			// Ancestors absorb the same delta; deltas commute, so the
			// order across tabs cannot corrupt the aggregates.
			for _, ancestor := range path[:len(path)-1] {
				cs := ancestor.CompletedSeconds + delta
				if cs < 0 {
					cs = 0
				}
				if ancestor.Timed() && cs > ancestor.TotalSeconds() {
					cs = ancestor.TotalSeconds()
				}
				next = tasktree.ApplyPatch(next, ancestor.ID, tasktree.Patch{CompletedSeconds: &cs})
			}
		}
	}

	e.forest = next
	return snapshot, true
}

// applySync applies a mutation broadcast by a sibling tab. This is a
// terminal application: it never re-publishes and never issues a
// remote call, because the originating tab already did both.
func (e *Engine) applySync(m syncbus.Mutation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch m.Op {
	case syncbus.OpPatch:
		if m.Patch != nil {
			e.applyPatchLocked(m.TaskID, *m.Patch)
		}
	case syncbus.OpDelete:
		e.forest = tasktree.DeleteSubtree(e.forest, m.TaskID)
	case syncbus.OpCreate:
		if m.Task != nil {
			e.forest, _ = tasktree.Insert(e.forest, m.ParentID, *m.Task)
		}
	}
}

func (e *Engine) enqueue(desc string, snapshot []tasktree.Task, run func(context.Context) error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.pending.Add(1)
	e.mu.Unlock()
	e.calls <- call{desc: desc, snapshot: snapshot, run: run}
}

// dispatch delivers remote calls one at a time, in the order they were
// enqueued, so successive patches to the same task never reorder.
func (e *Engine) dispatch() {
	defer close(e.dispatchDone)
	for c := range e.calls {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		err := c.run(ctx)
		cancel()
		if err != nil {
			e.mu.Lock()
			e.forest = c.snapshot
			e.mu.Unlock()
			e.onError(fmt.Errorf("%s: %w", c.desc, errors.Join(ErrRemoteCallFailed, err)))
		}
		e.pending.Done()
	}
}

// pump applies inbound mutations from sibling tabs until the
// subscription closes.
func (e *Engine) pump() {
	defer close(e.pumpDone)
	for m := range e.sub.Messages() {
		e.applySync(m)
	}
}
