package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aydinov/lifecoach/internal/syncbus"
	"github.com/aydinov/lifecoach/internal/tasktree"
)

type remoteUpdate struct {
	id    int
	patch tasktree.Patch
}

// fakeRemote records every call; fail switches it into rejecting
// everything, which the engine must answer with a rollback.
type fakeRemote struct {
	mu      sync.Mutex
	fail    bool
	nextID  int
	updates []remoteUpdate
	deletes []int
}

func (r *fakeRemote) err(op string) error {
	return fmt.Errorf("%s: server unreachable", op)
}

func (r *fakeRemote) FetchTasks(ctx context.Context) ([]tasktree.Task, error) {
	return nil, nil
}

func (r *fakeRemote) CreateTask(ctx context.Context, req CreateTaskRequest) (tasktree.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return tasktree.Task{}, r.err("create")
	}
	r.nextID++
	return tasktree.Task{
		ID:              r.nextID,
		Title:           req.Title,
		Description:     req.Description,
		Status:          tasktree.StatusToDo,
		Priority:        req.Priority,
		DueDate:         req.DueDate,
		DurationMinutes: req.DurationMinutes,
	}, nil
}

func (r *fakeRemote) UpdateTask(ctx context.Context, id int, patch tasktree.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return r.err("update")
	}
	r.updates = append(r.updates, remoteUpdate{id, patch})
	return nil
}

func (r *fakeRemote) DeleteTask(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return r.err("delete")
	}
	r.deletes = append(r.deletes, id)
	return nil
}

func (r *fakeRemote) CreateComment(ctx context.Context, taskID int, text string) (tasktree.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return tasktree.Comment{}, r.err("create comment")
	}
	r.nextID++
	return tasktree.Comment{ID: r.nextID, Text: text, CreatedAt: time.Now()}, nil
}

func (r *fakeRemote) DeleteComment(ctx context.Context, taskID, commentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return r.err("delete comment")
	}
	return nil
}

func (r *fakeRemote) CreateLinkAttachment(ctx context.Context, taskID int, url string) (tasktree.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return tasktree.Attachment{}, r.err("create attachment")
	}
	r.nextID++
	return tasktree.Attachment{ID: r.nextID, Type: tasktree.AttachmentLink, URL: url}, nil
}

func (r *fakeRemote) DeleteAttachment(ctx context.Context, taskID, attachmentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return r.err("delete attachment")
	}
	return nil
}

func (r *fakeRemote) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func (r *fakeRemote) setFail(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

func minutes(m int) *int { return &m }

// forest: 1 (60m, 10s done) └── 5 (30m)
func forestFixture() []tasktree.Task {
	return []tasktree.Task{
		{
			ID: 1, Title: "parent", Status: tasktree.StatusInProgress,
			DurationMinutes: minutes(60), CompletedSeconds: 10,
			Subtasks: []tasktree.Task{
				{ID: 5, Title: "child", Status: tasktree.StatusToDo, DurationMinutes: minutes(30)},
			},
		},
	}
}

func newTestEngine(t *testing.T, forest []tasktree.Task, remote Remote, opts ...Option) (*Engine, *syncbus.Bus) {
	t.Helper()
	bus := syncbus.New()
	e := New(forest, remote, bus.Subscribe(), opts...)
	t.Cleanup(func() {
		e.Close()
		bus.Close()
	})
	return e, bus
}

func TestApplyCascadesDeltaToAncestors(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	cs := 30
	require.NoError(t, e.Apply(5, tasktree.Patch{CompletedSeconds: &cs}))

	child, ok := e.Find(5)
	require.True(t, ok)
	assert.Equal(t, 30, child.CompletedSeconds)

	parent, ok := e.Find(1)
	require.True(t, ok)
	assert.Equal(t, 40, parent.CompletedSeconds, "ancestor absorbs the delta")

	// only the directly-mutated task is persisted remotely
	e.Flush()
	require.Len(t, remote.updates, 1)
	assert.Equal(t, 5, remote.updates[0].id)
}

func TestApplyToVanishedIDIsSilentNoOp(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	title := "ghost"
	require.NoError(t, e.Apply(99, tasktree.Patch{Title: &title}))

	e.Flush()
	assert.Empty(t, remote.updates)
	assert.Equal(t, forestFixture(), e.Forest())
}

func TestRemoteFailureRollsBackExactly(t *testing.T) {
	remote := &fakeRemote{fail: true}
	var surfaced []error
	var mu sync.Mutex
	e, _ := newTestEngine(t, forestFixture(), remote, WithErrorHandler(func(err error) {
		mu.Lock()
		surfaced = append(surfaced, err)
		mu.Unlock()
	}))

	before := e.Forest()
	cs := 30
	require.NoError(t, e.Apply(5, tasktree.Patch{CompletedSeconds: &cs}))
	e.Flush()

	assert.Equal(t, before, e.Forest(), "rollback must restore the exact snapshot")
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, surfaced, 1)
	assert.ErrorIs(t, surfaced[0], ErrRemoteCallFailed)
}

func TestDurationEditBudgetRejection(t *testing.T) {
	remote := &fakeRemote{}
	e, bus := newTestEngine(t, forestFixture(), remote)
	peer := bus.Subscribe()

	// parent has a 30m subtask; shrinking below that must fail
	d := 20
	err := e.Apply(1, tasktree.Patch{DurationMinutes: &d})
	require.ErrorIs(t, err, tasktree.ErrBudgetExceeded)

	assert.Equal(t, forestFixture(), e.Forest(), "rejected validation never touches the tree")
	e.Flush()
	assert.Empty(t, remote.updates)
	select {
	case m := <-peer.Messages():
		t.Fatalf("rejected validation must not reach the bus, got %+v", m)
	default:
	}
}

func TestCompletedSecondsClampedToDuration(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	cs := 99999
	require.NoError(t, e.Apply(5, tasktree.Patch{CompletedSeconds: &cs}))

	child, _ := e.Find(5)
	assert.Equal(t, 30*60, child.CompletedSeconds)
}

func TestCompletionMutationIdempotent(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	done := tasktree.StatusDone
	cs := 30 * 60
	patch := tasktree.Patch{CompletedSeconds: &cs, Status: &done}
	require.NoError(t, e.Apply(5, patch))
	require.NoError(t, e.Apply(5, patch))

	child, _ := e.Find(5)
	assert.Equal(t, 1800, child.CompletedSeconds)
	assert.Equal(t, tasktree.StatusDone, child.Status)

	parent, _ := e.Find(1)
	assert.Equal(t, 10+1800, parent.CompletedSeconds, "second apply has delta 0, ancestors unchanged")
}

func TestCreateTaskIsPessimistic(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, nil, remote)

	created, err := e.CreateTask(context.Background(), CreateTaskRequest{Title: "plan week", DurationMinutes: minutes(60)})
	require.NoError(t, err)
	assert.NotZero(t, created.ID, "id originates server-side")

	got, ok := e.Find(created.ID)
	require.True(t, ok)
	assert.Equal(t, "plan week", got.Title)
}

func TestCreateTaskFailureLeavesForestUntouched(t *testing.T) {
	remote := &fakeRemote{fail: true}
	e, _ := newTestEngine(t, forestFixture(), remote)

	_, err := e.CreateTask(context.Background(), CreateTaskRequest{Title: "never lands", ParentID: 1})
	require.ErrorIs(t, err, ErrRemoteCallFailed)
	assert.Equal(t, forestFixture(), e.Forest())
}

func TestSubtaskBudgetScenario(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, nil, remote)
	ctx := context.Background()

	parent, err := e.CreateTask(ctx, CreateTaskRequest{Title: "parent", DurationMinutes: minutes(60)})
	require.NoError(t, err)

	_, err = e.CreateTask(ctx, CreateTaskRequest{Title: "first", DurationMinutes: minutes(40), ParentID: parent.ID})
	require.NoError(t, err)

	before := e.Forest()
	_, err = e.CreateTask(ctx, CreateTaskRequest{Title: "second", DurationMinutes: minutes(30), ParentID: parent.ID})
	require.ErrorIs(t, err, tasktree.ErrBudgetExceeded)
	assert.Equal(t, before, e.Forest())
}

func TestDeleteIsOptimisticWithRollback(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	require.NoError(t, e.Delete(5))
	_, ok := e.Find(5)
	assert.False(t, ok, "delete shows immediately")
	e.Flush()
	assert.Equal(t, []int{5}, remote.deletes)

	// now a failing delete of the root: whole subtree comes back
	remote.setFail(true)
	before := e.Forest()
	require.NoError(t, e.Delete(1))
	_, ok = e.Find(1)
	assert.False(t, ok)
	e.Flush()
	assert.Equal(t, before, e.Forest())
}

func TestSuccessivePatchesKeepOrder(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	for i := 1; i <= 5; i++ {
		cs := i
		require.NoError(t, e.Apply(5, tasktree.Patch{CompletedSeconds: &cs}))
	}
	e.Flush()

	require.Len(t, remote.updates, 5)
	for i, u := range remote.updates {
		assert.Equal(t, i+1, *u.patch.CompletedSeconds)
	}
}

func TestCommentsRoundTrip(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	comment, err := e.AddComment(context.Background(), 5, "looks good")
	require.NoError(t, err)

	task, _ := e.Find(5)
	require.Len(t, task.Comments, 1)
	assert.Equal(t, "looks good", task.Comments[0].Text)

	require.NoError(t, e.DeleteComment(5, comment.ID))
	task, _ = e.Find(5)
	assert.Empty(t, task.Comments)
	e.Flush()
}

func TestDeleteCommentRollsBackOnFailure(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	comment, err := e.AddComment(context.Background(), 5, "keep me")
	require.NoError(t, err)

	remote.setFail(true)
	require.NoError(t, e.DeleteComment(5, comment.ID))
	e.Flush()

	task, _ := e.Find(5)
	require.Len(t, task.Comments, 1)
	assert.Equal(t, "keep me", task.Comments[0].Text)
}

func TestAttachmentsRoundTrip(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	att, err := e.AddLinkAttachment(context.Background(), 1, "https://go.dev")
	require.NoError(t, err)
	assert.Equal(t, tasktree.AttachmentLink, att.Type)

	task, _ := e.Find(1)
	require.Len(t, task.Attachments, 1)

	require.NoError(t, e.DeleteAttachment(1, att.ID))
	task, _ = e.Find(1)
	assert.Empty(t, task.Attachments)
	e.Flush()
}

func TestTwoTabsStayInSyncWithoutRemoteCalls(t *testing.T) {
	bus := syncbus.New()
	defer bus.Close()

	remoteA := &fakeRemote{}
	// tab B is network-dark: any remote call it made would fail loudly
	remoteB := &fakeRemote{fail: true}

	tabA := New(forestFixture(), remoteA, bus.Subscribe())
	defer tabA.Close()
	tabB := New(forestFixture(), remoteB, bus.Subscribe())
	defer tabB.Close()

	cs := 30
	require.NoError(t, tabA.Apply(5, tasktree.Patch{CompletedSeconds: &cs}))

	require.Eventually(t, func() bool {
		parent, ok := tabB.Find(1)
		return ok && parent.CompletedSeconds == 40
	}, 2*time.Second, 10*time.Millisecond, "tab B must see the cascaded ancestor value")

	child, _ := tabB.Find(5)
	assert.Equal(t, 30, child.CompletedSeconds)
	assert.Zero(t, remoteB.updateCount(), "receiving tab must not re-persist")

	// deletion propagates the same way
	require.NoError(t, tabA.Delete(5))
	require.Eventually(t, func() bool {
		_, ok := tabB.Find(5)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	// creation propagates with the server-assigned id
	created, err := tabA.CreateTask(context.Background(), CreateTaskRequest{Title: "from tab A"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok := tabB.Find(created.ID)
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	tabA.Flush()
}

func TestFlushWaitsForQueuedCalls(t *testing.T) {
	remote := &fakeRemote{}
	e, _ := newTestEngine(t, forestFixture(), remote)

	title := "renamed"
	require.NoError(t, e.Apply(5, tasktree.Patch{Title: &title}))
	e.Flush()
	assert.Equal(t, 1, remote.updateCount())
}

func TestErrorHandlerReceivesWrappedSentinel(t *testing.T) {
	remote := &fakeRemote{fail: true}
	errCh := make(chan error, 1)
	e, _ := newTestEngine(t, forestFixture(), remote, WithErrorHandler(func(err error) {
		errCh <- err
	}))

	title := "doomed"
	require.NoError(t, e.Apply(5, tasktree.Patch{Title: &title}))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrRemoteCallFailed)
	case <-time.After(2 * time.Second):
		t.Fatal("no error surfaced")
	}
}
