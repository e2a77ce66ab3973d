package tasktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minutes(m int) *int { return &m }

// fixture:
//
//	1 (60m, 10s done)
//	├── 2 (20m)
//	│   └── 4
//	└── 3 (40m)
//	5 (untimed)
func fixture() []Task {
	return []Task{
		{
			ID: 1, Title: "parent", DurationMinutes: minutes(60), CompletedSeconds: 10,
			Subtasks: []Task{
				{ID: 2, Title: "first", DurationMinutes: minutes(20), Subtasks: []Task{
					{ID: 4, Title: "leaf"},
				}},
				{ID: 3, Title: "second", DurationMinutes: minutes(40)},
			},
		},
		{ID: 5, Title: "untimed"},
	}
}

func TestFindWithPath(t *testing.T) {
	forest := fixture()

	task, path, ok := FindWithPath(forest, 4)
	require.True(t, ok)
	assert.Equal(t, 4, task.ID)
	require.Len(t, path, 3)
	assert.Equal(t, 1, path[0].ID)
	assert.Equal(t, 2, path[1].ID)
	assert.Equal(t, 4, path[2].ID)

	task, path, ok = FindWithPath(forest, 5)
	require.True(t, ok)
	assert.Equal(t, 5, task.ID)
	require.Len(t, path, 1)

	_, path, ok = FindWithPath(forest, 99)
	assert.False(t, ok)
	assert.Nil(t, path)
}

func TestApplyPatchReplacesOnlyThePath(t *testing.T) {
	forest := fixture()
	title := "renamed"

	out := ApplyPatch(forest, 3, Patch{Title: &title})

	got, _, ok := FindWithPath(out, 3)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)

	// input is untouched
	old, _, _ := FindWithPath(forest, 3)
	assert.Equal(t, "second", old.Title)

	// the untouched sibling's subtree is shared with the input, not copied
	assert.Same(t, &forest[0].Subtasks[0].Subtasks[0], &out[0].Subtasks[0].Subtasks[0])
	assert.Equal(t, forest[1], out[1])
}

func TestApplyPatchMissingIDIsNoOp(t *testing.T) {
	forest := fixture()
	title := "ghost"

	out := ApplyPatch(forest, 99, Patch{Title: &title})
	assert.Equal(t, forest, out)
}

func TestApplyPatchShallowMerge(t *testing.T) {
	forest := fixture()
	status := StatusInProgress
	cs := 30

	out := ApplyPatch(forest, 3, Patch{Status: &status, CompletedSeconds: &cs})

	got, _, _ := FindWithPath(out, 3)
	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, 30, got.CompletedSeconds)
	// unpatched fields survive
	assert.Equal(t, "second", got.Title)
	assert.Equal(t, 40, *got.DurationMinutes)
}

func TestDeleteSubtree(t *testing.T) {
	forest := fixture()

	out := DeleteSubtree(forest, 2)

	_, _, ok := FindWithPath(out, 2)
	assert.False(t, ok)
	_, _, ok = FindWithPath(out, 4)
	assert.False(t, ok, "descendants go with the subtree")

	// everything else keeps its identity
	for _, id := range []int{1, 3, 5} {
		_, _, ok := FindWithPath(out, id)
		assert.True(t, ok, "task %d should survive", id)
	}

	// input unchanged
	_, _, ok = FindWithPath(forest, 2)
	assert.True(t, ok)
}

func TestDeleteSubtreeMissingIDIsNoOp(t *testing.T) {
	forest := fixture()
	out := DeleteSubtree(forest, 99)
	assert.Equal(t, forest, out)
}

func TestDeleteAfterPatch(t *testing.T) {
	forest := fixture()
	title := "about to vanish"

	out := ApplyPatch(forest, 2, Patch{Title: &title})
	out = DeleteSubtree(out, 2)

	_, _, ok := FindWithPath(out, 2)
	assert.False(t, ok)
	_, _, ok = FindWithPath(out, 4)
	assert.False(t, ok)

	got, _, ok := FindWithPath(out, 3)
	require.True(t, ok)
	assert.Equal(t, "second", got.Title)
}

func TestInsert(t *testing.T) {
	forest := fixture()

	out, ok := Insert(forest, 3, Task{ID: 6, Title: "child of 3"})
	require.True(t, ok)
	_, path, found := FindWithPath(out, 6)
	require.True(t, found)
	assert.Equal(t, []int{1, 3, 6}, pathIDs(path))

	// top-level insert
	out, ok = Insert(forest, 0, Task{ID: 7, Title: "new root"})
	require.True(t, ok)
	assert.Equal(t, 7, out[len(out)-1].ID)

	// missing parent is a no-op
	out, ok = Insert(forest, 99, Task{ID: 8})
	assert.False(t, ok)
	assert.Equal(t, forest, out)
}

func pathIDs(path []Task) []int {
	ids := make([]int, len(path))
	for i, t := range path {
		ids[i] = t.ID
	}
	return ids
}
