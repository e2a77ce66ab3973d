package tasktree

// Tree operations over a forest of tasks. All of them are pure: they
// never touch the input slices, and a missing id is a no-op or an
// empty result rather than an error. Mutating operations copy only the
// path from the root down to the affected node; untouched subtrees are
// shared with the input forest.

// FindWithPath searches the forest depth-first (sibling order = slice
// order) for the task with the given id. It returns the task, the
// chain of ancestors from the root down to and including the task, and
// whether it was found.
func FindWithPath(tasks []Task, id int) (Task, []Task, bool) {
	return findWithPath(tasks, id, nil)
}

func findWithPath(tasks []Task, id int, prefix []Task) (Task, []Task, bool) {
	for i := range tasks {
		path := append(append([]Task(nil), prefix...), tasks[i])
		if tasks[i].ID == id {
			return tasks[i], path, true
		}
		if t, p, ok := findWithPath(tasks[i].Subtasks, id, path); ok {
			return t, p, ok
		}
	}
	return Task{}, nil, false
}

// ApplyPatch returns a forest identical to the input except that the
// task with the given id is replaced by the shallow merge of itself
// and the patch. Returns the input unchanged if the id is absent.
func ApplyPatch(tasks []Task, id int, p Patch) []Task {
	out, _ := applyPatch(tasks, id, p)
	return out
}

func applyPatch(tasks []Task, id int, p Patch) ([]Task, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			out := append([]Task(nil), tasks...)
			out[i] = merge(out[i], p)
			return out, true
		}
		if sub, ok := applyPatch(tasks[i].Subtasks, id, p); ok {
			out := append([]Task(nil), tasks...)
			out[i].Subtasks = sub
			return out, true
		}
	}
	return tasks, false
}

// DeleteSubtree removes the task with the given id, and everything
// under it, from wherever it occurs. Returns the input unchanged if
// the id is absent.
func DeleteSubtree(tasks []Task, id int) []Task {
	out, _ := deleteSubtree(tasks, id)
	return out
}

func deleteSubtree(tasks []Task, id int) ([]Task, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			out := make([]Task, 0, len(tasks)-1)
			out = append(out, tasks[:i]...)
			out = append(out, tasks[i+1:]...)
			return out, true
		}
		if sub, ok := deleteSubtree(tasks[i].Subtasks, id); ok {
			out := append([]Task(nil), tasks...)
			out[i].Subtasks = sub
			return out, true
		}
	}
	return tasks, false
}

// Insert appends a task to the subtask list of the parent with the
// given id, or to the top level when parentID is 0. Returns the input
// unchanged (and false) if the parent is absent.
func Insert(tasks []Task, parentID int, t Task) ([]Task, bool) {
	if parentID == 0 {
		out := append(append([]Task(nil), tasks...), t)
		return out, true
	}
	return insert(tasks, parentID, t)
}

func insert(tasks []Task, parentID int, t Task) ([]Task, bool) {
	for i := range tasks {
		if tasks[i].ID == parentID {
			out := append([]Task(nil), tasks...)
			out[i].Subtasks = append(append([]Task(nil), out[i].Subtasks...), t)
			return out, true
		}
		if sub, ok := insert(tasks[i].Subtasks, parentID, t); ok {
			out := append([]Task(nil), tasks...)
			out[i].Subtasks = sub
			return out, true
		}
	}
	return tasks, false
}
