package tasktree

import (
	"errors"
	"fmt"
)

// ErrBudgetExceeded is returned when subtask durations would exceed
// the parent's allotted duration. It is a purely local validation
// failure; nothing has been applied or persisted when it is returned.
var ErrBudgetExceeded = errors.New("duration budget exceeded")

// SubtaskDurationSum returns the total allotted minutes of the task's
// direct subtasks. Untimed subtasks count as 0.
func SubtaskDurationSum(t Task) int {
	sum := 0
	for _, s := range t.Subtasks {
		if s.DurationMinutes != nil {
			sum += *s.DurationMinutes
		}
	}
	return sum
}

// CheckSubtaskBudget validates adding a subtask of addMinutes to the
// parent. Untimed parents impose no budget.
func CheckSubtaskBudget(parent Task, addMinutes int) error {
	if parent.DurationMinutes == nil {
		return nil
	}
	sum := SubtaskDurationSum(parent)
	if sum+addMinutes > *parent.DurationMinutes {
		return fmt.Errorf("subtasks would use %dm of the parent's %dm: %w",
			sum+addMinutes, *parent.DurationMinutes, ErrBudgetExceeded)
	}
	return nil
}

// CheckDurationEdit validates shrinking a task's duration to
// newMinutes against the durations its subtasks already hold.
func CheckDurationEdit(t Task, newMinutes int) error {
	sum := SubtaskDurationSum(t)
	if newMinutes < sum {
		return fmt.Errorf("subtasks already use %dm, cannot shrink to %dm: %w",
			sum, newMinutes, ErrBudgetExceeded)
	}
	return nil
}
