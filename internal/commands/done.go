package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/engine"
	"github.com/aydinov/lifecoach/internal/tasktree"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		withEngine(func(eng *engine.Engine) error {
			task, ok := eng.Find(taskID)
			if !ok {
				return fmt.Errorf("task #%d not found", taskID)
			}

			status := tasktree.StatusDone
			patch := tasktree.Patch{Status: &status}
			if task.Timed() {
				// Finishing a timed task spends its whole budget, same
				// as letting the countdown run out.
				total := task.TotalSeconds()
				patch.CompletedSeconds = &total
			}
			if err := eng.Apply(taskID, patch); err != nil {
				return err
			}

			fmt.Printf("✅ Marked task #%d as done: %s\n", taskID, task.Title)
			return nil
		})
	},
}

var undoneCmd = &cobra.Command{
	Use:   "undone [task-id]",
	Short: "Mark a done task back to To Do",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		withEngine(func(eng *engine.Engine) error {
			task, ok := eng.Find(taskID)
			if !ok {
				return fmt.Errorf("task #%d not found", taskID)
			}

			status := tasktree.StatusToDo
			if err := eng.Apply(taskID, tasktree.Patch{Status: &status}); err != nil {
				return err
			}

			fmt.Printf("↩️  Marked task #%d back to To Do: %s\n", taskID, task.Title)
			return nil
		})
	},
}
