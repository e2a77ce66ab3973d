package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/engine"
	"github.com/aydinov/lifecoach/internal/parser"
	"github.com/aydinov/lifecoach/internal/tasktree"
)

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task's fields",
	Long: `Edit a task. Only the fields you pass change; everything else is
left untouched.

Examples:
  lifecoach edit 5 --title "New title" --priority high
  lifecoach edit 5 --duration 90
  lifecoach edit 5 --hide`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		var patch tasktree.Patch
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			patch.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			patch.Description = &description
		}
		if cmd.Flags().Changed("priority") {
			raw, _ := cmd.Flags().GetString("priority")
			normalized, ok := parser.NormalizePriority(raw)
			if !ok {
				fmt.Printf("Error: invalid priority '%s'. Use: low, medium, high, urgent, or 1-4\n", raw)
				return
			}
			priority := tasktree.Priority(normalized)
			patch.Priority = &priority
		}
		if cmd.Flags().Changed("status") {
			raw, _ := cmd.Flags().GetString("status")
			status, ok := normalizeStatus(raw)
			if !ok {
				fmt.Printf("Error: invalid status '%s'. Use: todo, progress, done\n", raw)
				return
			}
			patch.Status = &status
		}
		if cmd.Flags().Changed("due") {
			raw, _ := cmd.Flags().GetString("due")
			dueDate, err := parser.ParseDueDate(raw)
			if err != nil {
				fmt.Printf("Error parsing due date: %v\n", err)
				return
			}
			patch.DueDate = dueDate
		}
		if cmd.Flags().Changed("duration") {
			minutes, _ := cmd.Flags().GetInt("duration")
			if minutes < 0 {
				fmt.Println("Error: duration must be >= 0")
				return
			}
			patch.DurationMinutes = &minutes
		}
		if hide, _ := cmd.Flags().GetBool("hide"); hide {
			patch.Hidden = &hide
		}
		if unhide, _ := cmd.Flags().GetBool("unhide"); unhide {
			hidden := false
			patch.Hidden = &hidden
		}

		if patch == (tasktree.Patch{}) {
			fmt.Println("Nothing to change. See 'lifecoach edit --help' for available fields.")
			return
		}

		withEngine(func(eng *engine.Engine) error {
			if err := eng.Apply(taskID, patch); err != nil {
				return err
			}
			task, _ := eng.Find(taskID)
			fmt.Printf("✏️  Updated task #%d: %s\n", task.ID, task.Title)
			return nil
		})
	},
}

// normalizeStatus maps CLI aliases onto task statuses
func normalizeStatus(raw string) (tasktree.Status, bool) {
	switch raw {
	case "todo", "to do", "To Do":
		return tasktree.StatusToDo, true
	case "progress", "in progress", "In Progress":
		return tasktree.StatusInProgress, true
	case "done", "Done":
		return tasktree.StatusDone, true
	}
	return "", false
}

func init() {
	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().String("description", "", "New description")
	editCmd.Flags().String("priority", "", "Priority: low, medium, high, urgent, or 1-4")
	editCmd.Flags().String("status", "", "Status: todo, progress, done")
	editCmd.Flags().String("due", "", "Due date: dd/mm/yyyy, today, tomorrow, X days, X weeks")
	editCmd.Flags().Int("duration", 0, "Time budget in minutes")
	editCmd.Flags().Bool("hide", false, "Hide the task from listings")
	editCmd.Flags().Bool("unhide", false, "Unhide the task")
}
