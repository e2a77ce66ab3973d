package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/engine"
	"github.com/aydinov/lifecoach/internal/parser"
	"github.com/aydinov/lifecoach/internal/tasktree"
)

var addCmd = &cobra.Command{
	Use:   "add [task title]",
	Short: "Add a new task or subtask",
	Long: `Add a new task, optionally nested under a parent.

Smart parsing syntax:
  #tag1,tag2  - Tags (comma-separated or individual)
  +priority   - Priority (low/medium/high/urgent or 1-4)
  dur:45      - Time budget in minutes (also dur:90m, dur:2h)
  due:3days   - Due date (dd/mm/yyyy, today, tomorrow, X days, X weeks)

Examples:
  lifecoach add "Write report #work +high dur:90m due:tomorrow"
  lifecoach add "Outline" --parent 12 --duration 25`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parsed := parser.ParseTitle(strings.Join(args, " "))
		if len(parsed.Errors) > 0 {
			fmt.Printf("Error: %s\n", strings.Join(parsed.Errors, "; "))
			return
		}

		req := engine.CreateTaskRequest{
			Title:           parsed.Title,
			Priority:        tasktree.Priority(parsed.Priority),
			DueDate:         parsed.DueDate,
			DurationMinutes: parsed.DurationMinutes,
			Tags:            parsed.Tags,
		}

		// Explicit flags win over smart-parsed metadata
		req.Description, _ = cmd.Flags().GetString("description")
		req.ParentID, _ = cmd.Flags().GetInt("parent")
		if flagPriority, _ := cmd.Flags().GetString("priority"); flagPriority != "" {
			priority, ok := parser.NormalizePriority(flagPriority)
			if !ok {
				fmt.Printf("Error: invalid priority '%s'. Use: low, medium, high, urgent, or 1-4\n", flagPriority)
				return
			}
			req.Priority = tasktree.Priority(priority)
		}
		if flagDue, _ := cmd.Flags().GetString("due"); flagDue != "" {
			dueDate, err := parser.ParseDueDate(flagDue)
			if err != nil {
				fmt.Printf("Error parsing due date: %v\n", err)
				return
			}
			req.DueDate = dueDate
		}
		if flagDuration, _ := cmd.Flags().GetInt("duration"); flagDuration > 0 {
			req.DurationMinutes = &flagDuration
		}

		withEngine(func(eng *engine.Engine) error {
			task, err := eng.CreateTask(context.Background(), req)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Created task #%d: %s\n", task.ID, task.Title)
			if req.ParentID != 0 {
				fmt.Printf("  Parent: #%d\n", req.ParentID)
			}
			if len(task.Tags) > 0 {
				var names []string
				for _, tag := range task.Tags {
					names = append(names, tag.Name)
				}
				fmt.Printf("  Tags: %s\n", strings.Join(names, ", "))
			}
			if task.Priority != "" {
				fmt.Printf("  Priority: %s\n", task.Priority)
			}
			if task.Timed() {
				fmt.Printf("  Budget: %dm\n", *task.DurationMinutes)
			}
			if task.DueDate != nil {
				fmt.Printf("  Due: %s\n", parser.FormatDueDate(task.DueDate))
			}
			return nil
		})
	},
}

func init() {
	addCmd.Flags().IntP("parent", "P", 0, "Parent task id (0 = top level)")
	addCmd.Flags().StringP("description", "d", "", "Task description")
	addCmd.Flags().String("priority", "", "Priority: low, medium, high, urgent, or 1-4")
	addCmd.Flags().String("due", "", "Due date: dd/mm/yyyy, today, tomorrow, X days, X weeks")
	addCmd.Flags().Int("duration", 0, "Time budget in minutes")
}
