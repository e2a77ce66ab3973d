package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/engine"
)

var commentCmd = &cobra.Command{
	Use:   "comment [task-id] [text...]",
	Short: "Add a comment to a task",
	Long: `Add a comment to a task, or list its comments when no text is given.

Examples:
  lifecoach comment 5 "Blocked on the API review"
  lifecoach comment 5`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		withEngine(func(eng *engine.Engine) error {
			if len(args) == 1 {
				task, ok := eng.Find(taskID)
				if !ok {
					return fmt.Errorf("task #%d not found", taskID)
				}
				if len(task.Comments) == 0 {
					fmt.Printf("Task #%d has no comments.\n", taskID)
					return nil
				}
				for _, c := range task.Comments {
					fmt.Printf("  [%d] %s  (%s)\n", c.ID, c.Text, c.CreatedAt.Format("02/01/2006 15:04"))
				}
				return nil
			}

			text := strings.Join(args[1:], " ")
			comment, err := eng.AddComment(context.Background(), taskID, text)
			if err != nil {
				return err
			}
			fmt.Printf("💬 Added comment [%d] to task #%d\n", comment.ID, taskID)
			return nil
		})
	},
}

var uncommentCmd = &cobra.Command{
	Use:   "uncomment [task-id] [comment-id]",
	Short: "Delete a comment from a task",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		commentID, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Error: invalid comment ID '%s'\n", args[1])
			return
		}

		withEngine(func(eng *engine.Engine) error {
			if err := eng.DeleteComment(taskID, commentID); err != nil {
				return err
			}
			fmt.Printf("🗑️  Deleted comment [%d] from task #%d\n", commentID, taskID)
			return nil
		})
	},
}
