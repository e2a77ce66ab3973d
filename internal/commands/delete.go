package commands

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/engine"
	"github.com/aydinov/lifecoach/internal/tasktree"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task and its whole subtree",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		force, _ := cmd.Flags().GetBool("force")

		withEngine(func(eng *engine.Engine) error {
			task, ok := eng.Find(taskID)
			if !ok {
				return fmt.Errorf("task #%d not found", taskID)
			}

			subtasks := countSubtasks(task)
			if subtasks > 0 && !force {
				fmt.Printf("Task #%d has %d subtask(s) that will be deleted too. Continue? [y/N] ", taskID, subtasks)
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := eng.Delete(taskID); err != nil {
				return err
			}
			fmt.Printf("🗑️  Deleted task #%d: %s\n", taskID, task.Title)
			return nil
		})
	},
}

func countSubtasks(task tasktree.Task) int {
	n := len(task.Subtasks)
	for _, s := range task.Subtasks {
		n += countSubtasks(s)
	}
	return n
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "Skip the subtree confirmation")
}
