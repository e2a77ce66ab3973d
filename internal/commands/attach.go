package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/engine"
)

var attachCmd = &cobra.Command{
	Use:   "attach [task-id] [url]",
	Short: "Attach a link to a task",
	Long: `Attach a link to a task, or list its attachments when no URL is given.

Examples:
  lifecoach attach 5 https://example.com/design-doc
  lifecoach attach 5`,
	Args: cobra.RangeArgs(1, 2),
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
				if len(task.Attachments) == 0 {
					fmt.Printf("Task #%d has no attachments.\n", taskID)
					return nil
				}
				for _, a := range task.Attachments {
					target := a.URL
					if target == "" {
						target = a.FilePath
					}
					fmt.Printf("  [%d] %s %s\n", a.ID, a.Type, target)
				}
				return nil
			}

			url := args[1]
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				return fmt.Errorf("'%s' doesn't look like a URL", url)
			}
			attachment, err := eng.AddLinkAttachment(context.Background(), taskID, url)
			if err != nil {
				return err
			}
			fmt.Printf("🔗 Attached link [%d] to task #%d\n", attachment.ID, taskID)
			return nil
		})
	},
}

var detachCmd = &cobra.Command{
	Use:   "detach [task-id] [attachment-id]",
	Short: "Remove an attachment from a task",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		attachmentID, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Error: invalid attachment ID '%s'\n", args[1])
			return
		}

		withEngine(func(eng *engine.Engine) error {
			if err := eng.DeleteAttachment(taskID, attachmentID); err != nil {
				return err
			}
			fmt.Printf("🗑️  Removed attachment [%d] from task #%d\n", attachmentID, taskID)
			return nil
		})
	},
}
