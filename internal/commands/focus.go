package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/engine"
	"github.com/aydinov/lifecoach/internal/tasktree"
	"github.com/aydinov/lifecoach/internal/timer"
	"github.com/aydinov/lifecoach/internal/tui"
)

var focusCmd = &cobra.Command{
	Use:   "focus [task-id]",
	Short: "Run a countdown focus session on a task",
	Long: `Run a countdown focus session on a timed task.

Opens a full-screen countdown by default. With --no-ui the countdown
runs headless until it finishes or you press Ctrl+C; either way the
elapsed time is saved to the task.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		noUI, _ := cmd.Flags().GetBool("no-ui")

		withEngine(func(eng *engine.Engine) error {
			if noUI {
				return runHeadlessFocus(eng, taskID)
			}
			return tui.RunFocusTUI(eng, timer.New(eng), taskID)
		})
	},
}

// runHeadlessFocus runs the countdown without a TUI, saving the elapsed
// time on Ctrl+C or when the budget runs out.
func runHeadlessFocus(eng *engine.Engine, taskID int) error {
	task, ok := eng.Find(taskID)
	if !ok {
		return fmt.Errorf("task #%d not found", taskID)
	}
	if !task.Timed() {
		return fmt.Errorf("task #%d has no duration; set one with 'lifecoach edit %d --duration <minutes>'", taskID, taskID)
	}

	completed := make(chan struct{})
	clock := timer.New(eng, timer.WithNotify(func(done tasktree.Task) {
		fmt.Printf("\n🔔 Time's up! Marked #%d as done.\n", done.ID)
		close(completed)
	}))
	if err := clock.Select(task); err != nil {
		return err
	}
	if err := clock.Start(); err != nil {
		return err
	}

	remaining := clock.Remaining()
	fmt.Printf("⏱  Focusing on #%d %s (%02d:%02d left). Ctrl+C saves and exits.\n",
		task.ID, task.Title, remaining/60, remaining%60)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	runner := timer.Run(context.Background(), clock)
	select {
	case <-interrupt:
		runner.Stop()
		if err := clock.Close(); err != nil {
			return err
		}
		remaining = clock.Remaining()
		fmt.Printf("\n⏸  Paused with %02d:%02d left. Progress saved.\n", remaining/60, remaining%60)
	case <-runner.Done():
		select {
		case <-completed:
		default:
			// Clock stopped without completing (e.g. paused elsewhere)
			if err := clock.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	focusCmd.Flags().Bool("no-ui", false, "Run the countdown without the full-screen view")
}
