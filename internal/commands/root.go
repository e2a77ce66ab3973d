package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/api"
	"github.com/aydinov/lifecoach/internal/engine"
	"github.com/aydinov/lifecoach/internal/syncbus"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "lifecoach",
	Short: "A task tree and focus timer for your terminal",
	Long: `lifecoach is a command-line companion for the LifeCoach API.
Organize tasks into trees with per-task time budgets, run countdown
focus sessions, and keep your water intake honest, all from the
terminal.`,
}

// newClient builds the API client from --server / LIFECOACH_SERVER
func newClient() *api.Client {
	base := serverURL
	if base == "" {
		base = os.Getenv("LIFECOACH_SERVER")
	}
	if base == "" {
		base = api.DefaultBaseURL
	}
	return api.NewClient(base)
}

// newEngine fetches the current task forest and builds a live mutation
// engine on top of it. Callers own the returned engine and must Close it.
func newEngine() (*engine.Engine, error) {
	client := newClient()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	forest, err := client.FetchTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks (is the server running? try 'lifecoach serve'): %w", err)
	}

	bus := syncbus.New()
	eng := engine.New(forest, client, bus.Subscribe(), engine.WithErrorHandler(func(err error) {
		fmt.Fprintf(os.Stderr, "⚠️  sync failed, change rolled back: %v\n", err)
	}))
	return eng, nil
}

// withEngine wraps a command body with engine setup and teardown.
// Pending remote calls are flushed before the process exits.
func withEngine(fn func(eng *engine.Engine) error) {
	eng, err := newEngine()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer eng.Close()

	if err := fn(eng); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	eng.Flush()
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"LifeCoach API base URL (default $LIFECOACH_SERVER or "+api.DefaultBaseURL+")")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(uncommentCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(detachCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(waterCmd)
	rootCmd.AddCommand(versionCmd)
}
