package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/db"
	"github.com/aydinov/lifecoach/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the LifeCoach API server",
	Long: `Run the LifeCoach API server backed by a local SQLite database.
All other commands talk to this server, so start it first (or point
--server at a remote instance).`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		dbPath, _ := cmd.Flags().GetString("db")

		if dbPath == "" {
			var err error
			dbPath, err = db.DefaultPath()
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
		}

		if err := db.Open(dbPath); err != nil {
			fmt.Printf("Error opening database: %v\n", err)
			return
		}
		defer db.Close()

		fmt.Printf("Serving LifeCoach API on %s (db: %s)\n", addr, dbPath)
		if err := server.New().Run(addr); err != nil {
			fmt.Printf("Server error: %v\n", err)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8000", "Listen address")
	serveCmd.Flags().String("db", "", "SQLite database path (default ~/.lifecoach/lifecoach.db)")
}
