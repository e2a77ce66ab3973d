package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var waterCmd = &cobra.Command{
	Use:   "water [amount-ml]",
	Short: "Track water intake",
	Long: `Log water intake, or show today's total when no amount is given.

Examples:
  lifecoach water 250
  lifecoach water
  lifecoach water --history
  lifecoach water --rm 3`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if removeID, _ := cmd.Flags().GetInt("rm"); removeID > 0 {
			if err := client.DeleteWater(ctx, removeID); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			fmt.Printf("🗑️  Deleted water log [%d]\n", removeID)
			return
		}

		if history, _ := cmd.Flags().GetBool("history"); history {
			logs, err := client.WaterHistory(ctx)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			if len(logs) == 0 {
				fmt.Println("No water logged yet.")
				return
			}
			for _, log := range logs {
				fmt.Printf("  [%d] %4d ml  %s\n", log.ID, log.AmountML, log.Timestamp.Format("02/01/2006 15:04"))
			}
			return
		}

		if len(args) == 1 {
			amount, err := strconv.Atoi(args[0])
			if err != nil || amount <= 0 {
				fmt.Printf("Error: invalid amount '%s' (expected ml, e.g. 250)\n", args[0])
				return
			}
			if _, err := client.AddWater(ctx, amount); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			fmt.Printf("💧 Logged %d ml\n", amount)
		}

		stats, err := client.WaterToday(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Today: %d ml across %d log(s)\n", stats.TodayTotal, len(stats.Entries))
	},
}

func init() {
	waterCmd.Flags().Bool("history", false, "Show the full water log history")
	waterCmd.Flags().Int("rm", 0, "Delete the water log with this id")
}
