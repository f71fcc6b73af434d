package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var combatCmd = &cobra.Command{
	Use:   "combat",
	Short: "Fight the current encounter under the autopilot",
	Long: `Runs the combat autopilot until the encounter ends: hostiles cleared,
subject fled or dead, or the encounter timed out. Exactly one command is
issued per own-turn frame.`,
	Run: func(cmd *cobra.Command, args []string) {
		sess, ctx, cleanup, err := startSession(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		report, err := sess.Autopilot.Run(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		printReport(report)
		if !report.Outcome.Success() {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(combatCmd)
}
