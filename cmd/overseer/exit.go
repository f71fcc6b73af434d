package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/overseer/internal/control"
)

var exitCmd = &cobra.Command{
	Use:   "exit",
	Short: "Cross the nearest exit grid to leave the current map",
	Run: func(cmd *cobra.Command, args []string) {
		sess, ctx, cleanup, err := startSession(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		var opts []control.ExitOption
		if dest, _ := cmd.Flags().GetString("to"); dest != "" {
			opts = append(opts, control.WithDestination(dest))
		}

		report, err := sess.Navigator.MoveToNearestExit(ctx, opts...)
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
	rootCmd.AddCommand(exitCmd)
	exitCmd.Flags().String("to", "", "Only consider exits whose destination map name matches")
}
