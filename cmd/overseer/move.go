package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/overseer/internal/control"
	"github.com/aretw0/overseer/pkg/domain"
)

var moveCmd = &cobra.Command{
	Use:   "move <tile>",
	Short: "Walk or run the player to a tile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tile, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error: tile must be a number: %v\n", err)
			os.Exit(1)
		}

		sess, ctx, cleanup, err := startSession(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		var opts []control.MoveOption
		if run, _ := cmd.Flags().GetBool("run"); run {
			opts = append(opts, control.WithRun())
		}

		report, err := sess.Navigator.MoveTo(ctx, domain.Tile(tile), opts...)
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
	rootCmd.AddCommand(moveCmd)
	moveCmd.Flags().Bool("run", false, "Run instead of walk")
}

func printReport(report any) {
	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
}
