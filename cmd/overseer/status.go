package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/overseer/internal/bridge"
	"github.com/aretw0/overseer/internal/presentation/tui"
)

// statusCmd reads one snapshot straight off the bridge; no session needed.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-line summary of the current game state",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		b := bridge.New(cfg.GameDir,
			bridge.WithStaleness(cfg.StalenessWindow.Std()),
			bridge.WithLogger(newLogger(cmd)),
		)
		snap, err := b.Read(context.Background())
		if err != nil {
			fmt.Printf("Error: %v (is the game running?)\n", err)
			os.Exit(1)
		}

		if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
			out, _ := json.MarshalIndent(snap, "", "  ")
			fmt.Println(string(out))
			return
		}
		if full, _ := cmd.Flags().GetBool("full"); full {
			render := tui.NewRenderer()
			out, err := render(tui.DetailMarkdown(snap))
			if err != nil {
				out = tui.DetailMarkdown(snap)
			}
			fmt.Print(out)
			return
		}
		fmt.Println(tui.StatusLine(snap))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("json", false, "Print the full snapshot as JSON")
	statusCmd.Flags().Bool("full", false, "Print the rendered detail view")
}
