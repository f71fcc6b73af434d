package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/overseer/internal/presentation/tui"
	"github.com/aretw0/overseer/pkg/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the game state, printing a status line per tick",
	Run: func(cmd *cobra.Command, args []string) {
		sess, ctx, cleanup, err := startSession(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		tui.PrintBanner()

		lastTick := uint64(0)
		for {
			snap, err := sess.Poller.Next(ctx)
			if err != nil {
				if errors.Is(err, domain.ErrPublisherDown) {
					fmt.Println("publisher down, stopping")
				}
				return
			}
			if snap.Tick == lastTick {
				continue
			}
			lastTick = snap.Tick
			fmt.Println(tui.StatusLine(snap))
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
