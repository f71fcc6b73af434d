package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/overseer/internal/presentation/tui"
	"github.com/aretw0/overseer/pkg/domain"
)

var dialogueCmd = &cobra.Command{
	Use:   "dialogue [picks...]",
	Short: "Drive the current conversation",
	Long: `With option indices as arguments, plays them in order and prints the
conversation summary. Without arguments, runs interactively: shows the
dialogue assessment, prompts for a pick, repeats until the conversation
ends or you quit.`,
	Run: func(cmd *cobra.Command, args []string) {
		sess, ctx, cleanup, err := startSession(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		tracker := sess.NewTracker()

		if len(args) > 0 {
			picks := make([]int, 0, len(args))
			for _, arg := range args {
				pick, err := strconv.Atoi(arg)
				if err != nil {
					fmt.Printf("Error: picks must be option indices: %v\n", err)
					os.Exit(1)
				}
				picks = append(picks, pick)
			}
			report, err := tracker.RunScripted(ctx, picks)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(report.Summary())
			return
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Println("Error: interactive mode needs a terminal; pass option indices as arguments instead.")
			os.Exit(1)
		}

		reader := bufio.NewReader(os.Stdin)
		for !tracker.Ended() {
			snap, err := tracker.Current(ctx)
			if err != nil {
				if errors.Is(err, domain.ErrNotInDialogue) {
					break
				}
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}

			fmt.Println(tui.AssessView(snap, tracker.History()))
			fmt.Print("pick> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			line = strings.TrimSpace(line)
			if line == "" || line == "q" || line == "quit" {
				break
			}
			index, err := strconv.Atoi(line)
			if err != nil {
				fmt.Println("Enter an option index, or 'q' to stop.")
				continue
			}
			if _, err := tracker.SelectOption(ctx, index); err != nil {
				if errors.Is(err, domain.ErrNoSuchOption) {
					fmt.Println("No such option.")
					continue
				}
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
		}

		report := tracker.Finish(ctx)
		fmt.Println(report.Summary())
	},
}

func init() {
	rootCmd.AddCommand(dialogueCmd)
}
