package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/overseer/internal/presentation/tui"
	"github.com/aretw0/overseer/pkg/domain"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Read and write the persistent journal",
}

var journalNoteCmd = &cobra.Command{
	Use:   "note <category> <text...>",
	Short: "Write a note to the journal",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		j, closeJournal, err := openJournal(cfg)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer closeJournal()

		note := domain.Note{
			Category: args[0],
			Text:     strings.Join(args[1:], " "),
		}
		if err := j.Note(context.Background(), note); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("noted")
	},
}

var journalRecallCmd = &cobra.Command{
	Use:   "recall [keyword]",
	Short: "Search the journal by keyword, newest first",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		j, closeJournal, err := openJournal(cfg)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer closeJournal()

		keyword := ""
		if len(args) > 0 {
			keyword = args[0]
		}
		notes, err := j.Recall(context.Background(), keyword)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if len(notes) == 0 {
			fmt.Println("no matching notes")
			return
		}

		var md strings.Builder
		md.WriteString("# Journal\n\n")
		for _, note := range notes {
			place := note.Map
			if place == "" {
				place = "?"
			}
			fmt.Fprintf(&md, "- **%s**: %s _(%s, tile %d, tick %d)_\n",
				note.Category, note.Text, place, note.Tile, note.Tick)
		}

		render := tui.NewRenderer()
		out, err := render(md.String())
		if err != nil {
			// Fall back to the raw markdown on renderer trouble.
			out = md.String()
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalNoteCmd)
	journalCmd.AddCommand(journalRecallCmd)
}
