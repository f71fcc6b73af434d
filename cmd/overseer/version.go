package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/overseer"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of overseer",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("overseer version %s\n", overseer.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
