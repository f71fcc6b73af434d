package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/overseer/internal/bridge"
	"github.com/aretw0/overseer/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a snapshot document against the wire schema",
	Long: `Validates a published snapshot against the OpenAPI schema. Without an
argument it reads the snapshot file from the configured game directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := ""
		if len(args) > 0 {
			path = args[0]
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			path = filepath.Join(cfg.GameDir, bridge.SnapshotFile)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if err := schema.ValidateSnapshotDocument(data); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s is a valid snapshot\n", path)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
