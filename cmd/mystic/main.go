// Package main is the entry point for the mystic CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "mystic",
		Short:   "Mystic Tarot — terminal tarot readings with an AI interpreter",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runTUI(configPath)
		},
	}

	root.PersistentFlags().String("config", "", "path to mystic.toml (default: search upward from the working directory)")

	root.AddCommand(
		historyCmd(),
		spreadsCmd(),
		deckCmd(),
		initCmd(),
	)

	return root
}
