package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mystictarot/mystic/internal/config"
	"github.com/mystictarot/mystic/internal/deck"
	"github.com/mystictarot/mystic/internal/history"
	"github.com/mystictarot/mystic/internal/spread"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage stored readings",
	}

	cmd.AddCommand(historyListCmd(), historyClearCmd())
	return cmd
}

func historyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored readings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			store := history.NewStore(cfg.HistoryFile(), nil)
			fmt.Print(formatHistoryList(store.Readings()))
			return nil
		},
	}
}

func historyClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored readings",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			history.NewStore(cfg.HistoryFile(), nil).Clear()
			fmt.Println("History cleared.")
			return nil
		},
	}
}

func spreadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spreads",
		Short: "List the available spread layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(formatSpreadList(spread.Catalog()))
			return nil
		},
	}
}

func deckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Inspect the card catalog",
	}

	cmd.AddCommand(deckVerifyCmd())
	return cmd
}

func deckVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the 78-card catalog invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := deck.NewProvider()
			if err := provider.Verify(); err != nil {
				return err
			}
			fmt.Printf("Deck OK: %d cards, 22 Major Arcana, 4 suits of 14.\n", provider.Size())
			return nil
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create mystic.toml in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			path, err := config.InitFile(dir)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s\n", path)
			return nil
		},
	}
}

// formatHistoryList renders stored readings as a table, newest first.
func formatHistoryList(items []history.Item) string {
	if len(items) == 0 {
		return "No readings stored yet.\n"
	}

	var b strings.Builder
	b.WriteString("Readings\n")
	b.WriteString("────────\n")
	for _, item := range items {
		name := item.SpreadID
		if cfg, ok := spread.ByID(item.SpreadID); ok {
			name = cfg.Name
		}
		ts := time.UnixMilli(item.Timestamp).Format("2006-01-02 15:04")

		cards := make([]string, 0, len(item.DrawnCards))
		for _, dc := range item.DrawnCards {
			label := dc.Card.LocalName
			if dc.Reversed {
				label += "(逆)"
			}
			cards = append(cards, label)
		}
		fmt.Fprintf(&b, "  %s  %-28s  %s\n", ts, name, strings.Join(cards, " · "))
	}
	return b.String()
}

// formatSpreadList renders the spread catalog with positions.
func formatSpreadList(catalog []spread.Config) string {
	var b strings.Builder
	b.WriteString("Spreads\n")
	b.WriteString("───────\n")
	for _, cfg := range catalog {
		fmt.Fprintf(&b, "  %-10s %s — %s\n", cfg.ID, cfg.Name, cfg.Description)
		for _, pos := range cfg.Positions {
			fmt.Fprintf(&b, "      %d. %s — %s\n", pos.Index+1, pos.Name, pos.Description)
		}
	}
	return b.String()
}
