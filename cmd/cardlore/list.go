package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cardlore/internal/catalog"
	"cardlore/internal/config"
)

const (
	lColorReset = "\033[0m"
	lColorGreen = "\033[1;32m"
	lColorBlue  = "\033[1;34m"
	lColorDim   = "\033[2m"
)

func listCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards and their conversion status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := catalog.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer db.Close()

			stats, err := catalog.SyncAll(db, cfg.CardDir)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Synced. %s\n", stats)

			cards, err := db.ListCards(filter, 0)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintf(os.Stderr, "No cards found in %s\n", cfg.CardDir)
				return nil
			}

			// Colored columns on a terminal; plain TSV for pipes
			tty := term.IsTerminal(int(os.Stdout.Fd()))
			for _, c := range cards {
				status := "new"
				if c.ConvertedAt != "" {
					status = "done"
				}
				if !c.HasMeta {
					status = "empty"
				}
				name := strings.ReplaceAll(c.Name, "\t", " ")
				if tty {
					fmt.Printf("%s %s %s%s%s\n",
						colorizeStatus(status), name,
						lColorDim, c.CardKey, lColorReset)
				} else {
					fmt.Printf("%s\t%s\t%s\t%d\t%s\n",
						c.CardKey, status, name, c.TriggerCount, c.ConvertedAt)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Substring filter on name, key or summary")

	return cmd
}

func colorizeStatus(status string) string {
	switch status {
	case "done":
		return lColorGreen + "[done] " + lColorReset
	case "new":
		return lColorBlue + "[new]  " + lColorReset
	default:
		return lColorDim + "[empty]" + lColorReset
	}
}
