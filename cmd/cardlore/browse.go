package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cardlore/internal/catalog"
	"cardlore/internal/config"
	"cardlore/internal/tui"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse cards interactively and convert with Enter",
		Long:  `Opens a TUI panel listing all cards with a live preview of the profile and triggers each card would produce. Type to filter; Enter converts the selected card.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirs(); err != nil {
				return err
			}

			db, err := catalog.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer db.Close()

			catalog.SyncAll(db, cfg.CardDir)

			return tui.Run(cfg, db)
		},
	}
}
