package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cardlore/internal/catalog"
	"cardlore/internal/config"
	"cardlore/internal/convert"
	"cardlore/internal/scan"
)

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [card]",
		Short: "Convert a character card into a lorebook YAML and a profile TXT",
		Long: `Extracts the embedded character JSON from a PNG card, writes the derived
lorebook to the lorebook directory and the character profile to the
character directory. With no argument, lists the available cards.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirs(); err != nil {
				return err
			}

			if len(args) == 0 {
				return printAvailableCards(cfg)
			}

			path := convert.ResolveCard(cfg, args[0])
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("card not found: %s", path)
			}

			db, err := catalog.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer db.Close()
			catalog.SyncAll(db, cfg.CardDir)

			fmt.Fprintf(os.Stderr, "Converting %s...\n", path)
			res, err := convert.Run(cfg, db, path)
			if err != nil {
				return err
			}

			fmt.Printf("=== Character Card ===\n\n%s\n\n", res.ProfileText)
			fmt.Printf("Lorebook (%d triggers) saved to: %s\n", res.TriggerCount, res.LorebookPath)
			fmt.Printf("Profile saved to: %s\n", res.ProfilePath)
			return nil
		},
	}
}

func printAvailableCards(cfg *config.Config) error {
	files, err := scan.ScanCards(cfg.CardDir)
	if err != nil {
		return fmt.Errorf("scan cards: %w", err)
	}
	if len(files) == 0 {
		fmt.Printf("No PNG cards found in %s\n", cfg.CardDir)
		fmt.Println("Place card files there, then run: cardlore convert <name>")
		return nil
	}

	fmt.Println("Available cards:")
	for _, f := range files {
		fmt.Printf("  %s\n", catalog.CardKey(cfg.CardDir, f.Path))
	}
	fmt.Println("\nRun: cardlore convert <name>")
	return nil
}
