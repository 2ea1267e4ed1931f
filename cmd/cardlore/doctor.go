package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cardlore/internal/catalog"
	"cardlore/internal/config"
	"cardlore/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify directories, catalog, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Directories ===")
			checkDir("Cards", cfg.CardDir)
			checkDir("Lorebooks", cfg.LorebookDir)
			checkDir("Characters", cfg.CharacterDir)

			fmt.Println("\n=== File Scan ===")
			files, err := scan.ScanCards(cfg.CardDir)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  PNG cards: %d\n", len(files))
			}

			fmt.Println("\n=== Catalog ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'cardlore list' first)")
				return nil
			}

			db, err := catalog.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer db.Close()

			cardCount, err := db.CardCount()
			if err != nil {
				return fmt.Errorf("count cards: %w", err)
			}
			convertedCount, err := db.ConvertedCount()
			if err != nil {
				return fmt.Errorf("count converted: %w", err)
			}

			fmt.Printf("  Cards:     %d\n", cardCount)
			fmt.Printf("  Converted: %d\n", convertedCount)

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeKB := float64(info.Size()) / 1024
				fmt.Printf("\n=== Catalog Size: %.1f KB ===\n", sizeKB)
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
