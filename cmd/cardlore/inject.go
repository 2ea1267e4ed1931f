package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cardlore/internal/card"
	"cardlore/internal/config"
	"cardlore/internal/convert"
)

func injectCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "inject <card> <json-file>",
		Short: "Embed character JSON into a PNG card",
		Long: `Writes the JSON file into the card's chara and ccv3 chunks, replacing any
existing character metadata. The image itself is untouched.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			path := convert.ResolveCard(cfg, args[0])
			imageBytes, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read card: %w", err)
			}
			jsonBytes, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read json: %w", err)
			}

			codec := card.NewCodec()
			out, err := codec.WriteMetadata(imageBytes, string(jsonBytes))
			if err != nil {
				return fmt.Errorf("write metadata: %w", err)
			}

			if output == "" {
				ext := filepath.Ext(path)
				output = strings.TrimSuffix(path, ext) + ".card" + ext
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Printf("Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG path (default: <card>.card.png)")

	return cmd
}
