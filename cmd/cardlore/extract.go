package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cardlore/internal/card"
	"cardlore/internal/config"
	"cardlore/internal/convert"
)

func extractCmd() *cobra.Command {
	var output string
	var raw bool

	cmd := &cobra.Command{
		Use:   "extract <card>",
		Short: "Print the embedded character JSON of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			path := convert.ResolveCard(cfg, args[0])
			codec := card.NewCodec()
			jsonText, ok, err := codec.ParseCard(path)
			if err != nil {
				return fmt.Errorf("parse card: %w", err)
			}
			if !ok {
				fmt.Fprintln(os.Stderr, "No character metadata found.")
				return nil
			}

			out := []byte(jsonText)
			if !raw {
				var buf bytes.Buffer
				if err := json.Indent(&buf, out, "", "  "); err == nil {
					out = buf.Bytes()
				}
				// not valid JSON: emit the raw payload unchanged
			}

			if output != "" {
				if err := os.WriteFile(output, out, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(os.Stderr, "Wrote %s\n", output)
				return nil
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "Do not pretty-print the JSON")

	return cmd
}
