// Package convert runs the full card conversion flow: extract the embedded
// JSON, derive the lorebook document and the profile text, persist both, and
// record the conversion in the catalog.
package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cardlore/internal/card"
	"cardlore/internal/catalog"
	"cardlore/internal/config"
	"cardlore/internal/lore"
)

type Result struct {
	Name         string
	CardKey      string
	LorebookPath string
	ProfilePath  string
	TriggerCount int
	ProfileText  string
}

// Run converts one card file. db may be nil when no catalog is open; the
// conversion still happens, it just isn't recorded.
func Run(cfg *config.Config, db *catalog.DB, cardPath string) (*Result, error) {
	codec := card.NewCodec()
	jsonText, ok, err := codec.ParseCard(cardPath)
	if err != nil {
		return nil, fmt.Errorf("parse card: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("no character metadata found in %s", filepath.Base(cardPath))
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(jsonText), &doc); err != nil {
		return nil, fmt.Errorf("card metadata is not valid JSON: %w", err)
	}

	document := lore.NewConverter().Convert(doc, cardPath)
	yamlBytes, err := document.EncodeYAML()
	if err != nil {
		return nil, fmt.Errorf("encode lorebook: %w", err)
	}
	profile := lore.Profile(doc)

	base := strings.TrimSuffix(filepath.Base(cardPath), filepath.Ext(cardPath))
	lorebookPath := filepath.Join(cfg.LorebookDir, base+".yaml")
	profilePath := filepath.Join(cfg.CharacterDir, base+".txt")

	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(lorebookPath, yamlBytes, 0o644); err != nil {
		return nil, fmt.Errorf("write lorebook: %w", err)
	}
	if err := os.WriteFile(profilePath, []byte(profile), 0o644); err != nil {
		return nil, fmt.Errorf("write profile: %w", err)
	}

	res := &Result{
		CardKey:      catalog.CardKey(cfg.CardDir, cardPath),
		LorebookPath: lorebookPath,
		ProfilePath:  profilePath,
		TriggerCount: len(document.Triggers),
		ProfileText:  profile,
	}
	if name, ok := doc["name"].(string); ok {
		res.Name = name
	}

	if db != nil {
		at := time.Now().Format("2006-01-02T15:04:05Z")
		if err := db.MarkConverted(res.CardKey, lorebookPath, profilePath, res.TriggerCount, at); err != nil {
			fmt.Fprintf(os.Stderr, "  WARN: record conversion: %v\n", err)
		}
	}
	return res, nil
}

// ResolveCard turns a user-supplied card argument into a file path: absolute
// paths pass through, bare names are looked up in the card directory with a
// .png suffix added when missing.
func ResolveCard(cfg *config.Config, arg string) string {
	path := arg
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.CardDir, path)
	}
	if strings.ToLower(filepath.Ext(path)) != ".png" {
		path += ".png"
	}
	return path
}
