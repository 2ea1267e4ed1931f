package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cardlore/internal/card"
	"cardlore/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// SyncAll scans the card directory and brings the catalog up to date:
// changed files are re-inspected, vanished ones are pruned. Per-card
// inspection failures are reported and counted, never fatal.
func SyncAll(db *DB, cardDir string) (Stats, error) {
	var stats Stats

	files, err := scan.ScanCards(cardDir)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which cards we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		key := CardKey(cardDir, fi.Path)
		seenKeys[key] = struct{}{}

		needs, err := needsUpdate(db, key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		row := CardRow{
			CardKey:  key,
			FilePath: fi.Path,
			Mtime:    fi.Mtime,
			Size:     fi.Size,
		}
		name, summary, hasMeta, err := inspectCard(fi.Path)
		if err != nil {
			stats.Errors++
			fmt.Fprintf(os.Stderr, "  WARN: inspect %s: %v\n", fi.Path, err)
			// still record the file so it shows up in listings
		} else {
			row.Name = name
			row.Summary = summary
			row.HasMeta = hasMeta
		}
		if row.Name == "" {
			row.Name = key
		}

		if err := db.UpsertCard(row); err != nil {
			stats.Errors++
			fmt.Fprintf(os.Stderr, "  WARN: record %s: %v\n", fi.Path, err)
			continue
		}
		stats.Updated++
	}

	pruned, err := pruneCards(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

// CardKey derives the catalog key for a card file: its path relative to the
// card directory without the .png extension.
func CardKey(cardDir, path string) string {
	rel, err := filepath.Rel(cardDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

// inspectCard pulls the display name and a short summary out of a card's
// embedded metadata. Cards without metadata are fine; they just stay
// unnamed in the catalog.
func inspectCard(path string) (name, summary string, hasMeta bool, err error) {
	codec := card.NewCodec()
	jsonText, ok, err := codec.ParseCard(path)
	if err != nil {
		return "", "", false, err
	}
	if !ok {
		return "", "", false, nil
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(jsonText), &doc); err != nil {
		// metadata present but not JSON; keep the card, note nothing
		return "", "", true, nil
	}

	name, _ = doc["name"].(string)
	desc, _ := doc["description"].(string)
	// v3 cards nest the character fields under data
	if data, ok := doc["data"].(map[string]any); ok {
		if name == "" {
			name, _ = data["name"].(string)
		}
		if desc == "" {
			desc, _ = data["description"].(string)
		}
	}

	summary = strings.ReplaceAll(desc, "\n", " ")
	if len(summary) > 200 {
		summary = summary[:200]
	}
	return name, summary, true, nil
}

func needsUpdate(db *DB, cardKey string, mtime, size int64) (bool, error) {
	info, err := db.GetCardInfo(cardKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new card
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func pruneCards(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllCardKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteCard(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
