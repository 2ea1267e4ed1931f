package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	CardDir      string `toml:"card_dir"`
	LorebookDir  string `toml:"lorebook_dir"`
	CharacterDir string `toml:"character_dir"`
	DBPath       string `toml:"db_path"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	share := filepath.Join(home, ".local", "share", "cardlore")
	cfg := &Config{
		CardDir:      filepath.Join(share, "cards"),
		LorebookDir:  filepath.Join(share, "lorebooks"),
		CharacterDir: filepath.Join(share, "characters"),
		DBPath:       filepath.Join(home, ".config", "cardlore", "cardlore.db"),
	}

	cfgPath := filepath.Join(home, ".config", "cardlore", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.CardDir = expandHome(cfg.CardDir, home)
	cfg.LorebookDir = expandHome(cfg.LorebookDir, home)
	cfg.CharacterDir = expandHome(cfg.CharacterDir, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

// EnsureDirs creates the card, lorebook and character directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.CardDir, c.LorebookDir, c.CharacterDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
