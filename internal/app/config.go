package app

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration, normally at
// ~/.config/blockpad/config.yaml.
type Config struct {
	// ContentDir is the portfolio content root (projects/ + about.md).
	ContentDir string `yaml:"content_dir"`
	// Journal is the draft journal database path.
	Journal string `yaml:"journal"`
	// DraftRetentionDays bounds how long journaled drafts are kept.
	DraftRetentionDays int `yaml:"draft_retention_days"`
	// Log is the log level: debug, info, warn, error.
	Log string `yaml:"log"`
	// Editor overrides $EDITOR for the external-edit bridge.
	Editor string `yaml:"editor"`
	// AutosaveMS overrides the autosave debounce interval.
	AutosaveMS int           `yaml:"autosave_ms"`
	Backend    BackendConfig `yaml:"backend"`
}

// BackendConfig points at the deployed site's API. Leave URL empty to
// work purely against the local content directory.
type BackendConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// DefaultConfigPath returns ~/.config/blockpad/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "blockpad", "config.yaml"), nil
}

// LoadConfig reads the config file at path. A missing file yields the
// defaults rather than an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.Journal == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.Journal = filepath.Join(dir, "blockpad", "drafts.db")
		} else {
			c.Journal = "drafts.db"
		}
	}
	if c.DraftRetentionDays <= 0 {
		c.DraftRetentionDays = 7
	}
	if c.Log == "" {
		c.Log = "info"
	}
	if tok := os.Getenv("BLOCKPAD_TOKEN"); tok != "" {
		c.Backend.Token = tok
	}
}
