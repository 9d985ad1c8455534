package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.cardlens/cardlens.yaml.
type Config struct {
	DataDir      string  `yaml:"data_dir"`
	CatalogQuery string  `yaml:"catalog_query,omitempty"`
	PageSize     int     `yaml:"page_size,omitempty"`
	SyncLimit    int     `yaml:"sync_limit,omitempty"`
	TopK         int     `yaml:"top_k,omitempty"`
	MinScore     float64 `yaml:"min_score,omitempty"`
	BuildWorkers int     `yaml:"build_workers,omitempty"`
}

// CardlensDir returns the absolute path to ~/.cardlens/.
func CardlensDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cardlens"), nil
}

// ConfigPath returns the absolute path to ~/.cardlens/cardlens.yaml.
func ConfigPath() (string, error) {
	dir, err := CardlensDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cardlens.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first cardlens init.
func DefaultConfig() (*Config, error) {
	dir, err := CardlensDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataDir:      filepath.Join(dir, "catalog"),
		CatalogQuery: "supertype:pokemon set.id:sv3",
		PageSize:     200,
		SyncLimit:    400,
		TopK:         5,
		BuildWorkers: 0, // 0 = one worker per CPU
	}, nil
}

// Load reads and parses ~/.cardlens/cardlens.yaml.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	cfg.DataDir, err = ExpandPath(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.cardlens/cardlens.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// CatalogPath returns the cards.csv location inside the data dir.
func (c *Config) CatalogPath() string { return filepath.Join(c.DataDir, "cards.csv") }

// ImagesDir returns the reference-image tree inside the data dir.
func (c *Config) ImagesDir() string { return filepath.Join(c.DataDir, "images") }

// IndexDir returns the current index generation directory.
func (c *Config) IndexDir() string { return filepath.Join(c.DataDir, "index") }
