package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/otasync/otasync/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".otasync", "config.json")
	DefaultMarkerName = "VERSION"
)

// Config carries everything a run needs explicitly: no implicit working
// directory, no globals.
type Config struct {
	// PayloadDir is the directory the archive contents are merged
	// into. Siblings of this directory are never touched.
	PayloadDir string `json:"payload_dir" mapstructure:"payload_dir"`

	// MarkerPath is the local version marker file. Defaults to a
	// VERSION file next to PayloadDir, so it survives the merge.
	MarkerPath string `json:"marker_path" mapstructure:"marker_path"`

	VersionURL   string `json:"version_url" mapstructure:"version_url"`
	ArchiveURL   string `json:"archive_url" mapstructure:"archive_url"`
	ChangelogURL string `json:"changelog_url" mapstructure:"changelog_url"`

	// KeepScratch leaves the download/unpack scratch directory in
	// place for debugging.
	KeepScratch bool `json:"-" mapstructure:"keep_scratch"`

	Path string `json:"-" mapstructure:"-"`
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	return &cfg, nil
}

// Validate resolves paths, fills defaults and checks the source URLs.
func (c *Config) Validate() error {
	if c.PayloadDir == "" {
		return fmt.Errorf("config: payload dir is required")
	}

	payloadDir, err := utils.ResolvePath(c.PayloadDir)
	if err != nil {
		return fmt.Errorf("config: payload dir: %w", err)
	}
	c.PayloadDir = payloadDir

	if c.MarkerPath == "" {
		c.MarkerPath = filepath.Join(filepath.Dir(c.PayloadDir), DefaultMarkerName)
	}
	markerPath, err := utils.ResolvePath(c.MarkerPath)
	if err != nil {
		return fmt.Errorf("config: marker path: %w", err)
	}
	c.MarkerPath = markerPath

	if err := checkURL("version url", c.VersionURL, true); err != nil {
		return err
	}
	if err := checkURL("archive url", c.ArchiveURL, true); err != nil {
		return err
	}
	// changelog is optional
	if err := checkURL("changelog url", c.ChangelogURL, false); err != nil {
		return err
	}

	return nil
}

func checkURL(name, raw string, required bool) error {
	if raw == "" {
		if required {
			return fmt.Errorf("config: %s is required", name)
		}
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: %s: unsupported scheme %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("config: %s: missing host", name)
	}

	return nil
}
