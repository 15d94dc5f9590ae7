// Package config loads the site-wide settings file (quill.yaml).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	qerrors "github.com/pradyumna2905/quill/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Site   SiteConfig   `yaml:"site"`
	Social []SocialLink `yaml:"social,omitempty"`
	Source SourceConfig `yaml:"source"`
	Output OutputConfig `yaml:"output"`
	Daemon DaemonConfig `yaml:"daemon,omitempty"`
}

// SiteConfig carries site identity used by templates.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Description string `yaml:"description,omitempty"`
	Author      string `yaml:"author,omitempty"`
}

// SocialLink is one entry of the fixed site-wide footer link list.
type SocialLink struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// SourceConfig locates the content tree, optionally backed by a git remote.
type SourceConfig struct {
	Directory string           `yaml:"directory"`
	Git       *GitSourceConfig `yaml:"git,omitempty"`
}

// GitSourceConfig describes a remote content repository for `quill fetch`.
type GitSourceConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// DaemonConfig configures the rebuild daemon.
type DaemonConfig struct {
	Listen          string   `yaml:"listen,omitempty"`
	RebuildInterval Duration `yaml:"rebuild_interval,omitempty"`
	Debounce        Duration `yaml:"debounce,omitempty"`
	HistoryPath     string   `yaml:"history_path,omitempty"`
}

// Duration wraps time.Duration with YAML support for strings like "90s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load loads configuration from the specified file.
//
// A .env file next to the working directory is loaded first (without
// overriding existing process environment), and ${VAR} references inside the
// YAML are expanded before unmarshaling.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, qerrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, qerrors.ConfigInvalid("read", err)
	}

	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, qerrors.ConfigInvalid("unmarshal", err)
	}

	config.applyDefaults()

	if config.Source.Git != nil && config.Source.Git.URL == "" {
		return nil, qerrors.ConfigInvalid("source.git.url is required when source.git is set", nil)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Untitled Site"
	}
	if c.Source.Directory == "" {
		c.Source.Directory = "./content"
	}
	if c.Source.Git != nil && c.Source.Git.Branch == "" {
		c.Source.Git.Branch = "main"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./public"
		c.Output.Clean = true
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = "127.0.0.1:8321"
	}
	if c.Daemon.RebuildInterval <= 0 {
		c.Daemon.RebuildInterval = Duration(time.Hour)
	}
	if c.Daemon.Debounce <= 0 {
		c.Daemon.Debounce = Duration(2 * time.Second)
	}
	if c.Daemon.HistoryPath == "" {
		c.Daemon.HistoryPath = "quill-history.db"
	}
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Site: SiteConfig{
			Title:       "My Site",
			BaseURL:     "https://example.com",
			Description: "A personal site",
		},
		Social: []SocialLink{
			{Name: "GitHub", URL: "https://github.com/example"},
			{Name: "Twitter", URL: "https://twitter.com/example"},
		},
		Source: SourceConfig{Directory: "./content"},
		Output: OutputConfig{Directory: "./public", Clean: true},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
