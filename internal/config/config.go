// Package config loads the server configuration: embedded defaults
// overlaid by an optional YAML file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/keys"
	"github.com/ericogr/biogenesis/internal/run"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type speciesEntry struct {
	Key             string `yaml:"key"`
	Name            string `yaml:"name"`
	NameEn          string `yaml:"name_en"`
	Description     string `yaml:"description"`
	InitialSequence string `yaml:"initial_sequence"`
}

// CollaboratorConfig configures the environment generator and narrator.
type CollaboratorConfig struct {
	Offline bool          `yaml:"offline"`
	Timeout time.Duration `yaml:"timeout"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	// Language of generated names and narration.
	Language string `yaml:"language"`
	// Optional prompt templates; see envgen and narrator for the tokens.
	EnvironmentPrompt string `yaml:"environment_prompt"`
	NarrationPrompt   string `yaml:"narration_prompt"`
}

// SessionConfig controls idle run expiry.
type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Config is the full server configuration.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Rules         run.Rules          `yaml:"rules"`
	Collaborators CollaboratorConfig `yaml:"collaborators"`
	Sessions      SessionConfig      `yaml:"sessions"`
	History       struct {
		Path string `yaml:"path"`
	} `yaml:"history"`
	Leaderboard struct {
		Limit int `yaml:"limit"`
	} `yaml:"leaderboard"`
	SpeciesList []speciesEntry `yaml:"species"`

	// Species is SpeciesList validated and converted; filled by Load.
	Species []game.Species `yaml:"-"`
}

// Defaults returns the embedded configuration.
func Defaults() (*Config, error) {
	return Parse(nil)
}

// Load reads the file at path over the embedded defaults. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays data (may be nil) on the embedded defaults and validates.
// Fields missing from data keep their default; a species list in data
// replaces the default list.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides values from environment variables when set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(constants.EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
	if v := getenv(constants.EnvListenAddr); v != "" {
		c.Server.Address = v
	}
	if v := getenv(constants.EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Collaborators.Timeout <= 0 {
		return fmt.Errorf("collaborators.timeout must be positive")
	}
	if c.Sessions.IdleTimeout <= 0 || c.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("sessions.idle_timeout and sessions.sweep_interval must be positive")
	}
	if c.Leaderboard.Limit <= 0 {
		c.Leaderboard.Limit = 20
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		c.Server.Address = ":8080"
	}

	if len(c.SpeciesList) == 0 {
		return fmt.Errorf("species is empty (provide a 'species' list)")
	}
	// Cross-entry validation: unique keys and parseable, non-empty sequences.
	seen := make(map[string]struct{}, len(c.SpeciesList))
	out := make([]game.Species, 0, len(c.SpeciesList))
	for _, e := range c.SpeciesList {
		key := keys.SpeciesKey(e.Key)
		if key == "" {
			key = keys.SpeciesKey(e.NameEn)
		}
		if key == "" {
			return fmt.Errorf("species entry missing 'key'")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate species key '%s'", key)
		}
		seen[key] = struct{}{}
		seq, err := game.ParseSequence(e.InitialSequence)
		if err != nil {
			return fmt.Errorf("species '%s': %w", key, err)
		}
		if len(seq) == 0 {
			return fmt.Errorf("species '%s': initial_sequence is empty", key)
		}
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = key
		}
		out = append(out, game.Species{
			Key:             key,
			Name:            name,
			NameEn:          strings.TrimSpace(e.NameEn),
			Description:     strings.TrimSpace(e.Description),
			InitialSequence: seq.String(),
		})
	}
	c.Species = out
	return nil
}
