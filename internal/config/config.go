// Package config parses mystic.toml configuration with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// DefaultAccentColor is the default TUI accent color (violet).
const DefaultAccentColor = "#9D6BF4"

// DefaultShuffleDelayMS is how long the shuffle animation runs before the
// cards are dealt.
const DefaultShuffleDelayMS = 2000

// hexColorRe matches a 6-digit hex color string like "#9D6BF4".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level mystic.toml configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	History HistoryConfig `toml:"history"`
	TUI     TUIConfig     `toml:"tui"`
	Shuffle ShuffleConfig `toml:"shuffle"`
}

// APIConfig controls the interpretation backend. The key is normally
// supplied through MYSTIC_API_KEY rather than the config file.
type APIConfig struct {
	BaseURL     string  `toml:"base_url" env:"MYSTIC_API_BASE_URL"`
	Key         string  `toml:"key" env:"MYSTIC_API_KEY"`
	Model       string  `toml:"model" env:"MYSTIC_API_MODEL"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// HistoryConfig controls reading persistence.
type HistoryConfig struct {
	Path string `toml:"path" env:"MYSTIC_HISTORY_PATH"` // empty = ~/.mystic/history.json
}

// TUIConfig controls the terminal UI appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color"`
}

// ShuffleConfig controls the shuffle animation.
type ShuffleConfig struct {
	DelayMS int `toml:"delay_ms"`
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, fmt.Errorf("api.base_url must not be empty"))
	} else {
		u, parseErr := url.ParseRequestURI(c.API.BaseURL)
		if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("api.base_url must be a valid http or https URL"))
		}
	}
	if c.API.Model == "" {
		errs = append(errs, fmt.Errorf("api.model must not be empty"))
	}
	if c.API.Temperature < 0 || c.API.Temperature > 2 {
		errs = append(errs, fmt.Errorf("api.temperature must be between 0 and 2"))
	}
	if c.API.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("api.max_tokens must be >= 0 (0 = omit, provider default)"))
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. %q)", DefaultAccentColor))
	}

	if c.Shuffle.DelayMS < 0 {
		errs = append(errs, fmt.Errorf("shuffle.delay_ms must be >= 0 (0 = deal immediately)"))
	}

	return errors.Join(errs...)
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:     "https://api.openai.com",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   2048,
		},
		History: HistoryConfig{Path: ""},
		TUI: TUIConfig{
			AccentColor: DefaultAccentColor,
		},
		Shuffle: ShuffleConfig{
			DelayMS: DefaultShuffleDelayMS,
		},
	}
}

// HistoryFile resolves the history file path, defaulting to
// ~/.mystic/history.json when history.path is unset.
func (c *Config) HistoryFile() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".mystic", "history.json")
}

// Load reads mystic.toml from the given path and applies environment
// overrides. If path is empty, it walks up from the current working
// directory looking for mystic.toml; a missing file is not an error — the
// defaults plus environment are used, so the app runs without any config
// file at all. Returns an error if the file contains unknown keys (likely
// typos).
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = findConfig()
	}

	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, strings.Join(keys, ", "))
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: environment overrides: %w", err)
	}

	return &cfg, nil
}

// findConfig walks up from the current directory looking for mystic.toml.
// Returns "" when no file is found.
func findConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, "mystic.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// InitFile writes a default mystic.toml template to the given directory.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, "mystic.toml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: mystic.toml already exists at %s", path)
	}

	content := `# mystic.toml — Mystic Tarot configuration
# Optional: without this file, defaults plus MYSTIC_* environment
# variables are used.

[api]
base_url = "https://api.openai.com"  # any OpenAI-compatible endpoint
key = ""                             # prefer the MYSTIC_API_KEY environment variable
model = "gpt-4o-mini"
temperature = 0.7
max_tokens = 2048  # 0 = omit the field, use the provider default

[history]
path = ""  # empty = ~/.mystic/history.json

[tui]
accent_color = "#9D6BF4"  # hex color for highlights and borders

[shuffle]
delay_ms = 2000  # shuffle animation length; 0 = deal immediately
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}
