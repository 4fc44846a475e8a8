// Package config handles configuration loading and validation for workdash.
//
// Defaults are merged with the user's YAML file by a pure function; the
// resulting Config value is immutable for the life of a run. Nothing in this
// package or its consumers mutates shared configuration state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lhjing/workdash/internal/core/timerange"
)

// AI provider identifiers.
const (
	ProviderOpenAI = "openai"
	ProviderZhipu  = "zhipu"
	ProviderAliyun = "aliyun"
	ProviderRelay  = "relay"
)

// SourceConfig describes one upstream system.
type SourceConfig struct {
	Name      string          `yaml:"name"`
	BaseURL   string          `yaml:"base_url"`
	APIURL    string          `yaml:"api_url"`  // OA only: API origin when it differs from BaseURL
	Username  string          `yaml:"username"` // GitLab only: activity feed owner
	Enabled   *bool           `yaml:"enabled"`  // nil = keep default
	DateRange timerange.Range `yaml:"date_range"`
}

// IsEnabled reports whether the source participates in a refresh cycle.
// A source with no base URL can never be fetched regardless of the flag.
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled != nil && *s.Enabled && s.BaseURL != ""
}

// Range returns the configured date range, falling back to today.
func (s SourceConfig) Range() timerange.Range {
	if s.DateRange.IsValid() {
		return s.DateRange
	}
	return timerange.RangeToday
}

// AIConfig holds the text-completion service credentials.
type AIConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"` // relay provider only
}

// ImageSearchConfig holds the optional dish image search credentials.
// A missing key is a soft warning, not an error.
type ImageSearchConfig struct {
	APIKey string `yaml:"api_key"`
	Engine string `yaml:"engine"` // "google" or "bing"
}

// HTTPConfig bounds upstream request latency.
type HTTPConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Config holds the application configuration.
type Config struct {
	Sources     map[string]SourceConfig `yaml:"sources"`
	AI          AIConfig                `yaml:"ai"`
	ImageSearch ImageSearchConfig       `yaml:"image_search"`
	HTTP        HTTPConfig              `yaml:"http"`
	DataDir     string                  `yaml:"-"` // set by caller, not from config file
}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig returns a Config with sensible defaults for the three known
// upstream systems.
func DefaultConfig() Config {
	return Config{
		Sources: map[string]SourceConfig{
			"zentao": {
				Name:    "ZenTao",
				Enabled: boolPtr(true),
			},
			"gitlab": {
				Name:      "GitLab",
				Enabled:   boolPtr(true),
				DateRange: timerange.RangeToday,
			},
			"oa": {
				Name:      "OA",
				Enabled:   boolPtr(false),
				DateRange: timerange.RangeToday,
			},
		},
		AI: AIConfig{
			Provider: ProviderZhipu,
		},
		ImageSearch: ImageSearchConfig{
			Engine: "bing",
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 15,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir. User values merge over defaults; empty user values do
// not clobber non-empty defaults.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			var user Config
			if err := yaml.Unmarshal(data, &user); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			cfg = Merge(cfg, user)
			cfg.DataDir = dataDir
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Merge overlays user configuration onto defaults and returns the result.
// Pure: neither argument is modified. Only non-empty user values override.
func Merge(defaults, user Config) Config {
	out := defaults
	out.Sources = make(map[string]SourceConfig, len(defaults.Sources))
	for key, def := range defaults.Sources {
		out.Sources[key] = mergeSource(def, user.Sources[key])
	}
	// Unknown user keys are carried as-is so extra systems can be
	// configured without a matching default.
	for key, src := range user.Sources {
		if _, ok := defaults.Sources[key]; !ok {
			out.Sources[key] = src
		}
	}

	out.AI = AIConfig{
		Provider: override(defaults.AI.Provider, user.AI.Provider),
		APIKey:   override(defaults.AI.APIKey, user.AI.APIKey),
		Model:    override(defaults.AI.Model, user.AI.Model),
		BaseURL:  override(defaults.AI.BaseURL, user.AI.BaseURL),
	}
	out.ImageSearch = ImageSearchConfig{
		APIKey: override(defaults.ImageSearch.APIKey, user.ImageSearch.APIKey),
		Engine: override(defaults.ImageSearch.Engine, user.ImageSearch.Engine),
	}
	if user.HTTP.TimeoutSeconds > 0 {
		out.HTTP.TimeoutSeconds = user.HTTP.TimeoutSeconds
	}

	return out
}

func mergeSource(def, user SourceConfig) SourceConfig {
	out := def
	out.Name = override(def.Name, user.Name)
	out.BaseURL = override(def.BaseURL, user.BaseURL)
	out.APIURL = override(def.APIURL, user.APIURL)
	out.Username = override(def.Username, user.Username)
	if user.Enabled != nil {
		out.Enabled = user.Enabled
	}
	if user.DateRange != "" {
		out.DateRange = user.DateRange
	}
	return out
}

func override(def, user string) string {
	if user != "" {
		return user
	}
	return def
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.HTTP.TimeoutSeconds < 1 {
		return fmt.Errorf("http.timeout_seconds must be at least 1")
	}

	for key, src := range c.Sources {
		if src.DateRange != "" && !src.DateRange.IsValid() {
			return fmt.Errorf("source %q has invalid date_range %q", key, src.DateRange)
		}
	}

	switch c.AI.Provider {
	case "", ProviderOpenAI, ProviderZhipu, ProviderAliyun, ProviderRelay:
	default:
		return fmt.Errorf("ai.provider %q is not supported", c.AI.Provider)
	}

	if c.AI.Provider == ProviderRelay && c.AI.BaseURL == "" {
		return fmt.Errorf("ai.provider %q requires ai.base_url", ProviderRelay)
	}

	return nil
}

// Source returns the configuration for key, zero value when absent.
func (c *Config) Source(key string) SourceConfig {
	return c.Sources[key]
}

// DatabaseFile returns the path of the SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "workdash.db")
}
