// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/pulsewatch/internal/types"
)

// Config represents the CLI configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags or environment variables.
type Config struct {
	// Credentials. The pipeline itself never sees these; they only feed
	// the per-source availability map.
	SearchAPIKey       string `json:"search_api_key,omitempty"`        // web-search capability (forum/video/professional/web)
	SocialSearchAPIKey string `json:"social_search_api_key,omitempty"` // social-search capability (microblog)
	GeminiAPIKey       string `json:"gemini_api_key,omitempty"`        // relevance judge (optional)

	// Endpoints and storage.
	SearchBaseURL string `json:"search_base_url,omitempty"`
	CacheDir      string `json:"cache_dir,omitempty"`

	// Run defaults.
	Sources       []string `json:"sources,omitempty"`
	Depth         string   `json:"depth,omitempty"`
	WindowDays    int      `json:"window_days,omitempty"`
	BudgetSeconds int      `json:"budget_seconds,omitempty"`
	Verbose       bool     `json:"verbose,omitempty"`
}

// Environment variable names consulted by ApplyEnv.
const (
	EnvSearchAPIKey       = "SEARCH_API_KEY"
	EnvSocialSearchAPIKey = "SOCIAL_SEARCH_API_KEY"
	EnvGeminiAPIKey       = "GEMINI_API_KEY"
)

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.WindowDays < 0 {
		return fmt.Errorf("config error: 'window_days' must be non-negative")
	}
	if c.BudgetSeconds < 0 {
		return fmt.Errorf("config error: 'budget_seconds' must be non-negative")
	}
	if c.Depth != "" && !types.Depth(c.Depth).Valid() {
		return fmt.Errorf("config error: unknown depth %q", c.Depth)
	}
	for _, s := range c.Sources {
		if _, ok := types.ParseSourceTag(s); !ok {
			return fmt.Errorf("config error: unknown source %q", s)
		}
	}
	return nil
}

// ApplyEnv fills empty credential fields from environment variables.
func (c *Config) ApplyEnv() {
	if c.SearchAPIKey == "" {
		c.SearchAPIKey = os.Getenv(EnvSearchAPIKey)
	}
	if c.SocialSearchAPIKey == "" {
		c.SocialSearchAPIKey = os.Getenv(EnvSocialSearchAPIKey)
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv(EnvGeminiAPIKey)
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.SearchAPIKey == "" {
		result.SearchAPIKey = defaults.SearchAPIKey
	}
	if result.SocialSearchAPIKey == "" {
		result.SocialSearchAPIKey = defaults.SocialSearchAPIKey
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.SearchBaseURL == "" {
		result.SearchBaseURL = defaults.SearchBaseURL
	}
	if result.CacheDir == "" {
		result.CacheDir = defaults.CacheDir
	}
	if result.Depth == "" {
		result.Depth = defaults.Depth
	}
	if len(result.Sources) == 0 {
		result.Sources = defaults.Sources
	}
	if result.WindowDays == 0 {
		result.WindowDays = defaults.WindowDays
	}
	if result.BudgetSeconds == 0 {
		result.BudgetSeconds = defaults.BudgetSeconds
	}

	return result
}

// Availability resolves credentials into the opaque boolean-per-source
// lookup the core consumes. The web-search key enables every adapter that
// proxies hosted web search; the social key enables the microblog adapter.
func (c *Config) Availability() map[types.SourceTag]bool {
	webSearch := c.SearchAPIKey != ""
	return map[types.SourceTag]bool{
		types.SourceForum:        webSearch,
		types.SourceVideo:        webSearch,
		types.SourceProfessional: webSearch,
		types.SourceWeb:          webSearch,
		types.SourceMicroblog:    c.SocialSearchAPIKey != "",
	}
}

// SourceTags parses the configured source names, defaulting to all
// sources when none are set.
func (c *Config) SourceTags() []types.SourceTag {
	if len(c.Sources) == 0 {
		return types.AllSources()
	}
	tags := make([]types.SourceTag, 0, len(c.Sources))
	for _, s := range c.Sources {
		if tag, ok := types.ParseSourceTag(s); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}
