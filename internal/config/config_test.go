package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/pulsewatch/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"search_api_key": "sk",
		"social_search_api_key": "sosk",
		"sources": ["forum", "web"],
		"depth": "deep",
		"window_days": 14,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "sk", cfg.SearchAPIKey)
	assert.Equal(t, "sosk", cfg.SocialSearchAPIKey)
	assert.Equal(t, []string{"forum", "web"}, cfg.Sources)
	assert.Equal(t, "deep", cfg.Depth)
	assert.Equal(t, 14, cfg.WindowDays)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := LoadConfig("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorContains(t, err, "failed to read config")
	})

	t.Run("bad json", func(t *testing.T) {
		path := writeConfig(t, "{not json")
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "failed to parse config")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty is valid", Config{}, false},
		{"valid full", Config{Depth: "quick", WindowDays: 7, Sources: []string{"forum"}}, false},
		{"negative window", Config{WindowDays: -1}, true},
		{"negative budget", Config{BudgetSeconds: -5}, true},
		{"unknown depth", Config{Depth: "bottomless"}, true},
		{"unknown source", Config{Sources: []string{"usenet"}}, true},
		{"source alias accepted", Config{Sources: []string{"professional"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvSearchAPIKey, "env-search")
	t.Setenv(EnvSocialSearchAPIKey, "env-social")
	t.Setenv(EnvGeminiAPIKey, "env-gemini")

	cfg := Config{SearchAPIKey: "from-file"}
	cfg.ApplyEnv()

	// File values win; env fills only gaps.
	assert.Equal(t, "from-file", cfg.SearchAPIKey)
	assert.Equal(t, "env-social", cfg.SocialSearchAPIKey)
	assert.Equal(t, "env-gemini", cfg.GeminiAPIKey)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Depth: "deep", SearchAPIKey: "sk"}
	defaults := Config{Depth: "default", WindowDays: 7, BudgetSeconds: 240, CacheDir: "/tmp/cache"}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "deep", merged.Depth, "set values are kept")
	assert.Equal(t, "sk", merged.SearchAPIKey)
	assert.Equal(t, 7, merged.WindowDays)
	assert.Equal(t, 240, merged.BudgetSeconds)
	assert.Equal(t, "/tmp/cache", merged.CacheDir)
}

func TestAvailability(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected map[types.SourceTag]bool
	}{
		{
			"both keys",
			Config{SearchAPIKey: "a", SocialSearchAPIKey: "b"},
			map[types.SourceTag]bool{
				types.SourceForum: true, types.SourceVideo: true,
				types.SourceProfessional: true, types.SourceWeb: true,
				types.SourceMicroblog: true,
			},
		},
		{
			"search key only",
			Config{SearchAPIKey: "a"},
			map[types.SourceTag]bool{
				types.SourceForum: true, types.SourceVideo: true,
				types.SourceProfessional: true, types.SourceWeb: true,
				types.SourceMicroblog: false,
			},
		},
		{
			"social key only",
			Config{SocialSearchAPIKey: "b"},
			map[types.SourceTag]bool{
				types.SourceForum: false, types.SourceVideo: false,
				types.SourceProfessional: false, types.SourceWeb: false,
				types.SourceMicroblog: true,
			},
		},
		{
			"no keys",
			Config{},
			map[types.SourceTag]bool{
				types.SourceForum: false, types.SourceVideo: false,
				types.SourceProfessional: false, types.SourceWeb: false,
				types.SourceMicroblog: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.Availability())
		})
	}
}

func TestSourceTags(t *testing.T) {
	empty := Config{}
	assert.Equal(t, types.AllSources(), empty.SourceTags())

	cfg := Config{Sources: []string{"web", "professional"}}
	assert.Equal(t, []types.SourceTag{types.SourceWeb, types.SourceProfessional}, cfg.SourceTags())
}
