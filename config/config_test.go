package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"wolfhub/espn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "wolfhub.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout.Duration)
	assert.Equal(t, 30*time.Second, cfg.Poller.Interval.Duration)
	assert.Equal(t, 10*time.Minute, cfg.News.TTL.Duration)
	assert.Equal(t, "152", cfg.Scores.TeamId)
	assert.Equal(t, []string{"football", "basketball", "baseball"}, cfg.Scores.Sports)
	assert.True(t, cfg.Poller.News)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := LoadConfig("wolfhub.toml")
	require.NoError(t, err)

	assert.Equal(t, Default().Scores, cfg.Scores)
	assert.Equal(t, Default().Upstream, cfg.Upstream)
	assert.Equal(t, []string{"recruit", "commitment", "transfer", "portal"}, cfg.News.Keywords["recruiting"])
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
[scores]
ttl = "90s"
sports = ["Basketball"]

[poller]
news = false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Scores.TTL.Duration)
	assert.False(t, cfg.Poller.News)
	assert.Equal(t, espn.DefaultWindow, cfg.Scores.Window.Duration)
	assert.Equal(t, 3000, cfg.Server.Port)

	sports, err := cfg.Sports()
	require.NoError(t, err)
	assert.Equal(t, []espn.Sport{espn.Basketball}, sports)

	agg := cfg.AggregatorConfig()
	assert.Equal(t, 90*time.Second, agg.Scores.TTL)
	assert.Equal(t, []espn.Sport{espn.Basketball}, agg.Scores.Sports)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad duration", "[scores]\nttl = \"soon\""},
		{"unknown sport", "[scores]\nsports = [\"hockey\"]"},
		{"no sports", "[scores]\nsports = []"},
		{"port out of range", "[server]\nport = 70000"},
		{"zero interval", "[poller]\ninterval = \"0s\""},
		{"unknown key", "[scores]\nteam = \"153\""},
		{"cache section", "[cache]\ndefault_ttl = \"5m\""},
		{"not toml", "this is = = not toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
