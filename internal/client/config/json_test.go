package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func useArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"nobs"}, args...)
}

func TestParseJson_OverlaysPresentKeys(t *testing.T) {
	useArgs(t, "-config", configFile(t, `{
		"server_url": "https://nobs.example.org",
		"autosave_delay": "750ms",
		"status_check_interval": 60000000000,
		"orcid_client_id": "APP-XYZ"
	}`))

	cfg := &Config{DatabasePath: "keep.db", OrcidRedirectURI: "https://nobs.example.org/cb"}
	parseJson(cfg)

	assert.Equal(t, "https://nobs.example.org", cfg.ServerURL)
	assert.Equal(t, 750*time.Millisecond, cfg.AutosaveDelay)
	assert.Equal(t, time.Minute, cfg.StatusCheckInterval)
	assert.Equal(t, "APP-XYZ", cfg.OrcidClientID)
	assert.Equal(t, "keep.db", cfg.DatabasePath)
	assert.Equal(t, "https://nobs.example.org/cb", cfg.OrcidRedirectURI)
}

func TestParseJson_NoConfigFlag(t *testing.T) {
	useArgs(t, "-db", "other.db")

	cfg := &Config{ServerURL: "http://localhost:3333", AutosaveDelay: 2 * time.Second}
	parseJson(cfg)

	assert.Equal(t, &Config{ServerURL: "http://localhost:3333", AutosaveDelay: 2 * time.Second}, cfg)
}

func TestParseJson_BadDurationPanics(t *testing.T) {
	useArgs(t, "-c", configFile(t, `{"autosave_delay": "soon"}`))
	require.Panics(t, func() { parseJson(&Config{}) })
}
