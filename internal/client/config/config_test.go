package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:3333", c.ServerURL)
	assert.Equal(t, "nobs.db", c.DatabasePath)
	assert.Equal(t, 2*time.Second, c.AutosaveDelay)
	assert.Equal(t, 5*time.Minute, c.StatusCheckInterval)
	assert.Equal(t, "https://sandbox.orcid.org/oauth/authorize", c.OrcidAuthorizeURL)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:3333", cfg.ServerURL)
	assert.Equal(t, 2*time.Second, cfg.AutosaveDelay)
}
