package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Overlay(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/nobs")
	t.Setenv("ACCESS_TOKEN_VALIDITY", "2d")
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORS_ORIGIN", "http://a.example/, http://b.example ,")
	t.Setenv("MAX_NMR_ARCHIVE_SIZE", "1024")
	t.Setenv("ORCID_CLIENT_ID", "APP-XYZ")
	t.Setenv("ORCID_CLIENT_SECRET", "shh")
	t.Setenv("ORCID_REDIRECT_URI", "http://localhost:5173/cb")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "postgres://u:p@db/nobs", c.DatabaseDSN)
	assert.Equal(t, 48*time.Hour, c.AccessTokenValidityDuration)
	assert.True(t, c.Development)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, c.CORSOrigins)
	assert.Equal(t, int64(1024), c.MaxNmrArchiveSize)
	assert.Equal(t, "APP-XYZ", c.Orcid.ClientID)
	assert.Equal(t, "https://sandbox.orcid.org/oauth/token", c.Orcid.TokenURL)
	require.NoError(t, c.ValidateOrcid())
}

func TestParseEnv_DotenvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ORCID_API_URL=https://pub.orcid.org/v3.0\nSECRET_KEY=fromfile\n"), 0o600))

	// process environment wins over the file
	t.Setenv("SECRET_KEY", "fromenv")
	t.Setenv("ORCID_API_URL", "")
	require.NoError(t, os.Unsetenv("ORCID_API_URL"))

	os.Args = []string{"testbin", "-env", path}

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "https://pub.orcid.org/v3.0", c.Orcid.APIURL)
	assert.Equal(t, "fromenv", c.SecretKey)
}

func TestParseEnv_BadValuesPanic(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Setenv("ACCESS_TOKEN_VALIDITY", "soon")
	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}
