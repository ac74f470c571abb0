package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_addr":                      "www.example:9000",
		"database_dsn":                   "postgres://x",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "7d",
		"data_dir":                       "/var/lib/nobs",
		"storage_backend":                "s3",
		"s3_bucket":                      "bucket",
		"max_massbank_file_size":         2048,
		"development":                    true,
		"cors_origins":                   []string{"https://nobs.example"},
		"orcid": map[string]any{
			"client_id":    "APP-1",
			"redirect_uri": "https://nobs.example/cb",
		},
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 7*24*time.Hour, cfg.AccessTokenValidityDuration)
		assert.Equal(t, "/var/lib/nobs", cfg.DataDir)
		assert.Equal(t, StorageS3, cfg.StorageBackend)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, int64(2048), cfg.MaxMassbankFileSize)
		assert.True(t, cfg.Development)
		assert.Equal(t, []string{"https://nobs.example"}, cfg.CORSOrigins)
		assert.Equal(t, "APP-1", cfg.Orcid.ClientID)
		assert.Equal(t, "https://nobs.example/cb", cfg.Orcid.RedirectURI)
		// keys absent from the file keep their earlier value
		assert.Equal(t, "https://sandbox.orcid.org/oauth/token", cfg.Orcid.TokenURL)
		assert.Equal(t, "us-east-1", cfg.S3Region)
	})

	t.Run("without a config flag the file is ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-a", ":4000"}

		cfg := &Config{HTTPAddr: ":3333", StorageBackend: StorageLocal, MaxNmrArchiveSize: 10}
		parseJson(cfg)

		assert.Equal(t, ":3333", cfg.HTTPAddr)
		assert.Equal(t, StorageLocal, cfg.StorageBackend)
		assert.Equal(t, int64(10), cfg.MaxNmrArchiveSize)
		assert.Empty(t, cfg.CORSOrigins)
	})

	t.Run("orcid block without keys leaves orcid settings", func(t *testing.T) {
		path := writeTempJSON(t, dir, "orcid.json", map[string]any{"orcid": map[string]any{}})
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		want := cfg.Orcid
		parseJson(cfg)

		assert.Equal(t, want, cfg.Orcid)
	})

	t.Run("broken file panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"http_addr": `), 0o600))

		os.Args = []string{"testbin", "-config", bad}
		require.Panics(t, func() { parseJson(&Config{}) })

		os.Args = []string{"testbin", "-c", filepath.Join(dir, "absent.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
