package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/nobs/internal/flagx"
	"github.com/dmitrijs2005/nobs/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration so both "168h"/"7d" and integer nanoseconds are accepted.
// Only keys present in the file override earlier values.
type JsonConfig struct {
	HTTPAddr                    *string         `json:"http_addr"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	DataDir                     *string         `json:"data_dir"`
	StorageBackend              *string         `json:"storage_backend"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	MaxNmrArchiveSize           *int64          `json:"max_nmr_archive_size"`
	MaxMassbankFileSize         *int64          `json:"max_massbank_file_size"`
	Development                 *bool           `json:"development"`
	LogLevel                    *string         `json:"log_level"`
	CORSOrigins                 []string        `json:"cors_origins"`
	Orcid                       *struct {
		TokenURL     *string `json:"token_url"`
		APIURL       *string `json:"api_url"`
		ClientID     *string `json:"client_id"`
		ClientSecret *string `json:"client_secret"`
		RedirectURI  *string `json:"redirect_uri"`
	} `json:"orcid"`
}

// parseJson loads values from the file given with -c/-config. Without the
// flag nothing happens; an unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	overlay(&config.DataDir, c.DataDir)
	overlay(&config.StorageBackend, c.StorageBackend)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.MaxNmrArchiveSize, c.MaxNmrArchiveSize)
	overlay(&config.MaxMassbankFileSize, c.MaxMassbankFileSize)
	overlay(&config.Development, c.Development)
	overlay(&config.LogLevel, c.LogLevel)
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	if o := c.Orcid; o != nil {
		overlay(&config.Orcid.TokenURL, o.TokenURL)
		overlay(&config.Orcid.APIURL, o.APIURL)
		overlay(&config.Orcid.ClientID, o.ClientID)
		overlay(&config.Orcid.ClientSecret, o.ClientSecret)
		overlay(&config.Orcid.RedirectURI, o.RedirectURI)
	}
}

func overlay[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
