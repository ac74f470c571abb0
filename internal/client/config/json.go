package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/nobs/internal/flagx"
	"github.com/dmitrijs2005/nobs/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration, so "2s", "5m" or integer nanoseconds are accepted. Keys
// missing from the file keep their earlier values.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	DatabasePath        *string         `json:"database_path"`
	AutosaveDelay       *timex.Duration `json:"autosave_delay"`
	StatusCheckInterval *timex.Duration `json:"status_check_interval"`
	LogLevel            *string         `json:"log_level"`
	OrcidAuthorizeURL   *string         `json:"orcid_authorize_url"`
	OrcidClientID       *string         `json:"orcid_client_id"`
	OrcidRedirectURI    *string         `json:"orcid_redirect_uri"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without the flag nothing is loaded. Read or unmarshal
// errors panic.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	if jc.AutosaveDelay != nil {
		cfg.AutosaveDelay = jc.AutosaveDelay.Duration
	}
	if jc.StatusCheckInterval != nil {
		cfg.StatusCheckInterval = jc.StatusCheckInterval.Duration
	}
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.OrcidAuthorizeURL, jc.OrcidAuthorizeURL)
	setString(&cfg.OrcidClientID, jc.OrcidClientID)
	setString(&cfg.OrcidRedirectURI, jc.OrcidRedirectURI)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
