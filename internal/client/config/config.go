package config

import "time"

// Config holds runtime settings for the nobs terminal client.
//
// Fields:
//   - ServerURL: base URL of the nobs REST API.
//   - DatabasePath: SQLite file holding the session and the entry draft.
//   - AutosaveDelay: debounce delay before a dirty form is saved as a draft.
//   - StatusCheckInterval: how often the session token is re-validated.
//   - OrcidAuthorizeURL / OrcidClientID / OrcidRedirectURI: used to print the
//     ORCID sign-in link; the code from the redirect is passed to `login`.
type Config struct {
	ServerURL           string
	DatabasePath        string
	AutosaveDelay       time.Duration
	StatusCheckInterval time.Duration
	LogLevel            string
	OrcidAuthorizeURL   string
	OrcidClientID       string
	OrcidRedirectURI    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:3333"
	c.DatabasePath = "nobs.db"
	c.AutosaveDelay = 2 * time.Second
	c.StatusCheckInterval = 5 * time.Minute
	c.LogLevel = "warn"
	c.OrcidAuthorizeURL = "https://sandbox.orcid.org/oauth/authorize"
	c.OrcidClientID = ""
	c.OrcidRedirectURI = "http://localhost:5173/auth/callback"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
