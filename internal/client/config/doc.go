// Package config loads runtime configuration for the nobs terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "https://nobs.example.org",
//	  "database_path": "nobs.db",
//	  "autosave_delay": "2s",
//	  "status_check_interval": "5m",
//	  "orcid_client_id": "APP-XXXXXXXXXXXXXXXX"
//	}
package config
