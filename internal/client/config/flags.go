package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/nobs/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the nobs API (default from Config)
//	-db string  path of the local SQLite database
//	-i int      session check interval in seconds
//	-autosave int  draft autosave delay in milliseconds
//	-l string   log level
//	-orcid-client string  ORCID client id for the sign-in link
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-db", "-i", "-autosave", "-l", "-orcid-client"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the nobs API")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "local database file")
	checkInterval := fs.Int("i", int(cfg.StatusCheckInterval.Seconds()), "session check interval (in seconds)")
	autosave := fs.Int("autosave", int(cfg.AutosaveDelay.Milliseconds()), "draft autosave delay (in milliseconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.OrcidClientID, "orcid-client", cfg.OrcidClientID, "ORCID client id")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.StatusCheckInterval = time.Duration(*checkInterval) * time.Second
	cfg.AutosaveDelay = time.Duration(*autosave) * time.Millisecond
}
