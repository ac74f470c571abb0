package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "https://nobs.example.org", "-db", "/tmp/x.db", "-i", "10", "-autosave", "500", "-l", "debug", "-orcid-client", "APP-1"},
			expected: &Config{
				ServerURL:           "https://nobs.example.org",
				DatabasePath:        "/tmp/x.db",
				StatusCheckInterval: 10 * time.Second,
				AutosaveDelay:       500 * time.Millisecond,
				LogLevel:            "debug",
				OrcidClientID:       "APP-1",
			},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"cmd", "-x", "y", "-a", "http://h"},
			expected: &Config{ServerURL: "http://h"},
		},
		{name: "incorrect check interval", args: []string{"cmd", "-i", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
