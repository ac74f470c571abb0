package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/nobs/internal/flagx"
	"github.com/dmitrijs2005/nobs/internal/timex"
	"github.com/joho/godotenv"
)

// loadDotenv loads the file given with -env, or ./.env when present.
// Variables already set in the process environment win.
var loadDotenv = func() {
	path := flagx.EnvFileFlag()
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

// parseEnv overlays values from environment variables.
//
//	HTTP_ADDR, PORT, DATABASE_URL, SECRET_KEY, ACCESS_TOKEN_VALIDITY,
//	DATA_DIR, STORAGE_BACKEND, S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET,
//	S3_REGION, S3_BASE_ENDPOINT, APP_ENV, LOG_LEVEL, CORS_ORIGIN,
//	ORCID_TOKEN_URL, ORCID_API_URL, ORCID_CLIENT_ID, ORCID_CLIENT_SECRET,
//	ORCID_REDIRECT_URI
//
// Malformed numeric or duration values panic, like malformed flags.
func parseEnv(config *Config) {
	loadDotenv()

	setString(&config.HTTPAddr, "HTTP_ADDR")
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.HTTPAddr = ":" + port
	}
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setString(&config.SecretKey, "SECRET_KEY")
	if v, ok := lookup("ACCESS_TOKEN_VALIDITY"); ok {
		d, err := timex.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.AccessTokenValidityDuration = d
	}
	setString(&config.DataDir, "DATA_DIR")
	setString(&config.StorageBackend, "STORAGE_BACKEND")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setInt64(&config.MaxNmrArchiveSize, "MAX_NMR_ARCHIVE_SIZE")
	setInt64(&config.MaxMassbankFileSize, "MAX_MASSBANK_FILE_SIZE")
	if v, ok := lookup("APP_ENV"); ok {
		config.Development = strings.EqualFold(v, "development")
	}
	setString(&config.LogLevel, "LOG_LEVEL")
	if v, ok := lookup("CORS_ORIGIN"); ok {
		config.CORSOrigins = splitOrigins(v)
	}

	setString(&config.Orcid.TokenURL, "ORCID_TOKEN_URL")
	setString(&config.Orcid.APIURL, "ORCID_API_URL")
	setString(&config.Orcid.ClientID, "ORCID_CLIENT_ID")
	setString(&config.Orcid.ClientSecret, "ORCID_CLIENT_SECRET")
	setString(&config.Orcid.RedirectURI, "ORCID_REDIRECT_URI")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	if v, ok := lookup(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

// splitOrigins parses a comma-separated origin list, dropping blanks and
// trailing slashes.
func splitOrigins(s string) []string {
	var origins []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
