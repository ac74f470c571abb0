// Package client talks to the nobs REST API and bootstraps the local SQLite
// database.
//
// HTTPClient carries the bearer token of the current session and maps
// responses onto sentinel errors: 401 becomes ErrUnauthorized, a transport
// failure becomes ErrUnavailable, and any other failure an *APIError with the
// server's message. InitDatabase opens the local database and applies the
// embedded goose migrations.
package client
