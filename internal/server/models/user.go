// Package models defines server-side data models persisted in the database.
package models

import (
	"regexp"
	"time"
)

// User is a researcher identified by an ORCID iD. AccessToken and
// RefreshToken are the ORCID OAuth tokens in plaintext; the users repository
// encrypts them on write and decrypts them on read.
type User struct {
	ID             int64
	Orcid          string
	Name           *string
	Email          *string
	Institution    *string
	AccessToken    *string
	RefreshToken   *string
	TokenExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var orcidRe = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// ValidOrcid reports whether s looks like an ORCID iD (NNNN-NNNN-NNNN-NNNX).
func ValidOrcid(s string) bool {
	return orcidRe.MatchString(s)
}
