package models

import "time"

// AccessToken backs one issued API token; ID is the token's jti claim.
type AccessToken struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
