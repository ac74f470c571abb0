package common

const (
	// AuthorizationHeaderName carries "Bearer <token>" on API requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "
)
