package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Catalog and credential errors
	ErrAuthentication     = fmt.Errorf("authentication failed")
	ErrUpstream           = fmt.Errorf("upstream request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Lookup errors
	ErrNotFound       = fmt.Errorf("not found")
	ErrUnknownEmotion = fmt.Errorf("unknown emotion")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// AuthenticationHint is appended to credential failures surfaced to users.
const AuthenticationHint = "check client_id and client_secret in config.toml or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET in .env"
