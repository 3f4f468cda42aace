package model

import "errors"

// Failure taxonomy. Every error leaving a component wraps one of these so the
// route boundary can map it to a response code without string matching.
var (
	// ErrCatalogUnavailable covers transport failures and non-2xx responses
	// from the movie catalog.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrAuthFailed covers bad credentials and auth backend rejections. The
	// wrapped message is surfaced to the user verbatim.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrStoreUnavailable covers document store transport failures.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMissingAPIKey means the catalog API key was not configured.
	ErrMissingAPIKey = errors.New("missing catalog API key")

	// ErrNoSession means an authenticated operation was attempted without an
	// authenticated session. Rejected locally, before any network I/O.
	ErrNoSession = errors.New("no authenticated session")

	// ErrEmailTaken means signup hit an already registered email.
	ErrEmailTaken = errors.New("email already registered")
)
