package domain

import "errors"

// Error taxonomy surfaced to callers. Handlers map these to HTTP statuses;
// nothing below is retried automatically except the single refresh-and-retry
// the resource fetcher performs on an unauthorized response.
var (
	// ErrBadRequest covers missing or malformed callback parameters and
	// undecodable state payloads.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound covers unknown users and absent records.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers duplicate provider bindings and duplicate
	// integrations for the same (user, service).
	ErrConflict = errors.New("already exists")

	// ErrNotConnected means the user holds no integration for the
	// requested service.
	ErrNotConnected = errors.New("service not connected")

	// ErrUpstreamAuth means the provider rejected credentials or tokens
	// irrecoverably (refresh included).
	ErrUpstreamAuth = errors.New("provider authorization failed")

	// ErrUpstream covers any other non-success provider response.
	ErrUpstream = errors.New("provider request failed")

	// ErrInvalidCredentials covers failed local sign-in attempts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden means the caller does not own the requested resource.
	ErrForbidden = errors.New("not authorized to perform requested action")
)
