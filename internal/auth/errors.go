package auth

import "errors"

// Token layer failures. AuthGate.Resolve collapses all of them into "no
// identity"; they stay distinct for logging and tests.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrMissingSubject   = errors.New("token missing subject")
)

// OAuth layer failures, surfaced to the login caller.
var (
	ErrExchangeRejected   = errors.New("authorization code exchange rejected")
	ErrTokenMissing       = errors.New("provider response missing access token")
	ErrProfileFetchFailed = errors.New("provider profile fetch failed")
	ErrUnverifiedProfile  = errors.New("provider profile has no verified email")
)
