package domain

import "time"

// TokenKind differentiates short-lived access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "ACCESS"
	TokenKindRefresh TokenKind = "REFRESH"
)

// IssuedToken is a signed bearer token and the moment it stops being valid.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair is returned by a completed login.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
