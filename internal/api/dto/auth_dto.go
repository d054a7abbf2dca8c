package dto

import "time"

// LoginURLResponse carries the provider consent-screen URL.
type LoginURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// TokenPairResponse is returned once a login completes.
type TokenPairResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// RefreshRequest payload for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AccessTokenResponse is returned by the refresh endpoint.
type AccessTokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MeResponse identifies the caller.
type MeResponse struct {
	Subject string `json:"subject"`
}
