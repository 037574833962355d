package domain

import "time"

// TokenPair is what the credential exchange hands out: a short-lived
// access JWT and an opaque refresh token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshToken is the stored record of an issued refresh token. Only the
// fingerprint is kept.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the opaque token
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
