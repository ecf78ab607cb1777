package domain

import "time"

// TokenPair is what a verified sign-in or a refresh hands back to the caller.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthTokenPair is the persisted record of an issued pair. Only fingerprints
// (base64url SHA-256) of the tokens are stored.
type AuthTokenPair struct {
	ID                 string
	AccountID          string
	AccessFingerprint  string
	RefreshFingerprint string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
