package domain

import "time"

// TokenType classifies a persisted one-time token.
type TokenType string

const (
	TokenTypeEmailConfirmation TokenType = "EmailConfirmation"
	TokenTypeResetPassword     TokenType = "ResetPassword"
	TokenTypeRefreshToken      TokenType = "RefreshToken"
)

// OneTimeToken is the persisted record backing confirmation, reset, and
// refresh flows. Lookups are always by the (UserID, Type, Value) triple, not
// by value alone. Consumption deletes the row; there is no "used" state that
// a second attempt could observe.
type OneTimeToken struct {
	ID     string
	UserID string
	Type   TokenType
	Value  string
	// ExpiryTime bounds the record independently of any expiry the identity
	// layer enforces on its own tokens.
	ExpiryTime time.Time
	// UsedTime is optional; nil until a flow records a consumption time.
	// Every current flow deletes the row on consumption instead.
	UsedTime  *time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is past its expiry at the given time.
func (t OneTimeToken) Expired(now time.Time) bool {
	return t.ExpiryTime.Before(now)
}

// RevokedAccessToken is a denylist entry created by logout. The expiry is
// copied from the token's own "exp" claim so the entry can be purged once the
// token could no longer be accepted anyway. There is deliberately no foreign
// key to users: the token itself carries the identity claims.
type RevokedAccessToken struct {
	ID         string
	Token      string
	ExpiryTime time.Time
	CreatedAt  time.Time
}

// TokenPair is what login and refresh return.
type TokenPair struct {
	TokenType    string `json:"tokenType"` // always "Bearer"
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // seconds until access token expiry
}
