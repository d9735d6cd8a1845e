package domain

import "time"

// User is an account holder. The password hash and the purpose-token
// fingerprints are owned by the identity layer; nothing above it reads them.
type User struct {
	ID            string
	Email         string
	Username      string
	FirstName     string
	LastName      string
	FullName      string // derived: "FirstName LastName"
	PhoneNumber   string
	ProfilePicURL string

	PasswordHash   string
	EmailConfirmed bool

	// TwoFactorEnabled is the user-facing 2FA flag. TwoFactorSecret holds
	// the base32 TOTP secret while enabled (nullable).
	TwoFactorEnabled bool
	TwoFactorSecret  *string

	// ConfirmTokenHash / ResetTokenHash are fingerprints of the identity
	// layer's purpose tokens, with their own deadlines. They are an
	// independent check from the persisted one-time token records.
	ConfirmTokenHash    *string
	ConfirmTokenExpires *time.Time
	ResetTokenHash      *string
	ResetTokenExpires   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
