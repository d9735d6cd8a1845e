package identity

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/pkg/cryptox"
)

// GenerateConfirmationToken mints a fresh email-confirmation purpose token,
// stores its fingerprint and deadline on the user row, and returns the raw
// value. Generating again invalidates the previous token.
func (m *Manager) GenerateConfirmationToken(ctx context.Context, u *domain.User) (string, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("generate confirmation token: %w", err)
	}

	hash := cryptox.FingerprintToken(raw)
	expires := time.Now().UTC().Add(purposeTokenTTL)
	u.ConfirmTokenHash = &hash
	u.ConfirmTokenExpires = &expires

	if err := m.Store.Users().UpdateUser(ctx, *u); err != nil {
		return "", err
	}
	return raw, nil
}

// ConfirmEmail checks the token against the stored fingerprint and deadline,
// then marks the account confirmed and clears the fingerprint.
func (m *Manager) ConfirmEmail(ctx context.Context, u *domain.User, token string) error {
	if err := verifyPurposeToken(u.ConfirmTokenHash, u.ConfirmTokenExpires, token); err != nil {
		return err
	}

	u.EmailConfirmed = true
	u.ConfirmTokenHash = nil
	u.ConfirmTokenExpires = nil
	return m.Store.Users().UpdateUser(ctx, *u)
}

// GenerateResetToken mints a fresh password-reset purpose token, storing its
// fingerprint and deadline on the user row.
func (m *Manager) GenerateResetToken(ctx context.Context, u *domain.User) (string, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	hash := cryptox.FingerprintToken(raw)
	expires := time.Now().UTC().Add(purposeTokenTTL)
	u.ResetTokenHash = &hash
	u.ResetTokenExpires = &expires

	if err := m.Store.Users().UpdateUser(ctx, *u); err != nil {
		return "", err
	}
	return raw, nil
}

// ResetPassword checks the reset token, applies the policy to the new
// password, and replaces the hash. The fingerprint is cleared so the token
// cannot be replayed.
func (m *Manager) ResetPassword(ctx context.Context, u *domain.User, token, newPassword string) error {
	if err := verifyPurposeToken(u.ResetTokenHash, u.ResetTokenExpires, token); err != nil {
		return err
	}
	if err := checkPasswordPolicy(newPassword); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u.PasswordHash = hash
	u.ResetTokenHash = nil
	u.ResetTokenExpires = nil
	return m.Store.Users().UpdateUser(ctx, *u)
}

func verifyPurposeToken(hash *string, expires *time.Time, token string) error {
	if hash == nil || *hash == "" || token == "" {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(*hash), []byte(cryptox.FingerprintToken(token))) != 1 {
		return ErrInvalidToken
	}
	if expires == nil || expires.Before(time.Now().UTC()) {
		return ErrTokenExpired
	}
	return nil
}
