package identity

import (
	"context"
	"fmt"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// SetTwoFactor toggles 2FA. Enabling enrolls a fresh TOTP secret and returns
// the otpauth URL for the user's authenticator app; disabling clears the
// secret. Toggling to the current state is a no-op returning no URL.
func (m *Manager) SetTwoFactor(ctx context.Context, u *domain.User, enable bool) (string, error) {
	if enable == u.TwoFactorEnabled {
		return "", nil
	}

	if !enable {
		u.TwoFactorEnabled = false
		u.TwoFactorSecret = nil
		return "", m.Store.Users().UpdateUser(ctx, *u)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.TOTPIssuer,
		AccountName: u.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("generate TOTP key: %w", err)
	}

	secret := key.Secret()
	u.TwoFactorEnabled = true
	u.TwoFactorSecret = &secret
	if err := m.Store.Users().UpdateUser(ctx, *u); err != nil {
		return "", err
	}
	return key.URL(), nil
}
