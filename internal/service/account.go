package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/identity"
	"github.com/athenkosimagada/careerhive.server/internal/mailer"
	"github.com/athenkosimagada/careerhive.server/internal/store"
	"github.com/athenkosimagada/careerhive.server/pkg/idx"
	"github.com/athenkosimagada/careerhive.server/pkg/slogx"
)

// oneTimeTokenTTL bounds the persisted confirmation and reset records. The
// identity layer enforces its own deadline on the fingerprints it stores;
// both checks must pass.
const oneTimeTokenTTL = time.Hour

// AccountService enforces the account lifecycle: registration, email
// confirmation, login, refresh rotation, password reset, and logout. It is
// the only component that decides identity-level authentication.
type AccountService struct {
	Store    store.Store
	Identity *identity.Manager
	Tokens   *TokenIssuer
	Mailer   mailer.Sender

	// FrontendURL is the public base for confirmation and reset links.
	FrontendURL string
}

// RegisterParams carries the registration request after boundary validation.
type RegisterParams struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Phone           string
	Role            string // empty means the default role
}

// Register creates an unconfirmed account and assigns its role. No
// confirmation email is sent here; the client follows up with
// ResendConfirmationEmail. On role-assignment failure the just-created user
// is deleted so a retry starts clean.
func (s *AccountService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if p.Password != p.ConfirmPassword {
		return domain.User{}, fmt.Errorf("%w: passwords do not match", ErrInvalidArgument)
	}

	if _, err := s.Identity.FindByEmail(ctx, p.Email); err == nil {
		return domain.User{}, fmt.Errorf("%w: email is already registered", ErrAlreadyExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}
	if p.Phone != "" {
		if _, err := s.Identity.FindByPhone(ctx, p.Phone); err == nil {
			return domain.User{}, fmt.Errorf("%w: phone number is already registered", ErrAlreadyExists)
		} else if !errors.Is(err, store.ErrNotFound) {
			return domain.User{}, err
		}
	}

	roleName := p.Role
	if roleName == "" {
		roleName = domain.RoleUser
	} else if _, err := s.Store.Roles().GetRoleByName(ctx, roleName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: role %q does not exist", ErrNotFound, roleName)
		}
		return domain.User{}, err
	}

	u := domain.User{
		Email:     p.Email,
		Username:  p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
	if p.Phone != "" {
		u.PhoneNumber = p.Phone
	}

	if err := s.Identity.Create(ctx, &u, p.Password); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, fmt.Errorf("%w: email or phone is already registered", ErrAlreadyExists)
		}
		return domain.User{}, fmt.Errorf("%w: %s", ErrInvalidArgument, userSafeMessage(err))
	}

	if err := s.Identity.AddRole(ctx, u.ID, roleName); err != nil {
		// Compensate: remove the half-created account so a retry starts
		// clean. A failed cleanup leaves a roleless user behind, which is a
		// data-integrity problem worth shouting about.
		if delErr := s.Identity.Delete(ctx, u.ID); delErr != nil {
			l.Error("registration rollback failed, user left without a role",
				slog.String("user_id", u.ID),
				slog.Any("err", delErr),
			)
		}
		return domain.User{}, fmt.Errorf("%w: %s", ErrInvalidArgument, userSafeMessage(err))
	}

	l.Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

// ResendConfirmationEmail mints a confirmation token and emails the
// confirmation link. Dispatch is fire-and-forget.
func (s *AccountService) ResendConfirmationEmail(ctx context.Context, email string) error {
	u, err := s.Identity.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no account with that email", ErrNotFound)
		}
		return err
	}
	if u.EmailConfirmed {
		return fmt.Errorf("%w: email is already confirmed", ErrInvalidArgument)
	}

	token, err := s.Identity.GenerateConfirmationToken(ctx, &u)
	if err != nil {
		return err
	}
	if err := s.persistOneTimeToken(ctx, u.ID, domain.TokenTypeEmailConfirmation, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/confirm-email?userId=%s&token=%s",
		s.FrontendURL, u.ID, url.QueryEscape(token))
	s.Mailer.SendAsync(u.Email, "Confirm your email",
		fmt.Sprintf(`<p>Hi %s,</p><p>Please confirm your email by clicking <a href=%q>here</a>. The link expires in one hour.</p>`,
			u.FirstName, link))
	return nil
}

// ConfirmEmail consumes a confirmation token. The persisted record's expiry
// and the identity layer's own deadline are independent checks; both must
// pass. The record is deleted on success so the token is single-use.
func (s *AccountService) ConfirmEmail(ctx context.Context, userID, token string) error {
	if userID == "" || token == "" {
		return fmt.Errorf("%w: user id and token are required", ErrInvalidArgument)
	}

	record, err := s.Store.Tokens().GetToken(ctx, userID, domain.TokenTypeEmailConfirmation, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: invalid token", ErrInvalidArgument)
		}
		return err
	}
	if record.Expired(time.Now().UTC()) {
		return fmt.Errorf("%w: token has expired", ErrInvalidArgument)
	}

	u, err := s.Identity.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: invalid token", ErrInvalidArgument)
		}
		return err
	}
	if err := s.Identity.ConfirmEmail(ctx, &u, token); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, userSafeMessage(err))
	}

	return s.Store.Tokens().DeleteToken(ctx, record.ID)
}

// ForgotPassword mints a reset token and emails the reset link.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Identity.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no account with that email", ErrNotFound)
		}
		return err
	}

	token, err := s.Identity.GenerateResetToken(ctx, &u)
	if err != nil {
		return err
	}
	if err := s.persistOneTimeToken(ctx, u.ID, domain.TokenTypeResetPassword, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?userId=%s&token=%s",
		s.FrontendURL, u.ID, url.QueryEscape(token))
	s.Mailer.SendAsync(u.Email, "Reset your password",
		fmt.Sprintf(`<p>Hi %s,</p><p>You can reset your password by clicking <a href=%q>here</a>. The link expires in one hour.</p>`,
			u.FirstName, link))
	return nil
}

// ResetPassword consumes a reset token and replaces the password. Same
// two-stage validation as ConfirmEmail.
func (s *AccountService) ResetPassword(ctx context.Context, userID, token, newPassword, confirmNewPassword string) error {
	if userID == "" || token == "" {
		return fmt.Errorf("%w: user id and token are required", ErrInvalidArgument)
	}
	if newPassword != confirmNewPassword {
		return fmt.Errorf("%w: passwords do not match", ErrInvalidArgument)
	}

	record, err := s.Store.Tokens().GetToken(ctx, userID, domain.TokenTypeResetPassword, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: invalid token", ErrInvalidArgument)
		}
		return err
	}
	if record.Expired(time.Now().UTC()) {
		return fmt.Errorf("%w: token has expired", ErrInvalidArgument)
	}

	u, err := s.Identity.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: invalid token", ErrInvalidArgument)
		}
		return err
	}
	if err := s.Identity.ResetPassword(ctx, &u, token, newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, userSafeMessage(err))
	}

	return s.Store.Tokens().DeleteToken(ctx, record.ID)
}

// Login authenticates by email and password. Unknown email and wrong
// password collapse into one generic message; an unconfirmed account states
// the reason.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Identity.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return domain.TokenPair{}, err
	}
	if !u.EmailConfirmed {
		return domain.TokenPair{}, fmt.Errorf("%w: email address has not been confirmed", ErrUnauthorized)
	}
	if err := s.Identity.CheckPassword(u, password); err != nil {
		if errors.Is(err, identity.ErrPasswordMismatch) {
			return domain.TokenPair{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return domain.TokenPair{}, err
	}

	roles, err := s.Identity.Roles(ctx, u.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair, err := s.Tokens.IssuePair(ctx, u, roles)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("user logged in", slog.String("user_id", u.ID))
	return pair, nil
}

// RefreshToken rotates a refresh token. The expired access token identifies
// the subject; the refresh value must match a live persisted record. The old
// record's delete is the commit point: of two concurrent calls with the same
// refresh token exactly one observes the delete succeed, and the loser fails.
func (s *AccountService) RefreshToken(ctx context.Context, accessToken, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.Tokens.ParseExpired(accessToken)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %s", ErrAuthentication, userSafeMessage(err))
	}

	record, err := s.Store.Tokens().GetToken(ctx, claims.Subject, domain.TokenTypeRefreshToken, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, fmt.Errorf("%w: invalid refresh token", ErrAuthentication)
		}
		return domain.TokenPair{}, err
	}
	if record.Expired(time.Now().UTC()) {
		return domain.TokenPair{}, fmt.Errorf("%w: refresh token has expired", ErrAuthentication)
	}

	u, err := s.Identity.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, fmt.Errorf("%w: invalid refresh token", ErrAuthentication)
		}
		return domain.TokenPair{}, err
	}
	roles, err := s.Identity.Roles(ctx, u.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	now := time.Now().UTC()
	access, err := s.Tokens.IssueAccessToken(u, roles, now)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	next, raw, err := s.Tokens.NewRefreshToken(u, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tokens().DeleteToken(ctx, record.ID); err != nil {
			return err
		}
		return tx.Tokens().AddToken(ctx, next)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Another refresh with the same token already won the rotation.
			return domain.TokenPair{}, fmt.Errorf("%w: invalid refresh token", ErrAuthentication)
		}
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		TokenType:    "Bearer",
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int(s.Tokens.AccessTTL.Seconds()),
	}, nil
}

// GetUserInfo returns the user's profile.
func (s *AccountService) GetUserInfo(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// UserInfoUpdate carries the allow-listed profile fields. Nil pointers leave
// the current value in place.
type UserInfoUpdate struct {
	FirstName     *string
	LastName      *string
	Username      *string
	PhoneNumber   *string
	ProfilePicURL *string
}

// UpdateUserInfo applies the allow-listed profile fields and recomputes the
// derived full name.
func (s *AccountService) UpdateUserInfo(ctx context.Context, userID string, upd UserInfoUpdate) (domain.User, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.ProfilePicURL != nil {
		u.ProfilePicURL = *upd.ProfilePicURL
	}

	if err := s.Identity.Update(ctx, &u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, fmt.Errorf("%w: phone number is already registered", ErrAlreadyExists)
		}
		return domain.User{}, err
	}
	return u, nil
}

// Manage2FA toggles two-factor authentication, returning the otpauth
// enrollment URL when enabling.
func (s *AccountService) Manage2FA(ctx context.Context, userID string, enable bool) (string, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.Identity.SetTwoFactor(ctx, &u, enable)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidArgument, userSafeMessage(err))
	}
	return url, nil
}

// ChangePassword verifies the current password and sets the new one.
func (s *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.Identity.ChangePassword(ctx, &u, oldPassword, newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, userSafeMessage(err))
	}
	return nil
}

// Logout denylists the access token until its natural expiry. The token must
// still verify; a tampered or otherwise unparseable token is rejected rather
// than silently accepted.
func (s *AccountService) Logout(ctx context.Context, userID, accessToken string) error {
	claims, err := s.Tokens.ParseValid(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnauthorized, userSafeMessage(err))
	}
	if claims.Subject != userID {
		return fmt.Errorf("%w: token does not belong to this user", ErrUnauthorized)
	}

	exp, ok := claims.ExpiresUnix()
	if !ok {
		return fmt.Errorf("%w: token has no expiry claim", ErrUnauthorized)
	}

	return s.Store.RevokedTokens().AddRevokedToken(ctx, domain.RevokedAccessToken{
		ID:         idx.New().String(),
		Token:      accessToken,
		ExpiryTime: time.Unix(exp, 0).UTC(),
	})
}

func (s *AccountService) findUser(ctx context.Context, userID string) (domain.User, error) {
	if _, err := idx.Parse(userID); err != nil {
		return domain.User{}, fmt.Errorf("%w: malformed user id", ErrInvalidArgument)
	}
	u, err := s.Identity.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *AccountService) persistOneTimeToken(ctx context.Context, userID string, typ domain.TokenType, value string) error {
	return s.Store.Tokens().AddToken(ctx, domain.OneTimeToken{
		ID:         idx.New().String(),
		UserID:     userID,
		Type:       typ,
		Value:      value,
		ExpiryTime: time.Now().UTC().Add(oneTimeTokenTTL),
	})
}

// userSafeMessage strips sentinel prefixes so wrapped messages read cleanly
// when surfaced to a client.
func userSafeMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{"identity: ", "jwtx: ", "cryptox: "} {
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
