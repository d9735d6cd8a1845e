// Package identity owns everything about a user that is security sensitive:
// password hashing and verification, the confirmation and reset purpose
// tokens fingerprinted on the user row, the TOTP secret, and role links.
// Nothing above this package reads those fields directly.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/store"
	"github.com/athenkosimagada/careerhive.server/pkg/cryptox"
	"github.com/athenkosimagada/careerhive.server/pkg/idx"
)

const (
	// purposeTokenTTL bounds the confirmation and reset fingerprints stored
	// on the user row. It is independent of any expiry on the persisted
	// one-time token record; both checks must pass.
	purposeTokenTTL = 24 * time.Hour

	minPasswordLength = 8
)

var (
	ErrInvalidToken     = errors.New("identity: invalid token")
	ErrTokenExpired     = errors.New("identity: token expired")
	ErrPasswordMismatch = errors.New("identity: password mismatch")
	ErrWeakPassword     = errors.New("identity: password does not meet the policy")
)

// Manager is the user store collaborator. All account mutation that touches
// credentials or identity state goes through it.
type Manager struct {
	Store store.Store

	// TOTPIssuer names this service in authenticator apps.
	TOTPIssuer string
}

// Create hashes the password and inserts the user. The password must pass
// the policy: at least 8 characters with an upper, a lower, and a digit.
// Store uniqueness violations surface as store.ErrAlreadyExists.
func (m *Manager) Create(ctx context.Context, u *domain.User, password string) error {
	if err := checkPasswordPolicy(password); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if u.ID == "" {
		u.ID = idx.New().String()
	}
	u.PasswordHash = hash
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	u.EmailConfirmed = false

	return m.Store.Users().CreateUser(ctx, *u)
}

// FindByID fetches a user by id.
func (m *Manager) FindByID(ctx context.Context, id string) (domain.User, error) {
	return m.Store.Users().GetUserByID(ctx, id)
}

// FindByEmail fetches a user by email, case-insensitively.
func (m *Manager) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.Store.Users().GetUserByEmail(ctx, email)
}

// FindByPhone fetches a user by phone number.
func (m *Manager) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	return m.Store.Users().GetUserByPhone(ctx, phone)
}

// Update persists the user, recomputing the derived full name.
func (m *Manager) Update(ctx context.Context, u *domain.User) error {
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	return m.Store.Users().UpdateUser(ctx, *u)
}

// Delete removes the user. Registration rollback is the only caller.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.Store.Users().DeleteUser(ctx, id)
}

// AddRole links the user to a named role. The role name matches
// case-insensitively and must already exist.
func (m *Manager) AddRole(ctx context.Context, userID, roleName string) error {
	role, err := m.Store.Roles().GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	return m.Store.Users().AddUserRole(ctx, userID, role.ID)
}

// RemoveRole unlinks the user from a named role.
func (m *Manager) RemoveRole(ctx context.Context, userID, roleName string) error {
	role, err := m.Store.Roles().GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	return m.Store.Users().RemoveUserRole(ctx, userID, role.ID)
}

// Roles returns the user's role links.
func (m *Manager) Roles(ctx context.Context, userID string) ([]domain.Role, error) {
	return m.Store.Users().ListUserRoles(ctx, userID)
}

// AllRoles returns the configured role set.
func (m *Manager) AllRoles(ctx context.Context) ([]domain.Role, error) {
	return m.Store.Roles().ListAllRoles(ctx)
}

// CheckPassword verifies the password against the stored hash. It returns
// ErrPasswordMismatch on a wrong password.
func (m *Manager) CheckPassword(u domain.User, password string) error {
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrPasswordMismatch
		}
		return err
	}
	return nil
}

// ChangePassword verifies the old password and replaces the hash.
func (m *Manager) ChangePassword(ctx context.Context, u *domain.User, oldPassword, newPassword string) error {
	if err := m.CheckPassword(*u, oldPassword); err != nil {
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
	return m.Store.Users().UpdateUser(ctx, *u)
}

func checkPasswordPolicy(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, minPasswordLength)
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("%w: must contain an uppercase letter, a lowercase letter, and a digit", ErrWeakPassword)
	}
	return nil
}
