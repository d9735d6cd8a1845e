package store

import (
	"context"
	"errors"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and it is the single serialization point for all mutation.
type Store interface {
	Users() Users
	Roles() Roles
	Tokens() Tokens
	RevokedTokens() RevokedTokens
	Jobs() Jobs
	SavedJobs() SavedJobs
	Subscriptions() Subscriptions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail and GetUserByPhone back the uniqueness checks at
	// registration.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByPhone(ctx context.Context, phone string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser persists every mutable column, including the identity
	// layer's hash and fingerprint fields, and bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// DeleteUser exists for registration rollback only; nothing else in the
	// system hard-deletes accounts.
	DeleteUser(ctx context.Context, id string) error

	// AddUserRole links a user to a role. Duplicate links surface
	// ErrAlreadyExists.
	AddUserRole(ctx context.Context, userID, roleID string) error

	RemoveUserRole(ctx context.Context, userID, roleID string) error

	// ListUserRoles returns the user's roles, name order.
	ListUserRoles(ctx context.Context, userID string) ([]domain.Role, error)
}

type Roles interface {
	// GetRoleByName matches case-insensitively.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	ListAllRoles(ctx context.Context) ([]domain.Role, error)

	CreateRole(ctx context.Context, r domain.Role) error
}

type Tokens interface {
	// GetToken looks up by the (userID, type, value) triple. Value is never
	// a lookup key by itself.
	GetToken(ctx context.Context, userID string, typ domain.TokenType, value string) (domain.OneTimeToken, error)

	AddToken(ctx context.Context, t domain.OneTimeToken) error

	UpdateToken(ctx context.Context, t domain.OneTimeToken) error

	// DeleteToken removes a consumed token. It returns ErrNotFound when the
	// row was already gone: that makes the delete the commit point of
	// refresh rotation, so of two concurrent consumers exactly one wins.
	DeleteToken(ctx context.Context, id string) error

	// DeleteExpiredTokens purges expired rows of one type.
	DeleteExpiredTokens(ctx context.Context, typ domain.TokenType) error

	ListUserTokens(ctx context.Context, userID string, typ domain.TokenType) ([]domain.OneTimeToken, error)
}

type RevokedTokens interface {
	// AddRevokedToken appends to the denylist. Revoking the same token
	// twice is harmless, not an error.
	AddRevokedToken(ctx context.Context, t domain.RevokedAccessToken) error

	IsRevoked(ctx context.Context, rawToken string) (bool, error)

	// DeleteExpiredRevokedTokens purges entries whose tokens could no
	// longer validate anyway.
	DeleteExpiredRevokedTokens(ctx context.Context) error
}

type Jobs interface {
	CreateJob(ctx context.Context, j domain.Job) error

	// GetJobByID optionally hydrates the poster.
	GetJobByID(ctx context.Context, id string, includeUser bool) (domain.Job, error)

	UpdateJob(ctx context.Context, j domain.Job) error

	DeleteJob(ctx context.Context, id string) error

	// ListJobs pages newest-first. postedBy filters by poster when non-empty.
	ListJobs(ctx context.Context, page, size int, includeUser bool, postedBy string) ([]domain.Job, error)

	CountJobs(ctx context.Context, postedBy string) (int, error)

	// SearchJobs is a case-insensitive substring match over title and
	// description.
	SearchJobs(ctx context.Context, keyword string) ([]domain.Job, error)
}

type SavedJobs interface {
	// SaveJob bookmarks; duplicates surface ErrAlreadyExists.
	SaveJob(ctx context.Context, s domain.SavedJob) error

	// UnsaveJob returns ErrNotFound when the bookmark does not exist.
	UnsaveJob(ctx context.Context, userID, jobID string) error

	ListSavedJobs(ctx context.Context, userID string, page, size int) ([]domain.SavedJob, error)

	CountSavedJobs(ctx context.Context, userID string) (int, error)
}

type Subscriptions interface {
	GetSubscriptionByEmail(ctx context.Context, email string) (domain.Subscription, error)

	CreateSubscription(ctx context.Context, s domain.Subscription) error

	UpdateSubscription(ctx context.Context, s domain.Subscription) error

	// ListActiveSubscriptions feeds the new-job notification fan-out.
	ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error)
}
