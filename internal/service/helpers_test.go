package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/identity"
	"github.com/athenkosimagada/careerhive.server/internal/service"
	"github.com/athenkosimagada/careerhive.server/internal/store"
	"github.com/athenkosimagada/careerhive.server/internal/store/drivers/sqlite"
	"github.com/athenkosimagada/careerhive.server/pkg/idx"
	"github.com/athenkosimagada/careerhive.server/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testAccessTTL  = 15 * time.Minute
	testRefreshTTL = 7 * 24 * time.Hour
)

// fakeMailer records dispatches in memory.
type fakeMailer struct {
	mu    sync.Mutex
	sends []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) SendAsync(to, subject, body string) { _ = m.Send(to, subject, body) }

func (m *fakeMailer) sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sends...)
}

// faultStore wraps a real store and injects failures on selected user
// operations. Reads and every other repo pass through untouched.
type faultStore struct {
	store.Store
	addRoleErr    error
	deleteUserErr error
}

func (s *faultStore) Users() store.Users {
	return &faultUsers{
		Users:         s.Store.Users(),
		addRoleErr:    s.addRoleErr,
		deleteUserErr: s.deleteUserErr,
	}
}

type faultUsers struct {
	store.Users
	addRoleErr    error
	deleteUserErr error
}

func (u *faultUsers) AddUserRole(ctx context.Context, userID, roleID string) error {
	if u.addRoleErr != nil {
		return u.addRoleErr
	}
	return u.Users.AddUserRole(ctx, userID, roleID)
}

func (u *faultUsers) DeleteUser(ctx context.Context, id string) error {
	if u.deleteUserErr != nil {
		return u.deleteUserErr
	}
	return u.Users.DeleteUser(ctx, id)
}

// fakeChecker returns a fixed safe-browsing verdict.
type fakeChecker struct {
	unsafe bool
}

func (c *fakeChecker) IsSafe(ctx context.Context, url string) (bool, error) {
	return !c.unsafe, nil
}

type testEnv struct {
	Store    store.Store
	Identity *identity.Manager
	Tokens   *service.TokenIssuer
	Accounts *service.AccountService
	Jobs     *service.JobService
	Subs     *service.SubscriptionService
	Mailer   *fakeMailer
	Checker  *fakeChecker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	ctx := context.Background()
	for _, name := range []string{"User", "Admin"} {
		require.NoError(t, st.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: name}))
	}

	codec, err := jwtx.NewCodec([]byte("test-secret-at-least-32-bytes-long"), "careerhive-test", "careerhive-clients")
	require.NoError(t, err)

	ident := &identity.Manager{Store: st, TOTPIssuer: "CareerHive"}
	tokens := &service.TokenIssuer{
		Codec:      codec,
		Store:      st,
		AccessTTL:  testAccessTTL,
		RefreshTTL: testRefreshTTL,
	}
	m := &fakeMailer{}
	checker := &fakeChecker{}

	return &testEnv{
		Store:    st,
		Identity: ident,
		Tokens:   tokens,
		Accounts: &service.AccountService{
			Store:       st,
			Identity:    ident,
			Tokens:      tokens,
			Mailer:      m,
			FrontendURL: "https://careerhive.test",
		},
		Jobs: &service.JobService{
			Store:       st,
			Safe:        checker,
			Mailer:      m,
			FrontendURL: "https://careerhive.test",
		},
		Subs:    &service.SubscriptionService{Store: st},
		Mailer:  m,
		Checker: checker,
	}
}

func defaultRegistration() service.RegisterParams {
	return service.RegisterParams{
		Email:           "a@x.com",
		Password:        "P@ssw0rd1",
		ConfirmPassword: "P@ssw0rd1",
		FirstName:       "A",
		LastName:        "B",
	}
}

// registerConfirmed registers and confirms an account in one step.
func (e *testEnv) registerConfirmed(t *testing.T, email string) domain.User {
	t.Helper()
	ctx := context.Background()

	p := defaultRegistration()
	p.Email = email
	u, err := e.Accounts.Register(ctx, p)
	require.NoError(t, err)

	require.NoError(t, e.Accounts.ResendConfirmationEmail(ctx, email))
	tok := e.latestToken(t, u.ID, domain.TokenTypeEmailConfirmation)
	require.NoError(t, e.Accounts.ConfirmEmail(ctx, u.ID, tok.Value))
	return u
}

func (e *testEnv) latestToken(t *testing.T, userID string, typ domain.TokenType) domain.OneTimeToken {
	t.Helper()
	records, err := e.Store.Tokens().ListUserTokens(context.Background(), userID, typ)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return records[len(records)-1]
}
