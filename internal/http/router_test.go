package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	httpapi "github.com/athenkosimagada/careerhive.server/internal/http"
	"github.com/athenkosimagada/careerhive.server/internal/identity"
	"github.com/athenkosimagada/careerhive.server/internal/service"
	"github.com/athenkosimagada/careerhive.server/internal/store"
	"github.com/athenkosimagada/careerhive.server/internal/store/drivers/sqlite"
	"github.com/athenkosimagada/careerhive.server/pkg/idx"
	"github.com/athenkosimagada/careerhive.server/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type apiMailer struct {
	mu    sync.Mutex
	sends int
}

func (m *apiMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends++
	return nil
}

func (m *apiMailer) SendAsync(to, subject, body string) { _ = m.Send(to, subject, body) }

type apiChecker struct{}

func (apiChecker) IsSafe(ctx context.Context, url string) (bool, error) { return true, nil }

type api struct {
	srv   *httptest.Server
	store store.Store
}

func newAPI(t *testing.T) *api {
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
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	m := &apiMailer{}

	router := httpapi.NewRouter(codec, "test", st, slog.Default())
	router.AccountService = &service.AccountService{
		Store:       st,
		Identity:    ident,
		Tokens:      tokens,
		Mailer:      m,
		FrontendURL: "https://careerhive.test",
	}
	router.JobService = &service.JobService{
		Store:       st,
		Safe:        apiChecker{},
		Mailer:      m,
		FrontendURL: "https://careerhive.test",
	}
	router.SubscriptionSvc = &service.SubscriptionService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &api{srv: srv, store: st}
}

func (a *api) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"email":           email,
		"password":        "P@ssw0rd1",
		"confirmPassword": "P@ssw0rd1",
		"firstName":       "A",
		"lastName":        "B",
	}
}

// registerAndLogin walks the whole happy path over the wire: register,
// request confirmation, confirm with the persisted token, log in.
func (a *api) registerAndLogin(t *testing.T, email string) (userID string, pair domain.TokenPair) {
	t.Helper()
	return a.registerAndLoginRole(t, email, "")
}

func (a *api) registerAndLoginRole(t *testing.T, email, role string) (userID string, pair domain.TokenPair) {
	t.Helper()
	ctx := context.Background()

	body := registerBody(email)
	if role != "" {
		body["role"] = role
	}
	resp, raw := a.do(t, http.MethodPost, "/v1/account/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))

	resp, raw = a.do(t, http.MethodPost, "/v1/account/resend-confirmation", "", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	records, err := a.store.Tokens().ListUserTokens(ctx, created.ID, domain.TokenTypeEmailConfirmation)
	require.NoError(t, err)
	require.Len(t, records, 1)

	resp, raw = a.do(t, http.MethodPost, "/v1/account/confirm-email", "", map[string]string{
		"userId": created.ID,
		"token":  records[0].Value,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = a.do(t, http.MethodPost, "/v1/account/login", "", map[string]string{
		"email":    email,
		"password": "P@ssw0rd1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &pair))
	require.Equal(t, "Bearer", pair.TokenType)

	return created.ID, pair
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)

	userID, pair := a.registerAndLogin(t, "a@x.com")
	require.NotEmpty(t, userID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
}

func TestRegisterConflictMapsTo409(t *testing.T) {
	a := newAPI(t)

	resp, _ := a.do(t, http.MethodPost, "/v1/account/register", "", registerBody("a@x.com"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/v1/account/register", "", registerBody("a@x.com"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLoginFailureMapsTo401(t *testing.T) {
	a := newAPI(t)

	resp, _ := a.do(t, http.MethodPost, "/v1/account/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "P@ssw0rd1",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshEndpoint(t *testing.T) {
	a := newAPI(t)
	_, pair := a.registerAndLogin(t, "a@x.com")

	resp, raw := a.do(t, http.MethodPost, "/v1/account/refresh", "", map[string]string{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var next domain.TokenPair
	require.NoError(t, json.Unmarshal(raw, &next))
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The consumed refresh token is rejected on replay.
	resp, _ = a.do(t, http.MethodPost, "/v1/account/refresh", "", map[string]string{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutDenylistEnforcedByMiddleware(t *testing.T) {
	a := newAPI(t)
	_, pair := a.registerAndLogin(t, "a@x.com")

	resp, _ := a.do(t, http.MethodGet, "/v1/account/manage/info", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/v1/account/logout", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The token still verifies cryptographically but is now denylisted.
	resp, _ = a.do(t, http.MethodGet, "/v1/account/manage/info", pair.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestManageEndpoints(t *testing.T) {
	a := newAPI(t)
	_, pair := a.registerAndLogin(t, "a@x.com")

	resp, raw := a.do(t, http.MethodPut, "/v1/account/manage/info", pair.AccessToken, map[string]string{
		"firstName": "Updated",
		"lastName":  "Name",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var info struct {
		FullName string `json:"fullName"`
	}
	require.NoError(t, json.Unmarshal(raw, &info))
	require.Equal(t, "Updated Name", info.FullName)

	resp, raw = a.do(t, http.MethodPost, "/v1/account/manage/2fa", pair.AccessToken, map[string]bool{"enable": true})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var tfa struct {
		Enabled    bool   `json:"enabled"`
		OtpauthURL string `json:"otpauthUrl"`
	}
	require.NoError(t, json.Unmarshal(raw, &tfa))
	require.True(t, tfa.Enabled)
	require.Contains(t, tfa.OtpauthURL, "otpauth://totp/")

	resp, _ = a.do(t, http.MethodGet, "/v1/account/manage/info", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRolesEndpoint(t *testing.T) {
	a := newAPI(t)

	// A regular user holds no Admin role and is turned away.
	_, userPair := a.registerAndLogin(t, "user@x.com")
	resp, _ := a.do(t, http.MethodGet, "/v1/admin/roles", userPair.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// No token at all fails authentication before the role check.
	resp, _ = a.do(t, http.MethodGet, "/v1/admin/roles", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, adminPair := a.registerAndLoginRole(t, "admin@x.com", "Admin")
	resp, raw := a.do(t, http.MethodGet, "/v1/admin/roles", adminPair.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var roles []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(raw, &roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		require.NotEmpty(t, role.ID)
		names = append(names, role.Name)
	}
	require.ElementsMatch(t, []string{"User", "Admin"}, names)
}

func TestJobsOverHTTP(t *testing.T) {
	a := newAPI(t)
	_, owner := a.registerAndLogin(t, "owner@x.com")
	_, other := a.registerAndLogin(t, "other@x.com")

	resp, raw := a.do(t, http.MethodPost, "/v1/jobs", owner.AccessToken, map[string]string{
		"title":        "Senior Gopher",
		"description":  "Write Go all day.",
		"externalLink": "https://example.com/apply",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var job struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &job))

	// Public read, no token.
	resp, _ = a.do(t, http.MethodGet, "/v1/jobs/"+job.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Foreign update is forbidden.
	resp, _ = a.do(t, http.MethodPut, "/v1/jobs/"+job.ID, other.AccessToken, map[string]string{
		"title":       "Hijacked",
		"description": "nope",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Save, duplicate save, unsave.
	resp, _ = a.do(t, http.MethodPost, fmt.Sprintf("/v1/jobs/%s/save", job.ID), other.AccessToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = a.do(t, http.MethodPost, fmt.Sprintf("/v1/jobs/%s/save", job.ID), other.AccessToken, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, raw = a.do(t, http.MethodGet, "/v1/jobs/saved", other.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		TotalCount int `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(raw, &page))
	require.Equal(t, 1, page.TotalCount)

	resp, _ = a.do(t, http.MethodDelete, fmt.Sprintf("/v1/jobs/%s/save", job.ID), other.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Search finds it, unknown id is a 404.
	resp, raw = a.do(t, http.MethodGet, "/v1/jobs/search?keyword=gopher", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), "Senior Gopher")

	resp, _ = a.do(t, http.MethodGet, "/v1/jobs/"+idx.New().String(), "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubscriptionsOverHTTP(t *testing.T) {
	a := newAPI(t)
	_, pair := a.registerAndLogin(t, "a@x.com")

	resp, _ := a.do(t, http.MethodPost, "/v1/account/subscribe", pair.AccessToken, map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/v1/account/subscribe", pair.AccessToken, map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/v1/account/unsubscribe", pair.AccessToken, map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	a := newAPI(t)

	resp, raw := a.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), `"status":"ok"`)

	resp, _ = a.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
