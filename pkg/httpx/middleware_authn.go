package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/athenkosimagada/careerhive.server/pkg/jwtx"
	"github.com/athenkosimagada/careerhive.server/pkg/slogx"
)

// Denylist answers whether an access token has been revoked by logout.
// Revoked tokens stay cryptographically valid until their natural expiry, so
// every authenticated request must consult this before trusting claims.
type Denylist interface {
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

// AuthnMiddleware verifies the bearer token (signature, issuer, lifetime)
// and checks the revocation denylist, then injects identity into the context.
func AuthnMiddleware(codec *jwtx.Codec, denylist Denylist) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := codec.ParseValid(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			revoked, err := denylist.IsRevoked(ctx, raw)
			if err != nil {
				log.Error("denylist lookup failed", "err", err)
				WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if revoked {
				writeBearerError(w, "token has been revoked")
				return
			}

			ctx = contextWithAuth(ctx, claims, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyRole rejects with 403 unless the caller holds at least one of
// the listed roles.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, role := range required {
		want[strings.ToLower(role)] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, role := range rolesFromCtx(r.Context()) {
				if _, ok := want[strings.ToLower(role)]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims, raw string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRoles, c.Roles)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, CtxKeyRawToken, raw)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, desc)
}
