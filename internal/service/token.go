package service

import (
	"context"
	"fmt"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/store"
	"github.com/athenkosimagada/careerhive.server/pkg/cryptox"
	"github.com/athenkosimagada/careerhive.server/pkg/idx"
	"github.com/athenkosimagada/careerhive.server/pkg/jwtx"
)

// TokenIssuer mints access and refresh tokens. Access tokens are signed JWTs;
// refresh tokens are opaque 64-byte values persisted as one-time token
// records and rotated on every use.
type TokenIssuer struct {
	Codec      *jwtx.Codec
	Store      store.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssueAccessToken signs a time-boxed JWT carrying the user's id, email,
// roles, and name claims.
func (s *TokenIssuer) IssueAccessToken(u domain.User, roles []domain.Role, now time.Time) (string, error) {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}

	claims := jwtx.NewAccessClaims(
		u.ID, u.Email, names,
		u.FirstName, u.LastName,
		s.Codec.Issuer(), s.Codec.Audience(),
		s.AccessTTL, now,
	)
	return s.Codec.Sign(claims)
}

// NewRefreshToken builds a fresh refresh-token record without persisting it,
// returning both the record and the raw value handed to the client. Callers
// inside a rotation transaction persist the record themselves.
func (s *TokenIssuer) NewRefreshToken(u domain.User, now time.Time) (domain.OneTimeToken, string, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSize512)
	if err != nil {
		return domain.OneTimeToken{}, "", fmt.Errorf("generate refresh token: %w", err)
	}

	return domain.OneTimeToken{
		ID:         idx.New().String(),
		UserID:     u.ID,
		Type:       domain.TokenTypeRefreshToken,
		Value:      raw,
		ExpiryTime: now.Add(s.RefreshTTL),
	}, raw, nil
}

// IssuePair is the login path: a signed access token plus a persisted
// refresh token, with the access expiry echoed in seconds.
func (s *TokenIssuer) IssuePair(ctx context.Context, u domain.User, roles []domain.Role) (domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.IssueAccessToken(u, roles, now)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	record, raw, err := s.NewRefreshToken(u, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.Store.Tokens().AddToken(ctx, record); err != nil {
		return domain.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return domain.TokenPair{
		TokenType:    "Bearer",
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int(s.AccessTTL.Seconds()),
	}, nil
}

// ParseValid fully validates signature, issuer, and lifetime.
func (s *TokenIssuer) ParseValid(raw string) (jwtx.Claims, error) {
	return s.Codec.ParseValid(raw)
}

// ParseExpired validates signature and issuer but not lifetime. The refresh
// flow uses it to recover identity from a token that may already be expired.
func (s *TokenIssuer) ParseExpired(raw string) (jwtx.Claims, error) {
	return s.Codec.ParseExpired(raw)
}
