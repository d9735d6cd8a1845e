package sqlite

import (
	"context"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
)

type revokedTokensRepo struct {
	q dbtx
}

// AddRevokedToken appends to the denylist. INSERT OR IGNORE keeps a repeated
// logout of the same token harmless.
func (r *revokedTokensRepo) AddRevokedToken(ctx context.Context, t domain.RevokedAccessToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO revoked_tokens (id, token, expiry_time, created_at)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.Token, t.ExpiryTime.UTC(), time.Now().UTC())
	return err
}

func (r *revokedTokensRepo) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	var exists int
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token = ?)`, rawToken).
		Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

// DeleteExpiredRevokedTokens purges entries past their copied "exp" claim; a
// token that old fails signature validation anyway.
func (r *revokedTokensRepo) DeleteExpiredRevokedTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expiry_time < ?`, time.Now().UTC())
	return err
}
