package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/store"
)

type tokensRepo struct {
	q dbtx
}

const tokenColumns = `id, user_id, token_type, token_value, expiry_time, used_time, created_at`

func scanToken(row rowScanner) (domain.OneTimeToken, error) {
	var (
		t    domain.OneTimeToken
		typ  string
		used sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &typ, &t.Value, &t.ExpiryTime, &used, &t.CreatedAt); err != nil {
		return domain.OneTimeToken{}, err
	}
	t.Type = domain.TokenType(typ)
	t.UsedTime = mapNullTimePtr(used)
	return t, nil
}

func (r *tokensRepo) GetToken(
	ctx context.Context,
	userID string,
	typ domain.TokenType,
	value string,
) (domain.OneTimeToken, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM user_tokens
		 WHERE user_id = ? AND token_type = ? AND token_value = ?`,
		userID, string(typ), value)
	t, err := scanToken(row)
	if err != nil {
		return domain.OneTimeToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tokensRepo) AddToken(ctx context.Context, t domain.OneTimeToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO user_tokens (id, user_id, token_type, token_value, expiry_time, used_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Value, t.ExpiryTime.UTC(),
		mapOptionalTime(t.UsedTime), time.Now().UTC())
	return mapConstraint(err)
}

func (r *tokensRepo) UpdateToken(ctx context.Context, t domain.OneTimeToken) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE user_tokens SET token_value = ?, expiry_time = ?, used_time = ? WHERE id = ?`,
		t.Value, t.ExpiryTime.UTC(), mapOptionalTime(t.UsedTime), t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteToken reports ErrNotFound when the row was already gone. Refresh
// rotation treats this delete as its commit point: under concurrent replay of
// the same refresh token only one caller sees the row deleted.
func (r *tokensRepo) DeleteToken(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM user_tokens WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tokensRepo) DeleteExpiredTokens(ctx context.Context, typ domain.TokenType) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE token_type = ? AND expiry_time < ?`,
		string(typ), time.Now().UTC())
	return err
}

func (r *tokensRepo) ListUserTokens(
	ctx context.Context,
	userID string,
	typ domain.TokenType,
) ([]domain.OneTimeToken, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM user_tokens
		 WHERE user_id = ? AND token_type = ? ORDER BY created_at`,
		userID, string(typ))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []domain.OneTimeToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
