package sqlite

import (
	"context"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/store"
)

type subscriptionsRepo struct {
	q dbtx
}

func (r *subscriptionsRepo) GetSubscriptionByEmail(
	ctx context.Context,
	email string,
) (domain.Subscription, error) {
	var s domain.Subscription
	err := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, email, active, created_at, updated_at
		FROM subscriptions WHERE email = ? COLLATE NOCASE`, email).
		Scan(&s.ID, &s.UserID, &s.Email, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Subscription{}, mapNotFound(err)
	}
	return s, nil
}

func (r *subscriptionsRepo) CreateSubscription(ctx context.Context, s domain.Subscription) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, email, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Email, s.Active, now, now)
	return mapConstraint(err)
}

func (r *subscriptionsRepo) UpdateSubscription(ctx context.Context, s domain.Subscription) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE subscriptions SET active = ?, updated_at = ? WHERE id = ?`,
		s.Active, time.Now().UTC(), s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *subscriptionsRepo) ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_id, email, active, created_at, updated_at
		FROM subscriptions WHERE active = 1 ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Email, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
