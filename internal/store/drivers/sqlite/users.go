package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/store"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, email, username, first_name, last_name, full_name,
	phone_number, profile_pic_url, password_hash, email_confirmed,
	two_factor_enabled, two_factor_secret,
	confirm_token_hash, confirm_token_expires,
	reset_token_hash, reset_token_expires,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u              domain.User
		phone          sql.NullString
		twoFactor      sql.NullString
		confirmHash    sql.NullString
		confirmExpires sql.NullTime
		resetHash      sql.NullString
		resetExpires   sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.FullName,
		&phone, &u.ProfilePicURL, &u.PasswordHash, &u.EmailConfirmed,
		&u.TwoFactorEnabled, &twoFactor,
		&confirmHash, &confirmExpires,
		&resetHash, &resetExpires,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	if phone.Valid {
		u.PhoneNumber = phone.String
	}
	u.TwoFactorSecret = mapNullStringPtr(twoFactor)
	u.ConfirmTokenHash = mapNullStringPtr(confirmHash)
	u.ConfirmTokenExpires = mapNullTimePtr(confirmExpires)
	u.ResetTokenHash = mapNullStringPtr(resetHash)
	u.ResetTokenExpires = mapNullTimePtr(resetExpires)
	return u, nil
}

func phoneParam(phone string) sql.NullString {
	if phone == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: phone, Valid: true}
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByPhone(ctx context.Context, phone string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = ?`, phone)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (
			id, email, username, first_name, last_name, full_name,
			phone_number, profile_pic_url, password_hash, email_confirmed,
			two_factor_enabled, two_factor_secret,
			confirm_token_hash, confirm_token_expires,
			reset_token_hash, reset_token_expires,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.FirstName, u.LastName, u.FullName,
		phoneParam(u.PhoneNumber), u.ProfilePicURL, u.PasswordHash, u.EmailConfirmed,
		u.TwoFactorEnabled, mapOptionalString(u.TwoFactorSecret),
		mapOptionalString(u.ConfirmTokenHash), mapOptionalTime(u.ConfirmTokenExpires),
		mapOptionalString(u.ResetTokenHash), mapOptionalTime(u.ResetTokenExpires),
		now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			email = ?, username = ?, first_name = ?, last_name = ?, full_name = ?,
			phone_number = ?, profile_pic_url = ?, password_hash = ?, email_confirmed = ?,
			two_factor_enabled = ?, two_factor_secret = ?,
			confirm_token_hash = ?, confirm_token_expires = ?,
			reset_token_hash = ?, reset_token_expires = ?,
			updated_at = ?
		WHERE id = ?`,
		u.Email, u.Username, u.FirstName, u.LastName, u.FullName,
		phoneParam(u.PhoneNumber), u.ProfilePicURL, u.PasswordHash, u.EmailConfirmed,
		u.TwoFactorEnabled, mapOptionalString(u.TwoFactorSecret),
		mapOptionalString(u.ConfirmTokenHash), mapOptionalTime(u.ConfirmTokenExpires),
		mapOptionalString(u.ResetTokenHash), mapOptionalTime(u.ResetTokenExpires),
		time.Now().UTC(), u.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) AddUserRole(ctx context.Context, userID, roleID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, roleID)
	return mapConstraint(err)
}

func (r *usersRepo) RemoveUserRole(ctx context.Context, userID, roleID string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`, userID, roleID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) ListUserRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.name, r.created_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
