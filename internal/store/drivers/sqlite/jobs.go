package sqlite

import (
	"context"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/store"
)

type jobsRepo struct {
	q dbtx
}

const jobColumns = `id, title, description, external_link, posted_by, created_at, updated_at`

func scanJob(row rowScanner) (domain.Job, error) {
	var j domain.Job
	err := row.Scan(&j.ID, &j.Title, &j.Description, &j.ExternalLink,
		&j.PostedByUserID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return domain.Job{}, err
	}
	return j, nil
}

func (r *jobsRepo) CreateJob(ctx context.Context, j domain.Job) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO jobs (id, title, description, external_link, posted_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Title, j.Description, j.ExternalLink, j.PostedByUserID, now, now)
	return mapConstraint(err)
}

func (r *jobsRepo) GetJobByID(ctx context.Context, id string, includeUser bool) (domain.Job, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if err != nil {
		return domain.Job{}, mapNotFound(err)
	}

	if includeUser {
		poster, err := (&usersRepo{q: r.q}).GetUserByID(ctx, j.PostedByUserID)
		if err != nil {
			return domain.Job{}, err
		}
		j.PostedBy = &poster
	}
	return j, nil
}

func (r *jobsRepo) UpdateJob(ctx context.Context, j domain.Job) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE jobs SET title = ?, description = ?, external_link = ?, updated_at = ?
		WHERE id = ?`,
		j.Title, j.Description, j.ExternalLink, time.Now().UTC(), j.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *jobsRepo) DeleteJob(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *jobsRepo) ListJobs(
	ctx context.Context,
	page, size int,
	includeUser bool,
	postedBy string,
) ([]domain.Job, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := []any{}
	if postedBy != "" {
		query += ` WHERE posted_by = ?`
		args = append(args, postedBy)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, size, (page-1)*size)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if includeUser {
		users := &usersRepo{q: r.q}
		for i := range jobs {
			poster, err := users.GetUserByID(ctx, jobs[i].PostedByUserID)
			if err != nil {
				return nil, err
			}
			jobs[i].PostedBy = &poster
		}
	}
	return jobs, nil
}

func (r *jobsRepo) CountJobs(ctx context.Context, postedBy string) (int, error) {
	var count int
	var err error
	if postedBy == "" {
		err = r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count)
	} else {
		err = r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE posted_by = ?`, postedBy).Scan(&count)
	}
	return count, err
}

func (r *jobsRepo) SearchJobs(ctx context.Context, keyword string) ([]domain.Job, error) {
	pattern := "%" + keyword + "%"
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE title LIKE ? COLLATE NOCASE OR description LIKE ? COLLATE NOCASE
		ORDER BY created_at DESC, id DESC`,
		pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
