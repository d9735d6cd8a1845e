package sqlite

import (
	"context"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/store"
)

type savedJobsRepo struct {
	q dbtx
}

func (r *savedJobsRepo) SaveJob(ctx context.Context, s domain.SavedJob) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO saved_jobs (id, user_id, job_id, created_at)
		VALUES (?, ?, ?, ?)`,
		s.ID, s.UserID, s.JobID, time.Now().UTC())
	return mapConstraint(err)
}

func (r *savedJobsRepo) UnsaveJob(ctx context.Context, userID, jobID string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM saved_jobs WHERE user_id = ? AND job_id = ?`, userID, jobID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *savedJobsRepo) ListSavedJobs(
	ctx context.Context,
	userID string,
	page, size int,
) ([]domain.SavedJob, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.job_id, s.created_at,
		       j.id, j.title, j.description, j.external_link, j.posted_by, j.created_at, j.updated_at
		FROM saved_jobs s
		JOIN jobs j ON j.id = s.job_id
		WHERE s.user_id = ?
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT ? OFFSET ?`,
		userID, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saved []domain.SavedJob
	for rows.Next() {
		var (
			s domain.SavedJob
			j domain.Job
		)
		err := rows.Scan(
			&s.ID, &s.UserID, &s.JobID, &s.CreatedAt,
			&j.ID, &j.Title, &j.Description, &j.ExternalLink, &j.PostedByUserID,
			&j.CreatedAt, &j.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		s.Job = &j
		saved = append(saved, s)
	}
	return saved, rows.Err()
}

func (r *savedJobsRepo) CountSavedJobs(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM saved_jobs WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}
