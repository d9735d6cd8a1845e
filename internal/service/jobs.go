package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/mailer"
	"github.com/athenkosimagada/careerhive.server/internal/safebrowsing"
	"github.com/athenkosimagada/careerhive.server/internal/store"
	"github.com/athenkosimagada/careerhive.server/pkg/idx"
	"github.com/athenkosimagada/careerhive.server/pkg/slogx"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// JobService manages job postings and bookmarks. Mutation is owner-only;
// external links are vetted through the safe-browsing verdict before a
// posting is accepted.
type JobService struct {
	Store  store.Store
	Safe   safebrowsing.Checker
	Mailer mailer.Sender

	// FrontendURL is the public base for job links in notification emails.
	FrontendURL string
}

// JobParams carries a create or update request.
type JobParams struct {
	Title        string
	Description  string
	ExternalLink string
}

// JobPage is one page of a listing plus the total match count.
type JobPage struct {
	Jobs       []domain.Job
	TotalCount int
	PageNumber int
	PageSize   int
}

// AddJob creates a posting owned by userID and fans out notification emails
// to active subscribers. The fan-out is fire-and-forget; partial delivery is
// acceptable.
func (s *JobService) AddJob(ctx context.Context, userID string, p JobParams) (domain.Job, error) {
	if err := s.validateParams(ctx, p); err != nil {
		return domain.Job{}, err
	}

	j := domain.Job{
		ID:             idx.New().String(),
		Title:          p.Title,
		Description:    p.Description,
		ExternalLink:   p.ExternalLink,
		PostedByUserID: userID,
	}
	if err := s.Store.Jobs().CreateJob(ctx, j); err != nil {
		return domain.Job{}, err
	}

	s.notifySubscribers(ctx, j)
	return j, nil
}

// UpdateJob replaces the posting's fields. Only the owner may update.
func (s *JobService) UpdateJob(ctx context.Context, userID, jobID string, p JobParams) (domain.Job, error) {
	j, err := s.getJob(ctx, jobID, false)
	if err != nil {
		return domain.Job{}, err
	}
	if j.PostedByUserID != userID {
		return domain.Job{}, fmt.Errorf("%w: only the poster can update this job", ErrForbidden)
	}
	if err := s.validateParams(ctx, p); err != nil {
		return domain.Job{}, err
	}

	j.Title = p.Title
	j.Description = p.Description
	j.ExternalLink = p.ExternalLink
	if err := s.Store.Jobs().UpdateJob(ctx, j); err != nil {
		return domain.Job{}, err
	}
	return j, nil
}

// DeleteJob removes the posting. Only the owner may delete.
func (s *JobService) DeleteJob(ctx context.Context, userID, jobID string) error {
	j, err := s.getJob(ctx, jobID, false)
	if err != nil {
		return err
	}
	if j.PostedByUserID != userID {
		return fmt.Errorf("%w: only the poster can delete this job", ErrForbidden)
	}
	return s.Store.Jobs().DeleteJob(ctx, jobID)
}

// GetJob fetches one posting with its poster hydrated.
func (s *JobService) GetJob(ctx context.Context, jobID string) (domain.Job, error) {
	return s.getJob(ctx, jobID, true)
}

// ListJobs pages all postings newest-first. postedBy narrows to one poster
// when non-empty.
func (s *JobService) ListJobs(ctx context.Context, page, size int, includeUser bool, postedBy string) (JobPage, error) {
	page, size = clampPage(page, size)

	jobs, err := s.Store.Jobs().ListJobs(ctx, page, size, includeUser, postedBy)
	if err != nil {
		return JobPage{}, err
	}
	total, err := s.Store.Jobs().CountJobs(ctx, postedBy)
	if err != nil {
		return JobPage{}, err
	}
	return JobPage{Jobs: jobs, TotalCount: total, PageNumber: page, PageSize: size}, nil
}

// SearchJobs matches the keyword against titles and descriptions.
func (s *JobService) SearchJobs(ctx context.Context, keyword string) ([]domain.Job, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: search keyword is required", ErrInvalidArgument)
	}
	return s.Store.Jobs().SearchJobs(ctx, keyword)
}

// SaveJob bookmarks a posting for the user.
func (s *JobService) SaveJob(ctx context.Context, userID, jobID string) error {
	if _, err := s.getJob(ctx, jobID, false); err != nil {
		return err
	}

	err := s.Store.SavedJobs().SaveJob(ctx, domain.SavedJob{
		ID:     idx.New().String(),
		UserID: userID,
		JobID:  jobID,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("%w: job is already saved", ErrAlreadyExists)
	}
	return err
}

// UnsaveJob removes a bookmark.
func (s *JobService) UnsaveJob(ctx context.Context, userID, jobID string) error {
	err := s.Store.SavedJobs().UnsaveJob(ctx, userID, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: job is not saved", ErrNotFound)
	}
	return err
}

// ListSavedJobs pages the user's bookmarks with the job hydrated.
func (s *JobService) ListSavedJobs(ctx context.Context, userID string, page, size int) (JobPage, error) {
	page, size = clampPage(page, size)

	saved, err := s.Store.SavedJobs().ListSavedJobs(ctx, userID, page, size)
	if err != nil {
		return JobPage{}, err
	}
	total, err := s.Store.SavedJobs().CountSavedJobs(ctx, userID)
	if err != nil {
		return JobPage{}, err
	}

	jobs := make([]domain.Job, 0, len(saved))
	for _, sj := range saved {
		if sj.Job != nil {
			jobs = append(jobs, *sj.Job)
		}
	}
	return JobPage{Jobs: jobs, TotalCount: total, PageNumber: page, PageSize: size}, nil
}

func (s *JobService) validateParams(ctx context.Context, p JobParams) error {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: title and description are required", ErrInvalidArgument)
	}
	if p.ExternalLink == "" {
		return nil
	}

	safe, err := s.Safe.IsSafe(ctx, p.ExternalLink)
	if err != nil {
		return fmt.Errorf("check external link: %w", err)
	}
	if !safe {
		return fmt.Errorf("%w: external link failed the safety check", ErrInvalidArgument)
	}
	return nil
}

func (s *JobService) getJob(ctx context.Context, jobID string, includeUser bool) (domain.Job, error) {
	if _, err := idx.Parse(jobID); err != nil {
		return domain.Job{}, fmt.Errorf("%w: malformed job id", ErrInvalidArgument)
	}
	j, err := s.Store.Jobs().GetJobByID(ctx, jobID, includeUser)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Job{}, fmt.Errorf("%w: job does not exist", ErrNotFound)
		}
		return domain.Job{}, err
	}
	return j, nil
}

// notifySubscribers emails every active subscriber about the new posting.
// The caller does not await delivery and never learns of failures.
func (s *JobService) notifySubscribers(ctx context.Context, j domain.Job) {
	l := slogx.FromContext(ctx)

	subs, err := s.Store.Subscriptions().ListActiveSubscriptions(ctx)
	if err != nil {
		l.Error("subscription fan-out skipped", slog.Any("err", err))
		return
	}
	if len(subs) == 0 {
		return
	}

	link := fmt.Sprintf("%s/jobs/%s", s.FrontendURL, j.ID)
	body := fmt.Sprintf(`<p>A new job was just posted: <strong>%s</strong></p><p>View it <a href=%q>here</a>.</p>`,
		j.Title, link)
	for _, sub := range subs {
		s.Mailer.SendAsync(sub.Email, "New job posted: "+j.Title, body)
	}
	l.Debug("subscription fan-out dispatched",
		slog.String("job_id", j.ID),
		slog.Int("subscribers", len(subs)),
	)
}

func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
