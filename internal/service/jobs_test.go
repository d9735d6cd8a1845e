package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/athenkosimagada/careerhive.server/internal/service"
	"github.com/stretchr/testify/require"
)

func jobParams() service.JobParams {
	return service.JobParams{
		Title:        "Senior Gopher",
		Description:  "Write Go all day.",
		ExternalLink: "https://example.com/apply",
	}
}

func TestAddJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerConfirmed(t, "a@x.com")

	j, err := env.Jobs.AddJob(ctx, u.ID, jobParams())
	require.NoError(t, err)
	require.NotEmpty(t, j.ID)
	require.Equal(t, u.ID, j.PostedByUserID)

	got, err := env.Jobs.GetJob(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, "Senior Gopher", got.Title)
	require.NotNil(t, got.PostedBy)
	require.Equal(t, u.ID, got.PostedBy.ID)
}

func TestAddJobRejectsUnsafeLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerConfirmed(t, "a@x.com")

	env.Checker.unsafe = true
	_, err := env.Jobs.AddJob(ctx, u.ID, jobParams())
	require.ErrorIs(t, err, service.ErrInvalidArgument)
	require.Contains(t, err.Error(), "safety check")
}

func TestAddJobRequiresTitleAndDescription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerConfirmed(t, "a@x.com")

	p := jobParams()
	p.Title = "  "
	_, err := env.Jobs.AddJob(ctx, u.ID, p)
	require.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestAddJobNotifiesActiveSubscribers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.registerConfirmed(t, "poster@x.com")
	sub := env.registerConfirmed(t, "sub@x.com")
	inactive := env.registerConfirmed(t, "quiet@x.com")

	require.NoError(t, env.Subs.Subscribe(ctx, sub.ID, sub.Email))
	require.NoError(t, env.Subs.Subscribe(ctx, inactive.ID, inactive.Email))
	require.NoError(t, env.Subs.Unsubscribe(ctx, inactive.ID, inactive.Email))

	before := len(env.Mailer.sent())
	_, err := env.Jobs.AddJob(ctx, poster.ID, jobParams())
	require.NoError(t, err)

	sent := env.Mailer.sent()[before:]
	require.Len(t, sent, 1)
	require.Equal(t, sub.Email, sent[0].To)
	require.Contains(t, sent[0].Subject, "Senior Gopher")
}

func TestUpdateJobOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerConfirmed(t, "owner@x.com")
	other := env.registerConfirmed(t, "other@x.com")

	j, err := env.Jobs.AddJob(ctx, owner.ID, jobParams())
	require.NoError(t, err)

	p := jobParams()
	p.Title = "Staff Gopher"
	_, err = env.Jobs.UpdateJob(ctx, other.ID, j.ID, p)
	require.ErrorIs(t, err, service.ErrForbidden)

	updated, err := env.Jobs.UpdateJob(ctx, owner.ID, j.ID, p)
	require.NoError(t, err)
	require.Equal(t, "Staff Gopher", updated.Title)
}

func TestDeleteJobOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerConfirmed(t, "owner@x.com")
	other := env.registerConfirmed(t, "other@x.com")

	j, err := env.Jobs.AddJob(ctx, owner.ID, jobParams())
	require.NoError(t, err)

	require.ErrorIs(t, env.Jobs.DeleteJob(ctx, other.ID, j.ID), service.ErrForbidden)
	require.NoError(t, env.Jobs.DeleteJob(ctx, owner.ID, j.ID))

	_, err = env.Jobs.GetJob(ctx, j.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestListJobsPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerConfirmed(t, "a@x.com")

	for i := range 5 {
		p := jobParams()
		p.Title = fmt.Sprintf("Job %d", i)
		_, err := env.Jobs.AddJob(ctx, u.ID, p)
		require.NoError(t, err)
	}

	page, err := env.Jobs.ListJobs(ctx, 1, 2, false, "")
	require.NoError(t, err)
	require.Len(t, page.Jobs, 2)
	require.Equal(t, 5, page.TotalCount)

	// Newest first.
	require.Equal(t, "Job 4", page.Jobs[0].Title)

	last, err := env.Jobs.ListJobs(ctx, 3, 2, false, "")
	require.NoError(t, err)
	require.Len(t, last.Jobs, 1)
}

func TestSearchJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerConfirmed(t, "a@x.com")

	p := jobParams()
	p.Title = "Platform Engineer"
	_, err := env.Jobs.AddJob(ctx, u.ID, p)
	require.NoError(t, err)
	_, err = env.Jobs.AddJob(ctx, u.ID, jobParams())
	require.NoError(t, err)

	hits, err := env.Jobs.SearchJobs(ctx, "platform")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "Platform Engineer", hits[0].Title)

	_, err = env.Jobs.SearchJobs(ctx, "  ")
	require.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestSaveAndUnsaveJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerConfirmed(t, "a@x.com")

	j, err := env.Jobs.AddJob(ctx, u.ID, jobParams())
	require.NoError(t, err)

	require.NoError(t, env.Jobs.SaveJob(ctx, u.ID, j.ID))
	require.ErrorIs(t, env.Jobs.SaveJob(ctx, u.ID, j.ID), service.ErrAlreadyExists)

	page, err := env.Jobs.ListSavedJobs(ctx, u.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Jobs, 1)
	require.Equal(t, j.ID, page.Jobs[0].ID)

	require.NoError(t, env.Jobs.UnsaveJob(ctx, u.ID, j.ID))
	require.ErrorIs(t, env.Jobs.UnsaveJob(ctx, u.ID, j.ID), service.ErrNotFound)
}
