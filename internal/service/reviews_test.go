package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"freelancehub/db"
	"freelancehub/db/dbtest"
)

func seedCompletedEngagement(t *testing.T, store *dbtest.MemStore) engagement {
	t.Helper()
	e := seedEngagement(t, store)
	require.NoError(t, store.UpdateProjectStatus(context.Background(), e.project.ID, db.ProjectCompleted))
	return e
}

func TestSubmitReview(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	e := seedCompletedEngagement(t, store)

	r, err := svc.SubmitReview(ctx, e.project.ID, e.client.ID, e.freelancer.ID, 5, "great work")
	require.NoError(t, err)
	require.Equal(t, 5, r.Rating)

	// the freelancer reviews back; a different pair, so no conflict
	_, err = svc.SubmitReview(ctx, e.project.ID, e.freelancer.ID, e.client.ID, 4, "clear brief")
	require.NoError(t, err)

	reviews, err := svc.ListUserReviews(ctx, e.freelancer.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
}

func TestSubmitReviewRatingBounds(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	e := seedCompletedEngagement(t, store)

	_, err := svc.SubmitReview(ctx, e.project.ID, e.client.ID, e.freelancer.ID, 0, "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SubmitReview(ctx, e.project.ID, e.client.ID, e.freelancer.ID, 6, "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitReviewBeforeCompletion(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	e := seedEngagement(t, store)

	_, err := svc.SubmitReview(ctx, e.project.ID, e.client.ID, e.freelancer.ID, 5, "")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmitReviewDuplicate(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	e := seedCompletedEngagement(t, store)

	_, err := svc.SubmitReview(ctx, e.project.ID, e.client.ID, e.freelancer.ID, 5, "")
	require.NoError(t, err)

	_, err = svc.SubmitReview(ctx, e.project.ID, e.client.ID, e.freelancer.ID, 3, "changed my mind")
	require.ErrorIs(t, err, ErrConflict)
}

func TestSubmitReviewRevieweeMustBeParty(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	e := seedCompletedEngagement(t, store)
	stranger := seedUser(t, store, db.RoleFreelancer)

	_, err := svc.SubmitReview(ctx, e.project.ID, e.client.ID, stranger.ID, 5, "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitReviewProjectNotFound(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	e := seedCompletedEngagement(t, store)

	_, err := svc.SubmitReview(ctx, 9999, e.client.ID, e.freelancer.ID, 5, "")
	require.ErrorIs(t, err, ErrNotFound)
}
