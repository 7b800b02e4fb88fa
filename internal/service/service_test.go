package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freelancehub/db"
	"freelancehub/db/dbtest"
)

var emailSeq atomic.Int64

func newTestService(t *testing.T, policy Policy) (*Service, *dbtest.MemStore) {
	t.Helper()
	store := dbtest.NewMemStore()
	return New(store, zap.NewNop(), policy), store
}

func seedUser(t *testing.T, store *dbtest.MemStore, role db.Role) *db.User {
	t.Helper()
	u := &db.User{
		Name:         "Test User",
		Email:        fmt.Sprintf("user%d@example.com", emailSeq.Add(1)),
		PasswordHash: "irrelevant",
		Role:         role,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func seedProject(t *testing.T, store *dbtest.MemStore, clientID int, status db.ProjectStatus) *db.Project {
	t.Helper()
	p := &db.Project{
		ClientID:    clientID,
		Title:       "Build a widget",
		Description: "A widget that does widget things",
		Budget:      1000,
		Status:      status,
	}
	require.NoError(t, store.CreateProject(context.Background(), p))
	return p
}

func seedBid(t *testing.T, store *dbtest.MemStore, projectID, freelancerID int, status db.BidStatus) *db.Bid {
	t.Helper()
	b := &db.Bid{
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		Amount:       500,
		CoverLetter:  "I can do this",
		DeliveryTime: "2 weeks",
		Status:       status,
	}
	require.NoError(t, store.CreateBid(context.Background(), b))
	return b
}

func TestRegisterUser(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	u, err := svc.RegisterUser(ctx, "Alice", "alice@example.com", "s3cret", db.RoleClient)
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	require.Equal(t, db.RoleClient, u.Role)
	require.NotEqual(t, "s3cret", u.PasswordHash)
}

func TestRegisterUserValidation(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "", "alice@example.com", "s3cret", db.RoleClient)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RegisterUser(ctx, "Alice", "alice@example.com", "s3cret", db.Role("manager"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "Alice", "alice@example.com", "s3cret", db.RoleClient)
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, "Someone Else", "alice@example.com", "other", db.RoleFreelancer)
	require.ErrorIs(t, err, ErrConflict)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	reg, err := svc.RegisterUser(ctx, "Alice", "alice@example.com", "s3cret", db.RoleClient)
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, reg.ID, u.ID)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestProfile(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()

	client := seedUser(t, store, db.RoleClient)
	freelancer := seedUser(t, store, db.RoleFreelancer)
	p := seedProject(t, store, client.ID, db.ProjectCompleted)
	r := &db.Review{ProjectID: p.ID, ReviewerID: client.ID, RevieweeID: freelancer.ID, Rating: 5}
	require.NoError(t, store.CreateReview(ctx, r))

	u, reviews, err := svc.Profile(ctx, freelancer.ID)
	require.NoError(t, err)
	require.Equal(t, freelancer.ID, u.ID)
	require.Len(t, reviews, 1)

	_, _, err = svc.Profile(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	u := seedUser(t, store, db.RoleFreelancer)

	updated, err := svc.UpdateProfile(ctx, u.ID, "New Name", "newname@example.com")
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, u.Role, updated.Role)

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "newname@example.com", got.Email)
}

func TestUpdateProfileChecks(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	u := seedUser(t, store, db.RoleFreelancer)
	other := seedUser(t, store, db.RoleClient)

	_, err := svc.UpdateProfile(ctx, u.ID, "", "newname@example.com")
	require.ErrorIs(t, err, ErrInvalidInput)

	// another account already holds the email
	_, err = svc.UpdateProfile(ctx, u.ID, "New Name", other.Email)
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.UpdateProfile(ctx, 9999, "New Name", "newname@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProjectDetails(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()

	client := seedUser(t, store, db.RoleClient)
	freelancer := seedUser(t, store, db.RoleFreelancer)
	p := seedProject(t, store, client.ID, db.ProjectOpen)
	seedBid(t, store, p.ID, freelancer.ID, db.BidPending)

	got, bids, milestones, err := svc.ProjectDetails(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)
	require.Len(t, bids, 1)
	require.Empty(t, milestones)

	_, _, _, err = svc.ProjectDetails(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}
