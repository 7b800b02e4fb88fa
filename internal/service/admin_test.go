package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"freelancehub/db"
)

func TestListAllUsers(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	admin := seedUser(t, store, db.RoleAdmin)
	seedUser(t, store, db.RoleClient)
	seedUser(t, store, db.RoleFreelancer)

	users, err := svc.ListAllUsers(ctx, admin.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, users, 3)
}

func TestListAllProjects(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	admin := seedUser(t, store, db.RoleAdmin)
	client := seedUser(t, store, db.RoleClient)
	seedProject(t, store, client.ID, db.ProjectOpen)
	seedProject(t, store, client.ID, db.ProjectCompleted)

	projects, err := svc.ListAllProjects(ctx, admin.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, projects, 2)
}

func TestAdminListingsForbidden(t *testing.T) {
	svc, store := newTestService(t, Policy{})
	ctx := context.Background()
	client := seedUser(t, store, db.RoleClient)
	freelancer := seedUser(t, store, db.RoleFreelancer)

	_, err := svc.ListAllUsers(ctx, client.ID, 50, 0)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListAllProjects(ctx, freelancer.ID, 50, 0)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListAllUsers(ctx, 9999, 50, 0)
	require.ErrorIs(t, err, ErrNotFound)
}
