package service

import (
	"context"
	"fmt"

	"freelancehub/db"
)

func (s *Service) requireAdmin(ctx context.Context, requesterID int) error {
	u, err := s.requester(ctx, s.store, requesterID)
	if err != nil {
		return err
	}
	if u.Role != db.RoleAdmin {
		return fmt.Errorf("admin role required: %w", ErrForbidden)
	}
	return nil
}

// ListAllUsers is the admin view over every account.
func (s *Service) ListAllUsers(ctx context.Context, requesterID, limit, offset int) ([]db.User, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx, limit, offset)
}

// ListAllProjects is the admin view over every project regardless of status
// or owner.
func (s *Service) ListAllProjects(ctx context.Context, requesterID, limit, offset int) ([]db.Project, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.store.ListAllProjects(ctx, limit, offset)
}
