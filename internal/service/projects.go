package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"freelancehub/db"
)

// CreateProject opens a new project for the client. Budget must be positive;
// the project starts in the open state and only the award coordinator moves
// it forward.
func (s *Service) CreateProject(ctx context.Context, clientID int, title, description string, budget float64, deadline *time.Time) (*db.Project, error) {
	if title == "" || description == "" {
		return nil, fmt.Errorf("title and description are required: %w", ErrInvalidInput)
	}
	if budget <= 0 {
		return nil, fmt.Errorf("budget must be positive: %w", ErrInvalidInput)
	}

	u, err := s.requester(ctx, s.store, clientID)
	if err != nil {
		return nil, err
	}
	if u.Role != db.RoleClient {
		return nil, fmt.Errorf("only clients can create projects: %w", ErrForbidden)
	}

	p := &db.Project{
		ClientID:    clientID,
		Title:       title,
		Description: description,
		Budget:      budget,
		Status:      db.ProjectOpen,
		Deadline:    deadline,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("project created", zap.Int("project_id", p.ID), zap.Int("client_id", clientID))
	return p, nil
}

// UpdateProject lets the owning client edit title, description and budget.
// Status is deliberately not editable here; it belongs to the award and
// close operations alone.
func (s *Service) UpdateProject(ctx context.Context, projectID, requesterID int, title, description string, budget float64) (*db.Project, error) {
	if title == "" || description == "" {
		return nil, fmt.Errorf("title and description are required: %w", ErrInvalidInput)
	}
	if budget <= 0 {
		return nil, fmt.Errorf("budget must be positive: %w", ErrInvalidInput)
	}

	var updated *db.Project
	err := s.store.InTx(ctx, func(tx db.Store) error {
		p, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return notFoundIfNoRows(err, "project", projectID)
		}
		if p.ClientID != requesterID {
			return fmt.Errorf("project %d belongs to another client: %w", projectID, ErrForbidden)
		}

		if err := tx.UpdateProjectDetails(ctx, projectID, title, description, budget); err != nil {
			return err
		}
		p.Title = title
		p.Description = description
		p.Budget = budget
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("project updated", zap.Int("project_id", projectID))
	return updated, nil
}

func (s *Service) ListOpenProjects(ctx context.Context, limit, offset int) ([]db.Project, error) {
	return s.store.ListOpenProjects(ctx, limit, offset)
}

func (s *Service) ListClientProjects(ctx context.Context, clientID int) ([]db.Project, error) {
	return s.store.ListProjectsByClient(ctx, clientID)
}
