package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"freelancehub/db"
)

type milestoneTransition struct {
	from, to db.MilestoneStatus
}

// The only legal milestone moves, and which side of the engagement may make
// them. Anything absent from this table is rejected.
var milestoneTransitions = map[milestoneTransition]db.Role{
	{db.MilestonePending, db.MilestoneSubmitted}:   db.RoleFreelancer,
	{db.MilestoneSubmitted, db.MilestoneCompleted}: db.RoleClient,
	{db.MilestoneSubmitted, db.MilestoneRejected}:  db.RoleClient,
}

// CreateMilestone adds a payable unit of work to the project. Only the
// owning client may create milestones, and only while the engagement is
// active. Amounts are not checked against the project budget.
func (s *Service) CreateMilestone(ctx context.Context, projectID, requesterID int, title, description string, amount float64, dueDate *time.Time) (*db.Milestone, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("milestone amount must be positive: %w", ErrInvalidInput)
	}

	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, notFoundIfNoRows(err, "project", projectID)
	}
	if p.ClientID != requesterID {
		return nil, fmt.Errorf("project %d belongs to another client: %w", projectID, ErrForbidden)
	}
	switch p.Status {
	case db.ProjectCompleted:
		return nil, fmt.Errorf("project %d is completed: %w", projectID, ErrInvalidState)
	case db.ProjectOpen:
		if !s.policy.AllowMilestonesBeforeAward {
			return nil, fmt.Errorf("project %d has not been awarded: %w", projectID, ErrInvalidState)
		}
	}

	m := &db.Milestone{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Amount:      amount,
		Status:      db.MilestonePending,
		DueDate:     dueDate,
	}
	if err := s.store.CreateMilestone(ctx, m); err != nil {
		return nil, err
	}

	s.log.Info("milestone created", zap.Int("milestone_id", m.ID), zap.Int("project_id", projectID))
	return m, nil
}

// AdvanceMilestoneStatus moves a milestone along the transition table: the
// awarded freelancer submits pending work, the client then completes or
// rejects it. Requesters outside the engagement are turned away outright.
func (s *Service) AdvanceMilestoneStatus(ctx context.Context, milestoneID, requesterID int, newStatus db.MilestoneStatus) (*db.Milestone, error) {
	var updated *db.Milestone
	err := s.store.InTx(ctx, func(tx db.Store) error {
		m, err := tx.GetMilestone(ctx, milestoneID)
		if err != nil {
			return notFoundIfNoRows(err, "milestone", milestoneID)
		}
		p, err := tx.GetProject(ctx, m.ProjectID)
		if err != nil {
			return notFoundIfNoRows(err, "project", m.ProjectID)
		}

		isClient := requesterID == p.ClientID
		isFreelancer := false
		if accepted, err := tx.GetAcceptedBid(ctx, p.ID); err == nil {
			isFreelancer = accepted.FreelancerID == requesterID
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if !isClient && !isFreelancer {
			return fmt.Errorf("requester %d is not a party to project %d: %w", requesterID, p.ID, ErrForbidden)
		}

		party, ok := milestoneTransitions[milestoneTransition{m.Status, newStatus}]
		if !ok {
			return fmt.Errorf("milestone cannot move from %s to %s: %w", m.Status, newStatus, ErrInvalidState)
		}
		if party == db.RoleClient && !isClient {
			return fmt.Errorf("only the client may move a milestone to %s: %w", newStatus, ErrForbidden)
		}
		if party == db.RoleFreelancer && !isFreelancer {
			return fmt.Errorf("only the awarded freelancer may move a milestone to %s: %w", newStatus, ErrForbidden)
		}

		var submittedAt *time.Time
		if newStatus == db.MilestoneSubmitted {
			now := time.Now()
			submittedAt = &now
		}
		if err := tx.UpdateMilestoneStatus(ctx, milestoneID, newStatus, submittedAt); err != nil {
			return err
		}

		m.Status = newStatus
		if submittedAt != nil {
			m.SubmittedAt = submittedAt
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("milestone advanced",
		zap.Int("milestone_id", milestoneID),
		zap.String("status", string(updated.Status)))
	return updated, nil
}
