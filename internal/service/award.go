package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"freelancehub/db"
	"freelancehub/internal/metrics"
)

// AwardBid accepts one bid, rejects every competing bid and advances the
// project to in_progress, all inside a single transaction. The project row
// is locked first, so two concurrent awards serialize: the loser re-reads
// an in_progress project and fails instead of double-awarding.
func (s *Service) AwardBid(ctx context.Context, projectID, bidID, requesterID int) (*db.Bid, error) {
	var awarded *db.Bid
	err := s.store.InTx(ctx, func(tx db.Store) error {
		p, err := tx.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return notFoundIfNoRows(err, "project", projectID)
		}
		if p.ClientID != requesterID {
			return fmt.Errorf("project %d belongs to another client: %w", projectID, ErrForbidden)
		}
		switch p.Status {
		case db.ProjectInProgress:
			return fmt.Errorf("project %d is already awarded: %w", projectID, ErrConflict)
		case db.ProjectCompleted:
			return fmt.Errorf("project %d is completed: %w", projectID, ErrInvalidState)
		}

		b, err := tx.GetBid(ctx, bidID)
		if err != nil {
			return notFoundIfNoRows(err, "bid", bidID)
		}
		if b.ProjectID != projectID {
			return fmt.Errorf("bid %d is not for project %d: %w", bidID, projectID, ErrNotFound)
		}
		if b.Status != db.BidPending {
			return fmt.Errorf("bid %d is %s, not pending: %w", bidID, b.Status, ErrInvalidState)
		}

		if err := tx.UpdateBidStatus(ctx, bidID, db.BidAccepted); err != nil {
			return err
		}
		if err := tx.RejectPendingBids(ctx, projectID, bidID); err != nil {
			return err
		}
		if err := tx.UpdateProjectStatus(ctx, projectID, db.ProjectInProgress); err != nil {
			return err
		}

		b.Status = db.BidAccepted
		awarded = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncrementAwards()
	s.log.Info("bid awarded",
		zap.Int("project_id", projectID),
		zap.Int("bid_id", bidID),
		zap.Int("freelancer_id", awarded.FreelancerID))
	return awarded, nil
}

// CloseProject marks an in-progress project completed, which is what gates
// review eligibility. Closing straight from open is a policy choice and
// disabled by default; closing a completed project always fails.
func (s *Service) CloseProject(ctx context.Context, projectID, requesterID int) (*db.Project, error) {
	var closed *db.Project
	err := s.store.InTx(ctx, func(tx db.Store) error {
		p, err := tx.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return notFoundIfNoRows(err, "project", projectID)
		}
		if p.ClientID != requesterID {
			return fmt.Errorf("project %d belongs to another client: %w", projectID, ErrForbidden)
		}
		switch p.Status {
		case db.ProjectCompleted:
			return fmt.Errorf("project %d is already completed: %w", projectID, ErrInvalidState)
		case db.ProjectOpen:
			if !s.policy.AllowCloseFromOpen {
				return fmt.Errorf("project %d has not been awarded: %w", projectID, ErrInvalidState)
			}
		}

		if err := tx.UpdateProjectStatus(ctx, projectID, db.ProjectCompleted); err != nil {
			return err
		}
		p.Status = db.ProjectCompleted
		closed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("project completed", zap.Int("project_id", projectID))
	return closed, nil
}
