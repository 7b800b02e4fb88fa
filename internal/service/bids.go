package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"freelancehub/db"
)

// PlaceBid records a pending bid by the freelancer on an open project.
// A freelancer gets one bid per project; placing never touches the
// project's status.
func (s *Service) PlaceBid(ctx context.Context, projectID, freelancerID int, amount float64, coverLetter, deliveryTime string) (*db.Bid, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bid amount must be positive: %w", ErrInvalidInput)
	}

	var bid *db.Bid
	err := s.store.InTx(ctx, func(tx db.Store) error {
		u, err := s.requester(ctx, tx, freelancerID)
		if err != nil {
			return err
		}
		if u.Role != db.RoleFreelancer {
			return fmt.Errorf("only freelancers can place bids: %w", ErrForbidden)
		}

		p, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return notFoundIfNoRows(err, "project", projectID)
		}
		if p.Status != db.ProjectOpen {
			return fmt.Errorf("project %d is not open for bidding: %w", projectID, ErrConflict)
		}

		if _, err := tx.GetBidByProjectAndFreelancer(ctx, projectID, freelancerID); err == nil {
			return fmt.Errorf("bid already placed on project %d: %w", projectID, ErrConflict)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		b := &db.Bid{
			ProjectID:    projectID,
			FreelancerID: freelancerID,
			Amount:       amount,
			CoverLetter:  coverLetter,
			DeliveryTime: deliveryTime,
			Status:       db.BidPending,
		}
		if err := tx.CreateBid(ctx, b); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("bid already placed on project %d: %w", projectID, ErrConflict)
			}
			return err
		}
		bid = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bid placed",
		zap.Int("bid_id", bid.ID),
		zap.Int("project_id", projectID),
		zap.Int("freelancer_id", freelancerID))
	return bid, nil
}

// WithdrawBid deletes the requester's own pending bid. Accepted and rejected
// bids are final: withdrawing them would retroactively invalidate an award.
func (s *Service) WithdrawBid(ctx context.Context, bidID, requesterID int) error {
	err := s.store.InTx(ctx, func(tx db.Store) error {
		b, err := tx.GetBid(ctx, bidID)
		if err != nil {
			return notFoundIfNoRows(err, "bid", bidID)
		}
		if b.FreelancerID != requesterID {
			return fmt.Errorf("bid %d belongs to another freelancer: %w", bidID, ErrForbidden)
		}
		if b.Status != db.BidPending {
			return fmt.Errorf("a %s bid cannot be withdrawn: %w", b.Status, ErrInvalidState)
		}

		// The delete re-checks pending status at commit time; zero rows means
		// an award got there first.
		deleted, err := tx.DeletePendingBid(ctx, bidID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("bid %d was awarded concurrently: %w", bidID, ErrConflict)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("bid withdrawn", zap.Int("bid_id", bidID), zap.Int("freelancer_id", requesterID))
	return nil
}

func (s *Service) ListFreelancerBids(ctx context.Context, freelancerID int) ([]db.Bid, error) {
	return s.store.ListBidsByFreelancer(ctx, freelancerID)
}
