package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"freelancehub/db"
)

// SubmitReview records a rating for a party of a completed project. The
// reviewee must be the owning client or the awarded freelancer, and each
// (project, reviewer, reviewee) pair reviews at most once.
func (s *Service) SubmitReview(ctx context.Context, projectID, reviewerID, revieweeID, rating int, comment string) (*db.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrInvalidInput)
	}

	var review *db.Review
	err := s.store.InTx(ctx, func(tx db.Store) error {
		p, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return notFoundIfNoRows(err, "project", projectID)
		}
		if p.Status != db.ProjectCompleted {
			return fmt.Errorf("project %d is not completed: %w", projectID, ErrInvalidState)
		}

		allowed := revieweeID == p.ClientID
		if !allowed {
			accepted, err := tx.GetAcceptedBid(ctx, projectID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			allowed = err == nil && accepted.FreelancerID == revieweeID
		}
		if !allowed {
			return fmt.Errorf("user %d was not a party to project %d: %w", revieweeID, projectID, ErrInvalidInput)
		}

		exists, err := tx.ReviewExists(ctx, projectID, reviewerID, revieweeID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("review already submitted for this pair: %w", ErrConflict)
		}

		r := &db.Review{
			ProjectID:  projectID,
			ReviewerID: reviewerID,
			RevieweeID: revieweeID,
			Rating:     rating,
			Comment:    comment,
		}
		if err := tx.CreateReview(ctx, r); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("review already submitted for this pair: %w", ErrConflict)
			}
			return err
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("review submitted",
		zap.Int("project_id", projectID),
		zap.Int("reviewer_id", reviewerID),
		zap.Int("reviewee_id", revieweeID),
		zap.Int("rating", rating))
	return review, nil
}

func (s *Service) ListUserReviews(ctx context.Context, revieweeID int) ([]db.Review, error) {
	return s.store.ListReviewsForUser(ctx, revieweeID)
}
