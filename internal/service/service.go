package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"freelancehub/db"
)

// Policy settles the lifecycle variants the product left open: whether
// milestones may be created before a project is awarded, and whether a
// client may close a project straight from open.
type Policy struct {
	AllowMilestonesBeforeAward bool
	AllowCloseFromOpen         bool
}

// Service is the engagement core: bid ledger, award coordinator, milestone
// tracker and review gate over a single durable store. Caller identity is
// always an explicit requester ID; there is no ambient session state.
type Service struct {
	store  db.Store
	log    *zap.Logger
	policy Policy
}

func New(store db.Store, log *zap.Logger, policy Policy) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log, policy: policy}
}

func (s *Service) requester(ctx context.Context, store db.Store, id int) (*db.User, error) {
	u, err := store.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundIfNoRows(err, "user", id)
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id int) (*db.User, error) {
	return s.requester(ctx, s.store, id)
}

// ProjectDetails returns a project together with its bids and milestones.
func (s *Service) ProjectDetails(ctx context.Context, projectID int) (*db.Project, []db.Bid, []db.Milestone, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, nil, nil, notFoundIfNoRows(err, "project", projectID)
	}
	bids, err := s.store.ListBidsForProject(ctx, projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list bids: %w", err)
	}
	milestones, err := s.store.ListMilestonesForProject(ctx, projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list milestones: %w", err)
	}
	return p, bids, milestones, nil
}
