// Package dbtest provides an in-memory Store for tests. Transactions are
// serialized by a single mutex and roll back on error, which mirrors the
// atomicity and isolation the Postgres-backed Storage guarantees.
package dbtest

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/lib/pq"

	"freelancehub/db"
)

type state struct {
	users      map[int]db.User
	projects   map[int]db.Project
	bids       map[int]db.Bid
	milestones map[int]db.Milestone
	reviews    map[int]db.Review
	seq        int
}

func newState() *state {
	return &state{
		users:      map[int]db.User{},
		projects:   map[int]db.Project{},
		bids:       map[int]db.Bid{},
		milestones: map[int]db.Milestone{},
		reviews:    map[int]db.Review{},
	}
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.bids {
		c.bids[k] = v
	}
	for k, v := range s.milestones {
		c.milestones[k] = v
	}
	for k, v := range s.reviews {
		c.reviews[k] = v
	}
	return c
}

func (s *state) nextID() int {
	s.seq++
	return s.seq
}

func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint}
}

// MemStore is a db.Store kept entirely in memory.
type MemStore struct {
	mu sync.Mutex
	st *state
}

func NewMemStore() *MemStore {
	return &MemStore{st: newState()}
}

// InTx holds the store lock for the duration of fn, restoring the previous
// state when fn fails. Concurrent transactions therefore serialize, and a
// failed one leaves no partial writes behind.
func (m *MemStore) InTx(ctx context.Context, fn func(db.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	backup := m.st.clone()
	if err := fn(&txStore{st: m.st}); err != nil {
		m.st = backup
		return err
	}
	return nil
}

// txStore runs accessors against the already-locked state.
type txStore struct {
	st *state
}

func (t *txStore) InTx(ctx context.Context, fn func(db.Store) error) error {
	return fn(t)
}

func (m *MemStore) run(fn func(*txStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&txStore{st: m.st})
}

func (t *txStore) CreateUser(ctx context.Context, u *db.User) error {
	for _, other := range t.st.users {
		if other.Email == u.Email {
			return uniqueViolation("users_email_key")
		}
	}
	u.ID = t.st.nextID()
	u.CreatedAt = time.Now()
	t.st.users[u.ID] = *u
	return nil
}

func (t *txStore) GetUser(ctx context.Context, id int) (*db.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (t *txStore) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	for _, u := range t.st.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *txStore) UpdateUserProfile(ctx context.Context, id int, name, email string) error {
	u, ok := t.st.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	for _, other := range t.st.users {
		if other.ID != id && other.Email == email {
			return uniqueViolation("users_email_key")
		}
	}
	u.Name = name
	u.Email = email
	t.st.users[id] = u
	return nil
}

func (t *txStore) ListUsers(ctx context.Context, limit, offset int) ([]db.User, error) {
	all := []db.User{}
	for _, u := range t.st.users {
		all = append(all, u)
	}
	return page(all, limit, offset), nil
}

func (t *txStore) CreateProject(ctx context.Context, p *db.Project) error {
	p.ID = t.st.nextID()
	p.CreatedAt = time.Now()
	t.st.projects[p.ID] = *p
	return nil
}

func (t *txStore) GetProject(ctx context.Context, id int) (*db.Project, error) {
	p, ok := t.st.projects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (t *txStore) GetProjectForUpdate(ctx context.Context, id int) (*db.Project, error) {
	// The transaction mutex already serializes writers.
	return t.GetProject(ctx, id)
}

func (t *txStore) UpdateProjectStatus(ctx context.Context, id int, status db.ProjectStatus) error {
	p, ok := t.st.projects[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Status = status
	t.st.projects[id] = p
	return nil
}

func (t *txStore) UpdateProjectDetails(ctx context.Context, id int, title, description string, budget float64) error {
	p, ok := t.st.projects[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Title = title
	p.Description = description
	p.Budget = budget
	t.st.projects[id] = p
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (t *txStore) ListOpenProjects(ctx context.Context, limit, offset int) ([]db.Project, error) {
	open := []db.Project{}
	for _, p := range t.st.projects {
		if p.Status == db.ProjectOpen {
			open = append(open, p)
		}
	}
	return page(open, limit, offset), nil
}

func (t *txStore) ListAllProjects(ctx context.Context, limit, offset int) ([]db.Project, error) {
	all := []db.Project{}
	for _, p := range t.st.projects {
		all = append(all, p)
	}
	return page(all, limit, offset), nil
}

func (t *txStore) ListProjectsByClient(ctx context.Context, clientID int) ([]db.Project, error) {
	out := []db.Project{}
	for _, p := range t.st.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *txStore) CreateBid(ctx context.Context, b *db.Bid) error {
	for _, other := range t.st.bids {
		if other.ProjectID == b.ProjectID && other.FreelancerID == b.FreelancerID {
			return uniqueViolation("bids_project_id_freelancer_id_key")
		}
	}
	b.ID = t.st.nextID()
	b.CreatedAt = time.Now()
	t.st.bids[b.ID] = *b
	return nil
}

func (t *txStore) GetBid(ctx context.Context, id int) (*db.Bid, error) {
	b, ok := t.st.bids[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (t *txStore) GetBidByProjectAndFreelancer(ctx context.Context, projectID, freelancerID int) (*db.Bid, error) {
	for _, b := range t.st.bids {
		if b.ProjectID == projectID && b.FreelancerID == freelancerID {
			b := b
			return &b, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *txStore) GetAcceptedBid(ctx context.Context, projectID int) (*db.Bid, error) {
	for _, b := range t.st.bids {
		if b.ProjectID == projectID && b.Status == db.BidAccepted {
			b := b
			return &b, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *txStore) ListBidsForProject(ctx context.Context, projectID int) ([]db.Bid, error) {
	out := []db.Bid{}
	for _, b := range t.st.bids {
		if b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *txStore) ListBidsByFreelancer(ctx context.Context, freelancerID int) ([]db.Bid, error) {
	out := []db.Bid{}
	for _, b := range t.st.bids {
		if b.FreelancerID == freelancerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *txStore) UpdateBidStatus(ctx context.Context, id int, status db.BidStatus) error {
	b, ok := t.st.bids[id]
	if !ok {
		return sql.ErrNoRows
	}
	if status == db.BidAccepted {
		for _, other := range t.st.bids {
			if other.ProjectID == b.ProjectID && other.ID != id && other.Status == db.BidAccepted {
				return uniqueViolation("bids_one_accepted_per_project")
			}
		}
	}
	b.Status = status
	t.st.bids[id] = b
	return nil
}

func (t *txStore) RejectPendingBids(ctx context.Context, projectID, exceptBidID int) error {
	for id, b := range t.st.bids {
		if b.ProjectID == projectID && b.ID != exceptBidID && b.Status == db.BidPending {
			b.Status = db.BidRejected
			t.st.bids[id] = b
		}
	}
	return nil
}

func (t *txStore) DeletePendingBid(ctx context.Context, id int) (bool, error) {
	b, ok := t.st.bids[id]
	if !ok || b.Status != db.BidPending {
		return false, nil
	}
	delete(t.st.bids, id)
	return true, nil
}

func (t *txStore) CreateMilestone(ctx context.Context, m *db.Milestone) error {
	m.ID = t.st.nextID()
	t.st.milestones[m.ID] = *m
	return nil
}

func (t *txStore) GetMilestone(ctx context.Context, id int) (*db.Milestone, error) {
	m, ok := t.st.milestones[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (t *txStore) ListMilestonesForProject(ctx context.Context, projectID int) ([]db.Milestone, error) {
	out := []db.Milestone{}
	for _, m := range t.st.milestones {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (t *txStore) UpdateMilestoneStatus(ctx context.Context, id int, status db.MilestoneStatus, submittedAt *time.Time) error {
	m, ok := t.st.milestones[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.Status = status
	if submittedAt != nil {
		m.SubmittedAt = submittedAt
	}
	t.st.milestones[id] = m
	return nil
}

func (t *txStore) CreateReview(ctx context.Context, r *db.Review) error {
	for _, other := range t.st.reviews {
		if other.ProjectID == r.ProjectID && other.ReviewerID == r.ReviewerID && other.RevieweeID == r.RevieweeID {
			return uniqueViolation("reviews_project_id_reviewer_id_reviewee_id_key")
		}
	}
	r.ID = t.st.nextID()
	r.CreatedAt = time.Now()
	t.st.reviews[r.ID] = *r
	return nil
}

func (t *txStore) ReviewExists(ctx context.Context, projectID, reviewerID, revieweeID int) (bool, error) {
	for _, r := range t.st.reviews {
		if r.ProjectID == projectID && r.ReviewerID == reviewerID && r.RevieweeID == revieweeID {
			return true, nil
		}
	}
	return false, nil
}

func (t *txStore) ListReviewsForUser(ctx context.Context, revieweeID int) ([]db.Review, error) {
	out := []db.Review{}
	for _, r := range t.st.reviews {
		if r.RevieweeID == revieweeID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Plain accessors lock for the single call, standing in for auto-commit
// statements.

func (m *MemStore) CreateUser(ctx context.Context, u *db.User) error {
	return m.run(func(t *txStore) error { return t.CreateUser(ctx, u) })
}

func (m *MemStore) GetUser(ctx context.Context, id int) (u *db.User, err error) {
	err = m.run(func(t *txStore) error { u, err = t.GetUser(ctx, id); return err })
	return
}

func (m *MemStore) GetUserByEmail(ctx context.Context, email string) (u *db.User, err error) {
	err = m.run(func(t *txStore) error { u, err = t.GetUserByEmail(ctx, email); return err })
	return
}

func (m *MemStore) UpdateUserProfile(ctx context.Context, id int, name, email string) error {
	return m.run(func(t *txStore) error { return t.UpdateUserProfile(ctx, id, name, email) })
}

func (m *MemStore) ListUsers(ctx context.Context, limit, offset int) (us []db.User, err error) {
	err = m.run(func(t *txStore) error { us, err = t.ListUsers(ctx, limit, offset); return err })
	return
}

func (m *MemStore) CreateProject(ctx context.Context, p *db.Project) error {
	return m.run(func(t *txStore) error { return t.CreateProject(ctx, p) })
}

func (m *MemStore) GetProject(ctx context.Context, id int) (p *db.Project, err error) {
	err = m.run(func(t *txStore) error { p, err = t.GetProject(ctx, id); return err })
	return
}

func (m *MemStore) GetProjectForUpdate(ctx context.Context, id int) (p *db.Project, err error) {
	err = m.run(func(t *txStore) error { p, err = t.GetProjectForUpdate(ctx, id); return err })
	return
}

func (m *MemStore) UpdateProjectStatus(ctx context.Context, id int, status db.ProjectStatus) error {
	return m.run(func(t *txStore) error { return t.UpdateProjectStatus(ctx, id, status) })
}

func (m *MemStore) UpdateProjectDetails(ctx context.Context, id int, title, description string, budget float64) error {
	return m.run(func(t *txStore) error { return t.UpdateProjectDetails(ctx, id, title, description, budget) })
}

func (m *MemStore) ListAllProjects(ctx context.Context, limit, offset int) (ps []db.Project, err error) {
	err = m.run(func(t *txStore) error { ps, err = t.ListAllProjects(ctx, limit, offset); return err })
	return
}

func (m *MemStore) ListOpenProjects(ctx context.Context, limit, offset int) (ps []db.Project, err error) {
	err = m.run(func(t *txStore) error { ps, err = t.ListOpenProjects(ctx, limit, offset); return err })
	return
}

func (m *MemStore) ListProjectsByClient(ctx context.Context, clientID int) (ps []db.Project, err error) {
	err = m.run(func(t *txStore) error { ps, err = t.ListProjectsByClient(ctx, clientID); return err })
	return
}

func (m *MemStore) CreateBid(ctx context.Context, b *db.Bid) error {
	return m.run(func(t *txStore) error { return t.CreateBid(ctx, b) })
}

func (m *MemStore) GetBid(ctx context.Context, id int) (b *db.Bid, err error) {
	err = m.run(func(t *txStore) error { b, err = t.GetBid(ctx, id); return err })
	return
}

func (m *MemStore) GetBidByProjectAndFreelancer(ctx context.Context, projectID, freelancerID int) (b *db.Bid, err error) {
	err = m.run(func(t *txStore) error {
		b, err = t.GetBidByProjectAndFreelancer(ctx, projectID, freelancerID)
		return err
	})
	return
}

func (m *MemStore) GetAcceptedBid(ctx context.Context, projectID int) (b *db.Bid, err error) {
	err = m.run(func(t *txStore) error { b, err = t.GetAcceptedBid(ctx, projectID); return err })
	return
}

func (m *MemStore) ListBidsForProject(ctx context.Context, projectID int) (bs []db.Bid, err error) {
	err = m.run(func(t *txStore) error { bs, err = t.ListBidsForProject(ctx, projectID); return err })
	return
}

func (m *MemStore) ListBidsByFreelancer(ctx context.Context, freelancerID int) (bs []db.Bid, err error) {
	err = m.run(func(t *txStore) error { bs, err = t.ListBidsByFreelancer(ctx, freelancerID); return err })
	return
}

func (m *MemStore) UpdateBidStatus(ctx context.Context, id int, status db.BidStatus) error {
	return m.run(func(t *txStore) error { return t.UpdateBidStatus(ctx, id, status) })
}

func (m *MemStore) RejectPendingBids(ctx context.Context, projectID, exceptBidID int) error {
	return m.run(func(t *txStore) error { return t.RejectPendingBids(ctx, projectID, exceptBidID) })
}

func (m *MemStore) DeletePendingBid(ctx context.Context, id int) (ok bool, err error) {
	err = m.run(func(t *txStore) error { ok, err = t.DeletePendingBid(ctx, id); return err })
	return
}

func (m *MemStore) CreateMilestone(ctx context.Context, ms *db.Milestone) error {
	return m.run(func(t *txStore) error { return t.CreateMilestone(ctx, ms) })
}

func (m *MemStore) GetMilestone(ctx context.Context, id int) (ms *db.Milestone, err error) {
	err = m.run(func(t *txStore) error { ms, err = t.GetMilestone(ctx, id); return err })
	return
}

func (m *MemStore) ListMilestonesForProject(ctx context.Context, projectID int) (ms []db.Milestone, err error) {
	err = m.run(func(t *txStore) error { ms, err = t.ListMilestonesForProject(ctx, projectID); return err })
	return
}

func (m *MemStore) UpdateMilestoneStatus(ctx context.Context, id int, status db.MilestoneStatus, submittedAt *time.Time) error {
	return m.run(func(t *txStore) error { return t.UpdateMilestoneStatus(ctx, id, status, submittedAt) })
}

func (m *MemStore) CreateReview(ctx context.Context, r *db.Review) error {
	return m.run(func(t *txStore) error { return t.CreateReview(ctx, r) })
}

func (m *MemStore) ReviewExists(ctx context.Context, projectID, reviewerID, revieweeID int) (ok bool, err error) {
	err = m.run(func(t *txStore) error {
		ok, err = t.ReviewExists(ctx, projectID, reviewerID, revieweeID)
		return err
	})
	return
}

func (m *MemStore) ListReviewsForUser(ctx context.Context, revieweeID int) (rs []db.Review, err error) {
	err = m.run(func(t *txStore) error { rs, err = t.ListReviewsForUser(ctx, revieweeID); return err })
	return
}
