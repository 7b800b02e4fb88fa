package db

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store is the durable-storage contract the service layer works against.
// *Storage implements it both over the connection pool and, inside InTx,
// over a single transaction.
type Store interface {
	InTx(ctx context.Context, fn func(Store) error) error

	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id int) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUserProfile(ctx context.Context, id int, name, email string) error
	ListUsers(ctx context.Context, limit, offset int) ([]User, error)

	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id int) (*Project, error)
	GetProjectForUpdate(ctx context.Context, id int) (*Project, error)
	UpdateProjectStatus(ctx context.Context, id int, status ProjectStatus) error
	UpdateProjectDetails(ctx context.Context, id int, title, description string, budget float64) error
	ListOpenProjects(ctx context.Context, limit, offset int) ([]Project, error)
	ListProjectsByClient(ctx context.Context, clientID int) ([]Project, error)
	ListAllProjects(ctx context.Context, limit, offset int) ([]Project, error)

	CreateBid(ctx context.Context, b *Bid) error
	GetBid(ctx context.Context, id int) (*Bid, error)
	GetBidByProjectAndFreelancer(ctx context.Context, projectID, freelancerID int) (*Bid, error)
	GetAcceptedBid(ctx context.Context, projectID int) (*Bid, error)
	ListBidsForProject(ctx context.Context, projectID int) ([]Bid, error)
	ListBidsByFreelancer(ctx context.Context, freelancerID int) ([]Bid, error)
	UpdateBidStatus(ctx context.Context, id int, status BidStatus) error
	RejectPendingBids(ctx context.Context, projectID, exceptBidID int) error
	DeletePendingBid(ctx context.Context, id int) (bool, error)

	CreateMilestone(ctx context.Context, m *Milestone) error
	GetMilestone(ctx context.Context, id int) (*Milestone, error)
	ListMilestonesForProject(ctx context.Context, projectID int) ([]Milestone, error)
	UpdateMilestoneStatus(ctx context.Context, id int, status MilestoneStatus, submittedAt *time.Time) error

	CreateReview(ctx context.Context, r *Review) error
	ReviewExists(ctx context.Context, projectID, reviewerID, revieweeID int) (bool, error)
	ListReviewsForUser(ctx context.Context, revieweeID int) ([]Review, error)
}

type Storage struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db, ext: db}
}

// InTx runs fn against a transaction-bound Storage. Any error from fn rolls
// the transaction back; a caller disconnect cancels ctx and aborts it too.
func (s *Storage) InTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.ext.(*sqlx.Tx); ok {
		// Already inside a transaction.
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	txStore := &Storage{db: s.db, ext: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// User roles
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateUser(ctx context.Context, u *User) error {
	query := `
        INSERT INTO users (name, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return s.ext.QueryRowxContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Role).
		Scan(&u.ID, &u.CreatedAt)
}

func (s *Storage) GetUser(ctx context.Context, id int) (*User, error) {
	u := &User{}
	query := `SELECT * FROM users WHERE id=$1`
	err := sqlx.GetContext(ctx, s.ext, u, query, id)
	return u, err
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	query := `SELECT * FROM users WHERE email=$1`
	err := sqlx.GetContext(ctx, s.ext, u, query, email)
	return u, err
}

func (s *Storage) UpdateUserProfile(ctx context.Context, id int, name, email string) error {
	query := `UPDATE users SET name=$1, email=$2 WHERE id=$3`
	_, err := s.ext.ExecContext(ctx, query, name, email, id)
	return err
}

func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	query := `SELECT * FROM users ORDER BY id ASC LIMIT $1 OFFSET $2`
	users := []User{}
	err := sqlx.SelectContext(ctx, s.ext, &users, query, limit, offset)
	return users, err
}

// Project lifecycle: open -> in_progress -> completed, never backward.
type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
)

type Project struct {
	ID          int           `db:"id" json:"id"`
	ClientID    int           `db:"client_id" json:"clientId"`
	Title       string        `db:"title" json:"title"`
	Description string        `db:"description" json:"description"`
	Budget      float64       `db:"budget" json:"budget"`
	Status      ProjectStatus `db:"status" json:"status"`
	Deadline    *time.Time    `db:"deadline" json:"deadline,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateProject(ctx context.Context, p *Project) error {
	query := `
        INSERT INTO projects (client_id, title, description, budget, status, deadline)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	return s.ext.QueryRowxContext(ctx, query,
		p.ClientID, p.Title, p.Description, p.Budget, p.Status, p.Deadline).
		Scan(&p.ID, &p.CreatedAt)
}

func (s *Storage) GetProject(ctx context.Context, id int) (*Project, error) {
	p := &Project{}
	query := `SELECT * FROM projects WHERE id=$1`
	err := sqlx.GetContext(ctx, s.ext, p, query, id)
	return p, err
}

// GetProjectForUpdate locks the project row for the rest of the enclosing
// transaction. The project row is the serialization point for award and
// close operations.
func (s *Storage) GetProjectForUpdate(ctx context.Context, id int) (*Project, error) {
	p := &Project{}
	query := `SELECT * FROM projects WHERE id=$1 FOR UPDATE`
	err := sqlx.GetContext(ctx, s.ext, p, query, id)
	return p, err
}

func (s *Storage) UpdateProjectStatus(ctx context.Context, id int, status ProjectStatus) error {
	query := `UPDATE projects SET status=$1 WHERE id=$2`
	_, err := s.ext.ExecContext(ctx, query, status, id)
	return err
}

// UpdateProjectDetails edits the client-owned fields. Status never changes
// here; only the award and close operations move it.
func (s *Storage) UpdateProjectDetails(ctx context.Context, id int, title, description string, budget float64) error {
	query := `UPDATE projects SET title=$1, description=$2, budget=$3 WHERE id=$4`
	_, err := s.ext.ExecContext(ctx, query, title, description, budget, id)
	return err
}

func (s *Storage) ListOpenProjects(ctx context.Context, limit, offset int) ([]Project, error) {
	query := `
        SELECT * FROM projects
        WHERE status='open'
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`
	projects := []Project{}
	err := sqlx.SelectContext(ctx, s.ext, &projects, query, limit, offset)
	return projects, err
}

func (s *Storage) ListProjectsByClient(ctx context.Context, clientID int) ([]Project, error) {
	query := `SELECT * FROM projects WHERE client_id=$1 ORDER BY created_at DESC`
	projects := []Project{}
	err := sqlx.SelectContext(ctx, s.ext, &projects, query, clientID)
	return projects, err
}

func (s *Storage) ListAllProjects(ctx context.Context, limit, offset int) ([]Project, error) {
	query := `SELECT * FROM projects ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	projects := []Project{}
	err := sqlx.SelectContext(ctx, s.ext, &projects, query, limit, offset)
	return projects, err
}

// Bid lifecycle: pending, then accepted or rejected by the award.
type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

type Bid struct {
	ID           int       `db:"id" json:"id"`
	ProjectID    int       `db:"project_id" json:"projectId"`
	FreelancerID int       `db:"freelancer_id" json:"freelancerId"`
	Amount       float64   `db:"amount" json:"amount"`
	CoverLetter  string    `db:"cover_letter" json:"coverLetter"`
	DeliveryTime string    `db:"delivery_time" json:"deliveryTime,omitempty"`
	Status       BidStatus `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateBid(ctx context.Context, b *Bid) error {
	query := `
        INSERT INTO bids (project_id, freelancer_id, amount, cover_letter, delivery_time, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	return s.ext.QueryRowxContext(ctx, query,
		b.ProjectID, b.FreelancerID, b.Amount, b.CoverLetter, b.DeliveryTime, b.Status).
		Scan(&b.ID, &b.CreatedAt)
}

func (s *Storage) GetBid(ctx context.Context, id int) (*Bid, error) {
	b := &Bid{}
	query := `SELECT * FROM bids WHERE id=$1`
	err := sqlx.GetContext(ctx, s.ext, b, query, id)
	return b, err
}

func (s *Storage) GetBidByProjectAndFreelancer(ctx context.Context, projectID, freelancerID int) (*Bid, error) {
	b := &Bid{}
	query := `SELECT * FROM bids WHERE project_id=$1 AND freelancer_id=$2`
	err := sqlx.GetContext(ctx, s.ext, b, query, projectID, freelancerID)
	return b, err
}

func (s *Storage) GetAcceptedBid(ctx context.Context, projectID int) (*Bid, error) {
	b := &Bid{}
	query := `SELECT * FROM bids WHERE project_id=$1 AND status='accepted'`
	err := sqlx.GetContext(ctx, s.ext, b, query, projectID)
	return b, err
}

func (s *Storage) ListBidsForProject(ctx context.Context, projectID int) ([]Bid, error) {
	query := `SELECT * FROM bids WHERE project_id=$1 ORDER BY created_at ASC`
	bids := []Bid{}
	err := sqlx.SelectContext(ctx, s.ext, &bids, query, projectID)
	return bids, err
}

func (s *Storage) ListBidsByFreelancer(ctx context.Context, freelancerID int) ([]Bid, error) {
	query := `SELECT * FROM bids WHERE freelancer_id=$1 ORDER BY created_at DESC`
	bids := []Bid{}
	err := sqlx.SelectContext(ctx, s.ext, &bids, query, freelancerID)
	return bids, err
}

func (s *Storage) UpdateBidStatus(ctx context.Context, id int, status BidStatus) error {
	query := `UPDATE bids SET status=$1 WHERE id=$2`
	_, err := s.ext.ExecContext(ctx, query, status, id)
	return err
}

// RejectPendingBids marks every still-pending bid on the project rejected,
// except the one being accepted.
func (s *Storage) RejectPendingBids(ctx context.Context, projectID, exceptBidID int) error {
	query := `UPDATE bids SET status='rejected' WHERE project_id=$1 AND id <> $2 AND status='pending'`
	_, err := s.ext.ExecContext(ctx, query, projectID, exceptBidID)
	return err
}

// DeletePendingBid removes the bid only while it is still pending, so a
// withdraw can never race an in-flight award into deleting an accepted bid.
// Returns false when no pending row matched.
func (s *Storage) DeletePendingBid(ctx context.Context, id int) (bool, error) {
	query := `DELETE FROM bids WHERE id=$1 AND status='pending'`
	res, err := s.ext.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Milestone lifecycle: pending -> submitted -> completed | rejected.
type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "pending"
	MilestoneSubmitted MilestoneStatus = "submitted"
	MilestoneCompleted MilestoneStatus = "completed"
	MilestoneRejected  MilestoneStatus = "rejected"
)

type Milestone struct {
	ID          int             `db:"id" json:"id"`
	ProjectID   int             `db:"project_id" json:"projectId"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Amount      float64         `db:"amount" json:"amount"`
	Status      MilestoneStatus `db:"status" json:"status"`
	DueDate     *time.Time      `db:"due_date" json:"dueDate,omitempty"`
	SubmittedAt *time.Time      `db:"submitted_at" json:"submittedAt,omitempty"`
}

func (s *Storage) CreateMilestone(ctx context.Context, m *Milestone) error {
	query := `
        INSERT INTO milestones (project_id, title, description, amount, status, due_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`
	return s.ext.QueryRowxContext(ctx, query,
		m.ProjectID, m.Title, m.Description, m.Amount, m.Status, m.DueDate).
		Scan(&m.ID)
}

func (s *Storage) GetMilestone(ctx context.Context, id int) (*Milestone, error) {
	m := &Milestone{}
	query := `SELECT * FROM milestones WHERE id=$1`
	err := sqlx.GetContext(ctx, s.ext, m, query, id)
	return m, err
}

func (s *Storage) ListMilestonesForProject(ctx context.Context, projectID int) ([]Milestone, error) {
	query := `SELECT * FROM milestones WHERE project_id=$1 ORDER BY id ASC`
	milestones := []Milestone{}
	err := sqlx.SelectContext(ctx, s.ext, &milestones, query, projectID)
	return milestones, err
}

func (s *Storage) UpdateMilestoneStatus(ctx context.Context, id int, status MilestoneStatus, submittedAt *time.Time) error {
	query := `UPDATE milestones SET status=$1, submitted_at=COALESCE($2, submitted_at) WHERE id=$3`
	_, err := s.ext.ExecContext(ctx, query, status, submittedAt, id)
	return err
}

type Review struct {
	ID         int       `db:"id" json:"id"`
	ProjectID  int       `db:"project_id" json:"projectId"`
	ReviewerID int       `db:"reviewer_id" json:"reviewerId"`
	RevieweeID int       `db:"reviewee_id" json:"revieweeId"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateReview(ctx context.Context, r *Review) error {
	query := `
        INSERT INTO reviews (project_id, reviewer_id, reviewee_id, rating, comment)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	return s.ext.QueryRowxContext(ctx, query,
		r.ProjectID, r.ReviewerID, r.RevieweeID, r.Rating, r.Comment).
		Scan(&r.ID, &r.CreatedAt)
}

func (s *Storage) ReviewExists(ctx context.Context, projectID, reviewerID, revieweeID int) (bool, error) {
	var count int
	query := `SELECT COUNT(1) FROM reviews WHERE project_id=$1 AND reviewer_id=$2 AND reviewee_id=$3`
	err := sqlx.GetContext(ctx, s.ext, &count, query, projectID, reviewerID, revieweeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Storage) ListReviewsForUser(ctx context.Context, revieweeID int) ([]Review, error) {
	query := `SELECT * FROM reviews WHERE reviewee_id=$1 ORDER BY created_at DESC`
	reviews := []Review{}
	err := sqlx.SelectContext(ctx, s.ext, &reviews, query, revieweeID)
	return reviews, err
}
