package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"freelancehub/db"
)

func validRole(role db.Role) bool {
	switch role {
	case db.RoleClient, db.RoleFreelancer, db.RoleAdmin:
		return true
	}
	return false
}

// RegisterUser creates an account with a bcrypt-hashed password. The role
// is fixed at creation and never changes afterwards.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string, role db.Role) (*db.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", ErrInvalidInput)
	}
	if !validRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrInvalidInput)
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &db.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		return nil, err
	}

	s.log.Info("user registered", zap.Int("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Profile returns the user together with the reviews they have received.
func (s *Service) Profile(ctx context.Context, userID int) (*db.User, []db.Review, error) {
	u, err := s.requester(ctx, s.store, userID)
	if err != nil {
		return nil, nil, err
	}
	reviews, err := s.store.ListReviewsForUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list reviews: %w", err)
	}
	return u, reviews, nil
}

// UpdateProfile edits the caller's own name and email. Role and password are
// untouched; role never changes after registration.
func (s *Service) UpdateProfile(ctx context.Context, userID int, name, email string) (*db.User, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required: %w", ErrInvalidInput)
	}

	var updated *db.User
	err := s.store.InTx(ctx, func(tx db.Store) error {
		u, err := s.requester(ctx, tx, userID)
		if err != nil {
			return err
		}

		if err := tx.UpdateUserProfile(ctx, userID, name, email); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("email already registered: %w", ErrConflict)
			}
			return err
		}
		u.Name = name
		u.Email = email
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("profile updated", zap.Int("user_id", userID))
	return updated, nil
}

// Authenticate verifies credentials and returns the user. Bad email and bad
// password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invalid email or password: %w", ErrForbidden)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid email or password: %w", ErrForbidden)
	}
	return u, nil
}
