package storage

import (
	"context"
	"fmt"

	"crowdfund-platform/internal/models"
)

const userColumns = `id, name, email, mobile, password_hash, created_at`

// CreateUser inserts u. A clash on email or mobile maps to the matching
// duplicate error.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = timestamp(u.CreatedAt)
	query := `INSERT INTO users (id, name, email, mobile, password_hash, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		u.ID, u.Name, u.Email, u.Mobile, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if detail, ok := uniqueViolation(err); ok {
			if contains(detail, "mobile") {
				return models.ErrDuplicateMobile
			}
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("storage: insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	if err := s.db.GetContext(ctx, &u, s.db.Rebind(query), id); err != nil {
		return nil, notFound(err, "user "+id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	if err := s.db.GetContext(ctx, &u, s.db.Rebind(query), email); err != nil {
		return nil, notFound(err, "user by email")
	}
	return &u, nil
}

func (s *Store) MobileTaken(ctx context.Context, mobile string) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM users WHERE mobile = ?`
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(query), mobile); err != nil {
		return false, fmt.Errorf("storage: check mobile: %w", err)
	}
	return n > 0, nil
}
