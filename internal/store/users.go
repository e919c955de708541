package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// User operations beyond the generic Entity CRUD.

// ListUsers returns all users sorted by the store's key order.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// CountUsers returns the total number of user accounts.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	return s.Users.Count(ctx)
}

// CountUsersCreatedSince returns how many users registered at or after the cutoff.
func (s *Store) CountUsersCreatedSince(ctx context.Context, cutoff time.Time) (int, error) {
	count := 0
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			return 0, fmt.Errorf("count users since: %w", err)
		}
		if !user.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

// normalizeEmail normalizes an email address for consistent lookups.
// Lowercases and trims whitespace.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
