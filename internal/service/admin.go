package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// AdminService handles admin-only user management operations.
type AdminService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(st *store.Store, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:  st,
		logger: logger,
	}
}

// ListUsers returns all users.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser returns a user by ID.
func (s *AdminService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// SetRole changes a user's role. Admins cannot change their own role, and
// the last admin cannot be demoted.
func (s *AdminService) SetRole(ctx context.Context, adminID, targetID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domainerrors.Validation("role must be user or admin")
	}
	if adminID == targetID {
		return nil, domainerrors.Forbidden("cannot change your own role")
	}

	user, err := s.store.Users.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.Role == role {
		return user, nil
	}

	if user.IsAdmin() && role == domain.RoleUser {
		if err := s.ensureOtherAdminExists(ctx, targetID); err != nil {
			return nil, err
		}
	}

	user.Role = role
	user.Touch()

	if err := s.store.Users.Update(ctx, targetID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user role changed",
		"admin_id", adminID,
		"user_id", targetID,
		"role", role,
	)

	return user, nil
}

// SetActive toggles a user's active flag. Admins cannot deactivate
// themselves.
func (s *AdminService) SetActive(ctx context.Context, adminID, targetID string, active bool) (*domain.User, error) {
	if adminID == targetID {
		return nil, domainerrors.Forbidden("cannot change your own account status")
	}

	user, err := s.store.Users.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.Active == active {
		return user, nil
	}

	user.Active = active
	user.Touch()

	if err := s.store.Users.Update(ctx, targetID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user status changed",
		"admin_id", adminID,
		"user_id", targetID,
		"active", active,
	)

	return user, nil
}

// ensureOtherAdminExists checks that at least one admin besides the target
// remains.
func (s *AdminService) ensureOtherAdminExists(ctx context.Context, excludeUserID string) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		if u.ID != excludeUserID && u.IsAdmin() {
			return nil
		}
	}

	return domainerrors.Forbidden("cannot demote the last admin")
}
