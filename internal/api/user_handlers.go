package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns all user accounts. Admin only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Description: "Returns a user by ID. Admin only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "setUserRole",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}/role",
		Summary:     "Set user role",
		Description: "Changes a user's role. Admins may not change their own role or demote the last admin.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetUserRole)

	huma.Register(s.api, huma.Operation{
		OperationID: "setUserStatus",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}/status",
		Summary:     "Set user status",
		Description: "Activates or deactivates an account. Admins may not change their own status.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetUserStatus)
}

// === DTOs ===

// ListUsersInput contains parameters for listing users.
type ListUsersInput struct {
	Authorization string `header:"Authorization"`
}

// ListUsersResponse contains all user accounts.
type ListUsersResponse struct {
	Users []UserResponse `json:"users" doc:"All user accounts"`
}

// ListUsersOutput wraps the user listing for Huma.
type ListUsersOutput struct {
	Body ListUsersResponse
}

// GetUserInput contains parameters for getting a user.
type GetUserInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
}

// SetRoleRequest is the request body for changing a user's role.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin" doc:"New role"`
}

// SetRoleInput wraps the role change request for Huma.
type SetRoleInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
	Body          SetRoleRequest
}

// SetStatusRequest is the request body for toggling an account.
type SetStatusRequest struct {
	Active bool `json:"active" doc:"Whether the account may log in"`
}

// SetStatusInput wraps the status change request for Huma.
type SetStatusInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
	Body          SetStatusRequest
}

// === Handlers ===

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapUserResponse(u)
	}

	return &ListUsersOutput{Body: ListUsersResponse{Users: resp}}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	user, err := s.services.Admin.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleSetUserRole(ctx context.Context, input *SetRoleInput) (*UserOutput, error) {
	admin, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Admin.SetRole(ctx, admin.ID, input.ID, domain.Role(input.Body.Role))
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleSetUserStatus(ctx context.Context, input *SetStatusInput) (*UserOutput, error) {
	admin, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Admin.SetActive(ctx, admin.ID, input.ID, input.Body.Active)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}
