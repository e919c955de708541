package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)
	ts.registerUser(t, "Alice", "alice@example.com")

	resp := ts.api.Get("/api/v1/users", "Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body ListUsersResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Users, 2)
}

func TestListUsers_NonAdminForbidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerUser(t, "Alice", "alice@example.com")

	resp := ts.api.Get("/api/v1/users", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestGetUser(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)
	_, alice := ts.registerUser(t, "Alice", "alice@example.com")

	resp := ts.api.Get("/api/v1/users/"+alice.ID, "Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Alice", body.Name)
}

func TestGetUser_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)

	resp := ts.api.Get("/api/v1/users/user-missing", "Authorization: Bearer "+adminToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSetUserRole(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)
	_, alice := ts.registerUser(t, "Alice", "alice@example.com")

	resp := ts.api.Patch("/api/v1/users/"+alice.ID+"/role",
		"Authorization: Bearer "+adminToken,
		map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "admin", body.Role)
}

func TestSetUserRole_SelfForbidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)

	resp := ts.api.Patch("/api/v1/users/"+admin.ID+"/role",
		"Authorization: Bearer "+adminToken,
		map[string]any{"role": "user"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestSetUserRole_InvalidRole(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)
	_, alice := ts.registerUser(t, "Alice", "alice@example.com")

	resp := ts.api.Patch("/api/v1/users/"+alice.ID+"/role",
		"Authorization: Bearer "+adminToken,
		map[string]any{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSetUserStatus(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)
	_, alice := ts.registerUser(t, "Alice", "alice@example.com")

	resp := ts.api.Patch("/api/v1/users/"+alice.ID+"/status",
		"Authorization: Bearer "+adminToken,
		map[string]any{"active": false})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.Active)
}

func TestSetUserStatus_SelfForbidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)

	resp := ts.api.Patch("/api/v1/users/"+admin.ID+"/status",
		"Authorization: Bearer "+adminToken,
		map[string]any{"active": false})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
