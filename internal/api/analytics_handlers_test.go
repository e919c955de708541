package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerUser(t, "Alice", "alice@example.com")

	resp := ts.api.Get("/api/v1/analytics/dashboard", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestDashboard(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)

	userToken, _ := ts.registerUser(t, "Alice", "alice@example.com")
	book := ts.createBook(t, userToken, "Catalog Star")

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
		"Authorization: Bearer "+adminToken,
		map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Flush the async recorder so snapshot-backed numbers are visible.
	ts.recorder.Close()

	resp = ts.api.Get("/api/v1/analytics/dashboard", "Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body DashboardResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.Equal(t, 1, body.TotalBooks)
	assert.Equal(t, 2, body.TotalUsers)
	assert.Equal(t, 1, body.TotalReviews)
	assert.Equal(t, 1, body.NewBooksThisWeek)
	assert.Equal(t, 2, body.NewUsersThisWeek)
	assert.NotEmpty(t, body.RecentActivities)
	require.Len(t, body.TopRatedBooks, 1)
	assert.Equal(t, "Catalog Star", body.TopRatedBooks[0].Title)
	assert.Equal(t, 5.0, body.TopRatedBooks[0].AverageRating)
}

func TestUserActivity(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)

	userToken, _ := ts.registerUser(t, "Alice", "alice@example.com")
	ts.createBook(t, userToken, "Tracked Book")

	ts.recorder.Close()

	resp := ts.api.Get("/api/v1/analytics/user-activity?period=7days&actionType=book",
		"Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body UserActivityResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Activities, 1)
	assert.Equal(t, "book_added", body.Activities[0].Type)
	assert.Contains(t, body.Activities[0].Description, "Tracked Book")
}

func TestUserActivity_InvalidPeriod(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminToken, admin := ts.registerUser(t, "Root", "root@example.com")
	ts.promoteToAdmin(t, admin.ID)

	resp := ts.api.Get("/api/v1/analytics/user-activity?period=fortnight",
		"Authorization: Bearer "+adminToken)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUserActivity_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/analytics/user-activity")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
