package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

func TestAnalytics_Dashboard_Empty(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	dashboard, err := env.Analytics.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dashboard.TotalBooks)
	assert.Equal(t, 0, dashboard.TotalUsers)
	assert.Equal(t, 0, dashboard.TotalReviews)
	assert.Empty(t, dashboard.RecentActivities)
	assert.Empty(t, dashboard.TopRatedBooks)
}

func TestAnalytics_Dashboard(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	reviewer := mustCreateUser(t, env, newTestUser("user-rev", "Bob", domain.RoleUser))

	good, err := env.Catalog.CreateBook(ctx, owner, CreateBookRequest{
		Title:    "Good Book",
		Author:   "Author",
		Price:    10,
		Category: "fiction",
		Tags:     []string{"fiction"},
	})
	require.NoError(t, err)
	better, err := env.Catalog.CreateBook(ctx, owner, CreateBookRequest{
		Title:    "Better Book",
		Author:   "Author",
		Price:    10,
		Category: "fiction",
		Tags:     []string{"fiction"},
	})
	require.NoError(t, err)

	_, err = env.Reviews.CreateReview(ctx, reviewer, good.ID, CreateReviewRequest{Rating: 3})
	require.NoError(t, err)
	_, err = env.Reviews.CreateReview(ctx, reviewer, better.ID, CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	env.drainRecorder()

	dashboard, err := env.Analytics.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, dashboard.TotalBooks)
	assert.Equal(t, 2, dashboard.TotalUsers)
	assert.Equal(t, 2, dashboard.TotalReviews)
	assert.Equal(t, 2, dashboard.NewBooksThisWeek)
	assert.Equal(t, 2, dashboard.BooksByCategory["fiction"])

	// 2 book_added + 2 review_added, newest first
	require.Len(t, dashboard.RecentActivities, 4)
	assert.Equal(t, domain.ActivityReviewAdded, dashboard.RecentActivities[0].Type)

	require.Len(t, dashboard.TopRatedBooks, 2)
	assert.Equal(t, "Better Book", dashboard.TopRatedBooks[0].Title)
	assert.Equal(t, 5.0, dashboard.TopRatedBooks[0].AverageRating)
}

func TestAnalytics_Dashboard_RollingWeekWindow(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))

	// Records older than seven days count toward totals but not the
	// this-week figures.
	old := time.Now().AddDate(0, 0, -10)
	oldBook := &domain.Book{
		Record:   domain.Record{ID: "book-old", CreatedAt: old, UpdatedAt: old},
		Title:    "Old Stock",
		Author:   "Test Author",
		Price:    5,
		Category: "fiction",
		OwnerID:  owner.ID,
	}
	require.NoError(t, env.Store.CreateBook(ctx, oldBook))

	oldUser := newTestUser("user-old", "Carol", domain.RoleUser)
	oldUser.CreatedAt = old
	oldUser.UpdatedAt = old
	require.NoError(t, env.Store.Users.Create(ctx, oldUser.ID, oldUser))

	mustCreateBook(t, env, owner, "New Arrival")

	dashboard, err := env.Analytics.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.TotalBooks)
	assert.Equal(t, 1, dashboard.NewBooksThisWeek)
	assert.Equal(t, 2, dashboard.TotalUsers)
	assert.Equal(t, 1, dashboard.NewUsersThisWeek)
}

func TestAnalytics_Dashboard_ExcludesUnratedFromTop(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	mustCreateBook(t, env, owner, "Unrated Book")

	dashboard, err := env.Analytics.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dashboard.TopRatedBooks)
}

func TestAnalytics_UserActivity(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	book := mustCreateBook(t, env, owner, "Tracked Book")
	require.NoError(t, env.Catalog.DeleteBook(ctx, owner, book.ID))

	env.drainRecorder()

	entries, err := env.Analytics.UserActivity(ctx, domain.PeriodToday, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first: delete happened after add
	assert.Equal(t, domain.ActivityBookDeleted, entries[0].Type)
	assert.Equal(t, domain.ActivityBookAdded, entries[1].Type)
	assert.Contains(t, entries[0].Description, "Alice")
	assert.Contains(t, entries[0].Description, "Tracked Book")
}

func TestAnalytics_UserActivity_TypeFilter(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	book := mustCreateBook(t, env, owner, "Filtered Book")
	require.NoError(t, env.Catalog.DeleteBook(ctx, owner, book.ID))

	env.drainRecorder()

	// Case-insensitive substring match
	entries, err := env.Analytics.UserActivity(ctx, domain.PeriodAll, "DELETED")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActivityBookDeleted, entries[0].Type)
}

func TestAnalytics_UserActivity_InvalidPeriod(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, err := env.Analytics.UserActivity(context.Background(), "fortnight", "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestAnalytics_UserActivity_EmptyPeriodDefaultsToAll(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	entries, err := env.Analytics.UserActivity(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
