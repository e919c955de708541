package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

func TestReviews_CreateReview(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	reviewer := mustCreateUser(t, env, newTestUser("user-rev", "Bob", domain.RoleUser))
	book := mustCreateBook(t, env, owner, "Reviewed Book")

	ctx := context.Background()
	review, err := env.Reviews.CreateReview(ctx, reviewer, book.ID, CreateReviewRequest{
		Rating:  5,
		Comment: "Loved it",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, book.ID, review.BookID)
	assert.Equal(t, "user-rev", review.UserID)

	// Book aggregate updated by the same transaction
	detail, err := env.Catalog.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, detail.AverageRating)
	assert.Equal(t, 1, detail.ReviewCount)
}

func TestReviews_CreateReview_InvalidRating(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	book := mustCreateBook(t, env, owner, "Strict Book")

	_, err := env.Reviews.CreateReview(context.Background(), owner, book.ID, CreateReviewRequest{
		Rating: 6,
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestReviews_CreateReview_BookMissing(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	reviewer := mustCreateUser(t, env, newTestUser("user-rev", "Bob", domain.RoleUser))

	_, err := env.Reviews.CreateReview(context.Background(), reviewer, "missing", CreateReviewRequest{
		Rating: 3,
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestReviews_CreateReview_Duplicate(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	reviewer := mustCreateUser(t, env, newTestUser("user-rev", "Bob", domain.RoleUser))
	book := mustCreateBook(t, env, owner, "Once Only")

	ctx := context.Background()
	_, err := env.Reviews.CreateReview(ctx, reviewer, book.ID, CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = env.Reviews.CreateReview(ctx, reviewer, book.ID, CreateReviewRequest{Rating: 2})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestReviews_DeleteReview_ByReviewer(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	reviewer := mustCreateUser(t, env, newTestUser("user-rev", "Bob", domain.RoleUser))
	book := mustCreateBook(t, env, owner, "Changed My Mind")

	ctx := context.Background()
	review, err := env.Reviews.CreateReview(ctx, reviewer, book.ID, CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	require.NoError(t, env.Reviews.DeleteReview(ctx, reviewer, book.ID, review.ID))

	detail, err := env.Catalog.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, detail.AverageRating)
	assert.Equal(t, 0, detail.ReviewCount)
}

func TestReviews_DeleteReview_StrangerForbidden(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	reviewer := mustCreateUser(t, env, newTestUser("user-rev", "Bob", domain.RoleUser))
	stranger := mustCreateUser(t, env, newTestUser("user-other", "Carol", domain.RoleUser))
	book := mustCreateBook(t, env, owner, "Contested")

	ctx := context.Background()
	review, err := env.Reviews.CreateReview(ctx, reviewer, book.ID, CreateReviewRequest{Rating: 1})
	require.NoError(t, err)

	err = env.Reviews.DeleteReview(ctx, stranger, book.ID, review.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
}

func TestReviews_DeleteReview_AdminAllowed(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	reviewer := mustCreateUser(t, env, newTestUser("user-rev", "Bob", domain.RoleUser))
	admin := mustCreateUser(t, env, newTestUser("user-admin", "Root", domain.RoleAdmin))
	book := mustCreateBook(t, env, owner, "Moderated")

	ctx := context.Background()
	review, err := env.Reviews.CreateReview(ctx, reviewer, book.ID, CreateReviewRequest{Rating: 1})
	require.NoError(t, err)

	require.NoError(t, env.Reviews.DeleteReview(ctx, admin, book.ID, review.ID))
}

func TestReviews_DeleteReview_WrongBook(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	reviewer := mustCreateUser(t, env, newTestUser("user-rev", "Bob", domain.RoleUser))
	bookA := mustCreateBook(t, env, owner, "Book A")
	bookB := mustCreateBook(t, env, owner, "Book B")

	ctx := context.Background()
	review, err := env.Reviews.CreateReview(ctx, reviewer, bookA.ID, CreateReviewRequest{Rating: 3})
	require.NoError(t, err)

	err = env.Reviews.DeleteReview(ctx, reviewer, bookB.ID, review.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestReviews_ListReviews_WithUserNames(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	owner := mustCreateUser(t, env, newTestUser("user-owner", "Alice", domain.RoleUser))
	book := mustCreateBook(t, env, owner, "Popular Book")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		reviewer := mustCreateUser(t, env, newTestUser(fmt.Sprintf("user-%03d", i), fmt.Sprintf("Reader %d", i), domain.RoleUser))
		_, err := env.Reviews.CreateReview(ctx, reviewer, book.ID, CreateReviewRequest{Rating: 4})
		require.NoError(t, err)
	}

	result, err := env.Reviews.ListReviews(ctx, book.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, 1, result.CurrentPage)
	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		assert.NotEmpty(t, item.UserName)
	}
}

func TestReviews_ListReviews_BookMissing(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, err := env.Reviews.ListReviews(context.Background(), "missing", 1, 10)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
