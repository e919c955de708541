package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// ReviewService handles review creation, deletion, and listing. The store
// keeps a book's averageRating and reviewCount in the same transaction as
// every review write, so this service never touches those fields.
type ReviewService struct {
	store     *store.Store
	recorder  *ActivityRecorder
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	st *store.Store,
	recorder *ActivityRecorder,
	validator *validation.Validator,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		store:     st,
		recorder:  recorder,
		validator: validator,
		logger:    logger,
	}
}

// CreateReviewRequest contains the data for a new review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ReviewWithUser is a review joined with the reviewer's display name.
type ReviewWithUser struct {
	*domain.Review
	UserName string `json:"user_name,omitempty"`
}

// CreateReview validates and persists a review. The store rejects a second
// review from the same user for the same book and recomputes the book's
// rating in the same transaction.
func (s *ReviewService) CreateReview(ctx context.Context, user *domain.User, bookID string, req CreateReviewRequest) (*domain.Review, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reviewID, err := id.Generate("rev")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Record:  domain.Record{ID: reviewID},
		BookID:  bookID,
		UserID:  user.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		switch {
		case errors.Is(err, store.ErrBookNotFound):
			return nil, domainerrors.NotFound("book not found")
		case errors.Is(err, store.ErrDuplicateReview):
			return nil, domainerrors.Conflict("you have already reviewed this book")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	// Best-effort activity; the review and rating are already committed.
	if book, err := s.store.GetBook(ctx, bookID); err == nil {
		s.recorder.ReviewAdded(user, book)
	}

	s.logger.Info("review created",
		"review_id", review.ID,
		"book_id", bookID,
		"user_id", user.ID,
		"rating", req.Rating,
	)

	return review, nil
}

// DeleteReview removes a review and recomputes the book's rating in the
// same transaction. Only the reviewer or an admin may delete.
func (s *ReviewService) DeleteReview(ctx context.Context, actor *domain.User, bookID, reviewID string) error {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return domainerrors.NotFound("review not found")
		}
		return fmt.Errorf("get review: %w", err)
	}

	// The route nests reviews under a book; a mismatched pair is a 404,
	// not a hint that the review exists elsewhere.
	if review.BookID != bookID {
		return domainerrors.NotFound("review not found")
	}

	if review.UserID != actor.ID && !actor.IsAdmin() {
		return domainerrors.Forbidden("only the reviewer or an admin can delete this review")
	}

	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return domainerrors.NotFound("review not found")
		}
		return fmt.Errorf("delete review: %w", err)
	}

	s.logger.Info("review deleted",
		"review_id", reviewID,
		"book_id", bookID,
		"actor_id", actor.ID,
	)

	return nil
}

// ListReviews returns a page of a book's reviews, newest first, each joined
// with the reviewer's name.
func (s *ReviewService) ListReviews(ctx context.Context, bookID string, page, limit int) (*store.PagedResult[*ReviewWithUser], error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	params := store.PageParams{Page: page, Limit: limit}
	result, err := s.store.ListReviewsByBook(ctx, bookID, params)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	// Names resolve per unique reviewer; a page rarely has more than a
	// handful of distinct users.
	names := make(map[string]string)
	items := make([]*ReviewWithUser, len(result.Items))
	for i, review := range result.Items {
		name, ok := names[review.UserID]
		if !ok {
			if user, err := s.store.Users.Get(ctx, review.UserID); err == nil {
				name = user.Name
			}
			names[review.UserID] = name
		}
		items[i] = &ReviewWithUser{Review: review, UserName: name}
	}

	return &store.PagedResult[*ReviewWithUser]{
		Items:       items,
		Total:       result.Total,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
	}, nil
}
