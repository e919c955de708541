package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "List reviews",
		Description: "Returns a book's reviews, newest first, with reviewer names",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "createReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "Create review",
		Description: "Adds a review for a book. Each user may review a book once.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/reviews/{reviewID}",
		Summary:     "Delete review",
		Description: "Deletes a review. Only the reviewer or an admin may delete.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)
}

// === DTOs ===

// ReviewResponse contains review data in API responses.
type ReviewResponse struct {
	ID        string    `json:"id" doc:"Review ID"`
	BookID    string    `json:"book_id" doc:"Reviewed book ID"`
	UserID    string    `json:"user_id" doc:"Reviewer's user ID"`
	UserName  string    `json:"user_name,omitempty" doc:"Reviewer's display name"`
	Rating    int       `json:"rating" doc:"Rating from 1 to 5"`
	Comment   string    `json:"comment,omitempty" doc:"Review text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListReviewsInput contains parameters for listing a book's reviews.
type ListReviewsInput struct {
	ID    string `path:"id" doc:"Book ID"`
	Page  int    `query:"page" default:"1" doc:"1-based page number"`
	Limit int    `query:"limit" default:"10" doc:"Items per page, max 100"`
}

// ListReviewsResponse contains a page of reviews.
type ListReviewsResponse struct {
	Reviews     []ReviewResponse `json:"reviews" doc:"Reviews on this page"`
	Total       int              `json:"total" doc:"Total reviews for the book"`
	TotalPages  int              `json:"total_pages" doc:"Total page count"`
	CurrentPage int              `json:"current_page" doc:"Current page number"`
}

// ListReviewsOutput wraps the review listing for Huma.
type ListReviewsOutput struct {
	Body ListReviewsResponse
}

// CreateReviewRequest is the request body for creating a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5" doc:"Rating from 1 to 5"`
	Comment string `json:"comment,omitempty" validate:"max=2000" doc:"Review text"`
}

// CreateReviewInput wraps the create review request for Huma.
type CreateReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          CreateReviewRequest
}

// ReviewOutput wraps a review response for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// DeleteReviewInput contains parameters for deleting a review.
type DeleteReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	ReviewID      string `path:"reviewID" doc:"Review ID"`
}

// === Handlers ===

func (s *Server) handleListReviews(ctx context.Context, input *ListReviewsInput) (*ListReviewsOutput, error) {
	result, err := s.services.Reviews.ListReviews(ctx, input.ID, input.Page, input.Limit)
	if err != nil {
		return nil, err
	}

	reviews := make([]ReviewResponse, len(result.Items))
	for i, r := range result.Items {
		reviews[i] = ReviewResponse{
			ID:        r.ID,
			BookID:    r.BookID,
			UserID:    r.UserID,
			UserName:  r.UserName,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
	}

	return &ListReviewsOutput{
		Body: ListReviewsResponse{
			Reviews:     reviews,
			Total:       result.Total,
			TotalPages:  result.TotalPages,
			CurrentPage: result.CurrentPage,
		},
	}, nil
}

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Reviews.CreateReview(ctx, user, input.ID, service.CreateReviewRequest{
		Rating:  input.Body.Rating,
		Comment: input.Body.Comment,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{
		Body: ReviewResponse{
			ID:        review.ID,
			BookID:    review.BookID,
			UserID:    review.UserID,
			UserName:  user.Name,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
			UpdatedAt: review.UpdatedAt,
		},
	}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *DeleteReviewInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reviews.DeleteReview(ctx, user, input.ID, input.ReviewID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Review deleted"}}, nil
}
