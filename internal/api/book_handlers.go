package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a paginated catalog listing with text search, filters, and sorting",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID with its owner's display name",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a book to the catalog owned by the authenticated user",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates a book. Only the owner or an admin may edit.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book and all its reviews. Only the owner or an admin may delete.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID            string     `json:"id" doc:"Book ID"`
	Title         string     `json:"title" doc:"Title"`
	Description   string     `json:"description,omitempty" doc:"Description"`
	Author        string     `json:"author" doc:"Author"`
	Price         float64    `json:"price" doc:"Price in dollars"`
	Category      string     `json:"category" doc:"Category"`
	ISBN          string     `json:"isbn,omitempty" doc:"ISBN"`
	PublishedDate *time.Time `json:"published_date,omitempty" doc:"Publication date"`
	Language      string     `json:"language,omitempty" doc:"Language"`
	PageCount     int        `json:"page_count,omitempty" doc:"Page count"`
	Tags          []string   `json:"tags,omitempty" doc:"Tags"`
	CoverImageURL string     `json:"cover_image_url,omitempty" doc:"Cover image URL"`
	OwnerID       string     `json:"owner_id" doc:"Owning user ID"`
	OwnerName     string     `json:"owner_name,omitempty" doc:"Owning user's display name"`
	AverageRating float64    `json:"average_rating" doc:"Average review rating, 0 when unreviewed"`
	ReviewCount   int        `json:"review_count" doc:"Number of reviews"`
	CreatedAt     time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time  `json:"updated_at" doc:"Last update time"`
}

// ListBooksInput contains query parameters for the catalog listing.
type ListBooksInput struct {
	Query    string  `query:"q" doc:"Text search over title, author, and ISBN"`
	Category string  `query:"category" doc:"Exact category filter"`
	Tag      string  `query:"tag" doc:"Tag filter"`
	MinPrice float64 `query:"min_price" doc:"Minimum price, 0 means unbounded"`
	MaxPrice float64 `query:"max_price" doc:"Maximum price, 0 means unbounded"`
	Sort     string  `query:"sort" enum:"newest,oldest,price_low,price_high,title" default:"newest" doc:"Sort order"`
	Page     int     `query:"page" default:"1" doc:"1-based page number"`
	Limit    int     `query:"limit" default:"10" doc:"Items per page, max 100"`
}

// ListBooksResponse contains a page of books.
type ListBooksResponse struct {
	Items       []BookResponse `json:"items" doc:"Books on this page"`
	Total       int            `json:"total" doc:"Total matching books"`
	TotalPages  int            `json:"total_pages" doc:"Total page count"`
	CurrentPage int            `json:"current_page" doc:"Current page number"`
}

// ListBooksOutput wraps the listing response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title         string     `json:"title" validate:"required,max=300" doc:"Title"`
	Description   string     `json:"description,omitempty" validate:"max=5000" doc:"Description"`
	Author        string     `json:"author" validate:"required,max=200" doc:"Author"`
	Price         float64    `json:"price" validate:"gte=0" doc:"Price in dollars"`
	Category      string     `json:"category" validate:"required,max=100" doc:"Category"`
	ISBN          string     `json:"isbn,omitempty" validate:"max=20" doc:"ISBN"`
	PublishedDate *time.Time `json:"published_date,omitempty" doc:"Publication date"`
	Language      string     `json:"language,omitempty" validate:"max=50" doc:"Language"`
	PageCount     int        `json:"page_count,omitempty" validate:"gte=0" doc:"Page count"`
	Tags          []string   `json:"tags,omitempty" validate:"max=20,dive,max=50" doc:"Tags"`
	CoverImageURL string     `json:"cover_image_url,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// UpdateBookRequest is the request body for updating a book. Nil means unchanged.
type UpdateBookRequest struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,max=300" doc:"Title"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=5000" doc:"Description"`
	Author        *string    `json:"author,omitempty" validate:"omitempty,max=200" doc:"Author"`
	Price         *float64   `json:"price,omitempty" validate:"omitempty,gte=0" doc:"Price in dollars"`
	Category      *string    `json:"category,omitempty" validate:"omitempty,max=100" doc:"Category"`
	ISBN          *string    `json:"isbn,omitempty" validate:"omitempty,max=20" doc:"ISBN"`
	PublishedDate *time.Time `json:"published_date,omitempty" doc:"Publication date"`
	Language      *string    `json:"language,omitempty" validate:"omitempty,max=50" doc:"Language"`
	PageCount     *int       `json:"page_count,omitempty" validate:"omitempty,gte=0" doc:"Page count"`
	Tags          *[]string  `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50" doc:"Tags"`
	CoverImageURL *string    `json:"cover_image_url,omitempty" validate:"omitempty,url" doc:"Cover image URL, empty string clears it"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	result, err := s.services.Catalog.ListBooks(ctx, service.ListBooksParams{
		Query:    input.Query,
		Category: input.Category,
		Tag:      input.Tag,
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		Sort:     input.Sort,
		Page:     input.Page,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]BookResponse, len(result.Items))
	for i, book := range result.Items {
		items[i] = mapBookResponse(book, "")
	}

	return &ListBooksOutput{
		Body: ListBooksResponse{
			Items:       items,
			Total:       result.Total,
			TotalPages:  result.TotalPages,
			CurrentPage: result.CurrentPage,
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	detail, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(detail.Book, detail.OwnerName)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.CreateBook(ctx, user, service.CreateBookRequest{
		Title:         input.Body.Title,
		Description:   input.Body.Description,
		Author:        input.Body.Author,
		Price:         input.Body.Price,
		Category:      input.Body.Category,
		ISBN:          input.Body.ISBN,
		PublishedDate: input.Body.PublishedDate,
		Language:      input.Body.Language,
		PageCount:     input.Body.PageCount,
		Tags:          input.Body.Tags,
		CoverImageURL: input.Body.CoverImageURL,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book, user.Name)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.UpdateBook(ctx, user, input.ID, service.UpdateBookRequest{
		Title:         input.Body.Title,
		Description:   input.Body.Description,
		Author:        input.Body.Author,
		Price:         input.Body.Price,
		Category:      input.Body.Category,
		ISBN:          input.Body.ISBN,
		PublishedDate: input.Body.PublishedDate,
		Language:      input.Body.Language,
		PageCount:     input.Body.PageCount,
		Tags:          input.Body.Tags,
		CoverImageURL: input.Body.CoverImageURL,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book, "")}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteBook(ctx, user, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Helpers ===

func mapBookResponse(book *domain.Book, ownerName string) BookResponse {
	resp := BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Description:   book.Description,
		Author:        book.Author,
		Price:         book.Price,
		Category:      book.Category,
		ISBN:          book.ISBN,
		PublishedDate: book.PublishedDate,
		Language:      book.Language,
		PageCount:     book.PageCount,
		Tags:          book.Tags,
		OwnerID:       book.OwnerID,
		OwnerName:     ownerName,
		AverageRating: book.AverageRating,
		ReviewCount:   book.ReviewCount,
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}
	if book.CoverImage != nil {
		resp.CoverImageURL = book.CoverImage.URL
	}
	return resp
}
