package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/search"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// searchCandidateLimit caps how many IDs a text query pulls from the search
// index before in-memory filtering. Large enough for any realistic catalog
// page, small enough to bound hydration work.
const searchCandidateLimit = 1000

// CatalogService handles book CRUD, listing, and search.
type CatalogService struct {
	store     *store.Store
	search    *search.Index
	recorder  *ActivityRecorder
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	st *store.Store,
	searchIndex *search.Index,
	recorder *ActivityRecorder,
	validator *validation.Validator,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		store:     st,
		search:    searchIndex,
		recorder:  recorder,
		validator: validator,
		logger:    logger,
	}
}

// CreateBookRequest contains the data for a new book.
type CreateBookRequest struct {
	Title         string     `json:"title" validate:"required,max=300"`
	Description   string     `json:"description" validate:"max=5000"`
	Author        string     `json:"author" validate:"required,max=200"`
	Price         float64    `json:"price" validate:"gte=0"`
	Category      string     `json:"category" validate:"required,max=100"`
	ISBN          string     `json:"isbn" validate:"max=20"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Language      string     `json:"language,omitempty" validate:"max=50"`
	PageCount     int        `json:"page_count,omitempty" validate:"gte=0"`
	Tags          []string   `json:"tags,omitempty" validate:"max=20,dive,max=50"`
	CoverImageURL string     `json:"cover_image_url,omitempty" validate:"omitempty,url"`
}

// UpdateBookRequest contains the patchable book fields. Nil means unchanged.
type UpdateBookRequest struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,max=300"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Author        *string    `json:"author,omitempty" validate:"omitempty,max=200"`
	Price         *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category      *string    `json:"category,omitempty" validate:"omitempty,max=100"`
	ISBN          *string    `json:"isbn,omitempty" validate:"omitempty,max=20"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Language      *string    `json:"language,omitempty" validate:"omitempty,max=50"`
	PageCount     *int       `json:"page_count,omitempty" validate:"omitempty,gte=0"`
	Tags          *[]string  `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	CoverImageURL *string    `json:"cover_image_url,omitempty" validate:"omitempty,url"`
}

// ListBooksParams selects, orders, and pages the catalog listing.
type ListBooksParams struct {
	Query    string  // Text search over title/author/ISBN
	Category string  // Exact category
	Tag      string  // Must carry this tag
	MinPrice float64 // 0 means unbounded
	MaxPrice float64 // 0 means unbounded
	Sort     string  // newest|oldest|price_low|price_high|title
	Page     int
	Limit    int
}

// BookDetail is a book joined with its owner's display name.
type BookDetail struct {
	*domain.Book
	OwnerName string `json:"owner_name,omitempty"`
}

// CreateBook validates and persists a new book owned by the given user,
// indexes it for search, and records the addition on today's snapshot.
func (s *CatalogService) CreateBook(ctx context.Context, owner *domain.User, req CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Record:        domain.Record{ID: bookID},
		Title:         req.Title,
		Description:   req.Description,
		Author:        req.Author,
		Price:         req.Price,
		Category:      req.Category,
		ISBN:          req.ISBN,
		PublishedDate: req.PublishedDate,
		Language:      req.Language,
		PageCount:     req.PageCount,
		Tags:          req.Tags,
		OwnerID:       owner.ID,
	}
	if req.CoverImageURL != "" {
		book.CoverImage = &domain.CoverImage{URL: req.CoverImageURL}
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.search.IndexBook(search.FromBook(book)); err != nil {
		// The book exists either way; searches just won't find it until reindex.
		s.logger.Warn("failed to index book for search",
			"book_id", book.ID,
			"error", err,
		)
	}

	s.recorder.BookAdded(owner, book)

	s.logger.Info("book created",
		"book_id", book.ID,
		"title", book.Title,
		"owner_id", owner.ID,
	)

	return book, nil
}

// GetBook returns a book with its owner's name.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*BookDetail, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	detail := &BookDetail{Book: book}
	if owner, err := s.store.Users.Get(ctx, book.OwnerID); err == nil {
		detail.OwnerName = owner.Name
	}

	return detail, nil
}

// UpdateBook applies a partial update. Only the owner or an admin may edit.
func (s *CatalogService) UpdateBook(ctx context.Context, actor *domain.User, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	if !book.CanBeEditedBy(actor) {
		return nil, domainerrors.Forbidden("only the owner or an admin can edit this book")
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	if req.Category != nil {
		book.Category = *req.Category
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.PublishedDate != nil {
		book.PublishedDate = req.PublishedDate
	}
	if req.Language != nil {
		book.Language = *req.Language
	}
	if req.PageCount != nil {
		book.PageCount = *req.PageCount
	}
	if req.Tags != nil {
		book.Tags = *req.Tags
	}
	if req.CoverImageURL != nil {
		if *req.CoverImageURL == "" {
			book.CoverImage = nil
		} else {
			book.CoverImage = &domain.CoverImage{URL: *req.CoverImageURL}
		}
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.search.IndexBook(search.FromBook(book)); err != nil {
		s.logger.Warn("failed to reindex book for search",
			"book_id", book.ID,
			"error", err,
		)
	}

	return book, nil
}

// DeleteBook removes a book and all its reviews. Only the owner or an admin
// may delete. The cascade runs in one store transaction; the search deindex
// and activity recording are best-effort afterward.
func (s *CatalogService) DeleteBook(ctx context.Context, actor *domain.User, bookID string) error {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("get book: %w", err)
	}

	if !book.CanBeEditedBy(actor) {
		return domainerrors.Forbidden("only the owner or an admin can delete this book")
	}

	deleted, err := s.store.DeleteBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}

	if err := s.search.DeleteBook(bookID); err != nil {
		s.logger.Warn("failed to remove book from search index",
			"book_id", bookID,
			"error", err,
		)
	}

	s.recorder.BookDeleted(actor, deleted)

	s.logger.Info("book deleted",
		"book_id", bookID,
		"title", deleted.Title,
		"actor_id", actor.ID,
	)

	return nil
}

// ListBooks returns a filtered, sorted, paginated catalog page. A text
// query narrows the candidate set through the search index; the remaining
// filters and sort run in memory over the candidates.
func (s *CatalogService) ListBooks(ctx context.Context, params ListBooksParams) (*store.PagedResult[*domain.Book], error) {
	books, err := s.candidateBooks(ctx, params.Query)
	if err != nil {
		return nil, err
	}

	filtered := books[:0]
	for _, book := range books {
		if params.Category != "" && book.Category != params.Category {
			continue
		}
		if params.Tag != "" && !book.HasTag(params.Tag) {
			continue
		}
		if params.MinPrice > 0 && book.Price < params.MinPrice {
			continue
		}
		if params.MaxPrice > 0 && book.Price > params.MaxPrice {
			continue
		}
		filtered = append(filtered, book)
	}

	sortBooks(filtered, params.Sort)

	pageParams := store.PageParams{Page: params.Page, Limit: params.Limit}
	pageParams.Validate()

	total := len(filtered)
	start := pageParams.Offset()
	if start > total {
		start = total
	}
	end := start + pageParams.Limit
	if end > total {
		end = total
	}

	return store.NewPagedResult(filtered[start:end], total, pageParams), nil
}

// Reindex rebuilds the search index from the full catalog. Used at startup
// and by the seeder.
func (s *CatalogService) Reindex(ctx context.Context) error {
	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	docs := make([]*search.BookDocument, len(books))
	for i, book := range books {
		docs[i] = search.FromBook(book)
	}

	if err := s.search.IndexBooks(docs); err != nil {
		return fmt.Errorf("index books: %w", err)
	}

	s.logger.Info("search index populated", "books", len(docs))
	return nil
}

// IndexedBooks returns the number of documents in the search index.
// Used by health checks.
func (s *CatalogService) IndexedBooks() (uint64, error) {
	return s.search.DocumentCount()
}

// candidateBooks returns every book when there is no text query, or the
// query's matches in relevance order when there is.
func (s *CatalogService) candidateBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	if query == "" {
		books, err := s.store.ListAllBooks(ctx)
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		return books, nil
	}

	ids, err := s.search.SearchIDs(ctx, search.Params{
		Query: query,
		Limit: searchCandidateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	books := make([]*domain.Book, 0, len(ids))
	for _, bookID := range ids {
		book, err := s.store.GetBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, store.ErrBookNotFound) {
				// Index lagging behind a delete
				continue
			}
			return nil, fmt.Errorf("get book %s: %w", bookID, err)
		}
		books = append(books, book)
	}
	return books, nil
}

// sortBooks orders the slice in place. Unknown or empty sort falls back to
// newest first. Ties keep their existing order, which preserves search
// relevance when a text query was used.
func sortBooks(books []*domain.Book, sortKey string) {
	switch sortKey {
	case "oldest":
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].CreatedAt.Before(books[j].CreatedAt)
		})
	case "price_low":
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].Price < books[j].Price
		})
	case "price_high":
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].Price > books[j].Price
		})
	case "title":
		sort.SliceStable(books, func(i, j int) bool {
			return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
		})
	default: // newest
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		})
	}
}
