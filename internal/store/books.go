package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

const bookPrefix = "book:"

var (
	// ErrBookNotFound is returned when a book cannot be found by ID.
	ErrBookNotFound = errors.New("book not found")
	// ErrBookExists is returned when attempting to create a book with an existing ID.
	ErrBookExists = errors.New("book already exists")
)

// CreateBook creates a new book.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookPrefix + book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if exists {
		return ErrBookExists
	}

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	err = s.updateWithRetry(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.String("author", book.Author),
		)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	var book domain.Book

	key := buildKey(bookPrefix, id)
	err := s.get(key, &book)
	releaseKey(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// UpdateBook updates an existing book.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if !exists {
		return ErrBookNotFound
	}

	book.Touch()
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	err = s.updateWithRetry(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book updated", "id", book.ID, "title", book.Title)
	}

	return nil
}

// DeleteBook deletes a book and all of its reviews in a single transaction.
// Rating recompute is deliberately skipped: the book record goes away with
// its reviews, so there is nothing left to keep consistent.
// Returns the deleted book so callers can record side effects from it.
func (s *Store) DeleteBook(ctx context.Context, id string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.updateWithRetry(func(txn *badger.Txn) error {
		// Collect this book's review keys first, then delete.
		type reviewRef struct {
			id     string
			userID string
			idxKey string
		}
		var refs []reviewRef

		indexPrefix := []byte(reviewBookPrefix + id + ":")
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			idxKey := string(it.Item().Key())
			reviewID := extractReviewIDFromBookKey(idxKey, id)
			if reviewID == "" {
				continue
			}
			review, err := getReviewInTxn(txn, reviewID)
			if err != nil {
				continue
			}
			refs = append(refs, reviewRef{id: reviewID, userID: review.UserID, idxKey: idxKey})
		}
		it.Close()

		for _, ref := range refs {
			if err := txn.Delete([]byte(reviewPrefix + ref.id)); err != nil {
				return fmt.Errorf("delete review %s: %w", ref.id, err)
			}
			if err := txn.Delete([]byte(reviewPairPrefix + id + ":" + ref.userID)); err != nil {
				return fmt.Errorf("delete review pair index: %w", err)
			}
			if err := txn.Delete([]byte(ref.idxKey)); err != nil {
				return fmt.Errorf("delete review book index: %w", err)
			}
		}

		return txn.Delete([]byte(bookPrefix + id))
	})
	if err != nil {
		return nil, fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "id", id, "title", book.Title)
	}

	return book, nil
}

// ListAllBooks returns all books (non-paginated). Catalog filtering and
// sorting happen above the store, so this is the workhorse read.
func (s *Store) ListAllBooks(_ context.Context) ([]*domain.Book, error) {
	var books []*domain.Book

	prefix := []byte(bookPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}

	return books, nil
}

// CountBooks returns the total number of books.
func (s *Store) CountBooks(_ context.Context) (int, error) {
	count := 0
	prefix := []byte(bookPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}

	return count, nil
}

// CountBooksCreatedSince returns how many books were added at or after the cutoff.
func (s *Store) CountBooksCreatedSince(ctx context.Context, cutoff time.Time) (int, error) {
	books, err := s.ListAllBooks(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, book := range books {
		if !book.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}
