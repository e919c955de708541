package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// Review storage key prefixes.
// The book index uses inverted timestamps so forward iteration yields
// newest-first ordering without reverse iteration.
const (
	reviewPrefix     = "review:"
	reviewPairPrefix = "review:idx:pair:" // {bookID}:{userID} -> reviewID, enforces one review per user per book
	reviewBookPrefix = "review:idx:book:" // {bookID}:{inverted_ts}:{reviewID} -> "" (key-only)
)

var (
	// ErrReviewNotFound is returned when a review cannot be found by ID.
	ErrReviewNotFound = errors.New("review not found")
	// ErrDuplicateReview is returned when a user already reviewed the book.
	ErrDuplicateReview = errors.New("user has already reviewed this book")
)

// invertedTimestamp returns a string that sorts in descending order.
// Uses MaxInt64 - UnixNano to ensure newest timestamps come first during forward iteration.
func invertedTimestamp(t time.Time) string {
	inverted := math.MaxInt64 - t.UnixNano()
	return fmt.Sprintf("%019d", inverted)
}

// CreateReview stores a review and recomputes the book's rating aggregate,
// all in one transaction. The (book, user) pair index makes a concurrent
// duplicate lose at commit and resolve to ErrDuplicateReview on retry, and
// the aggregate can never drift from the reviews it summarizes.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}

	invertedTS := invertedTimestamp(review.CreatedAt)

	err = s.updateWithRetry(func(txn *badger.Txn) error {
		// Book must exist
		book, err := getBookInTxn(txn, review.BookID)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("load book: %w", err)
		}

		// One review per (book, user)
		pairKey := []byte(reviewPairPrefix + review.PairKey())
		_, err = txn.Get(pairKey)
		if err == nil {
			return ErrDuplicateReview
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check pair index: %w", err)
		}

		if err := txn.Set([]byte(reviewPrefix+review.ID), data); err != nil {
			return fmt.Errorf("set review: %w", err)
		}
		if err := txn.Set(pairKey, []byte(review.ID)); err != nil {
			return fmt.Errorf("set pair index: %w", err)
		}
		bookIdxKey := []byte(reviewBookPrefix + review.BookID + ":" + invertedTS + ":" + review.ID)
		if err := txn.Set(bookIdxKey, []byte{}); err != nil {
			return fmt.Errorf("set book index: %w", err)
		}

		return recomputeBookRatingInTxn(txn, book)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "review created",
			slog.String("id", review.ID),
			slog.String("book_id", review.BookID),
			slog.String("user_id", review.UserID),
			slog.Int("rating", review.Rating),
		)
	}
	return nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(_ context.Context, id string) (*domain.Review, error) {
	var review domain.Review

	key := buildKey(reviewPrefix, id)
	err := s.get(key, &review)
	releaseKey(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// DeleteReview removes a review and recomputes the book's rating aggregate
// in the same transaction.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.updateWithRetry(func(txn *badger.Txn) error {
		review, err := getReviewInTxn(txn, id)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("load review: %w", err)
		}

		if err := txn.Delete([]byte(reviewPrefix + id)); err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		if err := txn.Delete([]byte(reviewPairPrefix + review.PairKey())); err != nil {
			return fmt.Errorf("delete pair index: %w", err)
		}
		invertedTS := invertedTimestamp(review.CreatedAt)
		bookIdxKey := []byte(reviewBookPrefix + review.BookID + ":" + invertedTS + ":" + review.ID)
		if err := txn.Delete(bookIdxKey); err != nil {
			return fmt.Errorf("delete book index: %w", err)
		}

		book, err := getBookInTxn(txn, review.BookID)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Book is gone, nothing to recompute.
				return nil
			}
			return fmt.Errorf("load book: %w", err)
		}

		return recomputeBookRatingInTxn(txn, book)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("review deleted", "id", id)
	}
	return nil
}

// ListReviewsByBook returns one page of a book's reviews, newest first,
// along with the total count for paging metadata.
func (s *Store) ListReviewsByBook(_ context.Context, bookID string, params PageParams) (*PagedResult[*domain.Review], error) {
	params.Validate()

	var reviews []*domain.Review
	total := 0
	offset := params.Offset()

	indexPrefix := []byte(reviewBookPrefix + bookID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			key := string(it.Item().Key())
			reviewID := extractReviewIDFromBookKey(key, bookID)
			if reviewID == "" {
				continue
			}

			if total >= offset && len(reviews) < params.Limit {
				review, err := getReviewInTxn(txn, reviewID)
				if err == nil {
					reviews = append(reviews, review)
				}
			}
			total++
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews for book %s: %w", bookID, err)
	}

	return NewPagedResult(reviews, total, params), nil
}

// CountReviews returns the total number of reviews across all books.
func (s *Store) CountReviews(_ context.Context) (int, error) {
	count := 0
	prefix := []byte(reviewPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key[len(reviewPrefix):], "idx:") {
				continue
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}

	return count, nil
}

// recomputeBookRatingInTxn recalculates the book's average rating and review
// count from the reviews visible to this transaction (including its own
// pending writes) and saves the book. Mean rounded to one decimal; 0 and 0
// when there are no reviews.
func recomputeBookRatingInTxn(txn *badger.Txn, book *domain.Book) error {
	indexPrefix := []byte(reviewBookPrefix + book.ID + ":")

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = indexPrefix

	sum := 0
	count := 0

	it := txn.NewIterator(opts)
	for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
		key := string(it.Item().Key())
		reviewID := extractReviewIDFromBookKey(key, book.ID)
		if reviewID == "" {
			continue
		}
		review, err := getReviewInTxn(txn, reviewID)
		if err != nil {
			continue
		}
		sum += review.Rating
		count++
	}
	it.Close()

	if count == 0 {
		book.AverageRating = 0
		book.ReviewCount = 0
	} else {
		avg := float64(sum) / float64(count)
		book.AverageRating = math.Round(avg*10) / 10
		book.ReviewCount = count
	}
	book.Touch()

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}
	if err := txn.Set([]byte(bookPrefix+book.ID), data); err != nil {
		return fmt.Errorf("save book aggregate: %w", err)
	}
	return nil
}

// getBookInTxn retrieves a book within an existing transaction.
func getBookInTxn(txn *badger.Txn, id string) (*domain.Book, error) {
	item, err := txn.Get([]byte(bookPrefix + id))
	if err != nil {
		return nil, err
	}

	var book domain.Book
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &book)
	})
	if err != nil {
		return nil, err
	}

	return &book, nil
}

// getReviewInTxn retrieves a review within an existing transaction.
func getReviewInTxn(txn *badger.Txn, id string) (*domain.Review, error) {
	item, err := txn.Get([]byte(reviewPrefix + id))
	if err != nil {
		return nil, err
	}

	var review domain.Review
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &review)
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}

// extractReviewIDFromBookKey extracts the review ID from a book index key.
// Key format: review:idx:book:{bookID}:{inverted_ts}:{id}.
func extractReviewIDFromBookKey(key, bookID string) string {
	prefix := reviewBookPrefix + bookID + ":"
	if len(key) <= len(prefix)+20 { // 19 digits + colon
		return ""
	}
	return key[len(prefix)+20:]
}
