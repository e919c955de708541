package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*Index, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexBook(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &BookDocument{
		ID:     "book-123",
		Title:  "The Hobbit",
		Author: "J.R.R. Tolkien",
	}

	err := index.IndexBook(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_IndexBooks_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "Book One"},
		{ID: "book-2", Title: "Book Two"},
		{ID: "book-3", Title: "Book Three"},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndex_DeleteBook(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexBook(&BookDocument{ID: "book-123", Title: "Test Book"})
	require.NoError(t, err)

	err = index.DeleteBook("book-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_Search_ByAuthor(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "The Hobbit", Author: "J.R.R. Tolkien"},
		{ID: "book-2", Title: "The Lord of the Rings", Author: "J.R.R. Tolkien"},
		{ID: "book-3", Title: "Harry Potter", Author: "J.K. Rowling"},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	result, err := index.Search(context.Background(), Params{
		Query: "Tolkien",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
	assert.Len(t, result.Hits, 2)
}

func TestIndex_Search_TitleOutranksAuthor(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "A Long Walk", Author: "Peter Smith"},
		{ID: "book-2", Title: "Peter Pan", Author: "J.M. Barrie"},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	result, err := index.Search(context.Background(), Params{
		Query: "Peter",
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestIndex_Search_ByISBN(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "First Book", ISBN: "978-0-123456-47-2"},
		{ID: "book-2", Title: "Second Book", ISBN: "978-0-765432-10-9"},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	result, err := index.Search(context.Background(), Params{
		Query: "978-0-123456-47-2",
		Limit: 10,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Total, uint64(1))
	assert.Equal(t, "book-1", result.Hits[0].ID)
}

func TestIndex_Search_Prefix(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexBook(&BookDocument{ID: "book-1", Title: "The Hobbit"})
	require.NoError(t, err)

	result, err := index.Search(context.Background(), Params{
		Query: "Hobb",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Total, uint64(1))
}

func TestIndex_Search_CategoryFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "Epic Tale", Category: "fantasy"},
		{ID: "book-2", Title: "Love Story", Category: "romance"},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	result, err := index.Search(context.Background(), Params{
		Category: "fantasy",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "book-1", result.Hits[0].ID)
}

func TestIndex_Search_PriceRange(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "Cheap Book", Price: 4.99},
		{ID: "book-2", Title: "Mid Book", Price: 19.99},
		{ID: "book-3", Title: "Fancy Book", Price: 79.99},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	result, err := index.Search(context.Background(), Params{
		MinPrice: 10,
		MaxPrice: 50,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestIndex_SearchIDs(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "The Hobbit", Author: "J.R.R. Tolkien"},
		{ID: "book-2", Title: "Harry Potter", Author: "J.K. Rowling"},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	ids, err := index.SearchIDs(context.Background(), Params{Query: "Hobbit", Limit: 10})
	require.NoError(t, err)
	assert.Contains(t, ids, "book-1")
	assert.NotContains(t, ids, "book-2")
}

func TestIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexBook(&BookDocument{ID: "book-1", Title: "Test"})
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	err = index.Rebuild()
	require.NoError(t, err)

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_Persistence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "search-persist-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	index1, err := NewIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)

	err = index1.IndexBook(&BookDocument{ID: "book-1", Title: "Test Book"})
	require.NoError(t, err)

	err = index1.Close()
	require.NoError(t, err)

	// Reopen and verify the document survived
	index2, err := NewIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	defer index2.Close()

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	result, err := index2.Search(context.Background(), Params{Query: "Test", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestFromBook(t *testing.T) {
	now := time.Now()
	book := &domain.Book{
		Record: domain.Record{
			ID:        "book-123",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:       "The Great Book",
		Description: "A wonderful tale",
		Author:      "Jane Author",
		Price:       24.99,
		Category:    "fiction",
		ISBN:        "978-0-123456-47-2",
		Tags:        []string{"adventure"},
	}

	doc := FromBook(book)

	assert.Equal(t, "book-123", doc.ID)
	assert.Equal(t, "The Great Book", doc.Title)
	assert.Equal(t, "Jane Author", doc.Author)
	assert.Equal(t, "A wonderful tale", doc.Description)
	assert.Equal(t, 24.99, doc.Price)
	assert.Equal(t, "fiction", doc.Category)
	assert.Equal(t, "978-0-123456-47-2", doc.ISBN)
	assert.Equal(t, []string{"adventure"}, doc.Tags)
	assert.Equal(t, now.UnixMilli(), doc.CreatedAt)
}
