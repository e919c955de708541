// Package search provides full-text search over the book catalog using Bleve.
// It supports fuzzy matching and prefix queries on titles and authors plus
// exact ISBN lookup, returning scored book IDs for the catalog to hydrate.
package search

import (
	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// BookDocument is the document structure stored in the Bleve index.
// Only the fields needed for matching and result display are indexed;
// the catalog remains the source of truth for full book records.
type BookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description,omitempty"`
	ISBN        string   `json:"isbn,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Price       float64  `json:"price"`

	// Unix millis, for sorting by recency
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *BookDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"price":      d.Price,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}

	return m
}

// FromBook converts a domain Book to its index document.
func FromBook(book *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		ISBN:        book.ISBN,
		Category:    book.Category,
		Tags:        book.Tags,
		Price:       book.Price,
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}
}
