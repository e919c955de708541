package domain

import "time"

// CoverImage references a cover hosted by the external image provider.
// The server never stores image bytes, only the provider's URL and the
// public ID the provider needs for later deletion.
type CoverImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

// Book represents a book in the catalog.
//
// AverageRating and ReviewCount are derived fields. They are maintained by
// the review store whenever a review for this book is created or deleted,
// never written directly by handlers.
type Book struct {
	Record
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Author        string      `json:"author"`
	Price         float64     `json:"price"`
	Category      string      `json:"category"`
	ISBN          string      `json:"isbn"`
	PublishedDate *time.Time  `json:"published_date,omitempty"`
	Language      string      `json:"language,omitempty"`
	PageCount     int         `json:"page_count,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
	CoverImage    *CoverImage `json:"cover_image,omitempty"`
	OwnerID       string      `json:"owner_id"`

	// Derived from the live review set. Both are 0 while the book has no reviews.
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// HasTag reports whether the book carries the given tag.
func (b *Book) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CanBeEditedBy reports whether the user may mutate this book.
// Only the owner and admins may update or delete a book.
func (b *Book) CanBeEditedBy(u *User) bool {
	return u != nil && (b.OwnerID == u.ID || u.IsAdmin())
}
