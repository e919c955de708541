package domain

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a single user's rating and comment for a book.
// A user can review a given book at most once; the store enforces the
// (book, user) pair as a unique index, so a duplicate submission fails at
// commit time rather than relying on a check-then-insert in the service.
type Review struct {
	Record
	BookID  string `json:"book_id"`
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// PairKey returns the unique index key for the (book, user) pair.
func (r *Review) PairKey() string {
	return r.BookID + ":" + r.UserID
}
