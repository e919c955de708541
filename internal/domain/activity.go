package domain

import "time"

// ActivityType classifies an event recorded into the daily inventory snapshot.
type ActivityType string

const (
	ActivitySignup      ActivityType = "signup"
	ActivityBookAdded   ActivityType = "book_added"
	ActivityBookDeleted ActivityType = "book_deleted"
	ActivityReviewAdded ActivityType = "review_added"
)

// Valid reports whether the activity type is one we recognize.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivitySignup, ActivityBookAdded, ActivityBookDeleted, ActivityReviewAdded:
		return true
	}
	return false
}

// ActivityEvent is a single event appended to a day's snapshot. UserName and
// BookTitle are captured at record time so the dashboard does not need to
// join against users and books that may since have been deleted.
type ActivityEvent struct {
	Type      ActivityType `json:"type"`
	UserID    string       `json:"user_id,omitempty"`
	UserName  string       `json:"user_name,omitempty"`
	BookID    string       `json:"book_id,omitempty"`
	BookTitle string       `json:"book_title,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
