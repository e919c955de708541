package domain

import "time"

// DayKeyLayout is the calendar-day format snapshots are keyed by.
const DayKeyLayout = "2006-01-02"

// DayKey returns the snapshot key for the calendar day containing t,
// in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// InventorySnapshot aggregates catalog state and activity for one calendar
// day. There is at most one snapshot per day; the store upserts into it
// atomically so concurrent recorders never clobber each other's counters.
type InventorySnapshot struct {
	DayKey           string          `json:"day_key"`
	TotalBooks       int             `json:"total_books"`
	NewBooksThisWeek int             `json:"new_books_this_week"`
	NewUsersThisWeek int             `json:"new_users_this_week"`
	BooksByCategory  map[string]int  `json:"books_by_category"`
	Events           []ActivityEvent `json:"events"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AddToCategory bumps the per-tag book counter, allocating the map on first
// use. Negative deltas floor at zero rather than going negative.
func (s *InventorySnapshot) AddToCategory(tag string, delta int) {
	if s.BooksByCategory == nil {
		s.BooksByCategory = make(map[string]int)
	}
	n := s.BooksByCategory[tag] + delta
	if n < 0 {
		n = 0
	}
	s.BooksByCategory[tag] = n
}

// AppendEvent records an activity event on the snapshot.
func (s *InventorySnapshot) AppendEvent(e ActivityEvent) {
	s.Events = append(s.Events, e)
}
