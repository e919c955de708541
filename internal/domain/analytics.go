package domain

import "time"

// ActivityPeriod selects how far back user-activity queries reach.
type ActivityPeriod string

const (
	PeriodToday  ActivityPeriod = "today"
	Period7Days  ActivityPeriod = "7days"
	Period30Days ActivityPeriod = "30days"
	PeriodAll    ActivityPeriod = "all"
)

func (p ActivityPeriod) Valid() bool {
	switch p {
	case PeriodToday, Period7Days, Period30Days, PeriodAll:
		return true
	}
	return false
}

// Start returns the inclusive lower bound for the period relative to now.
// PeriodAll returns the zero time, which matches everything.
func (p ActivityPeriod) Start(now time.Time) time.Time {
	switch p {
	case PeriodToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case Period7Days:
		return now.AddDate(0, 0, -7)
	case Period30Days:
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}

// TopRatedBook is a dashboard row for the highest-rated books.
type TopRatedBook struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Dashboard is the admin analytics overview.
type Dashboard struct {
	TotalBooks       int             `json:"total_books"`
	TotalUsers       int             `json:"total_users"`
	TotalReviews     int             `json:"total_reviews"`
	NewBooksThisWeek int             `json:"new_books_this_week"`
	NewUsersThisWeek int             `json:"new_users_this_week"`
	BooksByCategory  map[string]int  `json:"books_by_category"`
	RecentActivities []ActivityEvent `json:"recent_activities"`
	TopRatedBooks    []TopRatedBook  `json:"top_rated_books"`
}
