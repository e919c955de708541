package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func (s *Server) registerAnalyticsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/dashboard",
		Summary:     "Analytics dashboard",
		Description: "Returns catalog totals, weekly deltas, category counts, recent activity, and top-rated books",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserActivity",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/user-activity",
		Summary:     "User activity",
		Description: "Returns recorded activity events filtered by period and type",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUserActivity)
}

// === DTOs ===

// ActivityResponse contains a recorded activity event.
type ActivityResponse struct {
	Type        string    `json:"type" doc:"Activity type"`
	UserID      string    `json:"user_id,omitempty" doc:"Acting user ID"`
	UserName    string    `json:"user_name,omitempty" doc:"Acting user's display name"`
	BookID      string    `json:"book_id,omitempty" doc:"Related book ID"`
	BookTitle   string    `json:"book_title,omitempty" doc:"Related book title"`
	Timestamp   time.Time `json:"timestamp" doc:"When the event happened"`
	Description string    `json:"description,omitempty" doc:"Human-readable summary"`
}

// TopRatedBookResponse is a dashboard row for the highest-rated books.
type TopRatedBookResponse struct {
	ID            string  `json:"id" doc:"Book ID"`
	Title         string  `json:"title" doc:"Title"`
	Author        string  `json:"author" doc:"Author"`
	AverageRating float64 `json:"average_rating" doc:"Average review rating"`
	ReviewCount   int     `json:"review_count" doc:"Number of reviews"`
}

// DashboardResponse contains the analytics overview.
type DashboardResponse struct {
	TotalBooks       int                    `json:"total_books" doc:"Total books in the catalog"`
	TotalUsers       int                    `json:"total_users" doc:"Total registered users"`
	TotalReviews     int                    `json:"total_reviews" doc:"Total reviews"`
	NewBooksThisWeek int                    `json:"new_books_this_week" doc:"Books added in the last 7 days"`
	NewUsersThisWeek int                    `json:"new_users_this_week" doc:"Users registered in the last 7 days"`
	BooksByCategory  map[string]int         `json:"books_by_category" doc:"Running per-category tag counts"`
	RecentActivities []ActivityResponse     `json:"recent_activities" doc:"Latest recorded events"`
	TopRatedBooks    []TopRatedBookResponse `json:"top_rated_books" doc:"Highest-rated books"`
}

// DashboardInput contains parameters for the dashboard.
type DashboardInput struct {
	Authorization string `header:"Authorization"`
}

// DashboardOutput wraps the dashboard response for Huma.
type DashboardOutput struct {
	Body DashboardResponse
}

// UserActivityInput contains parameters for the activity listing.
type UserActivityInput struct {
	Authorization string `header:"Authorization"`
	Period        string `query:"period" doc:"One of today, 7days, 30days, all (defaults to all)"`
	ActionType    string `query:"actionType" doc:"Case-insensitive substring match on the activity type"`
}

// UserActivityResponse contains filtered activity events.
type UserActivityResponse struct {
	Activities []ActivityResponse `json:"activities" doc:"Matching events, newest first"`
}

// UserActivityOutput wraps the activity response for Huma.
type UserActivityOutput struct {
	Body UserActivityResponse
}

// === Handlers ===

func (s *Server) handleGetDashboard(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	dashboard, err := s.services.Analytics.Dashboard(ctx)
	if err != nil {
		return nil, err
	}

	activities := make([]ActivityResponse, len(dashboard.RecentActivities))
	for i, event := range dashboard.RecentActivities {
		activities[i] = mapActivityResponse(event, "")
	}

	topRated := make([]TopRatedBookResponse, len(dashboard.TopRatedBooks))
	for i, book := range dashboard.TopRatedBooks {
		topRated[i] = TopRatedBookResponse{
			ID:            book.ID,
			Title:         book.Title,
			Author:        book.Author,
			AverageRating: book.AverageRating,
			ReviewCount:   book.ReviewCount,
		}
	}

	return &DashboardOutput{
		Body: DashboardResponse{
			TotalBooks:       dashboard.TotalBooks,
			TotalUsers:       dashboard.TotalUsers,
			TotalReviews:     dashboard.TotalReviews,
			NewBooksThisWeek: dashboard.NewBooksThisWeek,
			NewUsersThisWeek: dashboard.NewUsersThisWeek,
			BooksByCategory:  dashboard.BooksByCategory,
			RecentActivities: activities,
			TopRatedBooks:    topRated,
		},
	}, nil
}

func (s *Server) handleGetUserActivity(ctx context.Context, input *UserActivityInput) (*UserActivityOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	entries, err := s.services.Analytics.UserActivity(ctx, domain.ActivityPeriod(input.Period), input.ActionType)
	if err != nil {
		return nil, err
	}

	activities := make([]ActivityResponse, len(entries))
	for i, entry := range entries {
		activities[i] = mapActivityResponse(entry.ActivityEvent, entry.Description)
	}

	return &UserActivityOutput{Body: UserActivityResponse{Activities: activities}}, nil
}

// === Helpers ===

func mapActivityResponse(event domain.ActivityEvent, description string) ActivityResponse {
	return ActivityResponse{
		Type:        string(event.Type),
		UserID:      event.UserID,
		UserName:    event.UserName,
		BookID:      event.BookID,
		BookTitle:   event.BookTitle,
		Timestamp:   event.Timestamp,
		Description: description,
	}
}
