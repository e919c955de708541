package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

const (
	// How many events the dashboard's recent-activity feed shows.
	recentActivityLimit = 10
	// How many books the dashboard's top-rated list shows.
	topRatedLimit = 5
)

// AnalyticsService builds the admin dashboard and activity feed from store
// counts and the daily inventory snapshots.
type AnalyticsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(st *store.Store, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  st,
		logger: logger,
	}
}

// ActivityEntry is an activity event with a synthesized description for
// display in the admin feed.
type ActivityEntry struct {
	domain.ActivityEvent
	Description string `json:"description"`
}

// Dashboard assembles the admin overview: live totals and rolling seven-day
// counts from the store, the category breakdown from the most recent snapshot
// in the last seven days, the ten most recent events across those snapshots,
// and the five highest-rated books.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	totalBooks, err := s.store.CountBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	totalUsers, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	totalReviews, err := s.store.CountReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -7)

	// Rolling window over creation timestamps, not the snapshot counters:
	// a snapshot's counter only accumulates within its own day.
	newBooks, err := s.store.CountBooksCreatedSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("count new books: %w", err)
	}
	newUsers, err := s.store.CountUsersCreatedSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("count new users: %w", err)
	}

	dashboard := &domain.Dashboard{
		TotalBooks:       totalBooks,
		TotalUsers:       totalUsers,
		TotalReviews:     totalReviews,
		NewBooksThisWeek: newBooks,
		NewUsersThisWeek: newUsers,
		BooksByCategory:  map[string]int{},
		RecentActivities: []domain.ActivityEvent{},
		TopRatedBooks:    []domain.TopRatedBook{},
	}

	weekAgo := domain.DayKey(cutoff)

	latest, err := s.store.LatestSnapshotSince(ctx, weekAgo)
	if err != nil && !errors.Is(err, store.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	if latest != nil {
		for tag, count := range latest.BooksByCategory {
			dashboard.BooksByCategory[tag] = count
		}
	}

	snapshots, err := s.store.ListSnapshotsSince(ctx, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var events []domain.ActivityEvent
	for _, snap := range snapshots {
		events = append(events, snap.Events...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if len(events) > recentActivityLimit {
		events = events[:recentActivityLimit]
	}
	dashboard.RecentActivities = events

	topRated, err := s.topRatedBooks(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.TopRatedBooks = topRated

	return dashboard, nil
}

// UserActivity returns activity events since the period boundary, newest
// first. typeFilter, when set, is a case-insensitive substring match on the
// activity type.
func (s *AnalyticsService) UserActivity(ctx context.Context, period domain.ActivityPeriod, typeFilter string) ([]ActivityEntry, error) {
	if period == "" {
		period = domain.PeriodAll
	}
	if !period.Valid() {
		return nil, domainerrors.Validation("period must be one of: today, 7days, 30days, all")
	}

	start := period.Start(time.Now())

	fromDayKey := ""
	if !start.IsZero() {
		fromDayKey = domain.DayKey(start)
	}

	snapshots, err := s.store.ListSnapshotsSince(ctx, fromDayKey)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	filter := strings.ToLower(typeFilter)

	entries := []ActivityEntry{}
	for _, snap := range snapshots {
		for _, event := range snap.Events {
			if !start.IsZero() && event.Timestamp.Before(start) {
				continue
			}
			if filter != "" && !strings.Contains(strings.ToLower(string(event.Type)), filter) {
				continue
			}
			entries = append(entries, ActivityEntry{
				ActivityEvent: event,
				Description:   describeEvent(event),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}

// topRatedBooks returns the highest-rated books, best first. Books without
// reviews are excluded; ties break on review count, then recency.
func (s *AnalyticsService) topRatedBooks(ctx context.Context) ([]domain.TopRatedBook, error) {
	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	rated := make([]*domain.Book, 0, len(books))
	for _, book := range books {
		if book.ReviewCount > 0 {
			rated = append(rated, book)
		}
	}

	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].AverageRating != rated[j].AverageRating {
			return rated[i].AverageRating > rated[j].AverageRating
		}
		if rated[i].ReviewCount != rated[j].ReviewCount {
			return rated[i].ReviewCount > rated[j].ReviewCount
		}
		return rated[i].CreatedAt.After(rated[j].CreatedAt)
	})

	if len(rated) > topRatedLimit {
		rated = rated[:topRatedLimit]
	}

	top := make([]domain.TopRatedBook, len(rated))
	for i, book := range rated {
		top[i] = domain.TopRatedBook{
			ID:            book.ID,
			Title:         book.Title,
			Author:        book.Author,
			AverageRating: book.AverageRating,
			ReviewCount:   book.ReviewCount,
		}
	}
	return top, nil
}

// describeEvent renders a human-readable line for the activity feed.
func describeEvent(e domain.ActivityEvent) string {
	name := e.UserName
	if name == "" {
		name = "Someone"
	}
	switch e.Type {
	case domain.ActivitySignup:
		return name + " signed up"
	case domain.ActivityBookAdded:
		return fmt.Sprintf("%s added %q", name, e.BookTitle)
	case domain.ActivityBookDeleted:
		return fmt.Sprintf("%s removed %q", name, e.BookTitle)
	case domain.ActivityReviewAdded:
		return fmt.Sprintf("%s reviewed %q", name, e.BookTitle)
	}
	return name + " did something"
}
