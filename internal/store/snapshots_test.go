package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func TestUpsertSnapshot_CreatesOnFirstWrite(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	err := s.UpsertSnapshot(ctx, "2026-08-30", func(snap *domain.InventorySnapshot) {
		snap.TotalBooks = 12
		snap.AddToCategory("fiction", 1)
	})
	require.NoError(t, err)

	snap, err := s.GetSnapshot(ctx, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", snap.DayKey)
	assert.Equal(t, 12, snap.TotalBooks)
	assert.Equal(t, 1, snap.BooksByCategory["fiction"])
	assert.False(t, snap.CreatedAt.IsZero())
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestUpsertSnapshot_AccumulatesAcrossWrites(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.UpsertSnapshot(ctx, "2026-08-30", func(snap *domain.InventorySnapshot) {
		snap.TotalBooks = 5
		snap.AddToCategory("fiction", 1)
		snap.AppendEvent(domain.ActivityEvent{
			Type:      domain.ActivityBookAdded,
			BookID:    "book-001",
			BookTitle: "First",
			Timestamp: time.Now(),
		})
	}))
	require.NoError(t, s.UpsertSnapshot(ctx, "2026-08-30", func(snap *domain.InventorySnapshot) {
		snap.TotalBooks = 6
		snap.AddToCategory("fiction", 1)
		snap.AppendEvent(domain.ActivityEvent{
			Type:      domain.ActivityBookAdded,
			BookID:    "book-002",
			BookTitle: "Second",
			Timestamp: time.Now(),
		})
	}))

	snap, err := s.GetSnapshot(ctx, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 6, snap.TotalBooks)
	assert.Equal(t, 2, snap.BooksByCategory["fiction"])
	require.Len(t, snap.Events, 2)
	assert.Equal(t, "book-001", snap.Events[0].BookID)
	assert.Equal(t, "book-002", snap.Events[1].BookID)
}

func TestGetSnapshot_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetSnapshot(context.Background(), "1999-01-01")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestListSnapshotsSince(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	for _, day := range []string{"2026-08-25", "2026-08-27", "2026-08-30"} {
		require.NoError(t, s.UpsertSnapshot(ctx, day, func(snap *domain.InventorySnapshot) {
			snap.TotalBooks = 1
		}))
	}

	snaps, err := s.ListSnapshotsSince(ctx, "2026-08-26")
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	// Oldest first, boundary day excluded when no snapshot exists for it
	assert.Equal(t, "2026-08-27", snaps[0].DayKey)
	assert.Equal(t, "2026-08-30", snaps[1].DayKey)
}

func TestListSnapshotsSince_InclusiveBoundary(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.UpsertSnapshot(ctx, "2026-08-25", func(snap *domain.InventorySnapshot) {}))
	require.NoError(t, s.UpsertSnapshot(ctx, "2026-08-26", func(snap *domain.InventorySnapshot) {}))

	snaps, err := s.ListSnapshotsSince(ctx, "2026-08-26")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "2026-08-26", snaps[0].DayKey)
}

func TestLatestSnapshotSince(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	for _, day := range []string{"2026-08-25", "2026-08-28"} {
		require.NoError(t, s.UpsertSnapshot(ctx, day, func(snap *domain.InventorySnapshot) {
			snap.TotalBooks = 1
		}))
	}

	snap, err := s.LatestSnapshotSince(ctx, "2026-08-20")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", snap.DayKey)

	_, err = s.LatestSnapshotSince(ctx, "2026-08-29")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestUpsertSnapshot_ConcurrentWriters(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	const writers = 4
	const perWriter = 5

	var wg sync.WaitGroup
	errs := make([]error, writers)
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				if err := s.UpsertSnapshot(ctx, "2026-08-30", func(snap *domain.InventorySnapshot) {
					snap.NewBooksThisWeek++
					snap.AddToCategory("fiction", 1)
				}); err != nil {
					errs[w] = err
					return
				}
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// Exactly one document for the day, with every delta applied.
	snaps, err := s.ListSnapshotsSince(ctx, "")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, writers*perWriter, snaps[0].NewBooksThisWeek)
	assert.Equal(t, writers*perWriter, snaps[0].BooksByCategory["fiction"])
}
