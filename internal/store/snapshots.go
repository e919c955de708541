package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// Snapshots are keyed by their exact ISO day string (snapshot:2006-01-02),
// which makes keys sort chronologically and gives each calendar day exactly
// one document.
const snapshotPrefix = "snapshot:"

// ErrSnapshotNotFound is returned when no snapshot exists for a day.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// UpsertSnapshot finds or creates the snapshot for dayKey and applies mutate
// to it, all inside one transaction. Concurrent first writers for the same
// day conflict at commit and retry against the winner's document, so a day
// never splits into two snapshots and counter deltas are never lost.
func (s *Store) UpsertSnapshot(ctx context.Context, dayKey string, mutate func(*domain.InventorySnapshot)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(snapshotPrefix + dayKey)

	return s.updateWithRetry(func(txn *badger.Txn) error {
		snap := &domain.InventorySnapshot{
			DayKey:    dayKey,
			CreatedAt: time.Now(),
		}

		item, err := txn.Get(key)
		switch {
		case err == nil:
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, snap)
			})
			if err != nil {
				return fmt.Errorf("unmarshal snapshot: %w", err)
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			// New day, start from the zero snapshot.
		default:
			return fmt.Errorf("get snapshot: %w", err)
		}

		mutate(snap)
		snap.UpdatedAt = time.Now()

		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		return txn.Set(key, data)
	})
}

// GetSnapshot retrieves the snapshot for an exact day key.
func (s *Store) GetSnapshot(_ context.Context, dayKey string) (*domain.InventorySnapshot, error) {
	var snap domain.InventorySnapshot

	key := buildKey(snapshotPrefix, dayKey)
	err := s.get(key, &snap)
	releaseKey(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshotsSince returns snapshots with day keys at or after fromDayKey,
// oldest first. An empty fromDayKey returns everything.
func (s *Store) ListSnapshotsSince(_ context.Context, fromDayKey string) ([]*domain.InventorySnapshot, error) {
	var snapshots []*domain.InventorySnapshot

	prefix := []byte(snapshotPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		// Day keys are ISO dates, so lexicographic order is chronological
		// and we can seek straight to the boundary.
		seekKey := prefix
		if fromDayKey != "" {
			seekKey = []byte(snapshotPrefix + fromDayKey)
		}

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var snap domain.InventorySnapshot
				if err := json.Unmarshal(val, &snap); err != nil {
					return err
				}
				snapshots = append(snapshots, &snap)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return snapshots, nil
}

// LatestSnapshotSince returns the most recent snapshot at or after fromDayKey,
// or ErrSnapshotNotFound if none exists in the window.
func (s *Store) LatestSnapshotSince(ctx context.Context, fromDayKey string) (*domain.InventorySnapshot, error) {
	snapshots, err := s.ListSnapshotsSince(ctx, fromDayKey)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, ErrSnapshotNotFound
	}
	return snapshots[len(snapshots)-1], nil
}
