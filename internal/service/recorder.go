package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// defaultQueueSize bounds the recorder's in-flight mutation queue.
// When the queue is full new events are dropped, not blocked on.
const defaultQueueSize = 256

// recordJob is one pending snapshot mutation. The day key is captured at
// enqueue time so events land on the day they happened, not the day the
// worker got to them.
type recordJob struct {
	dayKey string
	event  domain.ActivityType // for dead-letter logging
	mutate func(*domain.InventorySnapshot)
}

// ActivityRecorder applies activity events and counter deltas to the daily
// inventory snapshot. Recording is a best-effort side effect of primary
// mutations: a single worker goroutine consumes a buffered queue, enqueue
// never blocks the caller, and failures are logged and swallowed rather
// than surfaced. Callers must Close the recorder on shutdown to drain the
// queue.
type ActivityRecorder struct {
	store  *store.Store
	logger *slog.Logger

	jobs      chan recordJob
	done      chan struct{}
	closeOnce sync.Once
}

// NewActivityRecorder creates a recorder and starts its worker goroutine.
func NewActivityRecorder(st *store.Store, logger *slog.Logger) *ActivityRecorder {
	if logger == nil {
		logger = slog.Default()
	}

	r := &ActivityRecorder{
		store:  st,
		logger: logger,
		jobs:   make(chan recordJob, defaultQueueSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// run consumes the queue until it is closed, then drains and exits.
func (r *ActivityRecorder) run() {
	defer close(r.done)

	for job := range r.jobs {
		if err := r.store.UpsertSnapshot(context.Background(), job.dayKey, job.mutate); err != nil {
			// Dead letter: the event is lost, but the primary mutation
			// already succeeded so we only log.
			r.logger.Error("activity recording failed, event dropped",
				"day_key", job.dayKey,
				"event_type", job.event,
				"error", err,
			)
		}
	}
}

// enqueue hands a job to the worker without blocking. If the queue is full
// the job is dropped and dead-letter logged.
func (r *ActivityRecorder) enqueue(job recordJob) {
	select {
	case r.jobs <- job:
	default:
		r.logger.Error("activity queue full, event dropped",
			"day_key", job.dayKey,
			"event_type", job.event,
		)
	}
}

// Close stops accepting new events and blocks until the worker has drained
// the queue. Safe to call more than once.
func (r *ActivityRecorder) Close() {
	r.closeOnce.Do(func() {
		close(r.jobs)
	})
	<-r.done
}

// Signup records a user registration on today's snapshot.
func (r *ActivityRecorder) Signup(user *domain.User) {
	now := time.Now()
	event := domain.ActivityEvent{
		Type:      domain.ActivitySignup,
		UserID:    user.ID,
		UserName:  user.Name,
		Timestamp: now,
	}
	r.enqueue(recordJob{
		dayKey: domain.DayKey(now),
		event:  event.Type,
		mutate: func(snap *domain.InventorySnapshot) {
			snap.NewUsersThisWeek++
			snap.AppendEvent(event)
		},
	})
}

// BookAdded records a catalog addition: the event, the book counters, and
// a +1 on each of the book's tags.
func (r *ActivityRecorder) BookAdded(user *domain.User, book *domain.Book) {
	now := time.Now()
	event := domain.ActivityEvent{
		Type:      domain.ActivityBookAdded,
		UserID:    user.ID,
		UserName:  user.Name,
		BookID:    book.ID,
		BookTitle: book.Title,
		Timestamp: now,
	}
	tags := append([]string(nil), book.Tags...)
	r.enqueue(recordJob{
		dayKey: domain.DayKey(now),
		event:  event.Type,
		mutate: func(snap *domain.InventorySnapshot) {
			snap.TotalBooks++
			snap.NewBooksThisWeek++
			for _, tag := range tags {
				snap.AddToCategory(tag, 1)
			}
			snap.AppendEvent(event)
		},
	})
}

// BookDeleted records a catalog removal and decrements the book's tag
// counters. Counters floor at zero.
func (r *ActivityRecorder) BookDeleted(user *domain.User, book *domain.Book) {
	now := time.Now()
	event := domain.ActivityEvent{
		Type:      domain.ActivityBookDeleted,
		UserID:    user.ID,
		UserName:  user.Name,
		BookID:    book.ID,
		BookTitle: book.Title,
		Timestamp: now,
	}
	tags := append([]string(nil), book.Tags...)
	r.enqueue(recordJob{
		dayKey: domain.DayKey(now),
		event:  event.Type,
		mutate: func(snap *domain.InventorySnapshot) {
			if snap.TotalBooks > 0 {
				snap.TotalBooks--
			}
			for _, tag := range tags {
				snap.AddToCategory(tag, -1)
			}
			snap.AppendEvent(event)
		},
	})
}

// ReviewAdded records a new review on today's snapshot.
func (r *ActivityRecorder) ReviewAdded(user *domain.User, book *domain.Book) {
	now := time.Now()
	event := domain.ActivityEvent{
		Type:      domain.ActivityReviewAdded,
		UserID:    user.ID,
		UserName:  user.Name,
		BookID:    book.ID,
		BookTitle: book.Title,
		Timestamp: now,
	}
	r.enqueue(recordJob{
		dayKey: domain.DayKey(now),
		event:  event.Type,
		mutate: func(snap *domain.InventorySnapshot) {
			snap.AppendEvent(event)
		},
	})
}
