package outbox

import (
	"context"
	"time"

	"ticketly/pkg/logger"
)

// Relay drains unpublished outbox rows to the publisher. It wakes on a fixed
// interval and whenever Notify is called after a commit, and delivers at
// least once: a row is only marked published after the broker acknowledges
// it, so a crash in between causes a redelivery, never a loss.
type Relay struct {
	repo      Repository
	publisher Publisher
	logger    *logger.Logger

	interval  time.Duration
	batchSize int
	notify    chan struct{}
}

func NewRelay(repo Repository, publisher Publisher, interval time.Duration, batchSize int, log *logger.Logger) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		repo:      repo,
		publisher: publisher,
		logger:    log,
		interval:  interval,
		batchSize: batchSize,
		notify:    make(chan struct{}, 1),
	}
}

// Notify nudges the relay to flush without waiting for the next tick. Safe to
// call from any goroutine; extra nudges while a flush is pending coalesce.
func (r *Relay) Notify() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Start runs the relay loop until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-r.notify:
		}
		r.Flush(ctx)
	}
}

// Flush publishes one batch of pending rows. Rows that fail stay unpublished
// with their attempt count bumped and are retried on the next pass.
func (r *Relay) Flush(ctx context.Context) {
	events, err := r.repo.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		r.logger.ErrorWithContext(ctx, "Failed to fetch outbox events", err, nil)
		return
	}

	for i := range events {
		event := &events[i]
		if err := r.publisher.Publish(event); err != nil {
			r.logger.ErrorWithContext(ctx, "Failed to publish outbox event", err, map[string]interface{}{
				"occurrence_id": event.OccurrenceID,
				"event_type":    event.EventType,
				"booking_id":    event.BookingID,
				"attempt_count": event.AttemptCount + 1,
			})
			if markErr := r.repo.MarkFailed(ctx, event.ID, err); markErr != nil {
				r.logger.ErrorWithContext(ctx, "Failed to record outbox failure", markErr, map[string]interface{}{"outbox_id": event.ID})
			}
			// Stop the batch here so a booking's later events cannot
			// overtake this one.
			return
		}
		if err := r.repo.MarkPublished(ctx, event.ID); err != nil {
			r.logger.ErrorWithContext(ctx, "Failed to mark outbox event published", err, map[string]interface{}{"outbox_id": event.ID})
			return
		}
	}
}
