package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// CreateInTx inserts an outbox row inside the caller's transaction so the
	// event commits or rolls back together with the state change.
	CreateInTx(tx *gorm.DB, event *Event) error

	FetchUnpublished(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, publishErr error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// NewEvent builds an outbox row for the given payload. Each call gets a fresh
// occurrence ID.
func NewEvent(bookingID int64, eventType string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &Event{
		OccurrenceID: uuid.New().String(),
		BookingID:    bookingID,
		EventType:    eventType,
		Payload:      data,
	}, nil
}

func (r *repository) CreateInTx(tx *gorm.DB, event *Event) error {
	return tx.Create(event).Error
}

// FetchUnpublished returns pending rows oldest first, so events for a booking
// reach the broker in the order they were recorded.
func (r *repository) FetchUnpublished(ctx context.Context, limit int) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *repository) MarkPublished(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"published_at": now,
			"last_error":   nil,
		}).Error
}

func (r *repository) MarkFailed(ctx context.Context, id int64, publishErr error) error {
	msg := publishErr.Error()
	return r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"last_error":    msg,
		}).Error
}
