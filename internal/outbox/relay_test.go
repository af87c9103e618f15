package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ticketly/internal/outbox"
	"ticketly/pkg/logger"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	events []outbox.Event
}

func (m *memoryRepo) add(bookingID int64, eventType string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.events = append(m.events, outbox.Event{
		ID:           m.nextID,
		OccurrenceID: uuid.New().String(),
		BookingID:    bookingID,
		EventType:    eventType,
		Payload:      []byte(`{}`),
	})
	return m.nextID
}

func (m *memoryRepo) CreateInTx(tx *gorm.DB, event *outbox.Event) error {
	m.add(event.BookingID, event.EventType)
	return nil
}

func (m *memoryRepo) FetchUnpublished(ctx context.Context, limit int) ([]outbox.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []outbox.Event
	for _, event := range m.events {
		if event.PublishedAt == nil {
			pending = append(pending, event)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (m *memoryRepo) MarkPublished(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			now := time.Now()
			m.events[i].PublishedAt = &now
			m.events[i].LastError = nil
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memoryRepo) MarkFailed(ctx context.Context, id int64, publishErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			msg := publishErr.Error()
			m.events[i].AttemptCount++
			m.events[i].LastError = &msg
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memoryRepo) get(id int64) outbox.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.events {
		if event.ID == id {
			return event
		}
	}
	return outbox.Event{}
}

func (m *memoryRepo) pendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, event := range m.events {
		if event.PublishedAt == nil {
			count++
		}
	}
	return count
}

// recordingPublisher accepts everything but fails occurrence IDs listed in
// failing until they are removed.
type recordingPublisher struct {
	mu        sync.Mutex
	published []string
	failing   map[string]bool
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{failing: make(map[string]bool)}
}

func (p *recordingPublisher) Publish(event *outbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing[event.OccurrenceID] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event.EventType)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) publishedTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.published...)
}

func (p *recordingPublisher) setFailing(occurrenceID string, fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[occurrenceID] = fail
}

func TestFlushPublishesOldestFirst(t *testing.T) {
	repo := &memoryRepo{}
	pub := newRecordingPublisher()
	relay := outbox.NewRelay(repo, pub, time.Minute, 100, logger.GetDefault())

	repo.add(1, outbox.EventTypeBookingCreated)
	repo.add(1, outbox.EventTypeSeatAddedToBooking)
	repo.add(2, outbox.EventTypeBookingCreated)

	relay.Flush(context.Background())

	assert.Equal(t, []string{
		outbox.EventTypeBookingCreated,
		outbox.EventTypeSeatAddedToBooking,
		outbox.EventTypeBookingCreated,
	}, pub.publishedTypes())
	assert.Equal(t, 0, repo.pendingCount())
}

func TestFlushStopsBatchOnFailure(t *testing.T) {
	repo := &memoryRepo{}
	pub := newRecordingPublisher()
	relay := outbox.NewRelay(repo, pub, time.Minute, 100, logger.GetDefault())

	firstID := repo.add(1, outbox.EventTypeBookingCreated)
	repo.add(1, outbox.EventTypeSeatAddedToBooking)
	pub.setFailing(repo.get(firstID).OccurrenceID, true)

	relay.Flush(context.Background())

	// Nothing published and the later event is still waiting behind the
	// failed one.
	assert.Empty(t, pub.publishedTypes())
	assert.Equal(t, 2, repo.pendingCount())

	failed := repo.get(firstID)
	assert.Equal(t, 1, failed.AttemptCount)
	require.NotNil(t, failed.LastError)
	assert.Contains(t, *failed.LastError, "broker unavailable")
}

func TestFlushRetriesAfterRecovery(t *testing.T) {
	repo := &memoryRepo{}
	pub := newRecordingPublisher()
	relay := outbox.NewRelay(repo, pub, time.Minute, 100, logger.GetDefault())

	firstID := repo.add(1, outbox.EventTypeBookingCreated)
	repo.add(1, outbox.EventTypeBookingCancelled)
	occurrence := repo.get(firstID).OccurrenceID

	pub.setFailing(occurrence, true)
	relay.Flush(context.Background())
	require.Equal(t, 2, repo.pendingCount())

	pub.setFailing(occurrence, false)
	relay.Flush(context.Background())

	assert.Equal(t, []string{
		outbox.EventTypeBookingCreated,
		outbox.EventTypeBookingCancelled,
	}, pub.publishedTypes())
	assert.Equal(t, 0, repo.pendingCount())

	recovered := repo.get(firstID)
	assert.Nil(t, recovered.LastError)
	assert.NotNil(t, recovered.PublishedAt)
}

func TestNotifyWakesRelayBeforeTick(t *testing.T) {
	repo := &memoryRepo{}
	pub := newRecordingPublisher()
	// The interval is far longer than the test; only Notify can trigger the
	// flush in time.
	relay := outbox.NewRelay(repo, pub, time.Hour, 100, logger.GetDefault())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		relay.Start(ctx)
		close(done)
	}()

	repo.add(1, outbox.EventTypeBookingCreated)
	relay.Notify()

	require.Eventually(t, func() bool {
		return repo.pendingCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop on context cancel")
	}
}

func TestFlushHonorsBatchSize(t *testing.T) {
	repo := &memoryRepo{}
	pub := newRecordingPublisher()
	relay := outbox.NewRelay(repo, pub, time.Minute, 2, logger.GetDefault())

	for i := 0; i < 5; i++ {
		repo.add(int64(i), outbox.EventTypeBookingCreated)
	}

	relay.Flush(context.Background())
	assert.Equal(t, 3, repo.pendingCount())

	relay.Flush(context.Background())
	relay.Flush(context.Background())
	assert.Equal(t, 0, repo.pendingCount())
}
