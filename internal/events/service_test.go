package events_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketly/internal/events"
	"ticketly/internal/shared/apperrors"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"
)

type fakeEventRepo struct {
	byID  map[int64]*events.Event
	reads int
}

func (f *fakeEventRepo) Create(ctx context.Context, event *events.Event) error {
	f.byID[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	f.reads++
	if event, ok := f.byID[id]; ok {
		return event, nil
	}
	return nil, fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeEventRepo) List(ctx context.Context) ([]events.Event, error) {
	var all []events.Event
	for _, event := range f.byID {
		all = append(all, *event)
	}
	return all, nil
}

// memoryCache keeps serialized values in a map, matching the round trip a
// Redis-backed cache performs.
type memoryCache struct {
	cache.Service
	mu     sync.Mutex
	values map[string][]byte
}

func (c *memoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if data, ok := c.values[key]; ok {
		return json.Unmarshal(data, dest)
	}
	value, err := fetcher()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return json.Unmarshal(data, dest)
}

func sampleEvent(id int64) *events.Event {
	return &events.Event{
		ID:       id,
		Name:     "Symphony Orchestra Gala",
		Venue:    "Main Hall",
		StartsAt: time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC),
	}
}

func TestFindByIDServesRepeatsFromCache(t *testing.T) {
	repo := &fakeEventRepo{byID: map[int64]*events.Event{1: sampleEvent(1)}}
	cached := &memoryCache{values: make(map[string][]byte)}
	svc := events.NewService(repo, cached, time.Minute, logger.GetDefault())

	for i := 0; i < 3; i++ {
		event, err := svc.FindByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Symphony Orchestra Gala", event.Name)
	}

	assert.Equal(t, 1, repo.reads, "only the first lookup may hit the repository")
}

func TestFindByIDWithoutCache(t *testing.T) {
	repo := &fakeEventRepo{byID: map[int64]*events.Event{1: sampleEvent(1)}}
	svc := events.NewService(repo, nil, time.Minute, logger.GetDefault())

	event, err := svc.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), event.ID)

	_, err = svc.FindByID(context.Background(), 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 2, repo.reads)
}

func TestFindByIDMissDoesNotPoisonCache(t *testing.T) {
	repo := &fakeEventRepo{byID: map[int64]*events.Event{}}
	cached := &memoryCache{values: make(map[string][]byte)}
	svc := events.NewService(repo, cached, time.Minute, logger.GetDefault())

	_, err := svc.FindByID(context.Background(), 7)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, cached.values)

	// The event shows up later and must be found.
	repo.byID[7] = sampleEvent(7)
	event, err := svc.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), event.ID)
}

func TestListMapsCatalogItems(t *testing.T) {
	repo := &fakeEventRepo{byID: map[int64]*events.Event{1: sampleEvent(1)}}
	svc := events.NewService(repo, nil, time.Minute, logger.GetDefault())

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, "Symphony Orchestra Gala", items[0].Name)
	assert.Equal(t, "Main Hall", items[0].Venue)
}
