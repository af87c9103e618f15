package events

import (
	"context"
	"fmt"
	"time"

	"ticketly/pkg/cache"
	"ticketly/pkg/logger"
)

// Service is the cache-fronted catalog lookup. All event reads, including
// those made from other services, must go through FindByID so the cache is
// never bypassed.
type Service interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context) ([]ListEventsResponseItem, error)
}

type service struct {
	repo     Repository
	cache    cache.Service
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewService(repo Repository, cacheSvc cache.Service, cacheTTL time.Duration, log *logger.Logger) Service {
	return &service{
		repo:     repo,
		cache:    cacheSvc,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func (s *service) Create(ctx context.Context, event *Event) error {
	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (s *service) FindByID(ctx context.Context, id int64) (*Event, error) {
	if s.cache == nil {
		return s.repo.GetByID(ctx, id)
	}

	var event Event
	key := cacheKey(id)
	err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	}, &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *service) List(ctx context.Context) ([]ListEventsResponseItem, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ListEventsResponseItem, 0, len(events))
	for _, e := range events {
		items = append(items, ListEventsResponseItem{
			ID:       e.ID,
			Name:     e.Name,
			Venue:    e.Venue,
			StartsAt: e.StartsAt,
		})
	}
	return items, nil
}

func cacheKey(id int64) string {
	return fmt.Sprintf("ticketly:events:%d", id)
}
