package seats_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketly/internal/seats"
	"ticketly/pkg/logger"
)

type fakeSeatRepo struct {
	seats.Repository
	created []seats.Seat
}

func (f *fakeSeatRepo) CreateSeats(ctx context.Context, batch []seats.Seat) error {
	f.created = append(f.created, batch...)
	return nil
}

func TestGenerateForEventBuildsFullGrid(t *testing.T) {
	repo := &fakeSeatRepo{}
	service := seats.NewService(repo, logger.GetDefault())

	count, err := service.GenerateForEvent(context.Background(), 5, 12, 10)
	require.NoError(t, err)
	assert.Equal(t, 120, count)
	require.Len(t, repo.created, 120)

	first := repo.created[0]
	assert.Equal(t, int64(5), first.EventID)
	assert.Equal(t, 1, first.RowNumber)
	assert.Equal(t, 1, first.SeatNumber)
	assert.Equal(t, seats.StatusFree, first.Status)

	last := repo.created[119]
	assert.Equal(t, 12, last.RowNumber)
	assert.Equal(t, 10, last.SeatNumber)
}

func TestGenerateForEventPricesByRow(t *testing.T) {
	repo := &fakeSeatRepo{}
	service := seats.NewService(repo, logger.GetDefault())

	_, err := service.GenerateForEvent(context.Background(), 1, 12, 1)
	require.NoError(t, err)

	byRow := make(map[int]decimal.Decimal)
	for _, seat := range repo.created {
		byRow[seat.RowNumber] = seat.Price
	}

	assert.True(t, byRow[1].Equal(decimal.NewFromInt(20000)))
	assert.True(t, byRow[2].Equal(decimal.NewFromInt(20000)))
	assert.True(t, byRow[3].Equal(decimal.NewFromInt(15000)))
	assert.True(t, byRow[5].Equal(decimal.NewFromInt(15000)))
	assert.True(t, byRow[6].Equal(decimal.NewFromInt(10000)))
	assert.True(t, byRow[10].Equal(decimal.NewFromInt(10000)))
	assert.True(t, byRow[11].Equal(decimal.NewFromInt(5000)))
}

func TestGenerateForEventRejectsBadDimensions(t *testing.T) {
	repo := &fakeSeatRepo{}
	service := seats.NewService(repo, logger.GetDefault())

	_, err := service.GenerateForEvent(context.Background(), 1, 0, 10)
	assert.Error(t, err)
	assert.Empty(t, repo.created)
}
