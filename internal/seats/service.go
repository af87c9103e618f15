package seats

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"ticketly/pkg/logger"
)

type Service interface {
	GetSeatByID(ctx context.Context, id int64) (*Seat, error)
	ListByEvent(ctx context.Context, eventID int64, query ListQuery) (*ListSeatsResponse, error)
	GenerateForEvent(ctx context.Context, eventID int64, rows, seatsPerRow int) (int, error)
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		logger: log,
	}
}

func (s *service) GetSeatByID(ctx context.Context, id int64) (*Seat, error) {
	return s.repo.GetSeatByID(ctx, id)
}

func (s *service) ListByEvent(ctx context.Context, eventID int64, query ListQuery) (*ListSeatsResponse, error) {
	seats, total, err := s.repo.ListByEvent(ctx, eventID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}

	items := make([]SeatResponse, 0, len(seats))
	for i := range seats {
		items = append(items, seats[i].ToResponse())
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	return &ListSeatsResponse{
		Seats:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// GenerateForEvent creates the full seat grid for an event. Prices are tiered
// by row, front rows costing more.
func (s *service) GenerateForEvent(ctx context.Context, eventID int64, rows, seatsPerRow int) (int, error) {
	if rows < 1 || seatsPerRow < 1 {
		return 0, fmt.Errorf("invalid hall dimensions %dx%d", rows, seatsPerRow)
	}

	seats := make([]Seat, 0, rows*seatsPerRow)
	for row := 1; row <= rows; row++ {
		price := priceForRow(row)
		for num := 1; num <= seatsPerRow; num++ {
			seats = append(seats, Seat{
				EventID:    eventID,
				RowNumber:  row,
				SeatNumber: num,
				Status:     StatusFree,
				Price:      price,
			})
		}
	}

	if err := s.repo.CreateSeats(ctx, seats); err != nil {
		return 0, fmt.Errorf("failed to create seats: %w", err)
	}
	return len(seats), nil
}

func priceForRow(row int) decimal.Decimal {
	switch {
	case row <= 2:
		return decimal.NewFromInt(20000)
	case row <= 5:
		return decimal.NewFromInt(15000)
	case row <= 10:
		return decimal.NewFromInt(10000)
	default:
		return decimal.NewFromInt(5000)
	}
}
