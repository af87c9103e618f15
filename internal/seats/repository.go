package seats

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ticketly/internal/shared/apperrors"
)

type Repository interface {
	CreateSeats(ctx context.Context, seats []Seat) error
	GetSeatByID(ctx context.Context, id int64) (*Seat, error)
	ListByEvent(ctx context.Context, eventID int64, query ListQuery) ([]Seat, int64, error)

	// Transaction-scoped helpers. Callers own the surrounding gorm
	// transaction; these lock and mutate rows inside it.
	GetForUpdate(tx *gorm.DB, id int64) (*Seat, error)
	Reserve(tx *gorm.DB, seat *Seat) error
	Free(tx *gorm.DB, seat *Seat) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).CreateInBatches(&seats, 500).Error
}

func (r *repository) GetSeatByID(ctx context.Context, id int64) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).First(&seat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("seat %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &seat, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID int64, query ListQuery) ([]Seat, int64, error) {
	db := r.db.WithContext(ctx).Model(&Seat{}).Where("event_id = ?", eventID)
	if query.Row != nil {
		db = db.Where("row_number = ?", *query.Row)
	}
	if query.Status != nil {
		db = db.Where("status = ?", *query.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var seats []Seat
	err := db.
		Order("row_number ASC, seat_number ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&seats).Error
	return seats, total, err
}

// GetForUpdate loads the seat row with a FOR UPDATE lock inside the caller's
// transaction.
func (r *repository) GetForUpdate(tx *gorm.DB, id int64) (*Seat, error) {
	var seat Seat
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("seat %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &seat, nil
}

// Reserve flips a FREE seat to RESERVED. The seat must have been loaded with
// GetForUpdate in the same transaction.
func (r *repository) Reserve(tx *gorm.DB, seat *Seat) error {
	if !seat.IsFree() {
		return fmt.Errorf("seat %d is already reserved: %w", seat.ID, apperrors.ErrSeatUnavailable)
	}
	seat.Status = StatusReserved
	return tx.Model(seat).Update("status", StatusReserved).Error
}

// Free flips a seat back to FREE. Freeing an already free seat is a no-op.
func (r *repository) Free(tx *gorm.DB, seat *Seat) error {
	if seat.IsFree() {
		return nil
	}
	seat.Status = StatusFree
	return tx.Model(seat).Update("status", StatusFree).Error
}
