package seats

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateSeats(ctx context.Context, seats []Seat) error
	GetByScreeningID(ctx context.Context, screeningID uuid.UUID) ([]Seat, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Seat, error)
	MarkBooked(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error
	MarkAvailable(ctx context.Context, seatIDs []uuid.UUID) error
	ListScreeningIDs(ctx context.Context) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).CreateInBatches(seats, 500).Error
}

func (r *repository) GetByScreeningID(ctx context.Context, screeningID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("screening_id = ?", screeningID).
		Order("row_label ASC, number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&seats).Error
	return seats, err
}

func (r *repository) MarkBooked(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Seat{}).
		Where("id IN ?", seatIDs).
		Updates(map[string]interface{}{
			"status":     StatusBooked,
			"booking_id": bookingID,
		}).Error
}

func (r *repository) MarkAvailable(ctx context.Context, seatIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Seat{}).
		Where("id IN ?", seatIDs).
		Updates(map[string]interface{}{
			"status":     StatusAvailable,
			"booking_id": nil,
		}).Error
}

func (r *repository) ListScreeningIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Distinct("screening_id").
		Pluck("screening_id", &ids).Error
	return ids, err
}
