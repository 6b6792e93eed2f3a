package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID, payment *Payment) (*Booking, error)
	MarkCancelled(ctx context.Context, id uuid.UUID, fromStatus Status, payment *Payment) (*Booking, error)
	MarkExpired(ctx context.Context, id uuid.UUID) (*Booking, error)
	RecordPayment(ctx context.Context, payment *Payment) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("Payments").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var list []Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// MarkConfirmed moves a PENDING booking to CONFIRMED and records the
// successful payment in the same transaction. The status guard makes
// the update race-safe against the expiry sweeper.
func (r *repository) MarkConfirmed(ctx context.Context, id uuid.UUID, payment *Payment) (*Booking, error) {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ?", id, StatusPending).
			Updates(map[string]interface{}{
				"status":       StatusConfirmed,
				"confirmed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &InvalidTransitionError{From: StatusPending, To: StatusConfirmed}
		}
		if payment != nil {
			payment.BookingID = id
			if err := tx.Create(payment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// MarkCancelled moves a booking from the given status to CANCELLED,
// optionally recording a failed payment attempt alongside.
func (r *repository) MarkCancelled(ctx context.Context, id uuid.UUID, fromStatus Status, payment *Payment) (*Booking, error) {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ?", id, fromStatus).
			Updates(map[string]interface{}{
				"status":       StatusCancelled,
				"cancelled_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &InvalidTransitionError{From: fromStatus, To: StatusCancelled}
		}
		if payment != nil {
			payment.BookingID = id
			if err := tx.Create(payment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// RecordPayment persists a payment row outside any status transition,
// used for charges that must stay on the audit trail even though the
// booking never reached CONFIRMED.
func (r *repository) RecordPayment(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// MarkExpired moves a PENDING booking to EXPIRED. A zero-row update is
// a benign race with confirm or cancel and surfaces as no error; the
// caller re-reads the booking to see who won.
func (r *repository) MarkExpired(ctx context.Context, id uuid.UUID) (*Booking, error) {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("status", StatusExpired)
	if result.Error != nil {
		return nil, result.Error
	}
	return r.GetByID(ctx, id)
}
