package bookings

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BookingRef    string        `json:"booking_ref" gorm:"uniqueIndex;not null;size:20"`
	UserID        uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	ScreeningID   uuid.UUID     `json:"screening_id" gorm:"type:uuid;not null;index"`
	Status        Status        `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TotalPrice    float64       `json:"total_price" gorm:"not null;check:total_price >= 0"`
	HoldID        *uuid.UUID    `json:"-" gorm:"type:uuid"`
	HoldExpiresAt *time.Time    `json:"hold_expires_at,omitempty"`
	ConfirmedAt   *time.Time    `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	Seats         []BookingSeat `json:"seats" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	Payments      []Payment     `json:"payments,omitempty" gorm:"foreignKey:BookingID"`
}

func (Booking) TableName() string {
	return "bookings"
}

// SeatIDs returns the ledger seat IDs of this booking.
func (b *Booking) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(b.Seats))
	for i := range b.Seats {
		ids[i] = b.Seats[i].SeatID
	}
	return ids
}

// BookingSeat snapshots one reserved seat at booking time. The label
// and price are copied so the ticket stays stable even if the seat
// inventory changes later.
type BookingSeat struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BookingID uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	SeatID    uuid.UUID `json:"seat_id" gorm:"type:uuid;not null"`
	SeatLabel string    `json:"seat_label" gorm:"not null;size:10"`
	Price     float64   `json:"price" gorm:"not null"`
}

func (BookingSeat) TableName() string {
	return "booking_seats"
}

// PaymentStatus is the outcome of one charge attempt. REVERSED records
// a charge that went through but had to be refunded because the seat
// hold died before the booking could be confirmed.
type PaymentStatus string

const (
	PaymentSuccess  PaymentStatus = "SUCCESS"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentReversed PaymentStatus = "REVERSED"
)

type Payment struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BookingID     uuid.UUID     `json:"-" gorm:"type:uuid;not null;index"`
	TransactionID string        `json:"transaction_id" gorm:"not null;size:50"`
	Amount        float64       `json:"amount" gorm:"not null"`
	Method        string        `json:"method" gorm:"not null;size:30"`
	Status        PaymentStatus `json:"status" gorm:"type:varchar(20);not null"`
	FailureReason string        `json:"failure_reason,omitempty" gorm:"size:255"`
	ProcessedAt   time.Time     `json:"processed_at"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

type CreateBookingRequest struct {
	ScreeningID string   `json:"screening_id" binding:"required,uuid"`
	SeatIDs     []string `json:"seat_ids" binding:"required,min=1,dive,uuid"`
}

type PaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=card upi wallet"`
	Result        string `json:"result" binding:"omitempty,oneof=SUCCESS FAILURE"`
}

// generateBookingRef builds a human-friendly reference like
// BK-20260830-QXJZTK.
func generateBookingRef() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("BK-%s-%06d", time.Now().Format("20060102"), time.Now().UnixNano()%1000000)
	}
	for i := range buf {
		buf[i] = letters[int(buf[i])%len(letters)]
	}
	return fmt.Sprintf("BK-%s-%s", time.Now().Format("20060102"), string(buf))
}
