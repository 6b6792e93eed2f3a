package seats

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeatStatus is the durable status of a seat for a screening
type SeatStatus string

const (
	StatusAvailable SeatStatus = "AVAILABLE"
	StatusBooked    SeatStatus = "BOOKED"
)

// Seat is the durable per-screening seat record. Hold state lives only
// in the in-memory ledger; the database tracks AVAILABLE vs BOOKED.
type Seat struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ScreeningID uuid.UUID  `json:"screening_id" gorm:"type:uuid;not null;index:idx_seats_screening;uniqueIndex:idx_seats_screening_label,priority:1"`
	RowLabel    string     `json:"row_label" gorm:"not null;size:5;uniqueIndex:idx_seats_screening_label,priority:2"`
	Number      int        `json:"number" gorm:"not null;uniqueIndex:idx_seats_screening_label,priority:3"`
	Status      SeatStatus `json:"status" gorm:"type:varchar(20);default:'AVAILABLE'"`
	BookingID   *uuid.UUID `json:"booking_id,omitempty" gorm:"type:uuid"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Seat) TableName() string {
	return "seats"
}

// Label returns the human-readable seat label, e.g. "C7".
func (s *Seat) Label() string {
	return fmt.Sprintf("%s%d", s.RowLabel, s.Number)
}

// SeatView is a single seat in an availability snapshot
type SeatView struct {
	ID       string `json:"id"`
	RowLabel string `json:"row_label"`
	Number   int    `json:"number"`
	Status   string `json:"status"` // AVAILABLE, HELD or BOOKED
}

// AvailabilitySnapshot is the seat map returned for a screening.
// It is a point-in-time view and may lag the ledger by the cache TTL.
type AvailabilitySnapshot struct {
	ScreeningID string     `json:"screening_id"`
	Seats       []SeatView `json:"seats"`
	Available   int        `json:"available"`
	Held        int        `json:"held"`
	Booked      int        `json:"booked"`
	FetchedAt   time.Time  `json:"fetched_at"`
}
