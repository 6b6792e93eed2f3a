package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a booking lifecycle event on the wire
type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
	EventBookingExpired   EventType = "booking.expired"
)

// BookingEvent is the message published for every booking transition.
// Downstream consumers (email, analytics) key off Type.
type BookingEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        EventType `json:"type"`
	BookingID   uuid.UUID `json:"booking_id"`
	BookingRef  string    `json:"booking_ref"`
	UserID      uuid.UUID `json:"user_id"`
	ScreeningID uuid.UUID `json:"screening_id"`
	SeatCount   int       `json:"seat_count"`
	TotalPrice  float64   `json:"total_price"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType EventType, bookingID uuid.UUID, bookingRef string, userID, screeningID uuid.UUID, seatCount int, totalPrice float64) *BookingEvent {
	return &BookingEvent{
		ID:          uuid.New(),
		Type:        eventType,
		BookingID:   bookingID,
		BookingRef:  bookingRef,
		UserID:      userID,
		ScreeningID: screeningID,
		SeatCount:   seatCount,
		TotalPrice:  totalPrice,
		OccurredAt:  time.Now(),
	}
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one user to the same partition so
// consumers see a user's bookings in order.
func (e *BookingEvent) PartitionKey() string {
	return e.UserID.String()
}

// Publisher emits booking events. Publishing is best-effort; callers
// log failures and move on rather than failing the booking operation.
type Publisher interface {
	Publish(ctx context.Context, event *BookingEvent) error
	Close() error
}

// NopPublisher discards every event. Used when Kafka is disabled and
// in tests.
type NopPublisher struct{}

func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

func (NopPublisher) Publish(ctx context.Context, event *BookingEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
