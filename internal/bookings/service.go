package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cinebook/internal/notifications"
	"cinebook/internal/payments"
	"cinebook/internal/screenings"
	"cinebook/internal/seats"

	"github.com/google/uuid"
)

// SeatLedger is the slice of the in-memory seat arena the booking
// service depends on. *seats.Ledger satisfies it.
type SeatLedger interface {
	TryHold(screeningID uuid.UUID, seatIDs []uuid.UUID, userID uuid.UUID, ttl time.Duration) (*seats.Hold, error)
	AttachBooking(holdID, bookingID uuid.UUID) error
	GetHold(holdID uuid.UUID) (*seats.Hold, error)
	Commit(holdID, bookingID uuid.UUID) ([]uuid.UUID, error)
	Release(holdID uuid.UUID) []uuid.UUID
	ReleaseBooking(bookingID uuid.UUID) []uuid.UUID
	ExpiredHolds(now time.Time) []seats.Hold
}

// SeatStore is the durable seat inventory. seats.Repository satisfies it.
type SeatStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]seats.Seat, error)
	MarkBooked(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error
	MarkAvailable(ctx context.Context, seatIDs []uuid.UUID) error
}

// ScreeningCatalog resolves screenings for booking validation and
// pricing. screenings.Service satisfies it.
type ScreeningCatalog interface {
	GetScreening(ctx context.Context, id uuid.UUID) (*screenings.ScreeningResponse, error)
}

type Service interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req *CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error)
	ConfirmPayment(ctx context.Context, userID, bookingID uuid.UUID, req *PaymentRequest) (*Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error)
	ExpireBooking(ctx context.Context, bookingID uuid.UUID) error
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error)
}

type Config struct {
	HoldTTL            time.Duration
	MaxSeatsPerBooking int
}

type service struct {
	repo      Repository
	ledger    SeatLedger
	seatStore SeatStore
	catalog   ScreeningCatalog
	gateway   payments.Gateway
	publisher notifications.Publisher
	config    Config
	logger    *slog.Logger
}

func NewService(repo Repository, ledger SeatLedger, seatStore SeatStore, catalog ScreeningCatalog, gateway payments.Gateway, publisher notifications.Publisher, cfg Config, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		ledger:    ledger,
		seatStore: seatStore,
		catalog:   catalog,
		gateway:   gateway,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

// CreateBooking places an all-or-nothing hold on the requested seats
// and records a PENDING booking tied to that hold. If any seat is
// taken, nothing is held and the conflict detail is returned.
func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, req *CreateBookingRequest) (*Booking, error) {
	if len(req.SeatIDs) > s.config.MaxSeatsPerBooking {
		return nil, ErrTooManySeats
	}

	screeningID, err := uuid.Parse(req.ScreeningID)
	if err != nil {
		return nil, fmt.Errorf("invalid screening id: %w", err)
	}
	seatIDs := make([]uuid.UUID, len(req.SeatIDs))
	for i, raw := range req.SeatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid seat id %q: %w", raw, err)
		}
		seatIDs[i] = id
	}

	screening, err := s.catalog.GetScreening(ctx, screeningID)
	if err != nil {
		if errors.Is(err, screenings.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !screening.Status.IsBookable() {
		return nil, ErrScreeningNotBookable
	}

	hold, err := s.ledger.TryHold(screeningID, seatIDs, userID, s.config.HoldTTL)
	if err != nil {
		return nil, err
	}

	booking, err := s.buildPendingBooking(ctx, userID, screening, hold)
	if err != nil {
		s.ledger.Release(hold.ID)
		return nil, err
	}

	if err := s.ledger.AttachBooking(hold.ID, booking.ID); err != nil {
		// hold evaporated between TryHold and here, which only
		// happens with a sub-request-latency TTL
		s.logger.Warn("hold vanished before booking attach", "booking_id", booking.ID, "hold_id", hold.ID)
	}

	s.publish(ctx, notifications.EventBookingCreated, booking)
	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"booking_ref", booking.BookingRef,
		"user_id", userID,
		"seats", len(booking.Seats),
		"hold_expires_at", hold.ExpiresAt)
	return booking, nil
}

func (s *service) buildPendingBooking(ctx context.Context, userID uuid.UUID, screening *screenings.ScreeningResponse, hold *seats.Hold) (*Booking, error) {
	seatRows, err := s.seatStore.GetByIDs(ctx, hold.SeatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	if len(seatRows) != len(hold.SeatIDs) {
		return nil, seats.ErrNotFound
	}

	bookingSeats := make([]BookingSeat, len(seatRows))
	total := 0.0
	for i := range seatRows {
		bookingSeats[i] = BookingSeat{
			SeatID:    seatRows[i].ID,
			SeatLabel: seatRows[i].Label(),
			Price:     screening.BasePrice,
		}
		total += screening.BasePrice
	}

	holdID := hold.ID
	expiresAt := hold.ExpiresAt
	booking := &Booking{
		BookingRef:    generateBookingRef(),
		UserID:        userID,
		ScreeningID:   hold.ScreeningID,
		Status:        StatusPending,
		TotalPrice:    total,
		HoldID:        &holdID,
		HoldExpiresAt: &expiresAt,
		Seats:         bookingSeats,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}
	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}
	return booking, nil
}

// ConfirmPayment charges the customer and, on success, converts the
// hold into booked seats. A declined charge is a normal outcome: the
// booking moves to CANCELLED and the seats are released, with no error
// returned. An expired hold surfaces as seats.ErrHoldExpired and the
// booking moves to EXPIRED.
func (s *service) ConfirmPayment(ctx context.Context, userID, bookingID uuid.UUID, req *PaymentRequest) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}
	if booking.Status != StatusPending {
		return nil, &InvalidTransitionError{From: booking.Status, To: StatusConfirmed}
	}
	if booking.HoldID == nil {
		return nil, seats.ErrHoldNotFound
	}

	// never charge against a hold that is already dead
	hold, err := s.ledger.GetHold(*booking.HoldID)
	if err != nil || hold.Expired(time.Now()) {
		return nil, s.expireDeadHold(ctx, booking)
	}

	// the charge happens outside any seat lock
	result, err := s.gateway.Charge(ctx, &payments.ChargeRequest{
		BookingID:     booking.ID,
		UserID:        userID,
		Amount:        booking.TotalPrice,
		PaymentMethod: req.PaymentMethod,
		ForcedOutcome: payments.Outcome(req.Result),
	})
	if err != nil {
		return nil, fmt.Errorf("payment gateway error: %w", err)
	}

	if !result.Succeeded {
		return s.handleDeclinedPayment(ctx, booking, req.PaymentMethod, result)
	}

	seatIDs, err := s.ledger.Commit(*booking.HoldID, booking.ID)
	if err != nil {
		if errors.Is(err, seats.ErrHoldExpired) || errors.Is(err, seats.ErrHoldNotFound) {
			// the hold died mid-request, after a successful charge.
			// Keep the transaction on the audit trail as a reversal.
			reversal := &Payment{
				BookingID:     booking.ID,
				TransactionID: result.TransactionID,
				Amount:        booking.TotalPrice,
				Method:        req.PaymentMethod,
				Status:        PaymentReversed,
				FailureReason: "hold expired during confirmation, charge reversed",
				ProcessedAt:   result.ProcessedAt,
			}
			if recErr := s.repo.RecordPayment(ctx, reversal); recErr != nil {
				s.logger.Error("failed to record reversed payment", "booking_id", booking.ID, "transaction_id", result.TransactionID, "error", recErr)
			}
			return nil, s.expireDeadHold(ctx, booking)
		}
		return nil, err
	}

	payment := &Payment{
		TransactionID: result.TransactionID,
		Amount:        booking.TotalPrice,
		Method:        req.PaymentMethod,
		Status:        PaymentSuccess,
		ProcessedAt:   result.ProcessedAt,
	}
	confirmed, err := s.repo.MarkConfirmed(ctx, booking.ID, payment)
	if err != nil {
		// a concurrent cancel or expiry won the booking row; hand
		// the just-committed seats back
		freed := s.ledger.ReleaseBooking(booking.ID)
		s.logger.Warn("confirm lost booking row after seat commit, seats released",
			"booking_id", booking.ID, "seats_freed", len(freed), "error", err)
		return nil, err
	}

	if err := s.seatStore.MarkBooked(ctx, seatIDs, booking.ID); err != nil {
		s.logger.Error("failed to persist booked seats", "booking_id", booking.ID, "error", err)
	}

	s.publish(ctx, notifications.EventBookingConfirmed, confirmed)
	s.logger.Info("booking confirmed",
		"booking_id", confirmed.ID,
		"booking_ref", confirmed.BookingRef,
		"transaction_id", result.TransactionID)
	return confirmed, nil
}

// expireDeadHold moves a PENDING booking whose hold is gone to EXPIRED
// and reports the lapse to the caller.
func (s *service) expireDeadHold(ctx context.Context, booking *Booking) error {
	if booking.HoldID != nil {
		s.ledger.Release(*booking.HoldID)
	}
	if _, err := s.repo.MarkExpired(ctx, booking.ID); err != nil {
		s.logger.Error("failed to expire booking after dead hold", "booking_id", booking.ID, "error", err)
	}
	booking.Status = StatusExpired
	s.publish(ctx, notifications.EventBookingExpired, booking)
	return seats.ErrHoldExpired
}

func (s *service) handleDeclinedPayment(ctx context.Context, booking *Booking, method string, result *payments.ChargeResult) (*Booking, error) {
	s.ledger.Release(*booking.HoldID)

	payment := &Payment{
		TransactionID: result.TransactionID,
		Amount:        booking.TotalPrice,
		Method:        method,
		Status:        PaymentFailed,
		FailureReason: result.FailureReason,
		ProcessedAt:   result.ProcessedAt,
	}
	cancelled, err := s.repo.MarkCancelled(ctx, booking.ID, StatusPending, payment)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notifications.EventBookingCancelled, cancelled)
	s.logger.Info("payment declined, booking cancelled",
		"booking_id", booking.ID,
		"reason", result.FailureReason)
	return cancelled, nil
}

// CancelBooking releases the booking's seats and moves it to
// CANCELLED. Cancelling an already cancelled booking is a no-op;
// cancelling an expired one is an invalid transition.
func (s *service) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}

	switch booking.Status {
	case StatusCancelled:
		return booking, nil
	case StatusPending:
		if booking.HoldID != nil {
			s.ledger.Release(*booking.HoldID)
		}
		cancelled, err := s.repo.MarkCancelled(ctx, booking.ID, StatusPending, nil)
		if err != nil {
			return nil, err
		}
		s.publish(ctx, notifications.EventBookingCancelled, cancelled)
		return cancelled, nil
	case StatusConfirmed:
		freed := s.ledger.ReleaseBooking(booking.ID)
		cancelled, err := s.repo.MarkCancelled(ctx, booking.ID, StatusConfirmed, nil)
		if err != nil {
			return nil, err
		}
		if len(freed) > 0 {
			if err := s.seatStore.MarkAvailable(ctx, freed); err != nil {
				s.logger.Error("failed to free booked seats", "booking_id", booking.ID, "error", err)
			}
		}
		s.publish(ctx, notifications.EventBookingCancelled, cancelled)
		s.logger.Info("confirmed booking cancelled", "booking_id", booking.ID, "seats_freed", len(freed))
		return cancelled, nil
	default:
		return nil, &InvalidTransitionError{From: booking.Status, To: StatusCancelled}
	}
}

// ExpireBooking moves a PENDING booking whose hold lapsed to EXPIRED.
// Called by the sweeper; losing the race against a concurrent confirm
// or cancel is benign and leaves the booking untouched.
func (s *service) ExpireBooking(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if booking.Status != StatusPending {
		return nil
	}

	if booking.HoldID != nil {
		s.ledger.Release(*booking.HoldID)
	}
	updated, err := s.repo.MarkExpired(ctx, bookingID)
	if err != nil {
		return err
	}
	if updated.Status != StatusExpired {
		// confirm or cancel won the race
		return nil
	}

	s.publish(ctx, notifications.EventBookingExpired, updated)
	s.logger.Info("booking expired", "booking_id", bookingID, "booking_ref", updated.BookingRef)
	return nil
}

func (s *service) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) publish(ctx context.Context, eventType notifications.EventType, booking *Booking) {
	event := notifications.NewBookingEvent(
		eventType,
		booking.ID,
		booking.BookingRef,
		booking.UserID,
		booking.ScreeningID,
		len(booking.Seats),
		booking.TotalPrice,
	)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish booking event", "type", eventType, "booking_id", booking.ID, "error", err)
	}
}
