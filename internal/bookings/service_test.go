package bookings

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cinebook/internal/notifications"
	"cinebook/internal/payments"
	"cinebook/internal/screenings"
	"cinebook/internal/seats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking

	// onMarkConfirmed runs before MarkConfirmed takes the lock, letting
	// tests interleave another transition mid-confirm
	onMarkConfirmed func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (r *fakeRepo) Create(ctx context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = uuid.New()
	for i := range booking.Seats {
		booking.Seats[i].BookingID = booking.ID
	}
	booking.CreatedAt = time.Now()
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			list = append(list, *b)
		}
	}
	return list, nil
}

func (r *fakeRepo) MarkConfirmed(ctx context.Context, id uuid.UUID, payment *Payment) (*Booking, error) {
	if r.onMarkConfirmed != nil {
		r.onMarkConfirmed()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != StatusPending {
		return nil, &InvalidTransitionError{From: StatusPending, To: StatusConfirmed}
	}
	now := time.Now()
	b.Status = StatusConfirmed
	b.ConfirmedAt = &now
	if payment != nil {
		payment.BookingID = id
		b.Payments = append(b.Payments, *payment)
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) MarkCancelled(ctx context.Context, id uuid.UUID, fromStatus Status, payment *Payment) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != fromStatus {
		return nil, &InvalidTransitionError{From: fromStatus, To: StatusCancelled}
	}
	now := time.Now()
	b.Status = StatusCancelled
	b.CancelledAt = &now
	if payment != nil {
		payment.BookingID = id
		b.Payments = append(b.Payments, *payment)
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) MarkExpired(ctx context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status == StatusPending {
		b.Status = StatusExpired
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) RecordPayment(ctx context.Context, payment *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[payment.BookingID]
	if !ok {
		return ErrNotFound
	}
	b.Payments = append(b.Payments, *payment)
	return nil
}

type fakeSeatStore struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]seats.Seat
	booked    [][]uuid.UUID
	available [][]uuid.UUID
}

func newFakeSeatStore() *fakeSeatStore {
	return &fakeSeatStore{rows: make(map[uuid.UUID]seats.Seat)}
}

func (s *fakeSeatStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]seats.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []seats.Seat
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *fakeSeatStore) MarkBooked(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.booked = append(s.booked, seatIDs)
	return nil
}

func (s *fakeSeatStore) MarkAvailable(ctx context.Context, seatIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = append(s.available, seatIDs)
	return nil
}

type fakeCatalog struct {
	screening *screenings.ScreeningResponse
}

func (c *fakeCatalog) GetScreening(ctx context.Context, id uuid.UUID) (*screenings.ScreeningResponse, error) {
	if c.screening == nil || c.screening.ID != id.String() {
		return nil, screenings.ErrNotFound
	}
	return c.screening, nil
}

// countingGateway wraps a gateway, counting charges and optionally
// stalling each one so tests can lapse a hold mid-charge.
type countingGateway struct {
	mu    sync.Mutex
	inner payments.Gateway
	delay time.Duration
	calls int
}

func (g *countingGateway) Charge(ctx context.Context, req *payments.ChargeRequest) (*payments.ChargeResult, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	return g.inner.Charge(ctx, req)
}

func (g *countingGateway) chargeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fixture struct {
	service     Service
	ledger      *seats.Ledger
	repo        *fakeRepo
	seatStore   *fakeSeatStore
	catalog     *fakeCatalog
	config      Config
	screeningID uuid.UUID
	seatIDs     []uuid.UUID
	userID      uuid.UUID
}

func newFixture(t *testing.T, holdTTL time.Duration) *fixture {
	t.Helper()

	ledger := seats.NewLedger()
	screeningID := uuid.New()
	store := newFakeSeatStore()

	seatIDs := make([]uuid.UUID, 5)
	ledgerSeats := make([]seats.LedgerSeat, 5)
	for i := range seatIDs {
		seatIDs[i] = uuid.New()
		ledgerSeats[i] = seats.LedgerSeat{ID: seatIDs[i]}
		store.rows[seatIDs[i]] = seats.Seat{
			ID:          seatIDs[i],
			ScreeningID: screeningID,
			RowLabel:    "A",
			Number:      i + 1,
			Status:      seats.StatusAvailable,
		}
	}
	ledger.RegisterScreening(screeningID, ledgerSeats)

	catalog := &fakeCatalog{screening: &screenings.ScreeningResponse{
		ID:        screeningID.String(),
		Status:    screenings.StatusActive,
		BasePrice: 12.50,
	}}

	repo := newFakeRepo()
	cfg := Config{
		HoldTTL:            holdTTL,
		MaxSeatsPerBooking: 4,
	}
	svc := NewService(repo, ledger, store, catalog, payments.NewSimulatedGateway(), notifications.NewNopPublisher(), cfg, slog.Default())

	return &fixture{
		service:     svc,
		ledger:      ledger,
		repo:        repo,
		seatStore:   store,
		catalog:     catalog,
		config:      cfg,
		screeningID: screeningID,
		seatIDs:     seatIDs,
		userID:      uuid.New(),
	}
}

// serviceWithGateway rebuilds the service on the fixture's state with a
// different payment gateway.
func (f *fixture) serviceWithGateway(gw payments.Gateway) Service {
	return NewService(f.repo, f.ledger, f.seatStore, f.catalog, gw, notifications.NewNopPublisher(), f.config, slog.Default())
}

func (f *fixture) createBooking(t *testing.T, seatCount int) *Booking {
	t.Helper()
	req := &CreateBookingRequest{ScreeningID: f.screeningID.String()}
	for i := 0; i < seatCount; i++ {
		req.SeatIDs = append(req.SeatIDs, f.seatIDs[i].String())
	}
	booking, err := f.service.CreateBooking(context.Background(), f.userID, req)
	require.NoError(t, err)
	return booking
}

func TestCreateBookingHoldsSeats(t *testing.T) {
	f := newFixture(t, time.Minute)

	booking := f.createBooking(t, 2)
	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, 25.0, booking.TotalPrice)
	assert.Len(t, booking.Seats, 2)
	assert.NotNil(t, booking.HoldID)
	assert.NotNil(t, booking.HoldExpiresAt)
	assert.Regexp(t, `^BK-\d{8}-`, booking.BookingRef)

	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotHeld, snapshot[f.seatIDs[0]])
	assert.Equal(t, seats.SlotHeld, snapshot[f.seatIDs[1]])
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[2]])
}

func TestCreateBookingSeatConflict(t *testing.T) {
	f := newFixture(t, time.Minute)

	f.createBooking(t, 2)

	req := &CreateBookingRequest{
		ScreeningID: f.screeningID.String(),
		SeatIDs:     []string{f.seatIDs[1].String(), f.seatIDs[2].String()},
	}
	_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)

	ue, ok := seats.IsUnavailable(err)
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{f.seatIDs[1]}, ue.ConflictingSeats)

	// the conflicting request claimed nothing
	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[2]])
}

func TestCreateBookingTooManySeats(t *testing.T) {
	f := newFixture(t, time.Minute)

	req := &CreateBookingRequest{ScreeningID: f.screeningID.String()}
	for _, id := range f.seatIDs {
		req.SeatIDs = append(req.SeatIDs, id.String())
	}
	_, err := f.service.CreateBooking(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, ErrTooManySeats)
}

func TestCreateBookingInactiveScreening(t *testing.T) {
	f := newFixture(t, time.Minute)

	catalog := &fakeCatalog{screening: &screenings.ScreeningResponse{
		ID:     f.screeningID.String(),
		Status: screenings.StatusCancelled,
	}}
	svc := NewService(f.repo, f.ledger, f.seatStore, catalog, payments.NewSimulatedGateway(), notifications.NewNopPublisher(), Config{
		HoldTTL:            time.Minute,
		MaxSeatsPerBooking: 4,
	}, slog.Default())

	req := &CreateBookingRequest{
		ScreeningID: f.screeningID.String(),
		SeatIDs:     []string{f.seatIDs[0].String()},
	}
	_, err := svc.CreateBooking(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, ErrScreeningNotBookable)
}

func TestConfirmPaymentSuccess(t *testing.T) {
	f := newFixture(t, time.Minute)
	booking := f.createBooking(t, 2)

	confirmed, err := f.service.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)
	require.Len(t, confirmed.Payments, 1)
	assert.Equal(t, PaymentSuccess, confirmed.Payments[0].Status)
	assert.Equal(t, booking.TotalPrice, confirmed.Payments[0].Amount)

	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotBooked, snapshot[f.seatIDs[0]])
	assert.Equal(t, seats.SlotBooked, snapshot[f.seatIDs[1]])

	require.Len(t, f.seatStore.booked, 1)
	assert.Len(t, f.seatStore.booked[0], 2)
}

func TestConfirmPaymentDeclined(t *testing.T) {
	f := newFixture(t, time.Minute)
	booking := f.createBooking(t, 2)

	cancelled, err := f.service.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{
		PaymentMethod: "card",
		Result:        "FAILURE",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.Len(t, cancelled.Payments, 1)
	assert.Equal(t, PaymentFailed, cancelled.Payments[0].Status)

	// seats go straight back to the pool
	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[0]])
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[1]])
}

func TestConfirmPaymentExpiredHold(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	booking := f.createBooking(t, 2)

	time.Sleep(50 * time.Millisecond)

	_, err := f.service.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{
		PaymentMethod: "card",
	})
	assert.ErrorIs(t, err, seats.ErrHoldExpired)

	stored, err := f.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, stored.Status)
}

func TestConfirmPaymentDeadHoldNeverCharges(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	booking := f.createBooking(t, 2)

	time.Sleep(50 * time.Millisecond)

	gw := &countingGateway{inner: payments.NewSimulatedGateway()}
	svc := f.serviceWithGateway(gw)

	_, err := svc.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{
		PaymentMethod: "card",
	})
	assert.ErrorIs(t, err, seats.ErrHoldExpired)
	assert.Equal(t, 0, gw.chargeCount())

	stored, err := f.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, stored.Status)
	assert.Empty(t, stored.Payments)
}

func TestConfirmPaymentHoldLapsesMidCharge(t *testing.T) {
	f := newFixture(t, 40*time.Millisecond)
	booking := f.createBooking(t, 1)

	// the charge outlives the hold
	gw := &countingGateway{inner: payments.NewSimulatedGateway(), delay: 100 * time.Millisecond}
	svc := f.serviceWithGateway(gw)

	_, err := svc.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{
		PaymentMethod: "card",
	})
	assert.ErrorIs(t, err, seats.ErrHoldExpired)
	assert.Equal(t, 1, gw.chargeCount())

	// the successful charge stays on the audit trail as a reversal
	stored, err := f.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, stored.Status)
	require.Len(t, stored.Payments, 1)
	assert.Equal(t, PaymentReversed, stored.Payments[0].Status)
	assert.NotEmpty(t, stored.Payments[0].TransactionID)
	assert.Equal(t, booking.TotalPrice, stored.Payments[0].Amount)
}

func TestCancelDuringConfirmFreesCommittedSeats(t *testing.T) {
	f := newFixture(t, time.Minute)
	booking := f.createBooking(t, 2)

	// cancel lands between the seat commit and the booking row update
	f.repo.onMarkConfirmed = func() {
		f.repo.onMarkConfirmed = nil
		_, err := f.service.CancelBooking(context.Background(), f.userID, booking.ID)
		require.NoError(t, err)
	}

	_, err := f.service.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{
		PaymentMethod: "card",
	})
	_, ok := IsInvalidTransition(err)
	require.True(t, ok)

	stored, err := f.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)

	// the committed seats went back to the pool
	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[0]])
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[1]])

	// and another customer can take them right away
	req := &CreateBookingRequest{
		ScreeningID: f.screeningID.String(),
		SeatIDs:     []string{f.seatIDs[0].String(), f.seatIDs[1].String()},
	}
	_, err = f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.NoError(t, err)
}

func TestConfirmPaymentWrongUser(t *testing.T) {
	f := newFixture(t, time.Minute)
	booking := f.createBooking(t, 1)

	_, err := f.service.ConfirmPayment(context.Background(), uuid.New(), booking.ID, &PaymentRequest{
		PaymentMethod: "card",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConfirmPaymentTwice(t *testing.T) {
	f := newFixture(t, time.Minute)
	booking := f.createBooking(t, 1)

	_, err := f.service.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{PaymentMethod: "card"})
	require.NoError(t, err)

	_, err = f.service.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{PaymentMethod: "card"})
	ite, ok := IsInvalidTransition(err)
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, ite.From)
}

func TestCancelPendingBooking(t *testing.T) {
	f := newFixture(t, time.Minute)
	booking := f.createBooking(t, 2)

	cancelled, err := f.service.CancelBooking(context.Background(), f.userID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[0]])
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[1]])

	// cancel again is a no-op, not an error
	again, err := f.service.CancelBooking(context.Background(), f.userID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
}

func TestCancelConfirmedBookingFreesSeats(t *testing.T) {
	f := newFixture(t, time.Minute)
	booking := f.createBooking(t, 2)

	_, err := f.service.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{PaymentMethod: "card"})
	require.NoError(t, err)

	cancelled, err := f.service.CancelBooking(context.Background(), f.userID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[0]])
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[1]])
	require.Len(t, f.seatStore.available, 1)
	assert.Len(t, f.seatStore.available[0], 2)
}

func TestCancelExpiredBookingRejected(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	booking := f.createBooking(t, 1)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, f.service.ExpireBooking(context.Background(), booking.ID))

	_, err := f.service.CancelBooking(context.Background(), f.userID, booking.ID)
	ite, ok := IsInvalidTransition(err)
	require.True(t, ok)
	assert.Equal(t, StatusExpired, ite.From)
}

func TestExpireBookingIgnoresNonPending(t *testing.T) {
	f := newFixture(t, time.Minute)
	booking := f.createBooking(t, 1)

	_, err := f.service.ConfirmPayment(context.Background(), f.userID, booking.ID, &PaymentRequest{PaymentMethod: "card"})
	require.NoError(t, err)

	require.NoError(t, f.service.ExpireBooking(context.Background(), booking.ID))

	stored, err := f.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)

	// unknown bookings are also ignored
	assert.NoError(t, f.service.ExpireBooking(context.Background(), uuid.New()))
}

func TestSeatsReclaimableAfterExpiryWithoutSweep(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.createBooking(t, 2)

	time.Sleep(50 * time.Millisecond)

	// no sweep has run, but a new customer can take the seats
	req := &CreateBookingRequest{
		ScreeningID: f.screeningID.String(),
		SeatIDs:     []string{f.seatIDs[0].String(), f.seatIDs[1].String()},
	}
	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, booking.Status)
}

func TestListUserBookings(t *testing.T) {
	f := newFixture(t, time.Minute)
	f.createBooking(t, 1)

	list, err := f.service.ListUserBookings(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other, err := f.service.ListUserBookings(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
