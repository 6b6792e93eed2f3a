package bookings

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"cinebook/internal/seats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpiresPendingBooking(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	booking := f.createBooking(t, 2)

	sweeper := NewSweeper(f.ledger, f.service, time.Hour, slog.Default())

	time.Sleep(50 * time.Millisecond)
	sweeper.Sweep(context.Background())

	stored, err := f.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, stored.Status)

	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[0]])
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[1]])
	assert.Empty(t, f.ledger.ExpiredHolds(time.Now()))
}

func TestSweepReleasesDetachedHold(t *testing.T) {
	f := newFixture(t, time.Minute)

	// a hold with no booking attached, as if the booking insert failed
	hold, err := f.ledger.TryHold(f.screeningID, f.seatIDs[:2], uuid.New(), 20*time.Millisecond)
	require.NoError(t, err)

	sweeper := NewSweeper(f.ledger, f.service, time.Hour, slog.Default())

	time.Sleep(50 * time.Millisecond)
	sweeper.Sweep(context.Background())

	_, err = f.ledger.GetHold(hold.ID)
	assert.ErrorIs(t, err, seats.ErrHoldNotFound)

	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotFree, snapshot[f.seatIDs[0]])
}

func TestSweepLeavesLiveHoldsAlone(t *testing.T) {
	f := newFixture(t, time.Minute)
	booking := f.createBooking(t, 2)

	sweeper := NewSweeper(f.ledger, f.service, time.Hour, slog.Default())
	sweeper.Sweep(context.Background())

	stored, err := f.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)

	snapshot := f.ledger.Snapshot(f.screeningID)
	assert.Equal(t, seats.SlotHeld, snapshot[f.seatIDs[0]])
}

func TestSweeperStartStop(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	booking := f.createBooking(t, 1)

	sweeper := NewSweeper(f.ledger, f.service, 25*time.Millisecond, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		stored, err := f.repo.GetByID(context.Background(), booking.ID)
		return err == nil && stored.Status == StatusExpired
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
