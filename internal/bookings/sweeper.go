package bookings

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sweeper is the backstop for holds whose TTL lapsed without the
// client confirming or cancelling. The hold and commit paths already
// treat expired holds as dead, so the sweeper only reconciles booking
// rows and frees seats nobody has reclaimed yet.
type Sweeper struct {
	ledger   SeatLedger
	service  Service
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(ledger SeatLedger, service Service, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		ledger:   ledger,
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep releases every expired hold and expires its booking if one was
// attached. Errors are logged per hold and never stop the sweep.
func (s *Sweeper) Sweep(ctx context.Context) {
	expired := s.ledger.ExpiredHolds(time.Now())
	if len(expired) == 0 {
		return
	}

	for _, hold := range expired {
		if hold.BookingID != uuid.Nil {
			if err := s.service.ExpireBooking(ctx, hold.BookingID); err != nil {
				s.logger.Error("failed to expire booking",
					"booking_id", hold.BookingID,
					"hold_id", hold.ID,
					"error", err)
				continue
			}
		} else {
			s.ledger.Release(hold.ID)
		}
	}
	s.logger.Info("expired holds swept", "count", len(expired))
}
