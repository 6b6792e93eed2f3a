package seats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cinebook/pkg/cache"

	"github.com/google/uuid"
)

type Service interface {
	MaterializeScreening(ctx context.Context, screeningID uuid.UUID, rows, seatsPerRow int) error
	RestoreLedger(ctx context.Context) error
	GetAvailability(ctx context.Context, screeningID uuid.UUID) (*AvailabilitySnapshot, error)
}

type service struct {
	repo     Repository
	ledger   *Ledger
	cache    cache.Service
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewService(repo Repository, ledger *Ledger, cacheService cache.Service, cacheTTL time.Duration, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		ledger:   ledger,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// rowLabel converts a zero-based row index to its label: A..Z, then AA..AZ.
func rowLabel(index int) string {
	if index < 26 {
		return string(rune('A' + index))
	}
	return string(rune('A'+index/26-1)) + string(rune('A'+index%26))
}

func (s *service) MaterializeScreening(ctx context.Context, screeningID uuid.UUID, rows, seatsPerRow int) error {
	seats := make([]Seat, 0, rows*seatsPerRow)
	for row := 0; row < rows; row++ {
		for num := 1; num <= seatsPerRow; num++ {
			seats = append(seats, Seat{
				ID:          uuid.New(),
				ScreeningID: screeningID,
				RowLabel:    rowLabel(row),
				Number:      num,
				Status:      StatusAvailable,
			})
		}
	}

	if err := s.repo.CreateSeats(ctx, seats); err != nil {
		return fmt.Errorf("failed to persist seats: %w", err)
	}

	ledgerSeats := make([]LedgerSeat, len(seats))
	for i := range seats {
		ledgerSeats[i] = LedgerSeat{ID: seats[i].ID}
	}
	s.ledger.RegisterScreening(screeningID, ledgerSeats)
	return nil
}

// RestoreLedger rebuilds the in-memory arena from the durable seat
// rows. Holds do not survive a restart; booked seats do.
func (s *service) RestoreLedger(ctx context.Context) error {
	screeningIDs, err := s.repo.ListScreeningIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list screenings for ledger restore: %w", err)
	}

	for _, screeningID := range screeningIDs {
		seats, err := s.repo.GetByScreeningID(ctx, screeningID)
		if err != nil {
			return fmt.Errorf("failed to load seats for screening %s: %w", screeningID, err)
		}
		ledgerSeats := make([]LedgerSeat, len(seats))
		for i := range seats {
			ledgerSeats[i] = LedgerSeat{ID: seats[i].ID, BookingID: seats[i].BookingID}
		}
		s.ledger.RegisterScreening(screeningID, ledgerSeats)
	}

	s.logger.Info("seat ledger restored", "screenings", len(screeningIDs))
	return nil
}

// GetAvailability returns the seat map for a screening. Responses are
// served from a short-lived cache, so a snapshot may briefly lag the
// ledger; the hold and commit paths never consult it.
func (s *service) GetAvailability(ctx context.Context, screeningID uuid.UUID) (*AvailabilitySnapshot, error) {
	cacheKey := cache.AvailabilityKey(screeningID.String())

	var cached AvailabilitySnapshot
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("availability cache read failed", "screening_id", screeningID, "error", err)
	}

	snapshot, err := s.buildSnapshot(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, snapshot, s.cacheTTL); err != nil {
		s.logger.Warn("availability cache write failed", "screening_id", screeningID, "error", err)
	}
	return snapshot, nil
}

func (s *service) buildSnapshot(ctx context.Context, screeningID uuid.UUID) (*AvailabilitySnapshot, error) {
	rows, err := s.repo.GetByScreeningID(ctx, screeningID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	live := s.ledger.Snapshot(screeningID)

	snapshot := &AvailabilitySnapshot{
		ScreeningID: screeningID.String(),
		Seats:       make([]SeatView, 0, len(rows)),
		FetchedAt:   time.Now(),
	}
	for i := range rows {
		status, ok := live[rows[i].ID]
		if !ok {
			// ledger has not seen this screening yet, fall back
			// to the durable status
			status = SlotStatus(rows[i].Status)
		}
		switch status {
		case SlotFree:
			snapshot.Available++
		case SlotHeld:
			snapshot.Held++
		case SlotBooked:
			snapshot.Booked++
		}
		snapshot.Seats = append(snapshot.Seats, SeatView{
			ID:       rows[i].ID.String(),
			RowLabel: rows[i].RowLabel,
			Number:   rows[i].Number,
			Status:   string(status),
		})
	}
	return snapshot, nil
}
