package seats

import (
	"bytes"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the in-memory state of a single seat slot
type SlotStatus string

const (
	SlotFree   SlotStatus = "AVAILABLE"
	SlotHeld   SlotStatus = "HELD"
	SlotBooked SlotStatus = "BOOKED"
)

// Hold is an exclusive, TTL-bounded claim over a set of seats of one
// screening. All seats are claimed together or not at all.
type Hold struct {
	ID          uuid.UUID
	ScreeningID uuid.UUID
	UserID      uuid.UUID
	SeatIDs     []uuid.UUID
	BookingID   uuid.UUID
	ExpiresAt   time.Time
}

// Expired reports whether the hold's TTL has passed at the given time.
func (h *Hold) Expired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

// LedgerSeat seeds one slot when a screening is registered.
type LedgerSeat struct {
	ID        uuid.UUID
	BookingID *uuid.UUID
}

// slot carries the live state of one seat. Its mutex serializes all
// transitions for that seat.
type slot struct {
	mu          sync.Mutex
	screeningID uuid.UUID
	status      SlotStatus
	holdID      uuid.UUID
	bookingID   uuid.UUID
}

// Ledger is the in-process seat reservation arena. Correctness rules:
//
//   - Slot mutexes are always acquired in ascending seat-ID order.
//   - The index mutex (mu) is a leaf lock: it may be taken while slot
//     mutexes are held, but slot mutexes are never acquired while mu
//     is held.
//   - A slot held by an expired hold is claimable by any new TryHold;
//     the stale hold record keeps its token until released or swept,
//     and Release only frees slots the token still owns.
type Ledger struct {
	mu          sync.RWMutex
	slots       map[uuid.UUID]*slot
	holds       map[uuid.UUID]*Hold
	byScreening map[uuid.UUID][]uuid.UUID
	byBooking   map[uuid.UUID][]uuid.UUID
}

func NewLedger() *Ledger {
	return &Ledger{
		slots:       make(map[uuid.UUID]*slot),
		holds:       make(map[uuid.UUID]*Hold),
		byScreening: make(map[uuid.UUID][]uuid.UUID),
		byBooking:   make(map[uuid.UUID][]uuid.UUID),
	}
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// RegisterScreening seeds the ledger with the seats of one screening.
// Seats with a booking attached are restored as booked, which lets the
// ledger be rebuilt from the database at startup.
func (l *Ledger) RegisterScreening(screeningID uuid.UUID, seats []LedgerSeat) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(seats))
	for _, seat := range seats {
		if _, exists := l.slots[seat.ID]; exists {
			continue
		}
		s := &slot{
			screeningID: screeningID,
			status:      SlotFree,
		}
		if seat.BookingID != nil {
			s.status = SlotBooked
			s.bookingID = *seat.BookingID
			l.byBooking[*seat.BookingID] = append(l.byBooking[*seat.BookingID], seat.ID)
		}
		l.slots[seat.ID] = s
		ids = append(ids, seat.ID)
	}

	existing := l.byScreening[screeningID]
	existing = append(existing, ids...)
	slices.SortFunc(existing, compareIDs)
	l.byScreening[screeningID] = existing
}

// TryHold attempts to claim every requested seat at once. On any
// conflict it claims nothing and returns an UnavailableError listing
// the seats that were taken. It never blocks waiting for contended
// seats; contention surfaces immediately as a conflict.
func (l *Ledger) TryHold(screeningID uuid.UUID, seatIDs []uuid.UUID, userID uuid.UUID, ttl time.Duration) (*Hold, error) {
	if len(seatIDs) == 0 {
		return nil, ErrNotFound
	}

	sorted := slices.Clone(seatIDs)
	slices.SortFunc(sorted, compareIDs)
	sorted = slices.Compact(sorted)

	// resolve slots before taking any slot lock
	l.mu.RLock()
	resolved := make([]*slot, len(sorted))
	for i, id := range sorted {
		s, ok := l.slots[id]
		if !ok || s.screeningID != screeningID {
			l.mu.RUnlock()
			return nil, ErrNotFound
		}
		resolved[i] = s
	}
	l.mu.RUnlock()

	now := time.Now()
	for _, s := range resolved {
		s.mu.Lock()
	}
	defer func() {
		for _, s := range resolved {
			s.mu.Unlock()
		}
	}()

	var conflicts []uuid.UUID
	for i, s := range resolved {
		switch s.status {
		case SlotFree:
		case SlotHeld:
			if !l.holdExpired(s.holdID, now) {
				conflicts = append(conflicts, sorted[i])
			}
		default:
			conflicts = append(conflicts, sorted[i])
		}
	}
	if len(conflicts) > 0 {
		return nil, &UnavailableError{ConflictingSeats: conflicts}
	}

	hold := &Hold{
		ID:          uuid.New(),
		ScreeningID: screeningID,
		UserID:      userID,
		SeatIDs:     sorted,
		ExpiresAt:   now.Add(ttl),
	}
	for _, s := range resolved {
		s.status = SlotHeld
		s.holdID = hold.ID
		s.bookingID = uuid.Nil
	}

	l.mu.Lock()
	l.holds[hold.ID] = hold
	l.mu.Unlock()

	copied := *hold
	copied.SeatIDs = slices.Clone(sorted)
	return &copied, nil
}

func (l *Ledger) holdExpired(holdID uuid.UUID, now time.Time) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.holds[holdID]
	if !ok {
		return true
	}
	return h.Expired(now)
}

// AttachBooking links a pending booking to its hold so the sweeper can
// expire the booking together with the hold.
func (l *Ledger) AttachBooking(holdID, bookingID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.holds[holdID]
	if !ok {
		return ErrHoldNotFound
	}
	h.BookingID = bookingID
	return nil
}

// Commit converts a live hold into booked seats. It fails with
// ErrHoldExpired once the TTL has passed, even if no competing request
// has reclaimed the seats yet. Returns the seat IDs that were booked.
func (l *Ledger) Commit(holdID, bookingID uuid.UUID) ([]uuid.UUID, error) {
	l.mu.RLock()
	h, ok := l.holds[holdID]
	l.mu.RUnlock()
	if !ok {
		return nil, ErrHoldNotFound
	}
	if h.Expired(time.Now()) {
		return nil, ErrHoldExpired
	}

	resolved := l.resolveSlots(h.SeatIDs)
	for _, s := range resolved {
		s.mu.Lock()
	}
	defer func() {
		for _, s := range resolved {
			s.mu.Unlock()
		}
	}()

	// a live hold cannot have lost its seats, so this only guards
	// against double commit of the same token
	for _, s := range resolved {
		if s == nil || s.holdID != holdID || s.status != SlotHeld {
			return nil, ErrHoldNotFound
		}
	}

	for _, s := range resolved {
		s.status = SlotBooked
		s.holdID = uuid.Nil
		s.bookingID = bookingID
	}

	l.mu.Lock()
	delete(l.holds, holdID)
	l.byBooking[bookingID] = slices.Clone(h.SeatIDs)
	l.mu.Unlock()

	return slices.Clone(h.SeatIDs), nil
}

// Release frees every seat the hold still owns and forgets the token.
// Releasing an unknown or already-released hold is a no-op, so it is
// safe to call from both the client path and the sweeper.
func (l *Ledger) Release(holdID uuid.UUID) []uuid.UUID {
	l.mu.RLock()
	h, ok := l.holds[holdID]
	l.mu.RUnlock()
	if !ok {
		return nil
	}

	resolved := l.resolveSlots(h.SeatIDs)
	for _, s := range resolved {
		if s != nil {
			s.mu.Lock()
		}
	}
	defer func() {
		for _, s := range resolved {
			if s != nil {
				s.mu.Unlock()
			}
		}
	}()

	var freed []uuid.UUID
	for i, s := range resolved {
		if s != nil && s.status == SlotHeld && s.holdID == holdID {
			s.status = SlotFree
			s.holdID = uuid.Nil
			freed = append(freed, h.SeatIDs[i])
		}
	}

	l.mu.Lock()
	delete(l.holds, holdID)
	l.mu.Unlock()

	return freed
}

// ReleaseBooking frees the booked seats of a confirmed booking, the
// refund path of a cancellation. Returns the seat IDs freed.
func (l *Ledger) ReleaseBooking(bookingID uuid.UUID) []uuid.UUID {
	l.mu.RLock()
	seatIDs := slices.Clone(l.byBooking[bookingID])
	l.mu.RUnlock()
	if len(seatIDs) == 0 {
		return nil
	}
	slices.SortFunc(seatIDs, compareIDs)

	resolved := l.resolveSlots(seatIDs)
	for _, s := range resolved {
		if s != nil {
			s.mu.Lock()
		}
	}
	defer func() {
		for _, s := range resolved {
			if s != nil {
				s.mu.Unlock()
			}
		}
	}()

	var freed []uuid.UUID
	for i, s := range resolved {
		if s != nil && s.status == SlotBooked && s.bookingID == bookingID {
			s.status = SlotFree
			s.bookingID = uuid.Nil
			freed = append(freed, seatIDs[i])
		}
	}

	l.mu.Lock()
	delete(l.byBooking, bookingID)
	l.mu.Unlock()

	return freed
}

// ExpiredHolds returns a snapshot of every hold whose TTL has passed
// at the given time. The sweeper drives booking expiry from this list.
func (l *Ledger) ExpiredHolds(now time.Time) []Hold {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var expired []Hold
	for _, h := range l.holds {
		if h.Expired(now) {
			copied := *h
			copied.SeatIDs = slices.Clone(h.SeatIDs)
			expired = append(expired, copied)
		}
	}
	return expired
}

// GetHold returns a copy of a live hold.
func (l *Ledger) GetHold(holdID uuid.UUID) (*Hold, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.holds[holdID]
	if !ok {
		return nil, ErrHoldNotFound
	}
	copied := *h
	copied.SeatIDs = slices.Clone(h.SeatIDs)
	return &copied, nil
}

// Snapshot reports the current status of every seat of a screening.
// Seats held by an expired hold are reported as available.
func (l *Ledger) Snapshot(screeningID uuid.UUID) map[uuid.UUID]SlotStatus {
	l.mu.RLock()
	seatIDs := slices.Clone(l.byScreening[screeningID])
	l.mu.RUnlock()

	now := time.Now()
	result := make(map[uuid.UUID]SlotStatus, len(seatIDs))
	for _, id := range seatIDs {
		l.mu.RLock()
		s := l.slots[id]
		l.mu.RUnlock()
		if s == nil {
			continue
		}
		s.mu.Lock()
		status := s.status
		holdID := s.holdID
		s.mu.Unlock()

		if status == SlotHeld && l.holdExpired(holdID, now) {
			status = SlotFree
		}
		result[id] = status
	}
	return result
}

// resolveSlots looks up slot pointers without taking any slot lock.
// Callers rely on seat IDs already being in ascending order.
func (l *Ledger) resolveSlots(seatIDs []uuid.UUID) []*slot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	resolved := make([]*slot, len(seatIDs))
	for i, id := range seatIDs {
		resolved[i] = l.slots[id]
	}
	return resolved
}
