package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome forces a simulated charge result. Empty means let the
// gateway decide.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

type ChargeRequest struct {
	BookingID     uuid.UUID
	UserID        uuid.UUID
	Amount        float64
	PaymentMethod string
	ForcedOutcome Outcome
}

type ChargeResult struct {
	TransactionID string
	Succeeded     bool
	FailureReason string
	ProcessedAt   time.Time
}

// Gateway charges a customer for a booking. A declined charge is a
// successful call with Succeeded=false; the error return is reserved
// for transport or gateway failures.
type Gateway interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
}

// SimulatedGateway stands in for a real payment provider. Charges
// succeed unless the request forces a failure.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result := &ChargeResult{
		TransactionID: newTransactionID(),
		ProcessedAt:   time.Now(),
	}
	if req.ForcedOutcome == OutcomeFailure {
		result.Succeeded = false
		result.FailureReason = "card declined"
		return result, nil
	}
	result.Succeeded = true
	return result, nil
}

func newTransactionID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("TXN-%d", time.Now().UnixNano())
	}
	return "TXN-" + hex.EncodeToString(buf)
}
