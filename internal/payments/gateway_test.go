package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedGatewayCharge(t *testing.T) {
	g := NewSimulatedGateway()

	result, err := g.Charge(context.Background(), &ChargeRequest{
		BookingID:     uuid.New(),
		UserID:        uuid.New(),
		Amount:        25.50,
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.True(t, result.Succeeded)
	assert.NotEmpty(t, result.TransactionID)
}

func TestSimulatedGatewayForcedFailure(t *testing.T) {
	g := NewSimulatedGateway()

	result, err := g.Charge(context.Background(), &ChargeRequest{
		BookingID:     uuid.New(),
		Amount:        10,
		PaymentMethod: "card",
		ForcedOutcome: OutcomeFailure,
	})
	require.NoError(t, err)
	assert.False(t, result.Succeeded)
	assert.NotEmpty(t, result.FailureReason)
}

func TestSimulatedGatewayCancelledContext(t *testing.T) {
	g := NewSimulatedGateway()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Charge(ctx, &ChargeRequest{Amount: 10})
	assert.Error(t, err)
}
