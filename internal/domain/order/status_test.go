package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{PaymentPending, PaymentPaid, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentPending, PaymentCancelled, true},
		{PaymentPending, PaymentCODPending, false},
		{PaymentCODPending, PaymentPaid, true},
		{PaymentCODPending, PaymentCancelled, true},
		{PaymentCODPending, PaymentFailed, false},
		{PaymentCODPending, PaymentPending, false},
		{PaymentPaid, PaymentPending, false},
		{PaymentPaid, PaymentFailed, false},
		{PaymentPaid, PaymentCancelled, false},
		{PaymentFailed, PaymentPaid, false},
		{PaymentFailed, PaymentPending, false},
		{PaymentCancelled, PaymentPaid, false},
		{PaymentStatus("refunded"), PaymentPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestFulfillmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from FulfillmentStatus
		to   FulfillmentStatus
		want bool
	}{
		{FulfillmentPending, FulfillmentProcessing, true},
		{FulfillmentPending, FulfillmentCancelled, true},
		{FulfillmentPending, FulfillmentShipped, false},
		{FulfillmentPending, FulfillmentCompleted, false},
		{FulfillmentProcessing, FulfillmentShipped, true},
		{FulfillmentProcessing, FulfillmentCancelled, true},
		{FulfillmentProcessing, FulfillmentPending, false},
		{FulfillmentShipped, FulfillmentDelivered, true},
		{FulfillmentShipped, FulfillmentCompleted, true},
		{FulfillmentShipped, FulfillmentCancelled, true},
		{FulfillmentShipped, FulfillmentProcessing, false},
		{FulfillmentDelivered, FulfillmentCompleted, false},
		{FulfillmentCompleted, FulfillmentCancelled, false},
		{FulfillmentCancelled, FulfillmentPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []PaymentStatus{PaymentPaid, PaymentFailed, PaymentCancelled} {
		assert.True(t, s.Terminal(), string(s))
	}
	for _, s := range []PaymentStatus{PaymentPending, PaymentCODPending} {
		assert.False(t, s.Terminal(), string(s))
	}
	for _, s := range []FulfillmentStatus{FulfillmentDelivered, FulfillmentCompleted, FulfillmentCancelled} {
		assert.True(t, s.Terminal(), string(s))
	}
}

func TestSettlePaymentOnCompletion(t *testing.T) {
	tests := []struct {
		name       string
		next       FulfillmentStatus
		current    PaymentStatus
		want       PaymentStatus
		wantChange bool
		wantErr    error
	}{
		{"cod completes", FulfillmentCompleted, PaymentCODPending, PaymentPaid, true, nil},
		{"online pending completes", FulfillmentCompleted, PaymentPending, PaymentPaid, true, nil},
		{"already paid", FulfillmentCompleted, PaymentPaid, PaymentPaid, false, nil},
		{"failed payment", FulfillmentCompleted, PaymentFailed, PaymentFailed, false, ErrPaymentUnsettled},
		{"cancelled payment", FulfillmentCompleted, PaymentCancelled, PaymentCancelled, false, ErrPaymentUnsettled},
		{"shipping leaves payment", FulfillmentShipped, PaymentCODPending, PaymentCODPending, false, nil},
		{"delivery leaves payment", FulfillmentDelivered, PaymentPending, PaymentPending, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := SettlePaymentOnCompletion(tt.next, tt.current)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChange, changed)
		})
	}
}

func TestInitialPaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentCODPending, InitialPaymentStatus(PaymentCashOnDelivery))
	assert.Equal(t, PaymentPending, InitialPaymentStatus(PaymentOnline))
}
