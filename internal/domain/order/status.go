package order

import "fmt"

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentPaid       PaymentStatus = "paid"
	PaymentCODPending PaymentStatus = "cod_pending"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
)

type FulfillmentStatus string

const (
	FulfillmentPending    FulfillmentStatus = "pending"
	FulfillmentProcessing FulfillmentStatus = "processing"
	FulfillmentShipped    FulfillmentStatus = "shipped"
	FulfillmentDelivered  FulfillmentStatus = "delivered"
	FulfillmentCompleted  FulfillmentStatus = "completed"
	FulfillmentCancelled  FulfillmentStatus = "cancelled"
)

// paymentTransitions defines allowed payment status changes.
// cod_pending is only ever an initial state, chosen from the payment method.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentPaid, PaymentFailed, PaymentCancelled},
	PaymentCODPending: {PaymentPaid, PaymentCancelled},
	PaymentPaid:       {}, // terminal state
	PaymentFailed:     {}, // terminal state
	PaymentCancelled:  {}, // terminal state
}

// fulfillmentTransitions defines allowed fulfillment status changes.
var fulfillmentTransitions = map[FulfillmentStatus][]FulfillmentStatus{
	FulfillmentPending:    {FulfillmentProcessing, FulfillmentCancelled},
	FulfillmentProcessing: {FulfillmentShipped, FulfillmentCancelled},
	FulfillmentShipped:    {FulfillmentDelivered, FulfillmentCompleted, FulfillmentCancelled},
	FulfillmentDelivered:  {}, // terminal state
	FulfillmentCompleted:  {}, // terminal state
	FulfillmentCancelled:  {}, // terminal state
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) Terminal() bool {
	return len(paymentTransitions[s]) == 0
}

// CanTransitionTo checks if the payment status can move to target
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s FulfillmentStatus) Valid() bool {
	_, ok := fulfillmentTransitions[s]
	return ok
}

func (s FulfillmentStatus) Terminal() bool {
	return len(fulfillmentTransitions[s]) == 0
}

// CanTransitionTo checks if the fulfillment status can move to target
func (s FulfillmentStatus) CanTransitionTo(target FulfillmentStatus) bool {
	for _, allowed := range fulfillmentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanTransitionPayment checks the order's payment axis.
func (o *Order) CanTransitionPayment(target PaymentStatus) bool {
	return o.PaymentStatus.CanTransitionTo(target)
}

// CanTransitionFulfillment checks the order's fulfillment axis.
func (o *Order) CanTransitionFulfillment(target FulfillmentStatus) bool {
	return o.FulfillmentStatus.CanTransitionTo(target)
}

func (o *Order) paymentTransitionError(target PaymentStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPaymentStatus, target)
	}
	return fmt.Errorf("%w: payment cannot move from %s to %s", ErrInvalidTransition, o.PaymentStatus, target)
}

func (o *Order) fulfillmentTransitionError(target FulfillmentStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFulfillmentStatus, target)
	}
	return fmt.Errorf("%w: fulfillment cannot move from %s to %s", ErrInvalidTransition, o.FulfillmentStatus, target)
}

// SettlePaymentOnCompletion is the rule that a completed order has been paid for.
// It returns the payment status the order must take when fulfillment moves to next,
// and whether the payment status changes at all. Completing an order whose payment
// failed or was cancelled returns ErrPaymentUnsettled instead of overwriting it.
func SettlePaymentOnCompletion(next FulfillmentStatus, current PaymentStatus) (PaymentStatus, bool, error) {
	if next != FulfillmentCompleted || current == PaymentPaid {
		return current, false, nil
	}
	if !current.CanTransitionTo(PaymentPaid) {
		return current, false, fmt.Errorf("%w: payment is %s", ErrPaymentUnsettled, current)
	}
	return PaymentPaid, true, nil
}
