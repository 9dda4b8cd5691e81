package order

import (
	"errors"
	"time"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

const AggregateType = "Order"

type PaymentMethod string

const (
	PaymentOnline         PaymentMethod = "online"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCashOnDelivery
}

var (
	ErrOrderNotFound            = errors.New("order not found")
	ErrInvalidPaymentMethod     = errors.New("payment method must be online or cod")
	ErrDuplicateOrderNumber     = errors.New("order number already exists")
	ErrConcurrentUpdate         = errors.New("order was modified concurrently")
	ErrInvalidTransition        = errors.New("invalid order status transition")
	ErrPaymentUnsettled         = errors.New("order payment cannot be settled")
	ErrNotCancellable           = errors.New("order can no longer be cancelled")
	ErrUnknownPaymentStatus     = errors.New("unknown payment status")
	ErrUnknownFulfillmentStatus = errors.New("unknown fulfillment status")
)

// Order is created once at checkout. Items are immutable afterwards; only the two
// status axes (and the payment reference) change.
type Order struct {
	ID                string             `json:"id"`
	OrderNumber       string             `json:"order_number"`
	UserID            string             `json:"user_id"`
	Items             []pricing.LineItem `json:"items"`
	CouponCode        string             `json:"coupon_code,omitempty"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	DiscountAmount    decimal.Decimal    `json:"discount_amount"`
	DeliveryFee       decimal.Decimal    `json:"delivery_fee"`
	TotalAmount       decimal.Decimal    `json:"total_amount"`
	PaymentMethod     PaymentMethod      `json:"payment_method"`
	PaymentStatus     PaymentStatus      `json:"payment_status"`
	FulfillmentStatus FulfillmentStatus  `json:"fulfillment_status"`
	PaymentReference  string             `json:"payment_reference,omitempty"`
	ShippingAddress   ShippingAddress    `json:"shipping_address"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Version           int                `json:"version"`
}

// Pricing returns the stored price breakdown.
func (o *Order) Pricing() pricing.Result {
	return pricing.Result{
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		DeliveryFee:    o.DeliveryFee,
		GrandTotal:     o.TotalAmount,
	}
}

// InitialPaymentStatus is cod_pending for cash on delivery and pending otherwise.
func InitialPaymentStatus(method PaymentMethod) PaymentStatus {
	if method == PaymentCashOnDelivery {
		return PaymentCODPending
	}
	return PaymentPending
}
