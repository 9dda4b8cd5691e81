package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced              = "OrderPlaced"
	EventPaymentStatusChanged     = "PaymentStatusChanged"
	EventFulfillmentStatusChanged = "FulfillmentStatusChanged"
)

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderPlaced struct {
	OrderID        string          `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	UserID         string          `json:"user_id"`
	Email          string          `json:"email,omitempty"`
	Items          []OrderItem     `json:"items"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	ShipTo         ShippingAddress `json:"ship_to"`
	PlacedAt       time.Time       `json:"placed_at"`
}

type PaymentStatusChanged struct {
	OrderID          string        `json:"order_id"`
	OrderNumber      string        `json:"order_number"`
	UserID           string        `json:"user_id"`
	From             PaymentStatus `json:"from"`
	To               PaymentStatus `json:"to"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	Reason           string        `json:"reason,omitempty"`
	ChangedAt        time.Time     `json:"changed_at"`
}

type FulfillmentStatusChanged struct {
	OrderID     string            `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      string            `json:"user_id"`
	From        FulfillmentStatus `json:"from"`
	To          FulfillmentStatus `json:"to"`
	ChangedAt   time.Time         `json:"changed_at"`
}

// PlacedEvent builds the OrderPlaced payload for o.
func PlacedEvent(o *Order, email string) OrderPlaced {
	items := make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItem{ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return OrderPlaced{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Email:          email,
		Items:          items,
		CouponCode:     o.CouponCode,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		DeliveryFee:    o.DeliveryFee,
		TotalAmount:    o.TotalAmount,
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		ShipTo:         o.ShippingAddress,
		PlacedAt:       o.CreatedAt,
	}
}
