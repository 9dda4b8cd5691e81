package command

import (
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
)

// CartLine is one line of the cart snapshot a checkout is placed from.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart Commands
type AddToCart struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItem struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCart struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

type ClearCart struct {
	UserID string `json:"user_id"`
}

// Checkout Commands
type Quote struct {
	Items      []CartLine `json:"items"`
	CouponCode string     `json:"coupon_code,omitempty"`
}

type PlaceOrder struct {
	Session         auth.Session          `json:"-"`
	Items           []CartLine            `json:"items"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	PaymentMethod   order.PaymentMethod   `json:"payment_method"`
	CouponCode      string                `json:"coupon_code,omitempty"`
}

// Order Commands
type CancelOrder struct {
	Session auth.Session `json:"-"`
	OrderID string       `json:"order_id"`
}

type UpdateFulfillment struct {
	OrderID string                  `json:"order_id"`
	Status  order.FulfillmentStatus `json:"status"`
}

type UpdatePayment struct {
	OrderID   string              `json:"order_id"`
	Status    order.PaymentStatus `json:"status"`
	Reference string              `json:"payment_reference,omitempty"`
	Reason    string              `json:"reason,omitempty"`
}
