package command

import (
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// QuoteResult is a priced cart that has not been persisted.
type QuoteResult struct {
	Items    []pricing.LineItem `json:"items"`
	Pricing  pricing.Result     `json:"pricing"`
	Coupon   *coupon.Applied    `json:"coupon,omitempty"`
	Currency string             `json:"currency"`
	Warning  string             `json:"warning,omitempty"`
}

// OrderConfirmation is returned once the order is stored. CheckoutURL is set
// for online payments that were handed to the gateway.
type OrderConfirmation struct {
	OrderID       string              `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	GrandTotal    decimal.Decimal     `json:"grand_total"`
	Currency      string              `json:"currency"`
	PaymentStatus order.PaymentStatus `json:"payment_status"`
	CheckoutURL   string              `json:"checkout_url,omitempty"`
	Warning       string              `json:"warning,omitempty"`
}
