package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrder       = errors.New("order must have at least one item")
	ErrInvalidLineItem  = errors.New("invalid line item")
	ErrNegativeDiscount = errors.New("discount must not be negative")
)

// Observed storefront defaults.
var (
	DefaultDeliveryThreshold = decimal.NewFromInt(500)
	DefaultFlatDeliveryFee   = decimal.NewFromInt(40)
)

const DefaultCurrency = "INR"

// LineItem is a product line inside a cart or an order.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Total returns UnitPrice × Quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Result is the derived price breakdown of an order. It is never persisted on its own.
type Result struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// Rules holds the delivery pricing configuration.
type Rules struct {
	DeliveryThreshold decimal.Decimal
	FlatDeliveryFee   decimal.Decimal
	Currency          string
}

// DefaultRules returns the 500 threshold / 40 flat fee rules in INR.
func DefaultRules() Rules {
	return Rules{
		DeliveryThreshold: DefaultDeliveryThreshold,
		FlatDeliveryFee:   DefaultFlatDeliveryFee,
		Currency:          DefaultCurrency,
	}
}

// Compute prices the given rules for items and an already-validated discount.
func (r Rules) Compute(items []LineItem, discount decimal.Decimal) (Result, error) {
	return Compute(items, discount, r.DeliveryThreshold, r.FlatDeliveryFee)
}

// Subtotal sums unit price × quantity over items.
func Subtotal(items []LineItem) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, ErrEmptyOrder
	}
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return decimal.Zero, fmt.Errorf("%w: quantity for %s must be positive", ErrInvalidLineItem, item.ProductID)
		}
		if item.UnitPrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: unit price for %s must not be negative", ErrInvalidLineItem, item.ProductID)
		}
		subtotal = subtotal.Add(item.Total())
	}
	return subtotal, nil
}

// Compute is a pure function: identical inputs always yield an identical Result.
// A discount larger than the subtotal is clamped to the subtotal.
func Compute(items []LineItem, discount, deliveryThreshold, flatDeliveryFee decimal.Decimal) (Result, error) {
	subtotal, err := Subtotal(items)
	if err != nil {
		return Result{}, err
	}
	if discount.IsNegative() {
		return Result{}, ErrNegativeDiscount
	}
	discount = decimal.Min(discount, subtotal)

	afterDiscount := subtotal.Sub(discount)
	deliveryFee := flatDeliveryFee
	if afterDiscount.GreaterThanOrEqual(deliveryThreshold) {
		deliveryFee = decimal.Zero
	}

	grandTotal := afterDiscount.Add(deliveryFee)
	if grandTotal.IsNegative() {
		grandTotal = decimal.Zero
	}

	return Result{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		DeliveryFee:    deliveryFee,
		GrandTotal:     grandTotal,
	}, nil
}

// MinorUnits converts an amount to integer minor units (paise, cents), rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
