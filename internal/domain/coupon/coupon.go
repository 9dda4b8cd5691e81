package coupon

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrMinimumNotMet       = errors.New("order does not meet the coupon minimum")
	ErrEmptyCode           = errors.New("coupon code is required")
	ErrNegativeSubtotal    = errors.New("subtotal must not be negative")
	ErrUsageLimitReached   = errors.New("coupon usage limit reached")
	ErrDuplicateCode       = errors.New("coupon code already exists")
	ErrInvalidCoupon       = errors.New("invalid coupon")
	ErrInvalidDiscountType = errors.New("invalid discount type")
)

// MinimumNotMetError carries the minimum order amount so callers can display it.
type MinimumNotMetError struct {
	Minimum decimal.Decimal
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("%s: minimum order amount is %s", ErrMinimumNotMet, e.Minimum.StringFixed(2))
}

func (e *MinimumNotMetError) Is(target error) bool {
	return target == ErrMinimumNotMet
}

type Coupon struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	DiscountType       DiscountType    `json:"discount_type"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	MinimumOrderAmount decimal.Decimal `json:"minimum_order_amount"`
	ValidFrom          time.Time       `json:"valid_from"`
	ValidUntil         time.Time       `json:"valid_until"`
	IsActive           bool            `json:"is_active"`
	MaxUsageCount      *int            `json:"max_usage_count,omitempty"`
	UsedCount          int             `json:"used_count"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NormalizeCode trims and upper-cases a code. Codes compare case-insensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// InWindow reports whether now lies within [ValidFrom, ValidUntil].
func (c *Coupon) InWindow(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}

// Exhausted reports whether a limited coupon has no uses left.
func (c *Coupon) Exhausted() bool {
	return c.MaxUsageCount != nil && c.UsedCount >= *c.MaxUsageCount
}

// Applicable reports whether the coupon applies to subtotal at now.
func (c *Coupon) Applicable(subtotal decimal.Decimal, now time.Time) bool {
	return c.IsActive && c.InWindow(now) && subtotal.GreaterThanOrEqual(c.MinimumOrderAmount)
}

// Discount computes the discount for subtotal, clamped to the subtotal.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		amount = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountFixedAmount:
		amount = c.DiscountValue
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, subtotal)
}

// Validate checks the invariants an admin-authored coupon must satisfy.
func (c *Coupon) Validate() error {
	if NormalizeCode(c.Code) == "" {
		return ErrEmptyCode
	}
	switch c.DiscountType {
	case DiscountPercentage:
		if c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: percentage must be between 0 and 100", ErrInvalidCoupon)
		}
	case DiscountFixedAmount:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDiscountType, c.DiscountType)
	}
	if !c.DiscountValue.IsPositive() {
		return fmt.Errorf("%w: discount value must be positive", ErrInvalidCoupon)
	}
	if c.MinimumOrderAmount.IsNegative() {
		return fmt.Errorf("%w: minimum order amount must not be negative", ErrInvalidCoupon)
	}
	if c.ValidFrom.After(c.ValidUntil) {
		return fmt.Errorf("%w: valid_from must not be after valid_until", ErrInvalidCoupon)
	}
	if c.MaxUsageCount != nil && *c.MaxUsageCount <= 0 {
		return fmt.Errorf("%w: max usage count must be positive", ErrInvalidCoupon)
	}
	return nil
}

// Applied is a coupon that passed validation for a specific subtotal.
type Applied struct {
	CouponID       string          `json:"coupon_id"`
	Code           string          `json:"code"`
	DiscountType   DiscountType    `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}
