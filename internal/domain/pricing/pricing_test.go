package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "expected %s, got %s", want, got)
}

// ============================================
// Subtotal Tests
// ============================================

func TestCompute_SubtotalIsSumOfLines(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", UnitPrice: d("120.50"), Quantity: 2},
		{ProductID: "p2", UnitPrice: d("99"), Quantity: 3},
		{ProductID: "p3", UnitPrice: d("0"), Quantity: 1},
	}

	result, err := Compute(items, decimal.Zero, DefaultDeliveryThreshold, DefaultFlatDeliveryFee)

	require.NoError(t, err)
	assertDecimal(t, "538", result.Subtotal)
}

func TestCompute_SubtotalIndependentOfOrder(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", UnitPrice: d("10.25"), Quantity: 4},
		{ProductID: "p2", UnitPrice: d("300"), Quantity: 1},
		{ProductID: "p3", UnitPrice: d("7.5"), Quantity: 9},
	}
	reversed := []LineItem{items[2], items[1], items[0]}

	a, err := Compute(items, decimal.Zero, DefaultDeliveryThreshold, DefaultFlatDeliveryFee)
	require.NoError(t, err)
	b, err := Compute(reversed, decimal.Zero, DefaultDeliveryThreshold, DefaultFlatDeliveryFee)
	require.NoError(t, err)

	assert.True(t, a.Subtotal.Equal(b.Subtotal))
	assert.True(t, a.GrandTotal.Equal(b.GrandTotal))
}

func TestCompute_EmptyOrder(t *testing.T) {
	_, err := Compute(nil, decimal.Zero, DefaultDeliveryThreshold, DefaultFlatDeliveryFee)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = Compute([]LineItem{}, decimal.Zero, DefaultDeliveryThreshold, DefaultFlatDeliveryFee)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCompute_InvalidLineItems(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
	}{
		{"zero quantity", LineItem{ProductID: "p1", UnitPrice: d("10"), Quantity: 0}},
		{"negative quantity", LineItem{ProductID: "p1", UnitPrice: d("10"), Quantity: -1}},
		{"negative price", LineItem{ProductID: "p1", UnitPrice: d("-0.01"), Quantity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute([]LineItem{tt.item}, decimal.Zero, DefaultDeliveryThreshold, DefaultFlatDeliveryFee)
			assert.ErrorIs(t, err, ErrInvalidLineItem)
		})
	}
}

func TestCompute_NegativeDiscountRejected(t *testing.T) {
	items := []LineItem{{ProductID: "p1", UnitPrice: d("100"), Quantity: 1}}

	_, err := Compute(items, d("-1"), DefaultDeliveryThreshold, DefaultFlatDeliveryFee)

	assert.ErrorIs(t, err, ErrNegativeDiscount)
}

// ============================================
// Delivery Fee Tests
// ============================================

func TestCompute_FreeDeliveryBoundary(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount string
		wantFee  string
	}{
		{"exactly at threshold", "500", "0", "0"},
		{"one unit below threshold", "499", "0", "40"},
		{"discount brings it to threshold", "600", "100", "0"},
		{"discount brings it one below", "600", "101", "40"},
		{"above threshold", "1200", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []LineItem{{ProductID: "p1", UnitPrice: d(tt.price), Quantity: 1}}

			result, err := Compute(items, d(tt.discount), DefaultDeliveryThreshold, DefaultFlatDeliveryFee)

			require.NoError(t, err)
			assertDecimal(t, tt.wantFee, result.DeliveryFee)
		})
	}
}

// ============================================
// Scenario Tests
// ============================================

func TestCompute_ScenarioA_NoCoupon(t *testing.T) {
	items := []LineItem{{ProductID: "p1", UnitPrice: d("299"), Quantity: 1}}

	result, err := Compute(items, decimal.Zero, d("500"), d("40"))

	require.NoError(t, err)
	assertDecimal(t, "299", result.Subtotal)
	assertDecimal(t, "0", result.DiscountAmount)
	assertDecimal(t, "40", result.DeliveryFee)
	assertDecimal(t, "339", result.GrandTotal)
}

func TestCompute_ScenarioB_PercentageCoupon(t *testing.T) {
	items := []LineItem{{ProductID: "p1", UnitPrice: d("299"), Quantity: 2}}

	result, err := Compute(items, d("119.6"), d("500"), d("40"))

	require.NoError(t, err)
	assertDecimal(t, "598", result.Subtotal)
	assertDecimal(t, "119.6", result.DiscountAmount)
	assertDecimal(t, "40", result.DeliveryFee)
	assertDecimal(t, "518.4", result.GrandTotal)
}

func TestCompute_ScenarioC_DiscountClampedToSubtotal(t *testing.T) {
	items := []LineItem{{ProductID: "p1", UnitPrice: d("299"), Quantity: 2}}

	result, err := Compute(items, d("1000"), d("500"), d("40"))

	require.NoError(t, err)
	assertDecimal(t, "598", result.DiscountAmount)
	assertDecimal(t, "40", result.DeliveryFee)
	assertDecimal(t, "40", result.GrandTotal)
}

func TestCompute_Idempotent(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", UnitPrice: d("149.99"), Quantity: 3},
		{ProductID: "p2", UnitPrice: d("20"), Quantity: 1},
	}

	first, err := Compute(items, d("15"), DefaultDeliveryThreshold, DefaultFlatDeliveryFee)
	require.NoError(t, err)
	second, err := Compute(items, d("15"), DefaultDeliveryThreshold, DefaultFlatDeliveryFee)
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.DiscountAmount.Equal(second.DiscountAmount))
	assert.True(t, first.DeliveryFee.Equal(second.DeliveryFee))
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
}

func TestCompute_GrandTotalInvariant(t *testing.T) {
	for _, discount := range []string{"0", "1", "250.5", "598", "5000"} {
		items := []LineItem{{ProductID: "p1", UnitPrice: d("299"), Quantity: 2}}

		result, err := Compute(items, d(discount), DefaultDeliveryThreshold, DefaultFlatDeliveryFee)
		require.NoError(t, err)

		want := result.Subtotal.Sub(result.DiscountAmount).Add(result.DeliveryFee)
		assert.True(t, want.Equal(result.GrandTotal), "discount %s", discount)
		assert.True(t, result.DiscountAmount.LessThanOrEqual(result.Subtotal))
		assert.False(t, result.GrandTotal.IsNegative())
	}
}

func TestRules_Compute_UsesConfiguredFees(t *testing.T) {
	rules := Rules{DeliveryThreshold: d("1000"), FlatDeliveryFee: d("75"), Currency: "INR"}
	items := []LineItem{{ProductID: "p1", UnitPrice: d("600"), Quantity: 1}}

	result, err := rules.Compute(items, decimal.Zero)

	require.NoError(t, err)
	assertDecimal(t, "75", result.DeliveryFee)
	assertDecimal(t, "675", result.GrandTotal)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(51840), MinorUnits(d("518.4")))
	assert.Equal(t, int64(4000), MinorUnits(d("40")))
	assert.Equal(t, int64(1), MinorUnits(d("0.005")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
}
