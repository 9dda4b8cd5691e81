package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindActiveCoupon(ctx context.Context, code string) (*Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Coupon), args.Error(1)
}

func (m *MockRepository) CreateCoupon(ctx context.Context, c *Coupon) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRepository) UpdateCoupon(ctx context.Context, c *Coupon) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRepository) GetCoupon(ctx context.Context, id string) (*Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Coupon), args.Error(1)
}

func (m *MockRepository) ListCoupons(ctx context.Context) ([]*Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Coupon), args.Error(1)
}

var (
	validFrom  = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	validUntil = time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	midYear    = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func percentCoupon(value string) *Coupon {
	return &Coupon{
		ID:                 "coupon-1",
		Code:               "SAVE20",
		DiscountType:       DiscountPercentage,
		DiscountValue:      dec(value),
		MinimumOrderAmount: decimal.Zero,
		ValidFrom:          validFrom,
		ValidUntil:         validUntil,
		IsActive:           true,
	}
}

func newTestService() (*Service, *MockRepository) {
	repo := new(MockRepository)
	return NewService(repo, zap.NewNop()), repo
}

// ============================================
// Validate Tests
// ============================================

func TestService_Validate_Percentage(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.On("FindActiveCoupon", ctx, "SAVE20").Return(percentCoupon("20"), nil)

	applied, err := service.Validate(ctx, "save20", dec("598"), midYear)

	require.NoError(t, err)
	assert.Equal(t, "SAVE20", applied.Code)
	assert.True(t, dec("119.6").Equal(applied.DiscountAmount), applied.DiscountAmount.String())
	repo.AssertExpectations(t)
}

func TestService_Validate_PercentageNeverExceedsSubtotal(t *testing.T) {
	for _, subtotal := range []string{"0", "1", "99.99", "598", "100000"} {
		service, repo := newTestService()
		ctx := context.Background()
		repo.On("FindActiveCoupon", ctx, "SAVE20").Return(percentCoupon("20"), nil)

		applied, err := service.Validate(ctx, "SAVE20", dec(subtotal), midYear)

		require.NoError(t, err)
		want := decimal.Min(dec(subtotal).Mul(dec("0.20")).Round(2), dec(subtotal))
		assert.True(t, want.Equal(applied.DiscountAmount), "subtotal %s", subtotal)
		assert.False(t, applied.DiscountAmount.IsNegative())
		assert.True(t, applied.DiscountAmount.LessThanOrEqual(dec(subtotal)))
	}
}

func TestService_Validate_FixedAmountClamped(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	c := percentCoupon("1000")
	c.DiscountType = DiscountFixedAmount
	repo.On("FindActiveCoupon", ctx, "SAVE20").Return(c, nil)

	applied, err := service.Validate(ctx, "SAVE20", dec("598"), midYear)

	require.NoError(t, err)
	assert.True(t, dec("598").Equal(applied.DiscountAmount))
}

func TestService_Validate_MinimumNotMet(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	c := percentCoupon("20")
	c.MinimumOrderAmount = dec("750")
	repo.On("FindActiveCoupon", ctx, "SAVE20").Return(c, nil)

	applied, err := service.Validate(ctx, "SAVE20", dec("749.99"), midYear)

	assert.Nil(t, applied)
	assert.ErrorIs(t, err, ErrMinimumNotMet)
	var minErr *MinimumNotMetError
	require.True(t, errors.As(err, &minErr))
	assert.True(t, dec("750").Equal(minErr.Minimum))
}

func TestService_Validate_MinimumExactlyMet(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	c := percentCoupon("10")
	c.MinimumOrderAmount = dec("750")
	repo.On("FindActiveCoupon", ctx, "SAVE20").Return(c, nil)

	applied, err := service.Validate(ctx, "SAVE20", dec("750"), midYear)

	require.NoError(t, err)
	assert.True(t, dec("75").Equal(applied.DiscountAmount))
}

func TestService_Validate_NotFound(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.On("FindActiveCoupon", ctx, "NOPE").Return(nil, ErrCouponNotFound)

	_, err := service.Validate(ctx, "nope", dec("100"), midYear)

	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestService_Validate_ExpiredLooksLikeNotFound(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.On("FindActiveCoupon", ctx, "SAVE20").Return(percentCoupon("20"), nil)

	_, err := service.Validate(ctx, "SAVE20", dec("598"), validUntil.Add(time.Second))

	assert.ErrorIs(t, err, ErrCouponNotFound)
	assert.Equal(t, ErrCouponNotFound, err)
}

func TestService_Validate_NotYetValidLooksLikeNotFound(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.On("FindActiveCoupon", ctx, "SAVE20").Return(percentCoupon("20"), nil)

	_, err := service.Validate(ctx, "SAVE20", dec("598"), validFrom.Add(-time.Second))

	assert.Equal(t, ErrCouponNotFound, err)
}

func TestService_Validate_WindowBoundsInclusive(t *testing.T) {
	for _, at := range []time.Time{validFrom, validUntil} {
		service, repo := newTestService()
		ctx := context.Background()
		repo.On("FindActiveCoupon", ctx, "SAVE20").Return(percentCoupon("20"), nil)

		_, err := service.Validate(ctx, "SAVE20", dec("100"), at)

		assert.NoError(t, err, at.String())
	}
}

func TestService_Validate_ExhaustedLooksLikeNotFound(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	c := percentCoupon("20")
	limit := 5
	c.MaxUsageCount = &limit
	c.UsedCount = 5
	repo.On("FindActiveCoupon", ctx, "SAVE20").Return(c, nil)

	_, err := service.Validate(ctx, "SAVE20", dec("598"), midYear)

	assert.Equal(t, ErrCouponNotFound, err)
}

func TestService_Validate_InputErrors(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	_, err := service.Validate(ctx, "   ", dec("100"), midYear)
	assert.ErrorIs(t, err, ErrEmptyCode)

	_, err = service.Validate(ctx, "SAVE20", dec("-1"), midYear)
	assert.ErrorIs(t, err, ErrNegativeSubtotal)

	repo.AssertNotCalled(t, "FindActiveCoupon", mock.Anything, mock.Anything)
}

func TestService_Validate_LookupError(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	dbErr := errors.New("connection refused")
	repo.On("FindActiveCoupon", ctx, "SAVE20").Return(nil, dbErr)

	_, err := service.Validate(ctx, "SAVE20", dec("100"), midYear)

	assert.ErrorIs(t, err, dbErr)
	assert.False(t, IsSoftFailure(err))
}

// ============================================
// Admin Tests
// ============================================

func TestService_Create_Success(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.On("CreateCoupon", ctx, mock.AnythingOfType("*coupon.Coupon")).Return(nil)

	c := percentCoupon("15")
	c.Code = "  festive15 "
	created, err := service.Create(ctx, c)

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "FESTIVE15", created.Code)
	assert.Equal(t, 0, created.UsedCount)
	repo.AssertExpectations(t)
}

func TestService_Create_Invalid(t *testing.T) {
	limitZero := 0
	tests := []struct {
		name   string
		mutate func(c *Coupon)
	}{
		{"empty code", func(c *Coupon) { c.Code = " " }},
		{"percentage over 100", func(c *Coupon) { c.DiscountValue = dec("101") }},
		{"zero value", func(c *Coupon) { c.DiscountValue = decimal.Zero }},
		{"negative minimum", func(c *Coupon) { c.MinimumOrderAmount = dec("-5") }},
		{"window reversed", func(c *Coupon) { c.ValidFrom, c.ValidUntil = c.ValidUntil, c.ValidFrom }},
		{"zero max usage", func(c *Coupon) { c.MaxUsageCount = &limitZero }},
		{"unknown type", func(c *Coupon) { c.DiscountType = "bogo" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := newTestService()
			c := percentCoupon("20")
			tt.mutate(c)

			_, err := service.Create(context.Background(), c)

			assert.Error(t, err)
			repo.AssertNotCalled(t, "CreateCoupon", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Update_PreservesUsage(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	existing := percentCoupon("20")
	existing.UsedCount = 7
	repo.On("GetCoupon", ctx, "coupon-1").Return(existing, nil)
	repo.On("UpdateCoupon", ctx, mock.AnythingOfType("*coupon.Coupon")).Return(nil)

	patch := percentCoupon("25")
	patch.UsedCount = 0
	updated, err := service.Update(ctx, "coupon-1", patch)

	require.NoError(t, err)
	assert.Equal(t, 7, updated.UsedCount)
	assert.True(t, dec("25").Equal(updated.DiscountValue))
}

func TestService_Deactivate(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	existing := percentCoupon("20")
	repo.On("GetCoupon", ctx, "coupon-1").Return(existing, nil)
	repo.On("UpdateCoupon", ctx, mock.MatchedBy(func(c *Coupon) bool { return !c.IsActive })).Return(nil)

	err := service.Deactivate(ctx, "coupon-1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestIsSoftFailure(t *testing.T) {
	assert.True(t, IsSoftFailure(ErrCouponNotFound))
	assert.True(t, IsSoftFailure(&MinimumNotMetError{Minimum: dec("10")}))
	assert.True(t, IsSoftFailure(ErrUsageLimitReached))
	assert.False(t, IsSoftFailure(errors.New("boom")))
}
