package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Lookup finds the active coupon whose code matches case-insensitively.
// It returns ErrCouponNotFound when none matches.
type Lookup interface {
	FindActiveCoupon(ctx context.Context, code string) (*Coupon, error)
}

// Repository is the admin-facing coupon storage.
type Repository interface {
	Lookup
	CreateCoupon(ctx context.Context, c *Coupon) error
	UpdateCoupon(ctx context.Context, c *Coupon) error
	GetCoupon(ctx context.Context, id string) (*Coupon, error)
	ListCoupons(ctx context.Context) ([]*Coupon, error)
}

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger.Named("coupon"), now: time.Now}
}

// Validate checks code against subtotal at now. It never writes.
//
// Missing, inactive, out-of-window and exhausted coupons all yield ErrCouponNotFound
// so callers cannot tell which codes exist.
func (s *Service) Validate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*Applied, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if subtotal.IsNegative() {
		return nil, ErrNegativeSubtotal
	}

	c, err := s.repo.FindActiveCoupon(ctx, code)
	if err != nil {
		return nil, err
	}
	if !c.IsActive || !c.InWindow(now) || c.Exhausted() {
		s.logger.Debug("coupon rejected", zap.String("code", code), zap.Bool("active", c.IsActive), zap.Bool("exhausted", c.Exhausted()))
		return nil, ErrCouponNotFound
	}
	if subtotal.LessThan(c.MinimumOrderAmount) {
		return nil, &MinimumNotMetError{Minimum: c.MinimumOrderAmount}
	}

	return &Applied{
		CouponID:       c.ID,
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		DiscountAmount: c.Discount(subtotal),
	}, nil
}

// Create stores a new coupon after validating it.
func (s *Service) Create(ctx context.Context, c *Coupon) (*Coupon, error) {
	c.Code = NormalizeCode(c.Code)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	c.ID = uuid.New().String()
	c.UsedCount = 0
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.repo.CreateCoupon(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("coupon created", zap.String("coupon_id", c.ID), zap.String("code", c.Code))
	return c, nil
}

// Update replaces the editable fields of an existing coupon. UsedCount is preserved.
func (s *Service) Update(ctx context.Context, id string, patch *Coupon) (*Coupon, error) {
	existing, err := s.repo.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Code = NormalizeCode(patch.Code)
	updated.DiscountType = patch.DiscountType
	updated.DiscountValue = patch.DiscountValue
	updated.MinimumOrderAmount = patch.MinimumOrderAmount
	updated.ValidFrom = patch.ValidFrom
	updated.ValidUntil = patch.ValidUntil
	updated.IsActive = patch.IsActive
	updated.MaxUsageCount = patch.MaxUsageCount
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now()

	if err := s.repo.UpdateCoupon(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Deactivate turns a coupon off. Historical orders keep referencing its code.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	c, err := s.repo.GetCoupon(ctx, id)
	if err != nil {
		return err
	}
	if !c.IsActive {
		return nil
	}
	c.IsActive = false
	c.UpdatedAt = s.now()
	if err := s.repo.UpdateCoupon(ctx, c); err != nil {
		return err
	}
	s.logger.Info("coupon deactivated", zap.String("coupon_id", id), zap.String("code", c.Code))
	return nil
}

func (s *Service) List(ctx context.Context) ([]*Coupon, error) {
	return s.repo.ListCoupons(ctx)
}

// IsSoftFailure reports whether err is a coupon problem the checkout can proceed past.
func IsSoftFailure(err error) bool {
	return errors.Is(err, ErrCouponNotFound) ||
		errors.Is(err, ErrMinimumNotMet) ||
		errors.Is(err, ErrEmptyCode) ||
		errors.Is(err, ErrUsageLimitReached)
}
