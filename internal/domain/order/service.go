package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// numberAttempts bounds how often Place regenerates a colliding order number.
const numberAttempts = 3

// Repository persists orders. CreateOrder must insert the order, its items and,
// when couponID is set, the conditional coupon usage increment in one transaction.
// It returns coupon.ErrUsageLimitReached when the increment matched no row and
// ErrDuplicateOrderNumber on an order number collision; neither leaves a partial write.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order, couponID string) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)
	// UpdateOrderStatus writes both status axes and the payment reference if the
	// stored version still equals expectedVersion, otherwise ErrConcurrentUpdate.
	UpdateOrderStatus(ctx context.Context, o *Order, expectedVersion int) error
}

type ListFilter struct {
	PaymentStatus     PaymentStatus
	FulfillmentStatus FulfillmentStatus
	Limit             int
	Offset            int
}

// Change is the outcome of a status update. Payment and Fulfillment are nil when
// that axis did not move.
type Change struct {
	Order       *Order
	Payment     *PaymentStatusChanged
	Fulfillment *FulfillmentStatusChanged
}

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger.Named("order"), now: time.Now}
}

// Place assigns identity, number and initial statuses to o and stores it.
// A colliding order number is regenerated up to numberAttempts times.
func (s *Service) Place(ctx context.Context, o *Order, couponID string) error {
	if !o.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	now := s.now().UTC()
	o.ID = uuid.New().String()
	o.PaymentStatus = InitialPaymentStatus(o.PaymentMethod)
	o.FulfillmentStatus = FulfillmentPending
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Version = 1

	var err error
	for attempt := 1; attempt <= numberAttempts; attempt++ {
		o.OrderNumber = NewOrderNumber(now)
		err = s.repo.CreateOrder(ctx, o, couponID)
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			break
		}
		s.logger.Warn("order number collision", zap.String("order_number", o.OrderNumber), zap.Int("attempt", attempt))
	}
	if err != nil {
		return err
	}

	s.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("user_id", o.UserID),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// GetByNumber looks an order up by its human-readable number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetOrderByNumber(ctx, number)
}

// GetForUser returns the order only if it belongs to userID. Orders of other
// users are reported as ErrOrderNotFound.
func (s *Service) GetForUser(ctx context.Context, id, userID string) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Order, error) {
	return s.repo.ListOrdersByUser(ctx, userID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	return s.repo.ListOrders(ctx, filter)
}

// UpdatePaymentStatus moves the payment axis of order id to target.
// ref is recorded as the payment reference when non-empty.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, target PaymentStatus, ref, reason string) (*Change, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanTransitionPayment(target) {
		return nil, o.paymentTransitionError(target)
	}

	now := s.now().UTC()
	change := &Change{Order: o, Payment: &PaymentStatusChanged{
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		UserID:           o.UserID,
		From:             o.PaymentStatus,
		To:               target,
		PaymentReference: ref,
		Reason:           reason,
		ChangedAt:        now,
	}}
	o.PaymentStatus = target
	if ref != "" {
		o.PaymentReference = ref
	}
	if err := s.save(ctx, o, now); err != nil {
		return nil, err
	}
	return change, nil
}

// UpdateFulfillmentStatus moves the fulfillment axis of order id to target.
// Completing an order settles an outstanding payment; cancelling one voids it.
func (s *Service) UpdateFulfillmentStatus(ctx context.Context, id string, target FulfillmentStatus) (*Change, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.moveFulfillment(ctx, o, target)
}

// Cancel lets the owner cancel an order that has not started processing.
func (s *Service) Cancel(ctx context.Context, id, userID string) (*Change, error) {
	o, err := s.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if o.FulfillmentStatus != FulfillmentPending {
		return nil, ErrNotCancellable
	}
	return s.moveFulfillment(ctx, o, FulfillmentCancelled)
}

func (s *Service) moveFulfillment(ctx context.Context, o *Order, target FulfillmentStatus) (*Change, error) {
	if !o.CanTransitionFulfillment(target) {
		return nil, o.fulfillmentTransitionError(target)
	}

	payment, settle, err := SettlePaymentOnCompletion(target, o.PaymentStatus)
	if err != nil {
		return nil, err
	}
	if target == FulfillmentCancelled && o.PaymentStatus.CanTransitionTo(PaymentCancelled) {
		payment, settle = PaymentCancelled, true
	}

	now := s.now().UTC()
	change := &Change{Order: o, Fulfillment: &FulfillmentStatusChanged{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		From:        o.FulfillmentStatus,
		To:          target,
		ChangedAt:   now,
	}}
	if settle {
		change.Payment = &PaymentStatusChanged{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			From:        o.PaymentStatus,
			To:          payment,
			ChangedAt:   now,
		}
	}

	o.FulfillmentStatus = target
	o.PaymentStatus = payment
	if err := s.save(ctx, o, now); err != nil {
		return nil, err
	}
	return change, nil
}

func (s *Service) save(ctx context.Context, o *Order, now time.Time) error {
	expected := o.Version
	o.UpdatedAt = now
	o.Version++
	if err := s.repo.UpdateOrderStatus(ctx, o, expected); err != nil {
		s.logger.Warn("order status update failed", zap.String("order_id", o.ID), zap.Error(err))
		return err
	}
	s.logger.Info("order status updated",
		zap.String("order_id", o.ID),
		zap.String("payment_status", string(o.PaymentStatus)),
		zap.String("fulfillment_status", string(o.FulfillmentStatus)),
	)
	return nil
}
