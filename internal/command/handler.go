package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/cart"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/catalog"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/pricing"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/events"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/payment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPersistence hides store failures behind a message the customer can act on.
	ErrPersistence = errors.New("failed to place order, please retry")
)

type Handler struct {
	catalogSvc *catalog.Service
	couponSvc  *coupon.Service
	cartSvc    *cart.Service
	orderSvc   *order.Service
	gateway    payment.Gateway
	publisher  events.Publisher
	rules      pricing.Rules
	logger     *zap.Logger
	now        func() time.Time
}

func NewHandler(
	catalogSvc *catalog.Service,
	couponSvc *coupon.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	gateway payment.Gateway,
	publisher events.Publisher,
	rules pricing.Rules,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		couponSvc:  couponSvc,
		cartSvc:    cartSvc,
		orderSvc:   orderSvc,
		gateway:    gateway,
		publisher:  publisher,
		rules:      rules,
		logger:     logger.Named("checkout"),
		now:        time.Now,
	}
}

// ============================================
// Cart
// ============================================

// AddToCart adds an item to cart after checking the product is on sale.
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (cart.Item, error) {
	p, err := h.catalogSvc.Get(ctx, cmd.ProductID)
	if err != nil {
		return cart.Item{}, err
	}
	if !p.IsActive {
		return cart.Item{}, catalog.ErrProductNotFound
	}
	return h.cartSvc.AddItem(ctx, cmd.UserID, cmd.ProductID, cmd.Quantity)
}

func (h *Handler) UpdateCartItem(ctx context.Context, cmd UpdateCartItem) error {
	return h.cartSvc.UpdateQuantity(ctx, cmd.UserID, cmd.ProductID, cmd.Quantity)
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	return h.cartSvc.RemoveItem(ctx, cmd.UserID, cmd.ProductID)
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	return h.cartSvc.Clear(ctx, cmd.UserID)
}

// ============================================
// Checkout
// ============================================

type priced struct {
	result  pricing.Result
	coupon  *coupon.Applied
	warning string
}

// Quote prices a cart snapshot against current prices and coupons without storing anything.
func (h *Handler) Quote(ctx context.Context, cmd Quote) (*QuoteResult, error) {
	if len(cmd.Items) == 0 {
		return nil, ErrEmptyCart
	}
	items, err := h.lineItems(ctx, cmd.Items)
	if err != nil {
		return nil, err
	}
	p, err := h.price(ctx, items, cmd.CouponCode)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{
		Items:    items,
		Pricing:  p.result,
		Coupon:   p.coupon,
		Currency: h.rules.Currency,
		Warning:  p.warning,
	}, nil
}

// PlaceOrder validates the checkout, prices it from authoritative data, stores the
// order with its items and coupon usage atomically and hands online payments to
// the gateway. Validation errors are returned as is; store failures as ErrPersistence.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*OrderConfirmation, error) {
	// 1. Validate
	if !cmd.Session.Authenticated() {
		return nil, auth.ErrUnauthenticated
	}
	if len(cmd.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := cmd.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	if !cmd.PaymentMethod.Valid() {
		return nil, order.ErrInvalidPaymentMethod
	}

	// 2. Re-fetch prices and price the order
	items, err := h.lineItems(ctx, cmd.Items)
	if err != nil {
		return nil, h.checkoutError(cmd, err)
	}
	p, err := h.price(ctx, items, cmd.CouponCode)
	if err != nil {
		return nil, h.checkoutError(cmd, err)
	}
	warnings := collectWarnings(p.warning)

	// 3. Persist order, items and coupon usage in one transaction
	o := newOrder(cmd, items, p)
	err = h.orderSvc.Place(ctx, o, couponID(p.coupon))
	if errors.Is(err, coupon.ErrUsageLimitReached) {
		h.logger.Info("coupon exhausted during checkout, placing without discount",
			zap.String("user_id", cmd.Session.UserID),
			zap.String("coupon_code", o.CouponCode),
		)
		p, err = h.price(ctx, items, "")
		if err != nil {
			h.logger.Error("re-pricing failed", zap.Error(err))
			return nil, ErrPersistence
		}
		warnings = append(warnings, "coupon not applied: "+coupon.ErrUsageLimitReached.Error())
		o = newOrder(cmd, items, p)
		err = h.orderSvc.Place(ctx, o, "")
	}
	if err != nil {
		h.logger.Error("failed to place order", zap.String("user_id", cmd.Session.UserID), zap.Error(err))
		return nil, ErrPersistence
	}

	h.publish(ctx, o.ID, order.EventOrderPlaced, o.Version, order.PlacedEvent(o, cmd.Session.Email))

	confirmation := &OrderConfirmation{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		GrandTotal:    o.TotalAmount,
		Currency:      h.rules.Currency,
		PaymentStatus: o.PaymentStatus,
	}

	// 4. Payment hand-off
	switch o.PaymentMethod {
	case order.PaymentOnline:
		if o.TotalAmount.IsZero() {
			paid, err := h.ConfirmPayment(ctx, o.ID, "")
			if err != nil {
				h.logger.Error("failed to settle zero-amount order", zap.String("order_id", o.ID), zap.Error(err))
				break
			}
			confirmation.PaymentStatus = paid.PaymentStatus
			break
		}
		checkout, err := h.initiatePayment(ctx, o, cmd.Session.Email)
		if err != nil {
			h.logger.Error("payment initiation failed",
				zap.String("order_id", o.ID),
				zap.String("order_number", o.OrderNumber),
				zap.Error(err),
			)
			warnings = append(warnings, "payment could not be started, the order is saved as pending")
		} else {
			confirmation.CheckoutURL = checkout.URL
		}
	case order.PaymentCashOnDelivery:
		if err := h.cartSvc.Clear(ctx, o.UserID); err != nil {
			h.logger.Warn("failed to clear cart after order", zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	confirmation.Warning = strings.Join(warnings, "; ")
	return confirmation, nil
}

// checkoutError passes customer-correctable errors through and hides everything else.
func (h *Handler) checkoutError(cmd PlaceOrder, err error) error {
	for _, target := range []error{
		catalog.ErrProductNotFound,
		cart.ErrInvalidProduct,
		cart.ErrInvalidQuantity,
		pricing.ErrInvalidLineItem,
		pricing.ErrEmptyOrder,
	} {
		if errors.Is(err, target) {
			return err
		}
	}
	h.logger.Error("checkout failed", zap.String("user_id", cmd.Session.UserID), zap.Error(err))
	return ErrPersistence
}

func (h *Handler) initiatePayment(ctx context.Context, o *order.Order, email string) (*payment.Checkout, error) {
	orderID := o.ID
	return h.gateway.Initiate(ctx, payment.Request{
		Amount:         pricing.MinorUnits(o.TotalAmount),
		Currency:       h.rules.Currency,
		OrderReference: o.OrderNumber,
		CustomerEmail:  email,
		OnSuccess: func(ctx context.Context, paymentRef string) error {
			_, err := h.ConfirmPayment(ctx, orderID, paymentRef)
			return err
		},
		OnFailure: func(ctx context.Context, reason string) error {
			_, err := h.FailPayment(ctx, orderID, reason)
			return err
		},
	})
}

// lineItems merges the cart snapshot by product and prices it from the products table.
func (h *Handler) lineItems(ctx context.Context, lines []CartLine) ([]pricing.LineItem, error) {
	quantities := make(map[string]int, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return nil, cart.ErrInvalidProduct
		}
		if line.Quantity <= 0 || line.Quantity > cart.MaxQuantity {
			return nil, cart.ErrInvalidQuantity
		}
		if _, seen := quantities[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}

	products, err := h.catalogSvc.Authoritative(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]pricing.LineItem, 0, len(ids))
	for _, id := range ids {
		p := products[id]
		items = append(items, pricing.LineItem{
			ProductID: id,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  quantities[id],
		})
	}
	return items, nil
}

// price applies code to items. Coupon rejections become a warning; store errors are returned.
func (h *Handler) price(ctx context.Context, items []pricing.LineItem, code string) (priced, error) {
	subtotal, err := pricing.Subtotal(items)
	if err != nil {
		return priced{}, err
	}

	var p priced
	discount := decimal.Zero
	if strings.TrimSpace(code) != "" {
		applied, err := h.couponSvc.Validate(ctx, code, subtotal, h.now())
		switch {
		case err == nil:
			p.coupon = applied
			discount = applied.DiscountAmount
		case coupon.IsSoftFailure(err):
			p.warning = "coupon not applied: " + err.Error()
		default:
			return priced{}, err
		}
	}

	p.result, err = h.rules.Compute(items, discount)
	if err != nil {
		return priced{}, err
	}
	return p, nil
}

func newOrder(cmd PlaceOrder, items []pricing.LineItem, p priced) *order.Order {
	o := &order.Order{
		UserID:          cmd.Session.UserID,
		Items:           items,
		Subtotal:        p.result.Subtotal,
		DiscountAmount:  p.result.DiscountAmount,
		DeliveryFee:     p.result.DeliveryFee,
		TotalAmount:     p.result.GrandTotal,
		PaymentMethod:   cmd.PaymentMethod,
		ShippingAddress: cmd.ShippingAddress,
	}
	if p.coupon != nil {
		o.CouponCode = p.coupon.Code
	}
	return o
}

func couponID(applied *coupon.Applied) string {
	if applied == nil {
		return ""
	}
	return applied.CouponID
}

func collectWarnings(w ...string) []string {
	var out []string
	for _, s := range w {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ============================================
// Payment callbacks
// ============================================

// ConfirmPayment marks the order paid and clears the buyer's cart.
// A repeated confirmation of an already paid order is a no-op.
func (h *Handler) ConfirmPayment(ctx context.Context, orderID, paymentRef string) (*order.Order, error) {
	change, err := h.orderSvc.UpdatePaymentStatus(ctx, orderID, order.PaymentPaid, paymentRef, "")
	if errors.Is(err, order.ErrInvalidTransition) {
		o, getErr := h.orderSvc.Get(ctx, orderID)
		if getErr == nil && o.PaymentStatus == order.PaymentPaid {
			h.logger.Info("duplicate payment confirmation ignored", zap.String("order_id", orderID))
			return o, nil
		}
		// Captured for an order that can no longer be paid; the reference is recorded nowhere else.
		fields := []zap.Field{zap.String("order_id", orderID), zap.String("payment_ref", paymentRef), zap.Error(err)}
		if getErr == nil {
			fields = append(fields, zap.String("order_number", o.OrderNumber), zap.String("payment_status", string(o.PaymentStatus)))
		}
		h.logger.Error("payment captured for order that cannot be paid, refund or reconcile manually", fields...)
	}
	if err != nil {
		return nil, err
	}

	if err := h.cartSvc.Clear(ctx, change.Order.UserID); err != nil {
		h.logger.Warn("failed to clear cart after payment", zap.String("order_id", orderID), zap.Error(err))
	}
	h.publishChange(ctx, change)
	return change.Order, nil
}

// FailPayment records a failed payment. The order stays for manual recovery.
func (h *Handler) FailPayment(ctx context.Context, orderID, reason string) (*order.Order, error) {
	change, err := h.orderSvc.UpdatePaymentStatus(ctx, orderID, order.PaymentFailed, "", reason)
	if err != nil {
		return nil, err
	}
	h.logger.Warn("payment failed", zap.String("order_id", orderID), zap.String("reason", reason))
	h.publishChange(ctx, change)
	return change.Order, nil
}

// ResolvePayment settles a gateway notification by order number when the
// gateway no longer holds the original request.
func (h *Handler) ResolvePayment(ctx context.Context, n payment.Notification) error {
	o, err := h.orderSvc.GetByNumber(ctx, n.OrderReference)
	if err != nil {
		return err
	}
	if n.Outcome == payment.OutcomeSucceeded && n.Amount != pricing.MinorUnits(o.TotalAmount) {
		return fmt.Errorf("%w: order %s", payment.ErrAmountMismatch, o.OrderNumber)
	}
	switch n.Outcome {
	case payment.OutcomeSucceeded:
		_, err = h.ConfirmPayment(ctx, o.ID, n.PaymentRef)
	case payment.OutcomeFailed:
		_, err = h.FailPayment(ctx, o.ID, n.Reason)
	default:
		err = fmt.Errorf("%w: %q", payment.ErrUnknownOutcome, n.Outcome)
	}
	return err
}

// ============================================
// Order lifecycle
// ============================================

// CancelOrder cancels the caller's own order while it is still pending.
func (h *Handler) CancelOrder(ctx context.Context, cmd CancelOrder) (*order.Order, error) {
	if !cmd.Session.Authenticated() {
		return nil, auth.ErrUnauthenticated
	}
	change, err := h.orderSvc.Cancel(ctx, cmd.OrderID, cmd.Session.UserID)
	if err != nil {
		return nil, err
	}
	h.publishChange(ctx, change)
	return change.Order, nil
}

// UpdateFulfillment is the admin fulfillment transition.
func (h *Handler) UpdateFulfillment(ctx context.Context, cmd UpdateFulfillment) (*order.Order, error) {
	change, err := h.orderSvc.UpdateFulfillmentStatus(ctx, cmd.OrderID, cmd.Status)
	if err != nil {
		return nil, err
	}
	h.publishChange(ctx, change)
	return change.Order, nil
}

// UpdatePayment is the admin payment transition.
func (h *Handler) UpdatePayment(ctx context.Context, cmd UpdatePayment) (*order.Order, error) {
	change, err := h.orderSvc.UpdatePaymentStatus(ctx, cmd.OrderID, cmd.Status, cmd.Reference, cmd.Reason)
	if err != nil {
		return nil, err
	}
	h.publishChange(ctx, change)
	return change.Order, nil
}

// ============================================
// Coupons (admin)
// ============================================

func (h *Handler) CreateCoupon(ctx context.Context, c *coupon.Coupon) (*coupon.Coupon, error) {
	return h.couponSvc.Create(ctx, c)
}

func (h *Handler) UpdateCoupon(ctx context.Context, id string, c *coupon.Coupon) (*coupon.Coupon, error) {
	return h.couponSvc.Update(ctx, id, c)
}

func (h *Handler) DeactivateCoupon(ctx context.Context, id string) error {
	return h.couponSvc.Deactivate(ctx, id)
}

// ============================================
// Events
// ============================================

func (h *Handler) publishChange(ctx context.Context, change *order.Change) {
	if change.Payment != nil {
		h.publish(ctx, change.Order.ID, order.EventPaymentStatusChanged, change.Order.Version, change.Payment)
	}
	if change.Fulfillment != nil {
		h.publish(ctx, change.Order.ID, order.EventFulfillmentStatusChanged, change.Order.Version, change.Fulfillment)
	}
}

// publish runs after the store commit. A failure is logged and never undoes the write.
func (h *Handler) publish(ctx context.Context, orderID, eventType string, version int, data any) {
	e, err := events.New(orderID, order.AggregateType, eventType, version, data)
	if err == nil {
		err = h.publisher.Publish(ctx, e)
	}
	if err != nil {
		h.logger.Error("failed to publish event",
			zap.String("order_id", orderID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
