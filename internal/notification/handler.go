package notification

import (
	"context"
	"errors"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/account"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/email"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/events"
	"go.uber.org/zap"
)

type Mailer interface {
	SendOrderConfirmation(to string, o email.OrderSummary) error
	SendPaymentReceived(to, orderNumber, amount string) error
	SendShippedNotice(to, orderNumber string) error
	SendCancellationNotice(to, orderNumber string) error
}

type ProfileLookup interface {
	GetProfile(ctx context.Context, id string) (*account.Profile, error)
}

type OrderLookup interface {
	GetOrder(ctx context.Context, id string) (*order.Order, error)
}

// Handler turns order events into customer emails.
type Handler struct {
	mailer   Mailer
	profiles ProfileLookup
	orders   OrderLookup
	logger   *zap.Logger
}

func NewHandler(mailer Mailer, profiles ProfileLookup, orders OrderLookup, logger *zap.Logger) *Handler {
	return &Handler{mailer: mailer, profiles: profiles, orders: orders, logger: logger.Named("notifier")}
}

// HandleEvent is an events.Handler.
func (h *Handler) HandleEvent(ctx context.Context, e *events.Event) error {
	switch e.EventType {
	case order.EventOrderPlaced:
		var data order.OrderPlaced
		if err := e.Decode(&data); err != nil {
			return err
		}
		return h.handleOrderPlaced(ctx, data)
	case order.EventPaymentStatusChanged:
		var data order.PaymentStatusChanged
		if err := e.Decode(&data); err != nil {
			return err
		}
		return h.handlePaymentChanged(ctx, data)
	case order.EventFulfillmentStatusChanged:
		var data order.FulfillmentStatusChanged
		if err := e.Decode(&data); err != nil {
			return err
		}
		return h.handleFulfillmentChanged(ctx, data)
	}
	return nil
}

// recipient returns the email and name for userID, or "" when the profile is gone.
func (h *Handler) recipient(ctx context.Context, userID, known string) (string, string, error) {
	p, err := h.profiles.GetProfile(ctx, userID)
	if errors.Is(err, account.ErrProfileNotFound) {
		h.logger.Warn("no profile for notification", zap.String("user_id", userID))
		return known, "", nil
	}
	if err != nil {
		return "", "", err
	}
	return p.Email, p.Name, nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, e order.OrderPlaced) error {
	to, name, err := h.recipient(ctx, e.UserID, e.Email)
	if err != nil || to == "" {
		return err
	}
	if name == "" {
		name = e.ShipTo.FullName
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}

	if err := h.mailer.SendOrderConfirmation(to, email.OrderSummary{
		OrderNumber:    e.OrderNumber,
		CustomerName:   name,
		Items:          items,
		Subtotal:       e.Subtotal,
		DiscountAmount: e.DiscountAmount,
		CouponCode:     e.CouponCode,
		DeliveryFee:    e.DeliveryFee,
		Total:          e.TotalAmount,
		PaymentMethod:  string(e.PaymentMethod),
	}); err != nil {
		return err
	}
	h.logger.Info("order confirmation sent", zap.String("order_number", e.OrderNumber))
	return nil
}

func (h *Handler) handlePaymentChanged(ctx context.Context, e order.PaymentStatusChanged) error {
	// COD settles on completion; the customer already paid the courier.
	if e.To != order.PaymentPaid || e.From == order.PaymentCODPending {
		return nil
	}
	to, _, err := h.recipient(ctx, e.UserID, "")
	if err != nil || to == "" {
		return err
	}
	o, err := h.orders.GetOrder(ctx, e.OrderID)
	if err != nil {
		return err
	}
	return h.mailer.SendPaymentReceived(to, e.OrderNumber, email.FormatINR(o.TotalAmount))
}

func (h *Handler) handleFulfillmentChanged(ctx context.Context, e order.FulfillmentStatusChanged) error {
	if e.To != order.FulfillmentShipped && e.To != order.FulfillmentCancelled {
		return nil
	}
	to, _, err := h.recipient(ctx, e.UserID, "")
	if err != nil || to == "" {
		return err
	}
	if e.To == order.FulfillmentShipped {
		return h.mailer.SendShippedNotice(to, e.OrderNumber)
	}
	return h.mailer.SendCancellationNotice(to, e.OrderNumber)
}
