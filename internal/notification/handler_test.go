package notification

import (
	"context"
	"testing"
	"time"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/account"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/email"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOrderConfirmation(to string, o email.OrderSummary) error {
	return m.Called(to, o).Error(0)
}

func (m *MockMailer) SendPaymentReceived(to, orderNumber, amount string) error {
	return m.Called(to, orderNumber, amount).Error(0)
}

func (m *MockMailer) SendShippedNotice(to, orderNumber string) error {
	return m.Called(to, orderNumber).Error(0)
}

func (m *MockMailer) SendCancellationNotice(to, orderNumber string) error {
	return m.Called(to, orderNumber).Error(0)
}

type staticProfiles map[string]*account.Profile

func (s staticProfiles) GetProfile(ctx context.Context, id string) (*account.Profile, error) {
	p, ok := s[id]
	if !ok {
		return nil, account.ErrProfileNotFound
	}
	return p, nil
}

type staticOrders map[string]*order.Order

func (s staticOrders) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	o, ok := s[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func newTestHandler() (*Handler, *MockMailer) {
	mailer := new(MockMailer)
	profiles := staticProfiles{"user-1": {ID: "user-1", Email: "asha@example.com", Name: "Asha"}}
	orders := staticOrders{"order-1": {ID: "order-1", TotalAmount: decimal.RequireFromString("518.4")}}
	return NewHandler(mailer, profiles, orders, zap.NewNop()), mailer
}

func mustEvent(t *testing.T, eventType string, data any) *events.Event {
	t.Helper()
	e, err := events.New("order-1", order.AggregateType, eventType, 1, data)
	require.NoError(t, err)
	return e
}

func TestHandler_OrderPlaced(t *testing.T) {
	h, mailer := newTestHandler()
	mailer.On("SendOrderConfirmation", "asha@example.com", mock.MatchedBy(func(o email.OrderSummary) bool {
		return o.OrderNumber == "ORD-1" && o.CustomerName == "Asha" && len(o.Items) == 1 && o.Total.Equal(decimal.NewFromInt(339))
	})).Return(nil)

	err := h.HandleEvent(context.Background(), mustEvent(t, order.EventOrderPlaced, order.OrderPlaced{
		OrderID:     "order-1",
		OrderNumber: "ORD-1",
		UserID:      "user-1",
		Items:       []order.OrderItem{{ProductID: "p1", Name: "Makhana", Quantity: 1, UnitPrice: decimal.NewFromInt(299)}},
		TotalAmount: decimal.NewFromInt(339),
		PlacedAt:    time.Now(),
	}))

	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestHandler_OrderPlaced_FallsBackToEventEmail(t *testing.T) {
	h, mailer := newTestHandler()
	mailer.On("SendOrderConfirmation", "guest@example.com", mock.Anything).Return(nil)

	err := h.HandleEvent(context.Background(), mustEvent(t, order.EventOrderPlaced, order.OrderPlaced{
		OrderID: "order-2", OrderNumber: "ORD-2", UserID: "user-gone", Email: "guest@example.com",
	}))

	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestHandler_PaymentPaid(t *testing.T) {
	h, mailer := newTestHandler()
	mailer.On("SendPaymentReceived", "asha@example.com", "ORD-1", "₹518.40").Return(nil)

	err := h.HandleEvent(context.Background(), mustEvent(t, order.EventPaymentStatusChanged, order.PaymentStatusChanged{
		OrderID: "order-1", OrderNumber: "ORD-1", UserID: "user-1", From: order.PaymentPending, To: order.PaymentPaid,
	}))

	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestHandler_CODSettlementIsSilent(t *testing.T) {
	h, mailer := newTestHandler()

	err := h.HandleEvent(context.Background(), mustEvent(t, order.EventPaymentStatusChanged, order.PaymentStatusChanged{
		OrderID: "order-1", UserID: "user-1", From: order.PaymentCODPending, To: order.PaymentPaid,
	}))

	require.NoError(t, err)
	mailer.AssertNotCalled(t, "SendPaymentReceived", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_FulfillmentChanges(t *testing.T) {
	h, mailer := newTestHandler()
	mailer.On("SendShippedNotice", "asha@example.com", "ORD-1").Return(nil).Once()
	mailer.On("SendCancellationNotice", "asha@example.com", "ORD-1").Return(nil).Once()
	ctx := context.Background()

	for _, to := range []order.FulfillmentStatus{order.FulfillmentProcessing, order.FulfillmentShipped, order.FulfillmentCancelled} {
		err := h.HandleEvent(ctx, mustEvent(t, order.EventFulfillmentStatusChanged, order.FulfillmentStatusChanged{
			OrderID: "order-1", OrderNumber: "ORD-1", UserID: "user-1", To: to,
		}))
		require.NoError(t, err)
	}

	mailer.AssertExpectations(t)
}

func TestHandler_IgnoresUnknownEvents(t *testing.T) {
	h, mailer := newTestHandler()

	err := h.HandleEvent(context.Background(), mustEvent(t, "CouponCreated", map[string]string{}))

	require.NoError(t, err)
	assert.Empty(t, mailer.Calls)
}
