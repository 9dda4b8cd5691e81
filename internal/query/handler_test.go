package query

import (
	"context"
	"testing"
	"time"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/cache"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/cart"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/catalog"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestQueryHandler(t *testing.T) (*Handler, *mocks.MockStore) {
	t.Helper()
	st := mocks.NewMockStore()
	logger := zap.NewNop()
	catalogSvc, err := catalog.NewService(st, cache.DefaultOptions(), logger)
	require.NoError(t, err)
	handler := NewHandler(
		catalogSvc,
		cart.NewService(st, logger),
		order.NewService(st, logger),
		coupon.NewService(st, logger),
		"INR",
		logger,
	)
	return handler, st
}

// ============================================
// Product Query Tests
// ============================================

func TestHandler_GetProduct_Found(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	st.AddProduct(&catalog.Product{ID: "prod-123", Name: "Thekua", Price: decimal.NewFromInt(299), IsActive: true})

	product, err := handler.GetProduct(context.Background(), "prod-123")

	require.NoError(t, err)
	assert.Equal(t, "Thekua", product.Name)
	assert.Equal(t, "299", product.Price.String())
}

func TestHandler_GetProduct_NotFound(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	st.AddProduct(&catalog.Product{ID: "hidden", Name: "Hidden", Price: decimal.NewFromInt(1), IsActive: false})

	_, err := handler.GetProduct(context.Background(), "non-existent")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = handler.GetProduct(context.Background(), "hidden")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestHandler_ListProducts_ActiveOnly(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	st.AddProduct(&catalog.Product{ID: "prod-1", Name: "Product 1", IsActive: true})
	st.AddProduct(&catalog.Product{ID: "prod-2", Name: "Product 2", IsActive: true})
	st.AddProduct(&catalog.Product{ID: "prod-3", Name: "Product 3", IsActive: false})

	products, err := handler.ListProducts(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 2)
}

// ============================================
// Cart Query Tests
// ============================================

func TestHandler_GetCart_Empty(t *testing.T) {
	handler, _ := newTestQueryHandler(t)

	c, err := handler.GetCart(context.Background(), "user-123")

	require.NoError(t, err)
	assert.Equal(t, "user-123", c.UserID)
	assert.Empty(t, c.Items)
	assert.True(t, c.Subtotal.IsZero())
	assert.Equal(t, "INR", c.Currency)
}

func TestHandler_GetCart_WithItems(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	ctx := context.Background()
	st.AddProduct(&catalog.Product{ID: "thekua", Name: "Thekua", Price: decimal.NewFromInt(299), IsActive: true})
	st.AddProduct(&catalog.Product{ID: "makhana", Name: "Makhana", Price: decimal.RequireFromString("149.50"), IsActive: true})
	_, err := st.AddItem(ctx, "user-123", "thekua", 2)
	require.NoError(t, err)
	_, err = st.AddItem(ctx, "user-123", "makhana", 1)
	require.NoError(t, err)

	c, err := handler.GetCart(ctx, "user-123")

	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.ItemCount)
	assert.Equal(t, "747.5", c.Subtotal.String())
	for _, item := range c.Items {
		assert.True(t, item.Available)
	}
}

func TestHandler_GetCart_UnavailableProduct(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	ctx := context.Background()
	st.AddProduct(&catalog.Product{ID: "thekua", Name: "Thekua", Price: decimal.NewFromInt(299), IsActive: true})
	_, err := st.AddItem(ctx, "user-123", "thekua", 1)
	require.NoError(t, err)
	_, err = st.AddItem(ctx, "user-123", "gone", 1)
	require.NoError(t, err)

	c, err := handler.GetCart(ctx, "user-123")

	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.False(t, c.Items[0].Available, "gone sorts first")
	assert.True(t, c.Items[1].Available)
	assert.Equal(t, "299", c.Subtotal.String())
}

// ============================================
// Order Query Tests
// ============================================

func seedOrder(st *mocks.MockStore, id, userID string, created time.Time) {
	st.AddOrder(&order.Order{
		ID:                id,
		OrderNumber:       "ORD-" + id,
		UserID:            userID,
		PaymentMethod:     order.PaymentOnline,
		PaymentStatus:     order.PaymentPending,
		FulfillmentStatus: order.FulfillmentPending,
		TotalAmount:       decimal.NewFromInt(339),
		CreatedAt:         created,
		Version:           1,
	})
}

func TestHandler_GetOrder_Owner(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	seedOrder(st, "order-1", "user-123", time.Now())

	o, err := handler.GetOrder(context.Background(), "order-1", auth.Session{UserID: "user-123", Role: auth.RoleCustomer})

	require.NoError(t, err)
	assert.Equal(t, "order-1", o.ID)
}

func TestHandler_GetOrder_OtherCustomer(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	seedOrder(st, "order-1", "user-123", time.Now())

	_, err := handler.GetOrder(context.Background(), "order-1", auth.Session{UserID: "user-999", Role: auth.RoleCustomer})

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestHandler_GetOrder_Admin(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	seedOrder(st, "order-1", "user-123", time.Now())

	o, err := handler.GetOrder(context.Background(), "order-1", auth.Session{UserID: "admin-1", Role: auth.RoleAdmin})

	require.NoError(t, err)
	assert.Equal(t, "user-123", o.UserID)
}

func TestHandler_ListOrdersByUser(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	now := time.Now()
	seedOrder(st, "order-1", "user-123", now.Add(-time.Hour))
	seedOrder(st, "order-2", "user-123", now)
	seedOrder(st, "order-3", "user-456", now)

	orders, err := handler.ListOrdersByUser(context.Background(), "user-123")

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-2", orders[0].ID, "newest first")
}

func TestHandler_ListOrdersByUser_NoOrders(t *testing.T) {
	handler, _ := newTestQueryHandler(t)

	orders, err := handler.ListOrdersByUser(context.Background(), "user-123")

	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestHandler_ListAllOrders_Filter(t *testing.T) {
	handler, st := newTestQueryHandler(t)
	now := time.Now()
	seedOrder(st, "order-1", "user-123", now)
	seedOrder(st, "order-2", "user-456", now.Add(time.Minute))
	paid := &order.Order{ID: "order-3", OrderNumber: "ORD-3", UserID: "user-789", PaymentStatus: order.PaymentPaid, FulfillmentStatus: order.FulfillmentPending, CreatedAt: now}
	st.AddOrder(paid)

	all, err := handler.ListAllOrders(context.Background(), order.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := handler.ListAllOrders(context.Background(), order.ListFilter{PaymentStatus: order.PaymentPending, Limit: 1})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "order-2", pending[0].ID)
}
