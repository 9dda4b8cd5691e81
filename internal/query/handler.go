package query

import (
	"context"
	"errors"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/cart"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/catalog"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handler struct {
	catalogSvc *catalog.Service
	cartSvc    *cart.Service
	orderSvc   *order.Service
	couponSvc  *coupon.Service
	currency   string
	logger     *zap.Logger
}

func NewHandler(catalogSvc *catalog.Service, cartSvc *cart.Service, orderSvc *order.Service, couponSvc *coupon.Service, currency string, logger *zap.Logger) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		cartSvc:    cartSvc,
		orderSvc:   orderSvc,
		couponSvc:  couponSvc,
		currency:   currency,
		logger:     logger.Named("query"),
	}
}

// Products
func (h *Handler) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	p, err := h.catalogSvc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (h *Handler) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	return h.catalogSvc.List(ctx)
}

// Cart
func (h *Handler) GetCart(ctx context.Context, userID string) (*CartReadModel, error) {
	items, err := h.cartSvc.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	model := &CartReadModel{
		UserID:   userID,
		Items:    make([]CartItemReadModel, 0, len(items)),
		Subtotal: decimal.Zero,
		Currency: h.currency,
	}
	for _, item := range items {
		line := CartItemReadModel{ProductID: item.ProductID, Quantity: item.Quantity}
		p, err := h.catalogSvc.Get(ctx, item.ProductID)
		switch {
		case err == nil && p.IsActive:
			line.Name = p.Name
			line.ImageURL = p.ImageURL
			line.UnitPrice = p.Price
			line.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			line.Available = true
			model.Subtotal = model.Subtotal.Add(line.LineTotal)
			model.ItemCount += item.Quantity
		case err == nil, errors.Is(err, catalog.ErrProductNotFound):
			h.logger.Info("cart holds unavailable product", zap.String("user_id", userID), zap.String("product_id", item.ProductID))
		default:
			return nil, err
		}
		model.Items = append(model.Items, line)
	}
	return model, nil
}

// Orders
func (h *Handler) GetOrder(ctx context.Context, id string, session auth.Session) (*order.Order, error) {
	if session.IsAdmin() {
		return h.orderSvc.Get(ctx, id)
	}
	return h.orderSvc.GetForUser(ctx, id, session.UserID)
}

func (h *Handler) ListOrdersByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	orders, err := h.orderSvc.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	return orders, nil
}

// ListAllOrders returns all orders (for admin use)
func (h *Handler) ListAllOrders(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	orders, err := h.orderSvc.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	return orders, nil
}

// Coupons (admin)
func (h *Handler) ListCoupons(ctx context.Context) ([]*coupon.Coupon, error) {
	return h.couponSvc.List(ctx)
}
