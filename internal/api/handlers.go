package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/api/middleware"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/command"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	logger       *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, logger *zap.Logger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		logger:       logger.Named("api"),
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ListProducts(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.queryHandler.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.queryHandler.GetCart(r.Context(), middleware.Session(r.Context()).UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.cmdHandler.AddToCart(r.Context(), command.AddToCart{
		UserID:    middleware.Session(r.Context()).UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	err := h.cmdHandler.UpdateCartItem(r.Context(), command.UpdateCartItem{
		UserID:    middleware.Session(r.Context()).UserID,
		ProductID: chi.URLParam(r, "productID"),
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	err := h.cmdHandler.RemoveFromCart(r.Context(), command.RemoveFromCart{
		UserID:    middleware.Session(r.Context()).UserID,
		ProductID: chi.URLParam(r, "productID"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{UserID: middleware.Session(r.Context()).UserID})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout Handlers

type checkoutRequest struct {
	Items           []command.CartLine    `json:"items,omitempty"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	PaymentMethod   order.PaymentMethod   `json:"payment_method"`
	CouponCode      string                `json:"coupon_code,omitempty"`
}

// cartLines uses the request's items when given, else the caller's stored cart.
func (h *Handlers) cartLines(ctx context.Context, items []command.CartLine) ([]command.CartLine, error) {
	if len(items) > 0 {
		return items, nil
	}
	cart, err := h.queryHandler.GetCart(ctx, middleware.Session(ctx).UserID)
	if err != nil {
		return nil, err
	}
	lines := make([]command.CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, command.CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines, nil
}

func (h *Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items      []command.CartLine `json:"items,omitempty"`
		CouponCode string             `json:"coupon_code,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	lines, err := h.cartLines(r.Context(), req.Items)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	quote, err := h.cmdHandler.Quote(r.Context(), command.Quote{Items: lines, CouponCode: req.CouponCode})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	lines, err := h.cartLines(r.Context(), req.Items)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	confirmation, err := h.cmdHandler.PlaceOrder(r.Context(), command.PlaceOrder{
		Session:         middleware.Session(r.Context()),
		Items:           lines,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, confirmation)
}

// Order Handlers

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.ListOrdersByUser(r.Context(), middleware.Session(r.Context()).UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetOrder returns the caller's order. Admins can read any order; other users'
// orders are reported as not found.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.queryHandler.GetOrder(r.Context(), chi.URLParam(r, "id"), middleware.Session(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.CancelOrder(r.Context(), command.CancelOrder{
		Session: middleware.Session(r.Context()),
		OrderID: chi.URLParam(r, "id"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
