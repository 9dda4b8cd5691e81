package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/command"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
)

// Admin Handlers

func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := order.ListFilter{
		PaymentStatus:     order.PaymentStatus(q.Get("payment_status")),
		FulfillmentStatus: order.FulfillmentStatus(q.Get("fulfillment_status")),
	}
	var err error
	if filter.Limit, err = queryInt(q.Get("limit")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if filter.Offset, err = queryInt(q.Get("offset")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	orders, err := h.queryHandler.ListAllOrders(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errInvalidBody
	}
	return n, nil
}

func (h *Handlers) UpdateFulfillment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status order.FulfillmentStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	o, err := h.cmdHandler.UpdateFulfillment(r.Context(), command.UpdateFulfillment{
		OrderID: chi.URLParam(r, "id"),
		Status:  req.Status,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status    order.PaymentStatus `json:"status"`
		Reference string              `json:"payment_reference,omitempty"`
		Reason    string              `json:"reason,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	o, err := h.cmdHandler.UpdatePayment(r.Context(), command.UpdatePayment{
		OrderID:   chi.URLParam(r, "id"),
		Status:    req.Status,
		Reference: req.Reference,
		Reason:    req.Reason,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// couponRequest is the editable part of a coupon. Usage counters are never
// accepted from clients.
type couponRequest struct {
	Code               string              `json:"code"`
	DiscountType       coupon.DiscountType `json:"discount_type"`
	DiscountValue      decimal.Decimal     `json:"discount_value"`
	MinimumOrderAmount decimal.Decimal     `json:"minimum_order_amount"`
	ValidFrom          time.Time           `json:"valid_from"`
	ValidUntil         time.Time           `json:"valid_until"`
	IsActive           *bool               `json:"is_active,omitempty"`
	MaxUsageCount      *int                `json:"max_usage_count,omitempty"`
}

func (req couponRequest) toCoupon() *coupon.Coupon {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &coupon.Coupon{
		Code:               req.Code,
		DiscountType:       req.DiscountType,
		DiscountValue:      req.DiscountValue,
		MinimumOrderAmount: req.MinimumOrderAmount,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		IsActive:           active,
		MaxUsageCount:      req.MaxUsageCount,
	}
}

func (h *Handlers) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.queryHandler.ListCoupons(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, coupons)
}

func (h *Handlers) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	c, err := h.cmdHandler.CreateCoupon(r.Context(), req.toCoupon())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handlers) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	c, err := h.cmdHandler.UpdateCoupon(r.Context(), chi.URLParam(r, "id"), req.toCoupon())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) DeactivateCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.cmdHandler.DeactivateCoupon(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
