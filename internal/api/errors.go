package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/command"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/account"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/cart"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/catalog"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/pricing"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/payment"
)

var errInvalidBody = errors.New("invalid request body")

// errorStatus groups domain errors by the HTTP status they map to. The error's
// own message is returned to the client for every class listed here.
var errorStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusBadRequest, []error{
		errInvalidBody,
		command.ErrEmptyCart,
		cart.ErrInvalidQuantity,
		cart.ErrInvalidProduct,
		order.ErrIncompleteAddress,
		order.ErrInvalidPaymentMethod,
		order.ErrUnknownPaymentStatus,
		order.ErrUnknownFulfillmentStatus,
		pricing.ErrEmptyOrder,
		pricing.ErrInvalidLineItem,
		coupon.ErrEmptyCode,
		coupon.ErrInvalidCoupon,
		coupon.ErrInvalidDiscountType,
		account.ErrInvalidEmail,
		account.ErrInvalidName,
		auth.ErrPasswordTooShort,
		auth.ErrPasswordTooLong,
		payment.ErrInvalidSignature,
		payment.ErrUnknownOutcome,
		payment.ErrMissingAmount,
	}},
	{http.StatusUnprocessableEntity, []error{
		coupon.ErrMinimumNotMet,
		payment.ErrAmountMismatch,
	}},
	{http.StatusUnauthorized, []error{
		auth.ErrUnauthenticated,
		auth.ErrInvalidToken,
		auth.ErrExpiredToken,
		account.ErrInvalidCredentials,
		account.ErrSessionNotFound,
		account.ErrSessionExpired,
	}},
	{http.StatusForbidden, []error{
		account.ErrAccountDeactivated,
	}},
	{http.StatusNotFound, []error{
		coupon.ErrCouponNotFound,
		order.ErrOrderNotFound,
		catalog.ErrProductNotFound,
		cart.ErrItemNotFound,
		account.ErrProfileNotFound,
	}},
	{http.StatusConflict, []error{
		order.ErrInvalidTransition,
		order.ErrConcurrentUpdate,
		order.ErrNotCancellable,
		order.ErrPaymentUnsettled,
		coupon.ErrDuplicateCode,
		account.ErrEmailTaken,
	}},
}

// statusFor returns the HTTP status for err and whether its message may be shown.
func statusFor(err error) (int, bool) {
	for _, class := range errorStatus {
		for _, target := range class.errs {
			if errors.Is(err, target) {
				return class.status, true
			}
		}
	}
	return http.StatusInternalServerError, false
}

// writeError maps err onto a status code. Errors outside the known classes are
// logged and replaced with a generic message.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status, public := statusFor(err)
	switch {
	case public:
		respondJSONError(w, err.Error(), status)
	case errors.Is(err, command.ErrPersistence):
		respondJSONError(w, command.ErrPersistence.Error(), status)
	default:
		logger.Error("request failed", zap.Error(err))
		respondJSONError(w, "internal error", status)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}
