package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// WebhookVerifier checks a signed payment notification and settles the order.
type WebhookVerifier interface {
	HandleWebhook(ctx context.Context, token string) error
}

type PaymentHandlers struct {
	webhook WebhookVerifier
	logger  *zap.Logger
}

func NewPaymentHandlers(webhook WebhookVerifier, logger *zap.Logger) *PaymentHandlers {
	return &PaymentHandlers{webhook: webhook, logger: logger.Named("payments")}
}

// Webhook receives {"token": "<signed notification>"} from the payment provider.
func (h *PaymentHandlers) Webhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		respondJSONError(w, errInvalidBody.Error(), http.StatusBadRequest)
		return
	}

	if err := h.webhook.HandleWebhook(r.Context(), req.Token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}
