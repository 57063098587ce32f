package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/billing/application"
	"github.com/nestora/nestora/internal/billing/domain"
)

// SignatureHeader carries the billing provider's HMAC signature of the
// request body.
const SignatureHeader = "X-Signature"

// BillingHandler handles webhook deliveries and subscription checks.
type BillingHandler struct {
	apply  *application.ApplyOrderEventHandler
	check  *application.CheckSubscriptionHandler
	logger *slog.Logger
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(apply *application.ApplyOrderEventHandler, check *application.CheckSubscriptionHandler, logger *slog.Logger) *BillingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillingHandler{apply: apply, check: check, logger: logger}
}

// HandleWebhook handles POST /webhooks/billing.
//
// The body must be read raw: the signature is computed over the exact
// bytes the provider sent. Signature failures are 401, incomplete payloads
// 400, and storage failures 500 so the provider's retry policy kicks in.
func (h *BillingHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	result, err := h.apply.Handle(r.Context(), application.ApplyOrderEventCommand{
		Payload:   payload,
		Signature: r.Header.Get(SignatureHeader),
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrSignatureMismatch):
			h.logger.Warn("webhook rejected", "reason", "signature mismatch")
			writeError(w, http.StatusUnauthorized, "Invalid webhook signature")
		case errors.Is(err, application.ErrMalformedPayload),
			errors.Is(err, application.ErrMissingUserID),
			errors.Is(err, application.ErrMissingPlan),
			errors.Is(err, domain.ErrUnknownPlan):
			h.logger.Warn("webhook rejected", "reason", err)
			writeError(w, http.StatusBadRequest, "Missing required data in webhook payload")
		default:
			h.logger.Error("failed to process webhook", "error", err)
			writeError(w, http.StatusInternalServerError, "Error processing webhook")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Webhook received",
		"event":   result.EventName,
		"applied": result.Applied,
	})
}

// CheckSubscription handles GET /api/v1/subscriptions/check?userId=...
func (h *BillingHandler) CheckSubscription(w http.ResponseWriter, r *http.Request) {
	rawUserID := r.URL.Query().Get("userId")
	if rawUserID == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'userId' is required")
		return
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid userId")
		return
	}

	result, err := h.check.Handle(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to check subscription", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Error checking subscription")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
