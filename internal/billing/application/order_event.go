package application

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/billing/domain"
)

// EventOrderCreated is the only billing event kind that mutates the ledger.
// Any other kind is acknowledged without effect so new provider event types
// cannot break delivery.
const EventOrderCreated = "order_created"

var (
	// ErrMalformedPayload means the webhook body could not be interpreted.
	ErrMalformedPayload = errors.New("malformed webhook payload")
	// ErrMissingUserID means the event carries no user id in its checkout
	// metadata.
	ErrMissingUserID = errors.New("missing user id in webhook payload")
	// ErrMissingPlan means the event carries no plan variant name.
	ErrMissingPlan = errors.New("missing plan name in webhook payload")
)

// orderEventEnvelope mirrors the billing provider's webhook wire format.
// The paying user's id travels in custom checkout metadata; the purchased
// plan is the variant display name of the first order item.
type orderEventEnvelope struct {
	Meta struct {
		EventName  string `json:"event_name"`
		CustomData struct {
			UserID string `json:"user_id"`
		} `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Total          int64 `json:"total"`
			FirstOrderItem struct {
				VariantName string `json:"variant_name"`
			} `json:"first_order_item"`
		} `json:"attributes"`
	} `json:"data"`
}

// orderCreated is the ledger command interpreted from an order_created
// event. Amounts stay in minor currency units until the payment record is
// written.
type orderCreated struct {
	UserID           uuid.UUID
	Plan             domain.Plan
	OrderID          string
	AmountMinorUnits int64
}

// decodeOrderEvent interprets a signature-verified payload. It returns the
// event name alongside the command; a nil command with a nil error means
// the event kind is recognized as a deliberate no-op.
func decodeOrderEvent(payload []byte) (*orderCreated, string, error) {
	var envelope orderEventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	eventName := envelope.Meta.EventName
	if eventName != EventOrderCreated {
		return nil, eventName, nil
	}

	rawUserID := envelope.Meta.CustomData.UserID
	if rawUserID == "" {
		return nil, eventName, ErrMissingUserID
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, eventName, fmt.Errorf("%w: invalid user id %q", ErrMalformedPayload, rawUserID)
	}

	variantName := envelope.Data.Attributes.FirstOrderItem.VariantName
	if variantName == "" {
		return nil, eventName, ErrMissingPlan
	}
	plan, err := domain.ParsePlan(variantName)
	if err != nil {
		return nil, eventName, fmt.Errorf("%w: %q", err, variantName)
	}

	return &orderCreated{
		UserID:           userID,
		Plan:             plan,
		OrderID:          envelope.Data.ID,
		AmountMinorUnits: envelope.Data.Attributes.Total,
	}, eventName, nil
}
