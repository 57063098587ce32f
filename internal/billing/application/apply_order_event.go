package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/billing/domain"
	"github.com/nestora/nestora/internal/shared/infrastructure/crypto"
	"github.com/nestora/nestora/internal/shared/infrastructure/eventbus"
)

// ErrSignatureMismatch means the webhook signature header does not match
// the HMAC recomputed over the raw body. Terminal per delivery attempt; the
// provider retries per its own policy.
var ErrSignatureMismatch = errors.New("webhook signature mismatch")

// RoutingKeyOrderCompleted is the routing key for the event published after
// a completed order is applied to the ledger.
const RoutingKeyOrderCompleted = "billing.order.completed"

// ApplyOrderEventCommand carries one webhook delivery: the raw payload
// bytes the signature was computed over, and the candidate signature from
// the transport header.
type ApplyOrderEventCommand struct {
	Payload   []byte
	Signature string
}

// ApplyOrderEventResult reports what one delivery did. Applied is false for
// recognized-but-ignored event kinds.
type ApplyOrderEventResult struct {
	Applied      bool
	EventName    string
	Subscription *domain.Subscription
}

// ApplyOrderEventConfig holds dependencies for the ledger handler.
type ApplyOrderEventConfig struct {
	Subscriptions domain.SubscriptionRepository
	Payments      domain.PaymentRepository
	WebhookSecret string
	Publisher     eventbus.Publisher // optional
	Logger        *slog.Logger       // optional
	Clock         func() time.Time   // optional, defaults to time.Now
}

// ApplyOrderEventHandler applies billing provider events to the
// subscription ledger. Re-invocation with the same event is safe: the
// upsert keyed on user id makes the subscription write idempotent in
// effect. The payment audit trail duplicates on redelivery; the provider's
// order id is kept on each record so the trail can be deduplicated later.
type ApplyOrderEventHandler struct {
	subscriptions domain.SubscriptionRepository
	payments      domain.PaymentRepository
	secret        string
	publisher     eventbus.Publisher
	logger        *slog.Logger
	clock         func() time.Time
}

// NewApplyOrderEventHandler creates a new ApplyOrderEventHandler.
func NewApplyOrderEventHandler(cfg ApplyOrderEventConfig) *ApplyOrderEventHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &ApplyOrderEventHandler{
		subscriptions: cfg.Subscriptions,
		payments:      cfg.Payments,
		secret:        cfg.WebhookSecret,
		publisher:     cfg.Publisher,
		logger:        cfg.Logger,
		clock:         cfg.Clock,
	}
}

// Handle validates and applies one webhook delivery. Signature and
// validation failures are terminal and leave the ledger untouched. The
// subscription upsert and the payment append are two independent writes; a
// partial failure between them is not reconciled here.
func (h *ApplyOrderEventHandler) Handle(ctx context.Context, cmd ApplyOrderEventCommand) (*ApplyOrderEventResult, error) {
	if !crypto.VerifyHMACSignature(cmd.Payload, h.secret, cmd.Signature) {
		return nil, ErrSignatureMismatch
	}

	order, eventName, err := decodeOrderEvent(cmd.Payload)
	if err != nil {
		return nil, err
	}
	if order == nil {
		h.logger.Info("ignoring billing event", "event", eventName)
		return &ApplyOrderEventResult{Applied: false, EventName: eventName}, nil
	}

	now := h.clock()
	subscription := &domain.Subscription{
		ID:        uuid.New(),
		UserID:    order.UserID,
		Plan:      order.Plan,
		Status:    domain.StatusActive,
		ExpiresAt: now.Add(domain.SubscriptionPeriod),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.subscriptions.Upsert(ctx, subscription); err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}

	payment := &domain.Payment{
		ID:        uuid.New(),
		UserID:    order.UserID,
		Status:    domain.PaymentCompleted,
		Method:    "card",
		OrderID:   order.OrderID,
		Amount:    float64(order.AmountMinorUnits) / 100,
		CreatedAt: now,
	}
	if err := h.payments.Append(ctx, payment); err != nil {
		return nil, fmt.Errorf("append payment: %w", err)
	}

	h.logger.Info("subscription activated",
		"user_id", order.UserID,
		"plan", order.Plan,
		"order_id", order.OrderID,
		"expires_at", subscription.ExpiresAt,
	)

	h.publishOrderCompleted(ctx, order, subscription)

	return &ApplyOrderEventResult{
		Applied:      true,
		EventName:    eventName,
		Subscription: subscription,
	}, nil
}

// publishOrderCompleted notifies downstream consumers (email confirmation,
// admin dashboards). Best-effort: the ledger write already succeeded, so a
// broker failure is logged, not surfaced.
func (h *ApplyOrderEventHandler) publishOrderCompleted(ctx context.Context, order *orderCreated, subscription *domain.Subscription) {
	if h.publisher == nil {
		return
	}

	body, err := json.Marshal(map[string]any{
		"user_id":    order.UserID.String(),
		"plan":       string(order.Plan),
		"order_id":   order.OrderID,
		"amount":     float64(order.AmountMinorUnits) / 100,
		"expires_at": subscription.ExpiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Error("failed to marshal order event", "error", err)
		return
	}

	if err := h.publisher.Publish(ctx, RoutingKeyOrderCompleted, body); err != nil {
		h.logger.Error("failed to publish order event",
			"routing_key", RoutingKeyOrderCompleted,
			"error", err,
		)
	}
}
