package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/billing/domain"
)

// SubscriptionDetails is the boundary view of a ledger record.
type SubscriptionDetails struct {
	Plan      domain.Plan               `json:"plan"`
	Status    domain.SubscriptionStatus `json:"status"`
	ExpiresAt time.Time                 `json:"expiresAt"`
}

// CheckSubscriptionResult is returned by the subscription check endpoint.
// Unlike the internal resolver, this boundary surfaces "no active paid
// subscription" raw; mapping to the Basic fallback happens in the consumer.
type CheckSubscriptionResult struct {
	HasActiveSubscription bool                 `json:"hasActiveSubscription"`
	Subscription          *SubscriptionDetails `json:"subscription"`
}

// CheckSubscriptionHandler backs the subscription check endpoint.
type CheckSubscriptionHandler struct {
	subscriptions domain.SubscriptionRepository
	clock         func() time.Time
}

// NewCheckSubscriptionHandler creates a new CheckSubscriptionHandler. A nil
// clock defaults to time.Now.
func NewCheckSubscriptionHandler(subscriptions domain.SubscriptionRepository, clock func() time.Time) *CheckSubscriptionHandler {
	if clock == nil {
		clock = time.Now
	}
	return &CheckSubscriptionHandler{subscriptions: subscriptions, clock: clock}
}

// Handle reports whether the user currently holds a paid subscription.
// Expiry is re-checked here; a stored "active" status past its window does
// not count.
func (h *CheckSubscriptionHandler) Handle(ctx context.Context, userID uuid.UUID) (*CheckSubscriptionResult, error) {
	subscription, err := h.subscriptions.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}

	if !subscription.CurrentlyEntitled(h.clock()) {
		return &CheckSubscriptionResult{HasActiveSubscription: false}, nil
	}

	return &CheckSubscriptionResult{
		HasActiveSubscription: true,
		Subscription: &SubscriptionDetails{
			Plan:      subscription.Plan,
			Status:    subscription.Status,
			ExpiresAt: subscription.ExpiresAt,
		},
	}, nil
}
