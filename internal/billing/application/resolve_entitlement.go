package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/billing/domain"
)

// ResolveEntitlementHandler answers what a user is entitled to right now,
// purely from ledger state and the supplied clock. It never mutates.
type ResolveEntitlementHandler struct {
	subscriptions domain.SubscriptionRepository
}

// NewResolveEntitlementHandler creates a new ResolveEntitlementHandler.
func NewResolveEntitlementHandler(subscriptions domain.SubscriptionRepository) *ResolveEntitlementHandler {
	return &ResolveEntitlementHandler{subscriptions: subscriptions}
}

// Resolve looks up the user's ledger record and derives the entitlement.
// Absence of a record is not an error: the free Basic tier is always
// active. The only failure mode is the lookup itself.
func (h *ResolveEntitlementHandler) Resolve(ctx context.Context, userID uuid.UUID, now time.Time) (domain.Entitlement, error) {
	subscription, err := h.subscriptions.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Entitlement{}, fmt.Errorf("find subscription: %w", err)
	}
	return domain.ResolveEntitlement(subscription, now), nil
}

var _ domain.EntitlementResolver = (*ResolveEntitlementHandler)(nil)
