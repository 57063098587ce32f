package domain

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionRepository defines access for subscription persistence.
// Upsert must be atomic per user with respect to concurrent writes;
// last-write-wins on plan, status and expiry is acceptable.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, subscription *Subscription) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)
}

// PaymentRepository defines access for the append-only payment audit trail.
type PaymentRepository interface {
	Append(ctx context.Context, payment *Payment) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Payment, error)
}
