package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the stored billing state.
//
// StatusExpired exists for compatibility with historic rows but is never
// written by any code path: expiry is always derived from ExpiresAt at read
// time, so a stale "active" status cannot grant access past the window.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusInactive SubscriptionStatus = "inactive"
	StatusExpired  SubscriptionStatus = "expired"
)

// SubscriptionPeriod is the entitlement window granted by one completed
// order. A new order always resets the window from its application time;
// remaining time on a prior subscription is not accumulated.
const SubscriptionPeriod = 30 * 24 * time.Hour

// Subscription is the ledger record of a user's plan. A user has at most
// one record at a time; new billing events overwrite it.
type Subscription struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Plan      Plan
	Status    SubscriptionStatus
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CurrentlyEntitled reports whether the record grants paid access at the
// given instant. This is the derived predicate every consumer must use:
// status alone can be stale because no background job flips records to
// expired.
func (s *Subscription) CurrentlyEntitled(now time.Time) bool {
	return s != nil && s.Status == StatusActive && s.ExpiresAt.After(now)
}

// PaymentStatus represents the outcome of a billing transaction.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is one immutable entry in the audit trail. It is appended when an
// order completes and never consulted for entitlement decisions.
type Payment struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Status    PaymentStatus
	Method    string
	OrderID   string
	Amount    float64
	CreatedAt time.Time
}
