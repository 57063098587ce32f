package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntitlementResolver answers what plan-level capabilities a user holds at
// a given instant. The current time is passed explicitly so callers stay
// deterministic and testable without a real clock.
//
// Implemented by the application resolver; consumed by collaborating
// contexts (listing creation, seller analytics) that must not know about
// ledger storage.
type EntitlementResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, now time.Time) (Entitlement, error)
}
