package domain

import "time"

// Entitlement is the resolved, time-aware answer to "what plan does this
// user currently have access to." Active is always true: the system has no
// locked-out state, only tier demotion to Basic.
type Entitlement struct {
	Plan   Plan
	Active bool
}

// BasicEntitlement is the implicit free tier granted when no ledger record
// exists or the record has lapsed.
func BasicEntitlement() Entitlement {
	return Entitlement{Plan: PlanBasic, Active: true}
}

// ResolveEntitlement derives the entitlement from a ledger record and the
// current time. A nil record means the user never subscribed; a lapsed or
// inactive record silently demotes to Basic rather than producing an error.
func ResolveEntitlement(sub *Subscription, now time.Time) Entitlement {
	if sub.CurrentlyEntitled(now) {
		return Entitlement{Plan: sub.Plan, Active: true}
	}
	return BasicEntitlement()
}
