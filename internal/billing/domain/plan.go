package domain

import "errors"

var ErrUnknownPlan = errors.New("unknown subscription plan")

// Plan is a named subscription tier. The set is closed: every plan the
// system knows about has an entry in the capability table below.
type Plan string

const (
	PlanBasic   Plan = "Basic"
	PlanPro     Plan = "Pro"
	PlanPremium Plan = "Premium"
)

// UnlimitedListings marks a plan with no listing quota.
const UnlimitedListings = -1

// PlanCapabilities describes what a plan grants.
type PlanCapabilities struct {
	ListingQuota         int
	ClickAnalytics       bool
	PopularListings      bool
	ListingTypeBreakdown bool
}

// capabilityTable is the single source of truth for per-plan limits and
// feature access.
var capabilityTable = map[Plan]PlanCapabilities{
	PlanBasic: {
		ListingQuota: 5,
	},
	PlanPro: {
		ListingQuota:    15,
		ClickAnalytics:  true,
		PopularListings: true,
	},
	PlanPremium: {
		ListingQuota:         UnlimitedListings,
		ClickAnalytics:       true,
		PopularListings:      true,
		ListingTypeBreakdown: true,
	},
}

// ParsePlan maps a billing provider's variant display name to a Plan.
func ParsePlan(name string) (Plan, error) {
	switch Plan(name) {
	case PlanBasic, PlanPro, PlanPremium:
		return Plan(name), nil
	default:
		return "", ErrUnknownPlan
	}
}

// Capabilities returns the capability table entry for the plan. Unknown
// plans fall back to Basic so a corrupt ledger row can never grant more
// than the free tier.
func (p Plan) Capabilities() PlanCapabilities {
	if caps, ok := capabilityTable[p]; ok {
		return caps
	}
	return capabilityTable[PlanBasic]
}

// ListingQuota returns the number of concurrent listings the plan permits,
// or UnlimitedListings.
func (p Plan) ListingQuota() int {
	return p.Capabilities().ListingQuota
}
