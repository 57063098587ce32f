package domain

import "fmt"

// QuotaDecision is the outcome of a quota check. It is a value, not an
// error: every input produces allow or deny. On deny, Reason names the plan
// and the numeric limit so callers can render an actionable upgrade prompt.
type QuotaDecision struct {
	Allowed bool
	Plan    Plan
	Limit   int
	Reason  string
}

// AuthorizeListingCreation gates creation of one more listing against the
// entitlement's plan quota. The caller supplies the current listing count;
// this function never queries storage.
func AuthorizeListingCreation(ent Entitlement, currentListingCount int) QuotaDecision {
	limit := ent.Plan.ListingQuota()
	if limit == UnlimitedListings || currentListingCount < limit {
		return QuotaDecision{Allowed: true, Plan: ent.Plan, Limit: limit}
	}
	return QuotaDecision{
		Allowed: false,
		Plan:    ent.Plan,
		Limit:   limit,
		Reason:  fmt.Sprintf("%s plan allows up to %d listings; upgrade to list more", ent.Plan, limit),
	}
}

// AnalyticsAccess lists which seller analytics features the entitlement
// makes visible.
type AnalyticsAccess struct {
	ClickAnalytics       bool
	PopularListings      bool
	ListingTypeBreakdown bool
}

// DescribeAnalyticsAccess is a pure lookup against the plan capability
// table.
func DescribeAnalyticsAccess(ent Entitlement) AnalyticsAccess {
	caps := ent.Plan.Capabilities()
	return AnalyticsAccess{
		ClickAnalytics:       caps.ClickAnalytics,
		PopularListings:      caps.PopularListings,
		ListingTypeBreakdown: caps.ListingTypeBreakdown,
	}
}
