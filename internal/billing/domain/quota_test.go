package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorizeListingCreation_BasicUnderQuota(t *testing.T) {
	decision := AuthorizeListingCreation(BasicEntitlement(), 4)
	require.True(t, decision.Allowed)
	require.Equal(t, PlanBasic, decision.Plan)
	require.Equal(t, 5, decision.Limit)
	require.Empty(t, decision.Reason)
}

func TestAuthorizeListingCreation_BasicAtQuota(t *testing.T) {
	decision := AuthorizeListingCreation(BasicEntitlement(), 5)
	require.False(t, decision.Allowed)
	require.Equal(t, PlanBasic, decision.Plan)
	require.Equal(t, 5, decision.Limit)
	require.Contains(t, decision.Reason, "Basic")
	require.Contains(t, decision.Reason, "5")
}

func TestAuthorizeListingCreation_ProAtBasicQuota(t *testing.T) {
	ent := Entitlement{Plan: PlanPro, Active: true}
	decision := AuthorizeListingCreation(ent, 5)
	require.True(t, decision.Allowed)

	decision = AuthorizeListingCreation(ent, 15)
	require.False(t, decision.Allowed)
	require.Equal(t, 15, decision.Limit)
}

func TestAuthorizeListingCreation_PremiumUnlimited(t *testing.T) {
	ent := Entitlement{Plan: PlanPremium, Active: true}
	decision := AuthorizeListingCreation(ent, 100000)
	require.True(t, decision.Allowed)
	require.Equal(t, UnlimitedListings, decision.Limit)
}

func TestDescribeAnalyticsAccess_FollowsCapabilityTable(t *testing.T) {
	access := DescribeAnalyticsAccess(BasicEntitlement())
	require.False(t, access.ClickAnalytics)
	require.False(t, access.PopularListings)
	require.False(t, access.ListingTypeBreakdown)

	access = DescribeAnalyticsAccess(Entitlement{Plan: PlanPro, Active: true})
	require.True(t, access.ClickAnalytics)
	require.True(t, access.PopularListings)
	require.False(t, access.ListingTypeBreakdown)

	access = DescribeAnalyticsAccess(Entitlement{Plan: PlanPremium, Active: true})
	require.True(t, access.ListingTypeBreakdown)
}
