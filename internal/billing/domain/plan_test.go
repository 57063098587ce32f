package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePlan_KnownPlans(t *testing.T) {
	for _, name := range []string{"Basic", "Pro", "Premium"} {
		plan, err := ParsePlan(name)
		require.NoError(t, err)
		require.Equal(t, Plan(name), plan)
	}
}

func TestParsePlan_UnknownPlan(t *testing.T) {
	_, err := ParsePlan("Enterprise")
	require.ErrorIs(t, err, ErrUnknownPlan)

	// Matching is case-sensitive: the provider sends exact variant names.
	_, err = ParsePlan("basic")
	require.ErrorIs(t, err, ErrUnknownPlan)
}

func TestListingQuota_PerPlan(t *testing.T) {
	require.Equal(t, 5, PlanBasic.ListingQuota())
	require.Equal(t, 15, PlanPro.ListingQuota())
	require.Equal(t, UnlimitedListings, PlanPremium.ListingQuota())
}

func TestCapabilities_UnknownPlanFallsBackToBasic(t *testing.T) {
	caps := Plan("corrupt").Capabilities()
	require.Equal(t, PlanBasic.Capabilities(), caps)
}

func TestCapabilities_AnalyticsTiers(t *testing.T) {
	basic := PlanBasic.Capabilities()
	require.False(t, basic.ClickAnalytics)
	require.False(t, basic.PopularListings)
	require.False(t, basic.ListingTypeBreakdown)

	pro := PlanPro.Capabilities()
	require.True(t, pro.ClickAnalytics)
	require.True(t, pro.PopularListings)
	require.False(t, pro.ListingTypeBreakdown)

	premium := PlanPremium.Capabilities()
	require.True(t, premium.ClickAnalytics)
	require.True(t, premium.PopularListings)
	require.True(t, premium.ListingTypeBreakdown)
}
