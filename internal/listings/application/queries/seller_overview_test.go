package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	billingDomain "github.com/nestora/nestora/internal/billing/domain"
	"github.com/nestora/nestora/internal/listings/domain"
	"github.com/stretchr/testify/require"
)

type stubListingRepo struct {
	listings []*domain.Listing
}

func (s *stubListingRepo) Save(ctx context.Context, listing *domain.Listing) error { return nil }

func (s *stubListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return nil, domain.ErrListingNotFound
}

func (s *stubListingRepo) FindBySellerID(ctx context.Context, sellerID uuid.UUID) ([]*domain.Listing, error) {
	var out []*domain.Listing
	for _, l := range s.listings {
		if l.SellerID == sellerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubListingRepo) List(ctx context.Context) ([]*domain.Listing, error) {
	return s.listings, nil
}

func (s *stubListingRepo) CountBySellerID(ctx context.Context, sellerID uuid.UUID) (int, error) {
	listings, _ := s.FindBySellerID(ctx, sellerID)
	return len(listings), nil
}

func (s *stubListingRepo) CountBySellerIDAndType(ctx context.Context, sellerID uuid.UUID, listingType domain.ListingType) (int, error) {
	count := 0
	for _, l := range s.listings {
		if l.SellerID == sellerID && l.ListingType == listingType {
			count++
		}
	}
	return count, nil
}

func (s *stubListingRepo) IncrementClickCount(ctx context.Context, id uuid.UUID) (int64, error) {
	return 0, domain.ErrListingNotFound
}

func (s *stubListingRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubResolver struct {
	plan billingDomain.Plan
}

func (s stubResolver) Resolve(ctx context.Context, userID uuid.UUID, now time.Time) (billingDomain.Entitlement, error) {
	return billingDomain.Entitlement{Plan: s.plan, Active: true}, nil
}

type stubInquiryCounter struct {
	count int
}

func (s stubInquiryCounter) CountDistinctSenders(ctx context.Context, sellerID uuid.UUID) (int, error) {
	return s.count, nil
}

func sellerListing(sellerID uuid.UUID, title string, listingType domain.ListingType, clicks int64) *domain.Listing {
	return &domain.Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       title,
		ListingType: listingType,
		ClickCount:  clicks,
	}
}

func TestSellerOverview_BasicSeesOnlyTotals(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubListingRepo{listings: []*domain.Listing{
		sellerListing(sellerID, "A", domain.ListingRental, 10),
		sellerListing(sellerID, "B", domain.ListingSale, 20),
	}}
	handler := NewSellerOverviewHandler(repo, stubInquiryCounter{count: 3}, stubResolver{plan: billingDomain.PlanBasic}, nil)

	overview, err := handler.Handle(context.Background(), sellerID)
	require.NoError(t, err)
	require.Equal(t, billingDomain.PlanBasic, overview.Plan)
	require.Equal(t, 2, overview.TotalListings)
	require.Equal(t, 3, overview.TotalInquirers)
	require.Nil(t, overview.TotalClickCount)
	require.Nil(t, overview.PopularListings)
	require.Nil(t, overview.PremiumMetrics)
}

func TestSellerOverview_ProSeesClicksAndPopular(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubListingRepo{listings: []*domain.Listing{
		sellerListing(sellerID, "Low", domain.ListingRental, 1),
		sellerListing(sellerID, "High", domain.ListingRental, 50),
		sellerListing(sellerID, "Mid", domain.ListingSale, 7),
	}}
	handler := NewSellerOverviewHandler(repo, nil, stubResolver{plan: billingDomain.PlanPro}, nil)

	overview, err := handler.Handle(context.Background(), sellerID)
	require.NoError(t, err)
	require.NotNil(t, overview.TotalClickCount)
	require.Equal(t, int64(58), *overview.TotalClickCount)

	require.Len(t, overview.PopularListings, 3)
	require.Equal(t, "High", overview.PopularListings[0].Title)
	require.Equal(t, "Mid", overview.PopularListings[1].Title)
	require.Equal(t, "Low", overview.PopularListings[2].Title)

	// Rental/sale breakdown stays Premium-only.
	require.Nil(t, overview.PremiumMetrics)
}

func TestSellerOverview_PopularListingsCappedAtFive(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubListingRepo{}
	for i := 0; i < 8; i++ {
		repo.listings = append(repo.listings,
			sellerListing(sellerID, "L", domain.ListingRental, int64(i)))
	}
	handler := NewSellerOverviewHandler(repo, nil, stubResolver{plan: billingDomain.PlanPro}, nil)

	overview, err := handler.Handle(context.Background(), sellerID)
	require.NoError(t, err)
	require.Len(t, overview.PopularListings, 5)
	require.Equal(t, int64(7), overview.PopularListings[0].ClickCount)
	require.Equal(t, int64(3), overview.PopularListings[4].ClickCount)
}

func TestSellerOverview_PremiumSeesBreakdown(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubListingRepo{listings: []*domain.Listing{
		sellerListing(sellerID, "R1", domain.ListingRental, 0),
		sellerListing(sellerID, "R2", domain.ListingRental, 0),
		sellerListing(sellerID, "S1", domain.ListingSale, 0),
	}}
	handler := NewSellerOverviewHandler(repo, nil, stubResolver{plan: billingDomain.PlanPremium}, nil)

	overview, err := handler.Handle(context.Background(), sellerID)
	require.NoError(t, err)
	require.NotNil(t, overview.PremiumMetrics)
	require.Equal(t, 2, overview.PremiumMetrics.RentalListings)
	require.Equal(t, 1, overview.PremiumMetrics.SaleListings)
}

func TestSellerOverview_NilInquiryCounter(t *testing.T) {
	sellerID := uuid.New()
	handler := NewSellerOverviewHandler(&stubListingRepo{}, nil, stubResolver{plan: billingDomain.PlanBasic}, nil)

	overview, err := handler.Handle(context.Background(), sellerID)
	require.NoError(t, err)
	require.Zero(t, overview.TotalInquirers)
}
