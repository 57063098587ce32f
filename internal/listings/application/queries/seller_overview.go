package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	billingDomain "github.com/nestora/nestora/internal/billing/domain"
	"github.com/nestora/nestora/internal/listings/domain"
)

// PopularListing is one entry in the click-ranked listing table.
type PopularListing struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	ClickCount int64     `json:"clickCount"`
}

// ListingTypeBreakdown splits a seller's inventory by rental vs sale.
type ListingTypeBreakdown struct {
	RentalListings int `json:"rentalListings"`
	SaleListings   int `json:"saleListings"`
}

// SellerOverview is the analytics dashboard payload. The plan-gated
// sections are nil for tiers that do not include them.
type SellerOverview struct {
	Plan            billingDomain.Plan    `json:"plan"`
	TotalListings   int                   `json:"totalListings"`
	TotalInquirers  int                   `json:"totalInquirers"`
	TotalClickCount *int64                `json:"totalClickCount,omitempty"`
	PopularListings []PopularListing      `json:"popularListings,omitempty"`
	PremiumMetrics  *ListingTypeBreakdown `json:"premiumMetrics,omitempty"`
}

// popularListingsLimit is how many click-ranked entries the dashboard shows.
const popularListingsLimit = 5

// SellerOverviewHandler assembles the seller analytics view, gated by the
// seller's resolved entitlement.
type SellerOverviewHandler struct {
	listings  domain.ListingRepository
	inquiries domain.InquiryCounter
	resolver  billingDomain.EntitlementResolver
	clock     func() time.Time
}

// NewSellerOverviewHandler creates a new SellerOverviewHandler. A nil
// clock defaults to time.Now.
func NewSellerOverviewHandler(listings domain.ListingRepository, inquiries domain.InquiryCounter, resolver billingDomain.EntitlementResolver, clock func() time.Time) *SellerOverviewHandler {
	if clock == nil {
		clock = time.Now
	}
	return &SellerOverviewHandler{
		listings:  listings,
		inquiries: inquiries,
		resolver:  resolver,
		clock:     clock,
	}
}

// Handle builds the overview. Every tier sees its totals; click analytics
// and the popularity ranking need Pro, the rental/sale breakdown needs
// Premium.
func (h *SellerOverviewHandler) Handle(ctx context.Context, sellerID uuid.UUID) (*SellerOverview, error) {
	entitlement, err := h.resolver.Resolve(ctx, sellerID, h.clock())
	if err != nil {
		return nil, fmt.Errorf("resolve entitlement: %w", err)
	}
	access := billingDomain.DescribeAnalyticsAccess(entitlement)

	total, err := h.listings.CountBySellerID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}

	inquirers := 0
	if h.inquiries != nil {
		inquirers, err = h.inquiries.CountDistinctSenders(ctx, sellerID)
		if err != nil {
			return nil, fmt.Errorf("count inquirers: %w", err)
		}
	}

	overview := &SellerOverview{
		Plan:           entitlement.Plan,
		TotalListings:  total,
		TotalInquirers: inquirers,
	}

	if access.ClickAnalytics || access.PopularListings {
		listings, err := h.listings.FindBySellerID(ctx, sellerID)
		if err != nil {
			return nil, fmt.Errorf("load listings: %w", err)
		}

		if access.ClickAnalytics {
			var clicks int64
			for _, listing := range listings {
				clicks += listing.ClickCount
			}
			overview.TotalClickCount = &clicks
		}

		if access.PopularListings {
			overview.PopularListings = rankByClicks(listings, popularListingsLimit)
		}
	}

	if access.ListingTypeBreakdown {
		rentals, err := h.listings.CountBySellerIDAndType(ctx, sellerID, domain.ListingRental)
		if err != nil {
			return nil, fmt.Errorf("count rental listings: %w", err)
		}
		sales, err := h.listings.CountBySellerIDAndType(ctx, sellerID, domain.ListingSale)
		if err != nil {
			return nil, fmt.Errorf("count sale listings: %w", err)
		}
		overview.PremiumMetrics = &ListingTypeBreakdown{
			RentalListings: rentals,
			SaleListings:   sales,
		}
	}

	return overview, nil
}

func rankByClicks(listings []*domain.Listing, limit int) []PopularListing {
	sorted := make([]*domain.Listing, len(listings))
	copy(sorted, listings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClickCount > sorted[j].ClickCount
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	ranked := make([]PopularListing, 0, len(sorted))
	for _, listing := range sorted {
		ranked = append(ranked, PopularListing{
			ID:         listing.ID,
			Title:      listing.Title,
			ClickCount: listing.ClickCount,
		})
	}
	return ranked
}
