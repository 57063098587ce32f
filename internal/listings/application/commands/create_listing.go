package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	billingDomain "github.com/nestora/nestora/internal/billing/domain"
	"github.com/nestora/nestora/internal/listings/domain"
)

// QuotaExceededError is returned when a seller is at their plan's listing
// quota. It is a modeled rejection, not an infrastructure failure: the
// decision names the plan and the limit so the caller can render an
// upgrade prompt.
type QuotaExceededError struct {
	Decision billingDomain.QuotaDecision
}

func (e *QuotaExceededError) Error() string {
	return e.Decision.Reason
}

// CreateListingCommand contains the data needed to publish a listing.
type CreateListingCommand struct {
	SellerID     uuid.UUID
	Title        string
	Description  string
	Price        float64
	Location     string
	PropertyType string
	Bedrooms     int
	Bathrooms    int
	Area         float64
	Amenities    []string
	Images       []string
	ListingType  domain.ListingType
}

// CreateListingHandler handles the CreateListingCommand. Creation is gated
// by the seller's resolved entitlement: the current listing count is
// compared against the plan quota before anything is written.
type CreateListingHandler struct {
	listings domain.ListingRepository
	resolver billingDomain.EntitlementResolver
	logger   *slog.Logger
	clock    func() time.Time
}

// NewCreateListingHandler creates a new CreateListingHandler. Nil logger
// and clock default to slog.Default and time.Now.
func NewCreateListingHandler(listings domain.ListingRepository, resolver billingDomain.EntitlementResolver, logger *slog.Logger, clock func() time.Time) *CreateListingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}
	return &CreateListingHandler{
		listings: listings,
		resolver: resolver,
		logger:   logger,
		clock:    clock,
	}
}

// Handle executes the CreateListingCommand.
func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*domain.Listing, error) {
	listing, err := domain.NewListing(cmd.SellerID, cmd.Title, cmd.Price, cmd.ListingType)
	if err != nil {
		return nil, err
	}
	listing.Description = cmd.Description
	listing.Location = cmd.Location
	listing.PropertyType = cmd.PropertyType
	listing.Bedrooms = cmd.Bedrooms
	listing.Bathrooms = cmd.Bathrooms
	listing.Area = cmd.Area
	listing.Amenities = cmd.Amenities
	listing.Images = cmd.Images

	entitlement, err := h.resolver.Resolve(ctx, cmd.SellerID, h.clock())
	if err != nil {
		return nil, fmt.Errorf("resolve entitlement: %w", err)
	}

	count, err := h.listings.CountBySellerID(ctx, cmd.SellerID)
	if err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}

	decision := billingDomain.AuthorizeListingCreation(entitlement, count)
	if !decision.Allowed {
		h.logger.Info("listing creation denied by quota",
			"seller_id", cmd.SellerID,
			"plan", decision.Plan,
			"limit", decision.Limit,
			"current", count,
		)
		return nil, &QuotaExceededError{Decision: decision}
	}

	if err := h.listings.Save(ctx, listing); err != nil {
		return nil, fmt.Errorf("save listing: %w", err)
	}

	h.logger.Info("listing created",
		"listing_id", listing.ID,
		"seller_id", cmd.SellerID,
		"plan", decision.Plan,
	)
	return listing, nil
}
