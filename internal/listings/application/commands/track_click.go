package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/listings/domain"
)

// TrackClickHandler records one buyer click on a listing.
type TrackClickHandler struct {
	listings domain.ListingRepository
}

// NewTrackClickHandler creates a new TrackClickHandler.
func NewTrackClickHandler(listings domain.ListingRepository) *TrackClickHandler {
	return &TrackClickHandler{listings: listings}
}

// Handle bumps the click counter and returns the new count. The increment
// is atomic in storage so concurrent clicks are never lost.
func (h *TrackClickHandler) Handle(ctx context.Context, listingID uuid.UUID) (int64, error) {
	return h.listings.IncrementClickCount(ctx, listingID)
}
