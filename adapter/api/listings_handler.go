package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/listings/application/commands"
	"github.com/nestora/nestora/internal/listings/application/queries"
	"github.com/nestora/nestora/internal/listings/domain"
)

// ListingsHandler handles listing CRUD, click tracking and the seller
// analytics dashboard.
type ListingsHandler struct {
	create     *commands.CreateListingHandler
	trackClick *commands.TrackClickHandler
	overview   *queries.SellerOverviewHandler
	listings   domain.ListingRepository
	logger     *slog.Logger
}

// ListingsHandlerConfig holds dependencies for the listings handler.
type ListingsHandlerConfig struct {
	Create     *commands.CreateListingHandler
	TrackClick *commands.TrackClickHandler
	Overview   *queries.SellerOverviewHandler
	Listings   domain.ListingRepository
	Logger     *slog.Logger
}

// NewListingsHandler creates a new listings handler.
func NewListingsHandler(cfg ListingsHandlerConfig) *ListingsHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ListingsHandler{
		create:     cfg.Create,
		trackClick: cfg.TrackClick,
		overview:   cfg.Overview,
		listings:   cfg.Listings,
		logger:     cfg.Logger,
	}
}

type createListingRequest struct {
	SellerID     string   `json:"sellerId"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Location     string   `json:"location"`
	PropertyType string   `json:"propertyType"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Area         float64  `json:"area"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
	ListingType  string   `json:"listingType"`
}

type listingResponse struct {
	ID           uuid.UUID `json:"id"`
	SellerID     uuid.UUID `json:"sellerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Location     string    `json:"location"`
	PropertyType string    `json:"propertyType"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	Area         float64   `json:"area"`
	Amenities    []string  `json:"amenities"`
	Images       []string  `json:"images"`
	ListingType  string    `json:"listingType"`
	ClickCount   int64     `json:"clickCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toListingResponse(listing *domain.Listing) listingResponse {
	return listingResponse{
		ID:           listing.ID,
		SellerID:     listing.SellerID,
		Title:        listing.Title,
		Description:  listing.Description,
		Price:        listing.Price,
		Location:     listing.Location,
		PropertyType: listing.PropertyType,
		Bedrooms:     listing.Bedrooms,
		Bathrooms:    listing.Bathrooms,
		Area:         listing.Area,
		Amenities:    listing.Amenities,
		Images:       listing.Images,
		ListingType:  string(listing.ListingType),
		ClickCount:   listing.ClickCount,
		CreatedAt:    listing.CreatedAt,
		UpdatedAt:    listing.UpdatedAt,
	}
}

// CreateListing handles POST /api/v1/listings.
//
// Quota denial is a modeled outcome, not an error: it maps to 403 with the
// plan and limit so the UI can render an upgrade prompt.
func (h *ListingsHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.SellerID == "" {
		writeError(w, http.StatusBadRequest, "Seller ID is required")
		return
	}
	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid seller ID")
		return
	}

	listing, err := h.create.Handle(r.Context(), commands.CreateListingCommand{
		SellerID:     sellerID,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Location:     req.Location,
		PropertyType: req.PropertyType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Area:         req.Area,
		Amenities:    req.Amenities,
		Images:       req.Images,
		ListingType:  domain.ListingType(req.ListingType),
	})
	if err != nil {
		var quotaErr *commands.QuotaExceededError
		switch {
		case errors.As(err, &quotaErr):
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error":   http.StatusText(http.StatusForbidden),
				"message": quotaErr.Decision.Reason,
				"plan":    quotaErr.Decision.Plan,
				"limit":   quotaErr.Decision.Limit,
			})
		case errors.Is(err, domain.ErrEmptyTitle),
			errors.Is(err, domain.ErrMissingSellerID),
			errors.Is(err, domain.ErrInvalidListingType),
			errors.Is(err, domain.ErrNegativePrice):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to create listing", "seller_id", sellerID, "error", err)
			writeError(w, http.StatusInternalServerError, "Error creating listing")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Listing created successfully",
		"listing": toListingResponse(listing),
	})
}

// ListListings handles GET /api/v1/listings with an optional sellerId
// filter.
func (h *ListingsHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	var (
		listings []*domain.Listing
		err      error
	)

	if rawSellerID := r.URL.Query().Get("sellerId"); rawSellerID != "" {
		sellerID, parseErr := uuid.Parse(rawSellerID)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid sellerId")
			return
		}
		listings, err = h.listings.FindBySellerID(r.Context(), sellerID)
	} else {
		listings, err = h.listings.List(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to list listings", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching listings")
		return
	}

	out := make([]listingResponse, 0, len(listings))
	for _, listing := range listings {
		out = append(out, toListingResponse(listing))
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": out})
}

// GetListing handles GET /api/v1/listings/{listingID}.
func (h *ListingsHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(r.PathValue("listingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid listing ID")
		return
	}

	listing, err := h.listings.FindByID(r.Context(), listingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			writeError(w, http.StatusNotFound, "Listing not found")
			return
		}
		h.logger.Error("failed to fetch listing", "listing_id", listingID, "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching listing")
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

// DeleteListing handles DELETE /api/v1/listings/{listingID}.
func (h *ListingsHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(r.PathValue("listingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid listing ID")
		return
	}

	if err := h.listings.Delete(r.Context(), listingID); err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			writeError(w, http.StatusNotFound, "Listing not found")
			return
		}
		h.logger.Error("failed to delete listing", "listing_id", listingID, "error", err)
		writeError(w, http.StatusInternalServerError, "Error deleting listing")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Listing deleted successfully",
	})
}

// TrackClick handles POST /api/v1/listings/{listingID}/click.
func (h *ListingsHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(r.PathValue("listingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid listing ID")
		return
	}

	count, err := h.trackClick.Handle(r.Context(), listingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			writeError(w, http.StatusNotFound, "Listing not found")
			return
		}
		h.logger.Error("failed to record click", "listing_id", listingID, "error", err)
		writeError(w, http.StatusInternalServerError, "Error recording click")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Click recorded",
		"clickCount": count,
	})
}

// SellerOverview handles GET /api/v1/dashboard/seller/overview?sellerId=...
func (h *ListingsHandler) SellerOverview(w http.ResponseWriter, r *http.Request) {
	rawSellerID := r.URL.Query().Get("sellerId")
	if rawSellerID == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'sellerId' is required")
		return
	}
	sellerID, err := uuid.Parse(rawSellerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sellerId")
		return
	}

	overview, err := h.overview.Handle(r.Context(), sellerID)
	if err != nil {
		h.logger.Error("failed to build seller overview", "seller_id", sellerID, "error", err)
		writeError(w, http.StatusInternalServerError, "Error retrieving analytics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Analytics retrieved successfully",
		"data":    overview,
	})
}
