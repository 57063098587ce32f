package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrEmptyTitle         = errors.New("listing title cannot be empty")
	ErrMissingSellerID    = errors.New("seller id is required")
	ErrInvalidListingType = errors.New("invalid listing type")
	ErrNegativePrice      = errors.New("price cannot be negative")
)

// ListingType distinguishes rental from sale listings.
type ListingType string

const (
	ListingRental ListingType = "rental"
	ListingSale   ListingType = "sale"
)

// Listing is a property listing published by a seller.
type Listing struct {
	ID           uuid.UUID
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
	ListingType  ListingType
	ClickCount   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewListing creates a listing after validating the fields a seller must
// supply.
func NewListing(sellerID uuid.UUID, title string, price float64, listingType ListingType) (*Listing, error) {
	if sellerID == uuid.Nil {
		return nil, ErrMissingSellerID
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if price < 0 {
		return nil, ErrNegativePrice
	}
	if listingType != ListingRental && listingType != ListingSale {
		return nil, ErrInvalidListingType
	}

	now := time.Now().UTC()
	return &Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       title,
		Price:       price,
		ListingType: listingType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// RecordClick increments the in-memory click count. Persistence uses an
// atomic increment instead of saving this value back.
func (l *Listing) RecordClick() {
	l.ClickCount++
}
