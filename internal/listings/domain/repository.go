package domain

import (
	"context"

	"github.com/google/uuid"
)

// ListingRepository defines access for listing persistence.
type ListingRepository interface {
	Save(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindBySellerID(ctx context.Context, sellerID uuid.UUID) ([]*Listing, error)
	List(ctx context.Context) ([]*Listing, error)
	CountBySellerID(ctx context.Context, sellerID uuid.UUID) (int, error)
	CountBySellerIDAndType(ctx context.Context, sellerID uuid.UUID, listingType ListingType) (int, error)
	// IncrementClickCount atomically bumps the click counter and returns
	// the new value. Returns ErrListingNotFound for unknown ids.
	IncrementClickCount(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InquiryCounter reports how many distinct buyers have messaged a seller.
// Message persistence lives in the messaging service; this is the only
// view of it the analytics dashboard needs.
type InquiryCounter interface {
	CountDistinctSenders(ctx context.Context, sellerID uuid.UUID) (int, error)
}
