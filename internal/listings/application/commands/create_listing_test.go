package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	billingDomain "github.com/nestora/nestora/internal/billing/domain"
	"github.com/nestora/nestora/internal/listings/domain"
	"github.com/stretchr/testify/require"
)

type fakeListingRepo struct {
	listings []*domain.Listing
	saveErr  error
	countErr error
}

func (f *fakeListingRepo) Save(ctx context.Context, listing *domain.Listing) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.listings = append(f.listings, listing)
	return nil
}

func (f *fakeListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	for _, l := range f.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, domain.ErrListingNotFound
}

func (f *fakeListingRepo) FindBySellerID(ctx context.Context, sellerID uuid.UUID) ([]*domain.Listing, error) {
	var out []*domain.Listing
	for _, l := range f.listings {
		if l.SellerID == sellerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) List(ctx context.Context) ([]*domain.Listing, error) {
	return f.listings, nil
}

func (f *fakeListingRepo) CountBySellerID(ctx context.Context, sellerID uuid.UUID) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, l := range f.listings {
		if l.SellerID == sellerID {
			count++
		}
	}
	return count, nil
}

func (f *fakeListingRepo) CountBySellerIDAndType(ctx context.Context, sellerID uuid.UUID, listingType domain.ListingType) (int, error) {
	count := 0
	for _, l := range f.listings {
		if l.SellerID == sellerID && l.ListingType == listingType {
			count++
		}
	}
	return count, nil
}

func (f *fakeListingRepo) IncrementClickCount(ctx context.Context, id uuid.UUID) (int64, error) {
	for _, l := range f.listings {
		if l.ID == id {
			l.ClickCount++
			return l.ClickCount, nil
		}
	}
	return 0, domain.ErrListingNotFound
}

func (f *fakeListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, l := range f.listings {
		if l.ID == id {
			f.listings = append(f.listings[:i], f.listings[i+1:]...)
			return nil
		}
	}
	return domain.ErrListingNotFound
}

type fakeResolver struct {
	plan billingDomain.Plan
	err  error
}

func (f fakeResolver) Resolve(ctx context.Context, userID uuid.UUID, now time.Time) (billingDomain.Entitlement, error) {
	if f.err != nil {
		return billingDomain.Entitlement{}, f.err
	}
	return billingDomain.Entitlement{Plan: f.plan, Active: true}, nil
}

func seedListings(t *testing.T, repo *fakeListingRepo, sellerID uuid.UUID, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		listing, err := domain.NewListing(sellerID, "Seeded listing", 1000, domain.ListingRental)
		require.NoError(t, err)
		repo.listings = append(repo.listings, listing)
	}
}

func TestCreateListing_BasicUnderQuota(t *testing.T) {
	sellerID := uuid.New()
	repo := &fakeListingRepo{}
	seedListings(t, repo, sellerID, 4)
	handler := NewCreateListingHandler(repo, fakeResolver{plan: billingDomain.PlanBasic}, nil, nil)

	listing, err := handler.Handle(context.Background(), CreateListingCommand{
		SellerID:    sellerID,
		Title:       "Sunny two-bedroom flat",
		Price:       1450,
		ListingType: domain.ListingRental,
	})
	require.NoError(t, err)
	require.NotNil(t, listing)
	require.Len(t, repo.listings, 5)
}

func TestCreateListing_BasicAtQuotaDenied(t *testing.T) {
	sellerID := uuid.New()
	repo := &fakeListingRepo{}
	seedListings(t, repo, sellerID, 5)
	handler := NewCreateListingHandler(repo, fakeResolver{plan: billingDomain.PlanBasic}, nil, nil)

	_, err := handler.Handle(context.Background(), CreateListingCommand{
		SellerID:    sellerID,
		Title:       "One too many",
		Price:       900,
		ListingType: domain.ListingSale,
	})

	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	require.Equal(t, billingDomain.PlanBasic, quotaErr.Decision.Plan)
	require.Equal(t, 5, quotaErr.Decision.Limit)
	require.Len(t, repo.listings, 5)
}

func TestCreateListing_UpgradedPlanLiftsQuota(t *testing.T) {
	// The same seller blocked on Basic can list again after an upgrade:
	// the quota is re-derived from the current entitlement on each attempt.
	sellerID := uuid.New()
	repo := &fakeListingRepo{}
	seedListings(t, repo, sellerID, 5)

	basic := NewCreateListingHandler(repo, fakeResolver{plan: billingDomain.PlanBasic}, nil, nil)
	cmd := CreateListingCommand{
		SellerID:    sellerID,
		Title:       "Waterfront studio",
		Price:       2100,
		ListingType: domain.ListingRental,
	}
	_, err := basic.Handle(context.Background(), cmd)
	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)

	pro := NewCreateListingHandler(repo, fakeResolver{plan: billingDomain.PlanPro}, nil, nil)
	listing, err := pro.Handle(context.Background(), cmd)
	require.NoError(t, err)
	require.NotNil(t, listing)
	require.Len(t, repo.listings, 6)
}

func TestCreateListing_PremiumUnlimited(t *testing.T) {
	sellerID := uuid.New()
	repo := &fakeListingRepo{}
	seedListings(t, repo, sellerID, 50)
	handler := NewCreateListingHandler(repo, fakeResolver{plan: billingDomain.PlanPremium}, nil, nil)

	_, err := handler.Handle(context.Background(), CreateListingCommand{
		SellerID:    sellerID,
		Title:       "Penthouse",
		Price:       1250000,
		ListingType: domain.ListingSale,
	})
	require.NoError(t, err)
}

func TestCreateListing_ValidationBeforeQuota(t *testing.T) {
	repo := &fakeListingRepo{}
	handler := NewCreateListingHandler(repo, fakeResolver{plan: billingDomain.PlanBasic}, nil, nil)

	_, err := handler.Handle(context.Background(), CreateListingCommand{
		SellerID:    uuid.New(),
		Title:       "",
		Price:       100,
		ListingType: domain.ListingRental,
	})
	require.ErrorIs(t, err, domain.ErrEmptyTitle)

	_, err = handler.Handle(context.Background(), CreateListingCommand{
		SellerID:    uuid.New(),
		Title:       "Bad type",
		Price:       100,
		ListingType: "timeshare",
	})
	require.ErrorIs(t, err, domain.ErrInvalidListingType)
}

func TestCreateListing_ResolverErrorPropagates(t *testing.T) {
	repo := &fakeListingRepo{}
	handler := NewCreateListingHandler(repo, fakeResolver{err: errors.New("ledger unavailable")}, nil, nil)

	_, err := handler.Handle(context.Background(), CreateListingCommand{
		SellerID:    uuid.New(),
		Title:       "Cottage",
		Price:       100,
		ListingType: domain.ListingRental,
	})
	require.Error(t, err)
	require.Empty(t, repo.listings)
}

func TestTrackClick_IncrementsAndReturnsCount(t *testing.T) {
	sellerID := uuid.New()
	repo := &fakeListingRepo{}
	seedListings(t, repo, sellerID, 1)
	handler := NewTrackClickHandler(repo)

	listingID := repo.listings[0].ID
	count, err := handler.Handle(context.Background(), listingID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, err = handler.Handle(context.Background(), listingID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestTrackClick_UnknownListing(t *testing.T) {
	handler := NewTrackClickHandler(&fakeListingRepo{})
	_, err := handler.Handle(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrListingNotFound)
}
