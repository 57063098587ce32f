package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nestora/nestora/internal/listings/domain"
)

// PostgresListingRepository implements ListingRepository with PostgreSQL.
type PostgresListingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresListingRepository creates a new repository.
func NewPostgresListingRepository(pool *pgxpool.Pool) *PostgresListingRepository {
	return &PostgresListingRepository{pool: pool}
}

// Save inserts or updates a listing.
func (r *PostgresListingRepository) Save(ctx context.Context, listing *domain.Listing) error {
	amenities, err := json.Marshal(listing.Amenities)
	if err != nil {
		return err
	}
	images, err := json.Marshal(listing.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO listings (
			id, seller_id, title, description, price, location, property_type,
			bedrooms, bathrooms, area, amenities, images, listing_type,
			click_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			location = EXCLUDED.location,
			property_type = EXCLUDED.property_type,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			area = EXCLUDED.area,
			amenities = EXCLUDED.amenities,
			images = EXCLUDED.images,
			listing_type = EXCLUDED.listing_type,
			updated_at = NOW()
	`
	_, err = r.pool.Exec(ctx, query,
		listing.ID,
		listing.SellerID,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.Location,
		listing.PropertyType,
		listing.Bedrooms,
		listing.Bathrooms,
		listing.Area,
		amenities,
		images,
		string(listing.ListingType),
		listing.ClickCount,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	return err
}

const listingColumns = `
	id, seller_id, title, description, price, location, property_type,
	bedrooms, bathrooms, area, amenities, images, listing_type,
	click_count, created_at, updated_at
`

// FindByID returns one listing.
func (r *PostgresListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

// FindBySellerID returns all of a seller's listings, newest first.
func (r *PostgresListingRepository) FindBySellerID(ctx context.Context, sellerID uuid.UUID) ([]*domain.Listing, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+listingColumns+` FROM listings WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

// List returns all listings, newest first.
func (r *PostgresListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

// CountBySellerID returns how many listings a seller currently has.
func (r *PostgresListingRepository) CountBySellerID(ctx context.Context, sellerID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE seller_id = $1`, sellerID).Scan(&count)
	return count, err
}

// CountBySellerIDAndType counts a seller's listings of one type.
func (r *PostgresListingRepository) CountBySellerIDAndType(ctx context.Context, sellerID uuid.UUID, listingType domain.ListingType) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM listings WHERE seller_id = $1 AND listing_type = $2`,
		sellerID, string(listingType),
	).Scan(&count)
	return count, err
}

// IncrementClickCount atomically bumps the click counter.
func (r *PostgresListingRepository) IncrementClickCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`UPDATE listings SET click_count = click_count + 1, updated_at = NOW() WHERE id = $1 RETURNING click_count`,
		id,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrListingNotFound
		}
		return 0, err
	}
	return count, nil
}

// Delete removes a listing.
func (r *PostgresListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var (
		listing     domain.Listing
		listingType string
		amenities   []byte
		images      []byte
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := row.Scan(
		&listing.ID,
		&listing.SellerID,
		&listing.Title,
		&listing.Description,
		&listing.Price,
		&listing.Location,
		&listing.PropertyType,
		&listing.Bedrooms,
		&listing.Bathrooms,
		&listing.Area,
		&amenities,
		&images,
		&listingType,
		&listing.ClickCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(amenities) > 0 {
		if err := json.Unmarshal(amenities, &listing.Amenities); err != nil {
			return nil, err
		}
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &listing.Images); err != nil {
			return nil, err
		}
	}
	listing.ListingType = domain.ListingType(listingType)
	listing.CreatedAt = createdAt
	listing.UpdatedAt = updatedAt
	return &listing, nil
}

func collectListings(rows pgx.Rows) ([]*domain.Listing, error) {
	var listings []*domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

var _ domain.ListingRepository = (*PostgresListingRepository)(nil)
