package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/listings/domain"
)

// SQLiteListingRepository implements ListingRepository with SQLite.
type SQLiteListingRepository struct {
	db *sql.DB
}

// NewSQLiteListingRepository creates a new repository.
func NewSQLiteListingRepository(db *sql.DB) *SQLiteListingRepository {
	return &SQLiteListingRepository{db: db}
}

// Save inserts or updates a listing.
func (r *SQLiteListingRepository) Save(ctx context.Context, listing *domain.Listing) error {
	amenities, err := json.Marshal(listing.Amenities)
	if err != nil {
		return err
	}
	images, err := json.Marshal(listing.Images)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	createdAt := listing.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO listings (
			id, seller_id, title, description, price, location, property_type,
			bedrooms, bathrooms, area, amenities, images, listing_type,
			click_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			price = excluded.price,
			location = excluded.location,
			property_type = excluded.property_type,
			bedrooms = excluded.bedrooms,
			bathrooms = excluded.bathrooms,
			area = excluded.area,
			amenities = excluded.amenities,
			images = excluded.images,
			listing_type = excluded.listing_type,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		listing.ID.String(),
		listing.SellerID.String(),
		listing.Title,
		listing.Description,
		listing.Price,
		listing.Location,
		listing.PropertyType,
		listing.Bedrooms,
		listing.Bathrooms,
		listing.Area,
		string(amenities),
		string(images),
		string(listing.ListingType),
		listing.ClickCount,
		createdAt.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	return err
}

const sqliteListingColumns = `
	id, seller_id, title, description, price, location, property_type,
	bedrooms, bathrooms, area, amenities, images, listing_type,
	click_count, created_at, updated_at
`

// FindByID returns one listing.
func (r *SQLiteListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteListingColumns+` FROM listings WHERE id = ?`, id.String())
	listing, err := scanSQLiteListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

// FindBySellerID returns all of a seller's listings, newest first.
func (r *SQLiteListingRepository) FindBySellerID(ctx context.Context, sellerID uuid.UUID) ([]*domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteListingColumns+` FROM listings WHERE seller_id = ? ORDER BY created_at DESC`,
		sellerID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSQLiteListings(rows)
}

// List returns all listings, newest first.
func (r *SQLiteListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteListingColumns+` FROM listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSQLiteListings(rows)
}

// CountBySellerID returns how many listings a seller currently has.
func (r *SQLiteListingRepository) CountBySellerID(ctx context.Context, sellerID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings WHERE seller_id = ?`, sellerID.String()).Scan(&count)
	return count, err
}

// CountBySellerIDAndType counts a seller's listings of one type.
func (r *SQLiteListingRepository) CountBySellerIDAndType(ctx context.Context, sellerID uuid.UUID, listingType domain.ListingType) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listings WHERE seller_id = ? AND listing_type = ?`,
		sellerID.String(), string(listingType),
	).Scan(&count)
	return count, err
}

// IncrementClickCount atomically bumps the click counter.
func (r *SQLiteListingRepository) IncrementClickCount(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE listings SET click_count = click_count + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id.String(),
	)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, domain.ErrListingNotFound
	}

	var count int64
	err = r.db.QueryRowContext(ctx, `SELECT click_count FROM listings WHERE id = ?`, id.String()).Scan(&count)
	return count, err
}

// Delete removes a listing.
func (r *SQLiteListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

type sqliteRowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteListing(row sqliteRowScanner) (*domain.Listing, error) {
	var (
		listing      domain.Listing
		idStr        string
		sellerIDStr  string
		amenities    string
		images       string
		listingType  string
		createdAtStr string
		updatedAtStr string
	)
	err := row.Scan(
		&idStr,
		&sellerIDStr,
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
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	listing.ID, _ = uuid.Parse(idStr)
	listing.SellerID, _ = uuid.Parse(sellerIDStr)
	if amenities != "" {
		if err := json.Unmarshal([]byte(amenities), &listing.Amenities); err != nil {
			return nil, err
		}
	}
	if images != "" {
		if err := json.Unmarshal([]byte(images), &listing.Images); err != nil {
			return nil, err
		}
	}
	listing.ListingType = domain.ListingType(listingType)
	listing.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	listing.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return &listing, nil
}

func collectSQLiteListings(rows *sql.Rows) ([]*domain.Listing, error) {
	var listings []*domain.Listing
	for rows.Next() {
		listing, err := scanSQLiteListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

var _ domain.ListingRepository = (*SQLiteListingRepository)(nil)
