package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nestora/nestora/internal/billing/domain"
)

// PostgresSubscriptionRepository implements SubscriptionRepository with PostgreSQL.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new repository.
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Upsert inserts or replaces the subscription for a user. The single
// statement gives last-write-wins atomicity under concurrent webhook
// deliveries for the same user.
func (r *PostgresSubscriptionRepository) Upsert(ctx context.Context, subscription *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, plan, status, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query,
		subscription.ID,
		subscription.UserID,
		string(subscription.Plan),
		string(subscription.Status),
		subscription.ExpiresAt,
		subscription.CreatedAt,
		subscription.UpdatedAt,
	)
	return err
}

// FindByUserID returns the subscription for a user, or nil when the user
// never subscribed.
func (r *PostgresSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT id, user_id, plan, status, expires_at, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
	`
	var row struct {
		id        uuid.UUID
		userID    uuid.UUID
		plan      string
		status    string
		expiresAt time.Time
		createdAt time.Time
		updatedAt time.Time
	}

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&row.id,
		&row.userID,
		&row.plan,
		&row.status,
		&row.expiresAt,
		&row.createdAt,
		&row.updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &domain.Subscription{
		ID:        row.id,
		UserID:    row.userID,
		Plan:      domain.Plan(row.plan),
		Status:    domain.SubscriptionStatus(row.status),
		ExpiresAt: row.expiresAt,
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
	}, nil
}

var _ domain.SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
