package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/billing/domain"
)

// SQLiteSubscriptionRepository implements SubscriptionRepository with SQLite.
type SQLiteSubscriptionRepository struct {
	db *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new repository.
func NewSQLiteSubscriptionRepository(db *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{db: db}
}

// Upsert inserts or replaces the subscription for a user.
func (r *SQLiteSubscriptionRepository) Upsert(ctx context.Context, subscription *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, plan, status, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			plan = excluded.plan,
			status = excluded.status,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	createdAt := subscription.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := subscription.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		subscription.ID.String(),
		subscription.UserID.String(),
		string(subscription.Plan),
		string(subscription.Status),
		subscription.ExpiresAt.UTC().Format(time.RFC3339),
		createdAt.UTC().Format(time.RFC3339),
		updatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// FindByUserID returns the subscription for a user, or nil when the user
// never subscribed.
func (r *SQLiteSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT id, user_id, plan, status, expires_at, created_at, updated_at
		FROM subscriptions
		WHERE user_id = ?
	`

	var (
		idStr        string
		userIDStr    string
		plan         string
		status       string
		expiresAtStr string
		createdAtStr string
		updatedAtStr string
	)

	err := r.db.QueryRowContext(ctx, query, userID.String()).Scan(
		&idStr,
		&userIDStr,
		&plan,
		&status,
		&expiresAtStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	id, _ := uuid.Parse(idStr)
	parsedUserID, _ := uuid.Parse(userIDStr)
	expiresAt, _ := time.Parse(time.RFC3339, expiresAtStr)
	createdAt, _ := time.Parse(time.RFC3339, createdAtStr)
	updatedAt, _ := time.Parse(time.RFC3339, updatedAtStr)

	return &domain.Subscription{
		ID:        id,
		UserID:    parsedUserID,
		Plan:      domain.Plan(plan),
		Status:    domain.SubscriptionStatus(status),
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

var _ domain.SubscriptionRepository = (*SQLiteSubscriptionRepository)(nil)
