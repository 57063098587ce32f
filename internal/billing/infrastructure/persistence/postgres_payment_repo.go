package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nestora/nestora/internal/billing/domain"
)

// PostgresPaymentRepository implements PaymentRepository with PostgreSQL.
// The table is append-only; rows are never updated or deleted.
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentRepository creates a new repository.
func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

// Append writes one payment record.
func (r *PostgresPaymentRepository) Append(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, user_id, payment_status, payment_method, order_id, amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.UserID,
		string(payment.Status),
		payment.Method,
		payment.OrderID,
		payment.Amount,
		payment.CreatedAt,
	)
	return err
}

// ListByUserID returns a user's payment history, newest first.
func (r *PostgresPaymentRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	query := `
		SELECT id, user_id, payment_status, payment_method, order_id, amount, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var (
			p         domain.Payment
			status    string
			createdAt time.Time
		)
		if err := rows.Scan(&p.ID, &p.UserID, &status, &p.Method, &p.OrderID, &p.Amount, &createdAt); err != nil {
			return nil, err
		}
		p.Status = domain.PaymentStatus(status)
		p.CreatedAt = createdAt
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

var _ domain.PaymentRepository = (*PostgresPaymentRepository)(nil)
