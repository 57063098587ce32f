package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/billing/domain"
)

// SQLitePaymentRepository implements PaymentRepository with SQLite.
type SQLitePaymentRepository struct {
	db *sql.DB
}

// NewSQLitePaymentRepository creates a new repository.
func NewSQLitePaymentRepository(db *sql.DB) *SQLitePaymentRepository {
	return &SQLitePaymentRepository{db: db}
}

// Append writes one payment record.
func (r *SQLitePaymentRepository) Append(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, user_id, payment_status, payment_method, order_id, amount, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	createdAt := payment.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		payment.ID.String(),
		payment.UserID.String(),
		string(payment.Status),
		payment.Method,
		payment.OrderID,
		payment.Amount,
		createdAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListByUserID returns a user's payment history, newest first.
func (r *SQLitePaymentRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	query := `
		SELECT id, user_id, payment_status, payment_method, order_id, amount, created_at
		FROM payments
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var (
			idStr        string
			userIDStr    string
			status       string
			method       string
			orderID      string
			amount       float64
			createdAtStr string
		)
		if err := rows.Scan(&idStr, &userIDStr, &status, &method, &orderID, &amount, &createdAtStr); err != nil {
			return nil, err
		}

		id, _ := uuid.Parse(idStr)
		parsedUserID, _ := uuid.Parse(userIDStr)
		createdAt, _ := time.Parse(time.RFC3339, createdAtStr)

		payments = append(payments, domain.Payment{
			ID:        id,
			UserID:    parsedUserID,
			Status:    domain.PaymentStatus(status),
			Method:    method,
			OrderID:   orderID,
			Amount:    amount,
			CreatedAt: createdAt,
		})
	}
	return payments, rows.Err()
}

var _ domain.PaymentRepository = (*SQLitePaymentRepository)(nil)
