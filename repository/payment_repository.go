package repository

import (
	"context"
	"fmt"

	"harvester/database"
	"harvester/models"
)

// PaymentRepository implements the PaymentRepository interface
type PaymentRepository struct {
	q queryable
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

// newPaymentRepositoryWithTx creates a new payment repository with a transaction
func newPaymentRepositoryWithTx(tx queryable) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create appends a settlement record
func (r *PaymentRepository) Create(ctx context.Context, payment *models.MelangePayment) error {
	query := `
		INSERT INTO melange_payments
		(user_id, username, melange_amount, admin_user_id, admin_username, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		payment.UserID,
		payment.Username,
		payment.MelangeAmount,
		payment.AdminUserID,
		payment.AdminUsername,
		payment.Description,
	).Scan(&payment.ID, &payment.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment for user %d: %w", payment.UserID, err)
	}

	return nil
}

// GetByUser returns a page of payments for a user, newest first
func (r *PaymentRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.MelangePayment, error) {
	query := `
		SELECT id, user_id, username, melange_amount, admin_user_id, admin_username, description, created_at
		FROM melange_payments
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for user %d: %w", userID, err)
	}
	defer rows.Close()

	var payments []*models.MelangePayment
	for rows.Next() {
		var payment models.MelangePayment
		err := rows.Scan(
			&payment.ID,
			&payment.UserID,
			&payment.Username,
			&payment.MelangeAmount,
			&payment.AdminUserID,
			&payment.AdminUsername,
			&payment.Description,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// SumByUser returns the total melange ever paid to a user
func (r *PaymentRepository) SumByUser(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(melange_amount), 0) FROM melange_payments WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments for user %d: %w", userID, err)
	}
	return total, nil
}

// DeleteAll removes every payment row. Only reachable from the full reset.
func (r *PaymentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM melange_payments`); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	return nil
}
