package repository

import (
	"context"
	"fmt"
	"time"

	"harvester/database"
	"harvester/models"
)

// DepositRepository implements the DepositRepository interface
type DepositRepository struct {
	q queryable
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *database.DB) *DepositRepository {
	return &DepositRepository{q: db.Pool}
}

// newDepositRepositoryWithTx creates a new deposit repository with a transaction
func newDepositRepositoryWithTx(tx queryable) *DepositRepository {
	return &DepositRepository{q: tx}
}

// Create appends a deposit row. Deposits are never mutated after insertion.
func (r *DepositRepository) Create(ctx context.Context, deposit *models.Deposit) error {
	query := `
		INSERT INTO deposits
		(user_id, username, sand_amount, type, expedition_id, melange_amount, conversion_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		deposit.UserID,
		deposit.Username,
		deposit.SandAmount,
		deposit.Type,
		deposit.ExpeditionID,
		deposit.MelangeAmount,
		deposit.ConversionRate,
	).Scan(&deposit.ID, &deposit.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create deposit for user %d: %w", deposit.UserID, err)
	}

	return nil
}

// GetByUser returns a page of deposits for a user, newest first.
// An empty page returns an empty slice, never an error.
func (r *DepositRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Deposit, error) {
	query := `
		SELECT id, user_id, username, sand_amount, type, expedition_id, melange_amount, conversion_rate, created_at
		FROM deposits
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get deposits for user %d: %w", userID, err)
	}
	defer rows.Close()

	var deposits []*models.Deposit
	for rows.Next() {
		var deposit models.Deposit
		err := rows.Scan(
			&deposit.ID,
			&deposit.UserID,
			&deposit.Username,
			&deposit.SandAmount,
			&deposit.Type,
			&deposit.ExpeditionID,
			&deposit.MelangeAmount,
			&deposit.ConversionRate,
			&deposit.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, &deposit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposits: %w", err)
	}

	return deposits, nil
}

// CountByUser returns the total number of deposits for a user
func (r *DepositRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM deposits WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count deposits for user %d: %w", userID, err)
	}
	return count, nil
}

// DeleteSettledBefore removes deposits older than the cutoff whose owner has
// no pending melange. Returns the number of rows removed.
func (r *DepositRepository) DeleteSettledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM deposits d
		USING users u
		WHERE d.user_id = u.user_id
		  AND d.created_at < $1
		  AND u.total_melange = u.paid_melange
	`

	result, err := r.q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete settled deposits before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	return result.RowsAffected(), nil
}

// DeleteAll removes every deposit row. Only reachable from the full reset.
func (r *DepositRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM deposits`); err != nil {
		return fmt.Errorf("failed to delete deposits: %w", err)
	}
	return nil
}
