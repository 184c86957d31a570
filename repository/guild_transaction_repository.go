package repository

import (
	"context"
	"fmt"

	"harvester/database"
	"harvester/models"
)

// GuildTransactionRepository implements the GuildTransactionRepository interface
type GuildTransactionRepository struct {
	q queryable
}

// NewGuildTransactionRepository creates a new guild transaction repository
func NewGuildTransactionRepository(db *database.DB) *GuildTransactionRepository {
	return &GuildTransactionRepository{q: db.Pool}
}

// newGuildTransactionRepositoryWithTx creates a new guild transaction repository with a transaction
func newGuildTransactionRepositoryWithTx(tx queryable) *GuildTransactionRepository {
	return &GuildTransactionRepository{q: tx}
}

// Create appends an audit row for a treasury-affecting action
func (r *GuildTransactionRepository) Create(ctx context.Context, txn *models.GuildTransaction) error {
	query := `
		INSERT INTO guild_transactions
		(transaction_type, sand_amount, melange_amount, expedition_id,
		 admin_user_id, admin_username, target_user_id, target_username, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.Type,
		txn.SandAmount,
		txn.MelangeAmount,
		txn.ExpeditionID,
		txn.AdminUserID,
		txn.AdminUsername,
		txn.TargetUserID,
		txn.TargetUsername,
		txn.Description,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create guild transaction: %w", err)
	}

	return nil
}

// GetRecent returns a page of treasury audit rows, newest first
func (r *GuildTransactionRepository) GetRecent(ctx context.Context, limit, offset int) ([]*models.GuildTransaction, error) {
	query := `
		SELECT id, transaction_type, sand_amount, melange_amount, expedition_id,
		       admin_user_id, admin_username, target_user_id, target_username, description, created_at
		FROM guild_transactions
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.GuildTransaction
	for rows.Next() {
		var txn models.GuildTransaction
		err := rows.Scan(
			&txn.ID,
			&txn.Type,
			&txn.SandAmount,
			&txn.MelangeAmount,
			&txn.ExpeditionID,
			&txn.AdminUserID,
			&txn.AdminUsername,
			&txn.TargetUserID,
			&txn.TargetUsername,
			&txn.Description,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guild transaction: %w", err)
		}
		transactions = append(transactions, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guild transactions: %w", err)
	}

	return transactions, nil
}

// DeleteAll removes every audit row. Only reachable from the full reset.
func (r *GuildTransactionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM guild_transactions`); err != nil {
		return fmt.Errorf("failed to delete guild transactions: %w", err)
	}
	return nil
}
