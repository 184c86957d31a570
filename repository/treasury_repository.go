package repository

import (
	"context"
	"fmt"

	"harvester/database"
	"harvester/models"
	"github.com/jackc/pgx/v5"
)

// TreasuryRepository implements the TreasuryRepository interface.
// The treasury is logically a single row; reads select the most recent
// one defensively in case historical rows exist.
type TreasuryRepository struct {
	q queryable
}

// NewTreasuryRepository creates a new treasury repository
func NewTreasuryRepository(db *database.DB) *TreasuryRepository {
	return &TreasuryRepository{q: db.Pool}
}

// newTreasuryRepositoryWithTx creates a new treasury repository with a transaction
func newTreasuryRepositoryWithTx(tx queryable) *TreasuryRepository {
	return &TreasuryRepository{q: tx}
}

// GetLatest returns the live treasury row, or nil if none exists yet
func (r *TreasuryRepository) GetLatest(ctx context.Context) (*models.GuildTreasury, error) {
	query := `
		SELECT id, total_sand, total_melange, created_at, last_updated
		FROM guild_treasury
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var treasury models.GuildTreasury
	err := r.q.QueryRow(ctx, query).Scan(
		&treasury.ID,
		&treasury.TotalSand,
		&treasury.TotalMelange,
		&treasury.CreatedAt,
		&treasury.LastUpdated,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild treasury: %w", err)
	}

	return &treasury, nil
}

// Credit adds sand and melange to the treasury, creating the balance row
// on first use. Always succeeds for non-negative amounts.
func (r *TreasuryRepository) Credit(ctx context.Context, sandAmount, melangeAmount int64) (*models.GuildTreasury, error) {
	if sandAmount < 0 || melangeAmount < 0 {
		return nil, fmt.Errorf("treasury credit amounts must be non-negative")
	}

	query := `
		UPDATE guild_treasury
		SET total_sand = total_sand + $1, total_melange = total_melange + $2, last_updated = NOW()
		WHERE id = (SELECT id FROM guild_treasury ORDER BY created_at DESC, id DESC LIMIT 1)
		RETURNING id, total_sand, total_melange, created_at, last_updated
	`

	var treasury models.GuildTreasury
	err := r.q.QueryRow(ctx, query, sandAmount, melangeAmount).Scan(
		&treasury.ID,
		&treasury.TotalSand,
		&treasury.TotalMelange,
		&treasury.CreatedAt,
		&treasury.LastUpdated,
	)

	if err == pgx.ErrNoRows {
		return r.create(ctx, sandAmount, melangeAmount)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to credit guild treasury: %w", err)
	}

	return &treasury, nil
}

// WithdrawMelange decrements the melange balance only if sufficient funds
// remain, as a single conditional update. Returns nil without error when
// the guard rejects the withdrawal, so the caller can distinguish
// insufficient funds from storage faults. Correct at any isolation level.
func (r *TreasuryRepository) WithdrawMelange(ctx context.Context, amount int64) (*models.GuildTreasury, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}

	query := `
		UPDATE guild_treasury
		SET total_melange = total_melange - $1, last_updated = NOW()
		WHERE id = (SELECT id FROM guild_treasury ORDER BY created_at DESC, id DESC LIMIT 1)
		  AND total_melange >= $1
		RETURNING id, total_sand, total_melange, created_at, last_updated
	`

	var treasury models.GuildTreasury
	err := r.q.QueryRow(ctx, query, amount).Scan(
		&treasury.ID,
		&treasury.TotalSand,
		&treasury.TotalMelange,
		&treasury.CreatedAt,
		&treasury.LastUpdated,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw from guild treasury: %w", err)
	}

	return &treasury, nil
}

// DeleteAll removes every treasury row. Only reachable from the full reset.
func (r *TreasuryRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM guild_treasury`); err != nil {
		return fmt.Errorf("failed to delete guild treasury: %w", err)
	}
	return nil
}

func (r *TreasuryRepository) create(ctx context.Context, sandAmount, melangeAmount int64) (*models.GuildTreasury, error) {
	query := `
		INSERT INTO guild_treasury (total_sand, total_melange)
		VALUES ($1, $2)
		RETURNING id, total_sand, total_melange, created_at, last_updated
	`

	var treasury models.GuildTreasury
	err := r.q.QueryRow(ctx, query, sandAmount, melangeAmount).Scan(
		&treasury.ID,
		&treasury.TotalSand,
		&treasury.TotalMelange,
		&treasury.CreatedAt,
		&treasury.LastUpdated,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create guild treasury: %w", err)
	}

	return &treasury, nil
}
