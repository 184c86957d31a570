package repository

import (
	"context"
	"fmt"

	"harvester/database"
	"harvester/models"
)

// SettingsRepository implements the SettingsRepository interface
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// newSettingsRepositoryWithTx creates a new settings repository with a transaction
func newSettingsRepositoryWithTx(tx queryable) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// GetAll returns every persisted setting row
func (r *SettingsRepository) GetAll(ctx context.Context) ([]*models.GlobalSetting, error) {
	query := `
		SELECT key, value, description, created_at, last_updated
		FROM global_settings
		ORDER BY key
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	defer rows.Close()

	var settings []*models.GlobalSetting
	for rows.Next() {
		var setting models.GlobalSetting
		err := rows.Scan(
			&setting.Key,
			&setting.Value,
			&setting.Description,
			&setting.CreatedAt,
			&setting.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, &setting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return settings, nil
}

// Upsert writes a setting value, last writer wins
func (r *SettingsRepository) Upsert(ctx context.Context, key, value, description string) error {
	query := `
		INSERT INTO global_settings (key, value, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, description = EXCLUDED.description, last_updated = NOW()
	`

	if _, err := r.q.Exec(ctx, query, key, value, description); err != nil {
		return fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}

	return nil
}

// DeleteAll removes every setting row. Only reachable from the full reset.
func (r *SettingsRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM global_settings`); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
