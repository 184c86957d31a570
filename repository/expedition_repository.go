package repository

import (
	"context"
	"fmt"

	"harvester/database"
	"harvester/models"
	"github.com/jackc/pgx/v5"
)

// ExpeditionRepository implements the ExpeditionRepository interface
type ExpeditionRepository struct {
	q queryable
}

// NewExpeditionRepository creates a new expedition repository
func NewExpeditionRepository(db *database.DB) *ExpeditionRepository {
	return &ExpeditionRepository{q: db.Pool}
}

// newExpeditionRepositoryWithTx creates a new expedition repository with a transaction
func newExpeditionRepositoryWithTx(tx queryable) *ExpeditionRepository {
	return &ExpeditionRepository{q: tx}
}

// Create inserts a new expedition record
func (r *ExpeditionRepository) Create(ctx context.Context, expedition *models.Expedition) error {
	query := `
		INSERT INTO expeditions
		(initiator_id, initiator_username, total_sand, sand_per_melange, guild_cut_percentage)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		expedition.InitiatorID,
		expedition.InitiatorUsername,
		expedition.TotalSand,
		expedition.SandPerMelange,
		expedition.GuildCutPercentage,
	).Scan(&expedition.ID, &expedition.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create expedition for initiator %d: %w", expedition.InitiatorID, err)
	}

	return nil
}

// GetByID retrieves an expedition by its ID
func (r *ExpeditionRepository) GetByID(ctx context.Context, id int64) (*models.Expedition, error) {
	query := `
		SELECT id, initiator_id, initiator_username, total_sand, sand_per_melange, guild_cut_percentage, created_at
		FROM expeditions
		WHERE id = $1
	`

	var expedition models.Expedition
	err := r.q.QueryRow(ctx, query, id).Scan(
		&expedition.ID,
		&expedition.InitiatorID,
		&expedition.InitiatorUsername,
		&expedition.TotalSand,
		&expedition.SandPerMelange,
		&expedition.GuildCutPercentage,
		&expedition.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expedition %d: %w", id, err)
	}

	return &expedition, nil
}

// CreateParticipant inserts one participant allocation row
func (r *ExpeditionRepository) CreateParticipant(ctx context.Context, participant *models.ExpeditionParticipant) error {
	query := `
		INSERT INTO expedition_participants
		(expedition_id, user_id, username, sand_amount, melange_amount, is_harvester)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		participant.ExpeditionID,
		participant.UserID,
		participant.Username,
		participant.SandAmount,
		participant.MelangeAmount,
		participant.IsHarvester,
	).Scan(&participant.ID, &participant.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create participant %d for expedition %d: %w",
			participant.UserID, participant.ExpeditionID, err)
	}

	return nil
}

// GetParticipants returns all participant allocations for an expedition,
// harvester first
func (r *ExpeditionRepository) GetParticipants(ctx context.Context, expeditionID int64) ([]*models.ExpeditionParticipant, error) {
	query := `
		SELECT id, expedition_id, user_id, username, sand_amount, melange_amount, is_harvester, created_at
		FROM expedition_participants
		WHERE expedition_id = $1
		ORDER BY is_harvester DESC, id
	`

	rows, err := r.q.Query(ctx, query, expeditionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants for expedition %d: %w", expeditionID, err)
	}
	defer rows.Close()

	var participants []*models.ExpeditionParticipant
	for rows.Next() {
		var participant models.ExpeditionParticipant
		err := rows.Scan(
			&participant.ID,
			&participant.ExpeditionID,
			&participant.UserID,
			&participant.Username,
			&participant.SandAmount,
			&participant.MelangeAmount,
			&participant.IsHarvester,
			&participant.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &participant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// DeleteAllParticipants removes every participant row. Only reachable from the full reset.
func (r *ExpeditionRepository) DeleteAllParticipants(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM expedition_participants`); err != nil {
		return fmt.Errorf("failed to delete expedition participants: %w", err)
	}
	return nil
}

// DeleteAll removes every expedition row. Only reachable from the full reset.
func (r *ExpeditionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM expeditions`); err != nil {
		return fmt.Errorf("failed to delete expeditions: %w", err)
	}
	return nil
}
