package repository

import (
	"context"
	"fmt"

	"harvester/database"
	"harvester/models"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByUserID retrieves a user by their platform user ID
func (r *UserRepository) GetByUserID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT user_id, username, total_melange, paid_melange, created_at, last_updated
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Username,
		&user.TotalMelange,
		&user.PaidMelange,
		&user.CreatedAt,
		&user.LastUpdated,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

// Upsert inserts the user or updates their display name. Idempotent;
// the display name is last-write-wins.
func (r *UserRepository) Upsert(ctx context.Context, userID int64, username string) (*models.User, error) {
	query := `
		INSERT INTO users (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username, last_updated = NOW()
		RETURNING user_id, username, total_melange, paid_melange, created_at, last_updated
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID, username).Scan(
		&user.UserID,
		&user.Username,
		&user.TotalMelange,
		&user.PaidMelange,
		&user.CreatedAt,
		&user.LastUpdated,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}

	return &user, nil
}

// CreditMelange atomically increments a user's lifetime melange total.
// The amount may be negative for administrative corrections but the update
// is refused if it would drive the total below the paid amount.
func (r *UserRepository) CreditMelange(ctx context.Context, userID int64, amount int64) (int64, error) {
	query := `
		UPDATE users
		SET total_melange = total_melange + $1, last_updated = NOW()
		WHERE user_id = $2 AND total_melange + $1 >= paid_melange
		RETURNING total_melange
	`

	var newTotal int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&newTotal)
	if err == pgx.ErrNoRows {
		user, getErr := r.GetByUserID(ctx, userID)
		if getErr != nil {
			return 0, fmt.Errorf("failed to check user: %w", getErr)
		}
		if user == nil {
			return 0, fmt.Errorf("user %d not found", userID)
		}
		return 0, fmt.Errorf("melange credit of %d would drive user %d below paid total", amount, userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit melange for user %d: %w", userID, err)
	}

	return newTotal, nil
}

// AddPaidMelange atomically increments paid_melange, refusing any amount
// that exceeds the user's pending melange. Returns false without error when
// the guard rejects the update for an existing user.
func (r *UserRepository) AddPaidMelange(ctx context.Context, userID int64, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("payment amount must be positive")
	}

	query := `
		UPDATE users
		SET paid_melange = paid_melange + $1, last_updated = NOW()
		WHERE user_id = $2 AND total_melange - paid_melange >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return false, fmt.Errorf("failed to add paid melange for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		user, getErr := r.GetByUserID(ctx, userID)
		if getErr != nil {
			return false, fmt.Errorf("failed to check user: %w", getErr)
		}
		if user == nil {
			return false, fmt.Errorf("user %d not found", userID)
		}
		return false, nil
	}

	return true, nil
}

// GetUsersWithPendingMelange returns all users with unpaid melange,
// largest pending balance first
func (r *UserRepository) GetUsersWithPendingMelange(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT user_id, username, total_melange, paid_melange, created_at, last_updated
		FROM users
		WHERE total_melange > paid_melange
		ORDER BY total_melange - paid_melange DESC, user_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users with pending melange: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// GetTopByTotalMelange returns the leaderboard of lifetime melange accrual
func (r *UserRepository) GetTopByTotalMelange(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT user_id, username, total_melange, paid_melange, created_at, last_updated
		FROM users
		ORDER BY total_melange DESC, user_id
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// DeleteAll removes every user row. Only reachable from the full reset.
func (r *UserRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

func scanUsers(rows pgx.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.UserID,
			&user.Username,
			&user.TotalMelange,
			&user.PaidMelange,
			&user.CreatedAt,
			&user.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
