package service

import (
	"context"
	"fmt"

	"harvester/events"
	"harvester/models"
)

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateUser upserts the user and refreshes their display name.
// Users enter the ledger on first deposit or settings lookup.
func (s *userService) GetOrCreateUser(ctx context.Context, user models.UserRef) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.UserRepository().GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	upserted, err := uow.UserRepository().Upsert(ctx, user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	if existing == nil {
		uow.EventBus().Publish(events.UserCreatedEvent{
			UserID:   upserted.UserID,
			Username: upserted.Username,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return upserted, nil
}

// GetUser retrieves a user, returning NotFoundError when absent
func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user", ID: userID}
	}

	return user, nil
}

// GetLeaderboard returns the top users by lifetime melange accrual
func (s *userService) GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	if limit < 1 {
		limit = 10
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetTopByTotalMelange(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return users, nil
}
