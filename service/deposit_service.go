package service

import (
	"context"
	"fmt"

	"harvester/events"
	"harvester/models"
)

type depositService struct {
	uowFactory UnitOfWorkFactory
	settings   SettingsService
}

// NewDepositService creates a new deposit service
func NewDepositService(uowFactory UnitOfWorkFactory, settings SettingsService) DepositService {
	return &depositService{
		uowFactory: uowFactory,
		settings:   settings,
	}
}

// RecordSoloDeposit converts a solo harvest at the active rate, appends the
// deposit and credits the harvester's melange, all in one transaction.
func (s *depositService) RecordSoloDeposit(ctx context.Context, user models.UserRef, sandAmount int64) (*models.DepositResult, error) {
	if sandAmount < 1 {
		return nil, &ValidationError{Field: "sand_amount", Reason: "must be at least 1"}
	}

	rate := s.settings.ActiveRate()
	melange, remainder, err := rate.Convert(sandAmount)
	if err != nil {
		return nil, &ValidationError{Field: "sand_amount", Reason: err.Error()}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := uow.UserRepository().Upsert(ctx, user.ID, user.Username); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	rateValue := rate.Float64()
	deposit := &models.Deposit{
		UserID:         user.ID,
		Username:       user.Username,
		SandAmount:     sandAmount,
		Type:           models.DepositTypeSolo,
		MelangeAmount:  &melange,
		ConversionRate: &rateValue,
	}
	if err := uow.DepositRepository().Create(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	var newTotal int64
	if melange > 0 {
		newTotal, err = creditMelange(ctx, uow, user.ID, melange)
		if err != nil {
			return nil, err
		}
	}

	uow.EventBus().Publish(events.DepositRecordedEvent{
		DepositID:   deposit.ID,
		UserID:      user.ID,
		SandAmount:  sandAmount,
		Melange:     melange,
		DepositType: models.DepositTypeSolo,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.DepositResult{
		Deposit:       deposit,
		Melange:       melange,
		SandRemainder: remainder,
		NewTotal:      newTotal,
	}, nil
}

// RecordGuildDeposit converts a harvest at the active rate and credits the
// guild treasury instead of a user, with an audit row attributing the actor.
func (s *depositService) RecordGuildDeposit(ctx context.Context, actor models.UserRef, sandAmount int64) (*models.DepositResult, error) {
	if sandAmount < 1 {
		return nil, &ValidationError{Field: "sand_amount", Reason: "must be at least 1"}
	}

	rate := s.settings.ActiveRate()
	melange, remainder, err := rate.Convert(sandAmount)
	if err != nil {
		return nil, &ValidationError{Field: "sand_amount", Reason: err.Error()}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.UserRepository().Upsert(ctx, actor.ID, actor.Username); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	rateValue := rate.Float64()
	deposit := &models.Deposit{
		UserID:         actor.ID,
		Username:       actor.Username,
		SandAmount:     sandAmount,
		Type:           models.DepositTypeGuild,
		MelangeAmount:  &melange,
		ConversionRate: &rateValue,
	}
	if err := uow.DepositRepository().Create(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	balance, err := uow.TreasuryRepository().Credit(ctx, sandAmount, melange)
	if err != nil {
		return nil, fmt.Errorf("failed to credit treasury: %w", err)
	}

	txn := &models.GuildTransaction{
		Type:          models.GuildTransactionTypeDeposit,
		SandAmount:    sandAmount,
		MelangeAmount: melange,
		AdminUserID:   actor.ID,
		AdminUsername: actor.Username,
	}
	if err := recordGuildTransaction(ctx, uow, txn, balance); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.DepositRecordedEvent{
		DepositID:   deposit.ID,
		UserID:      actor.ID,
		SandAmount:  sandAmount,
		Melange:     melange,
		DepositType: models.DepositTypeGuild,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.DepositResult{
		Deposit:       deposit,
		Melange:       melange,
		SandRemainder: remainder,
	}, nil
}

// ListDeposits returns one page of a user's deposits plus the total count.
// Pages are read-only and need not observe a consistent snapshot across
// page boundaries.
func (s *depositService) ListDeposits(ctx context.Context, userID int64, page, pageSize int) ([]*models.Deposit, int64, error) {
	limit, offset := pageBounds(page, pageSize)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deposits, err := uow.DepositRepository().GetByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deposits: %w", err)
	}

	total, err := uow.DepositRepository().CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count deposits: %w", err)
	}

	return deposits, total, nil
}
