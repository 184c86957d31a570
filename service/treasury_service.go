package service

import (
	"context"
	"fmt"

	"harvester/models"
)

type treasuryService struct {
	uowFactory UnitOfWorkFactory
}

// NewTreasuryService creates a new treasury service
func NewTreasuryService(uowFactory UnitOfWorkFactory) TreasuryService {
	return &treasuryService{
		uowFactory: uowFactory,
	}
}

// GetBalance returns the current treasury balance. A guild that has never
// received a cut reads as a zero-value balance, not an error.
func (s *treasuryService) GetBalance(ctx context.Context) (*models.GuildTreasury, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	treasury, err := uow.TreasuryRepository().GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury balance: %w", err)
	}
	if treasury == nil {
		return &models.GuildTreasury{}, nil
	}

	return treasury, nil
}

// Withdraw pays melange from the treasury to a recipient. The balance
// decrement, the recipient's credit, and the audit row commit together;
// an insufficient balance leaves the treasury untouched.
func (s *treasuryService) Withdraw(ctx context.Context, amount int64, actor, recipient models.UserRef) (*models.GuildTreasury, error) {
	if amount < 1 {
		return nil, &ValidationError{Field: "amount", Reason: "must be at least 1"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	balance, err := uow.TreasuryRepository().WithdrawMelange(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw from treasury: %w", err)
	}
	if balance == nil {
		current, err := uow.TreasuryRepository().GetLatest(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read treasury balance: %w", err)
		}
		var available int64
		if current != nil {
			available = current.TotalMelange
		}
		return nil, &InsufficientFundsError{Requested: amount, Available: available}
	}

	if _, err := uow.UserRepository().Upsert(ctx, recipient.ID, recipient.Username); err != nil {
		return nil, fmt.Errorf("failed to upsert recipient: %w", err)
	}

	if _, err := creditMelange(ctx, uow, recipient.ID, amount); err != nil {
		return nil, err
	}

	txn := &models.GuildTransaction{
		Type:           models.GuildTransactionTypeWithdrawal,
		SandAmount:     0,
		MelangeAmount:  -amount,
		AdminUserID:    actor.ID,
		AdminUsername:  actor.Username,
		TargetUserID:   &recipient.ID,
		TargetUsername: &recipient.Username,
	}
	if err := recordGuildTransaction(ctx, uow, txn, balance); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return balance, nil
}

// History returns one page of treasury audit rows, newest first
func (s *treasuryService) History(ctx context.Context, page, pageSize int) ([]*models.GuildTransaction, error) {
	limit, offset := pageBounds(page, pageSize)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	transactions, err := uow.GuildTransactionRepository().GetRecent(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury history: %w", err)
	}

	return transactions, nil
}
