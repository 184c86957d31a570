package service

import (
	"context"
	"fmt"

	"harvester/events"
	"harvester/models"
)

// creditMelange increments a user's lifetime melange total and emits the
// corresponding event. This is the single entry point for all melange
// accrual in the system.
func creditMelange(ctx context.Context, uow UnitOfWork, userID int64, amount int64) (int64, error) {
	newTotal, err := uow.UserRepository().CreditMelange(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to credit melange: %w", err)
	}

	uow.EventBus().Publish(events.MelangeCreditedEvent{
		UserID:   userID,
		Amount:   amount,
		NewTotal: newTotal,
	})

	return newTotal, nil
}

// recordGuildTransaction appends a treasury audit row and emits a treasury
// change event carrying the post-change balance.
func recordGuildTransaction(ctx context.Context, uow UnitOfWork, txn *models.GuildTransaction, balance *models.GuildTreasury) error {
	if err := uow.GuildTransactionRepository().Create(ctx, txn); err != nil {
		return fmt.Errorf("failed to record guild transaction: %w", err)
	}

	uow.EventBus().Publish(events.TreasuryChangeEvent{
		TransactionType: txn.Type,
		SandAmount:      txn.SandAmount,
		MelangeAmount:   txn.MelangeAmount,
		NewSandTotal:    balance.TotalSand,
		NewMelangeTotal: balance.TotalMelange,
	})

	return nil
}

// pageBounds converts 1-based page/pageSize into limit/offset, clamping
// pageSize to a sane window.
func pageBounds(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageSize, (page - 1) * pageSize
}
