package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type adminService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{
		uowFactory: uowFactory,
	}
}

// ResetAll deletes every ledger entity in one transaction. Children go
// before parents so foreign keys never dangle mid-delete.
func (s *adminService) ResetAll(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.PaymentRepository().DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	if err := uow.GuildTransactionRepository().DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete guild transactions: %w", err)
	}
	if err := uow.ExpeditionRepository().DeleteAllParticipants(ctx); err != nil {
		return fmt.Errorf("failed to delete expedition participants: %w", err)
	}
	if err := uow.DepositRepository().DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete deposits: %w", err)
	}
	if err := uow.ExpeditionRepository().DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete expeditions: %w", err)
	}
	if err := uow.UserRepository().DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	if err := uow.TreasuryRepository().DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete treasury: %w", err)
	}
	if err := uow.SettingsRepository().DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Warn("Ledger reset: all economy data deleted")
	return nil
}

// CleanupSettledDeposits removes deposit rows older than the retention
// window for users whose melange is fully settled. Aggregate balances are
// untouched, so the cleanup never breaks conservation.
func (s *adminService) CleanupSettledDeposits(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, &ValidationError{Field: "older_than", Reason: "retention window must be positive"}
	}

	cutoff := time.Now().UTC().Add(-olderThan)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.DepositRepository().DeleteSettledBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up deposits: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if deleted > 0 {
		log.WithFields(log.Fields{
			"deleted": deleted,
			"cutoff":  cutoff,
		}).Info("Cleaned up settled deposits")
	}
	return deleted, nil
}
