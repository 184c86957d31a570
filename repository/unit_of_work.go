package repository

import (
	"context"
	"fmt"
	"time"

	"harvester/database"
	"harvester/events"
	"harvester/service"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	maxRetries       int
	retryBackoff     time.Duration
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	userRepo         service.UserRepository
	depositRepo      service.DepositRepository
	expeditionRepo   service.ExpeditionRepository
	treasuryRepo     service.TreasuryRepository
	guildTxnRepo     service.GuildTransactionRepository
	paymentRepo      service.PaymentRepository
	settingsRepo     service.SettingsRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory.
// maxRetries and retryBackoff bound the session-acquisition retry loop;
// they never apply to the business operation inside the transaction.
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus, maxRetries int, retryBackoff time.Duration) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:           db,
		eventBus:     eventBus,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}
}

type unitOfWorkFactory struct {
	db           *database.DB
	eventBus     *events.Bus
	maxRetries   int
	retryBackoff time.Duration
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		maxRetries:       f.maxRetries,
		retryBackoff:     f.retryBackoff,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction. Acquisition failures (pool exhaustion,
// transient connection faults) are retried with linear backoff up to the
// configured bound; exhaustion surfaces as a ConcurrencyError carrying the
// last acquisition error.
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	var tx pgx.Tx
	var err error
	for attempt := 0; ; attempt++ {
		tx, err = u.db.Begin(ctx)
		if err == nil {
			break
		}
		if attempt >= u.maxRetries {
			return &service.ConcurrencyError{Attempts: attempt + 1, Err: err}
		}

		wait := u.retryBackoff * time.Duration(attempt+1)
		log.WithFields(log.Fields{
			"attempt": attempt + 1,
			"backoff": wait,
		}).WithError(err).Warn("Failed to acquire database session, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("session acquisition cancelled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.userRepo = newUserRepositoryWithTx(tx)
	u.depositRepo = newDepositRepositoryWithTx(tx)
	u.expeditionRepo = newExpeditionRepositoryWithTx(tx)
	u.treasuryRepo = newTreasuryRepositoryWithTx(tx)
	u.guildTxnRepo = newGuildTransactionRepositoryWithTx(tx)
	u.paymentRepo = newPaymentRepositoryWithTx(tx)
	u.settingsRepo = newSettingsRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// DepositRepository returns the deposit repository for this unit of work
func (u *unitOfWork) DepositRepository() service.DepositRepository {
	if u.depositRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.depositRepo
}

// ExpeditionRepository returns the expedition repository for this unit of work
func (u *unitOfWork) ExpeditionRepository() service.ExpeditionRepository {
	if u.expeditionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.expeditionRepo
}

// TreasuryRepository returns the treasury repository for this unit of work
func (u *unitOfWork) TreasuryRepository() service.TreasuryRepository {
	if u.treasuryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.treasuryRepo
}

// GuildTransactionRepository returns the guild transaction repository for this unit of work
func (u *unitOfWork) GuildTransactionRepository() service.GuildTransactionRepository {
	if u.guildTxnRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildTxnRepo
}

// PaymentRepository returns the payment repository for this unit of work
func (u *unitOfWork) PaymentRepository() service.PaymentRepository {
	if u.paymentRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.paymentRepo
}

// SettingsRepository returns the settings repository for this unit of work
func (u *unitOfWork) SettingsRepository() service.SettingsRepository {
	if u.settingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.settingsRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
