package service

import (
	"context"
	"time"

	"harvester/events"
	"harvester/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByUserID retrieves a user by their platform user ID
	GetByUserID(ctx context.Context, userID int64) (*models.User, error)

	// Upsert inserts the user or updates their display name; idempotent
	Upsert(ctx context.Context, userID int64, username string) (*models.User, error)

	// CreditMelange atomically increments a user's lifetime melange total
	// and returns the new total
	CreditMelange(ctx context.Context, userID int64, amount int64) (int64, error)

	// AddPaidMelange atomically increments paid_melange if the amount does
	// not exceed the user's pending melange; reports whether it applied
	AddPaidMelange(ctx context.Context, userID int64, amount int64) (bool, error)

	// GetUsersWithPendingMelange returns all users with unpaid melange
	GetUsersWithPendingMelange(ctx context.Context) ([]*models.User, error)

	// GetTopByTotalMelange returns the lifetime accrual leaderboard
	GetTopByTotalMelange(ctx context.Context, limit int) ([]*models.User, error)

	// DeleteAll removes every user row (full reset only)
	DeleteAll(ctx context.Context) error
}

// DepositRepository defines the interface for deposit ledger access
type DepositRepository interface {
	// Create appends a deposit row; the caller has already applied the
	// conversion policy
	Create(ctx context.Context, deposit *models.Deposit) error

	// GetByUser returns a page of deposits for a user, newest first
	GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Deposit, error)

	// CountByUser returns the total number of deposits for a user
	CountByUser(ctx context.Context, userID int64) (int64, error)

	// DeleteSettledBefore removes old deposits whose owner has no pending melange
	DeleteSettledBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAll removes every deposit row (full reset only)
	DeleteAll(ctx context.Context) error
}

// ExpeditionRepository defines the interface for expedition data access
type ExpeditionRepository interface {
	// Create inserts a new expedition record
	Create(ctx context.Context, expedition *models.Expedition) error

	// GetByID retrieves an expedition by its ID
	GetByID(ctx context.Context, id int64) (*models.Expedition, error)

	// CreateParticipant inserts one participant allocation row
	CreateParticipant(ctx context.Context, participant *models.ExpeditionParticipant) error

	// GetParticipants returns all participant allocations for an expedition
	GetParticipants(ctx context.Context, expeditionID int64) ([]*models.ExpeditionParticipant, error)

	// DeleteAllParticipants removes every participant row (full reset only)
	DeleteAllParticipants(ctx context.Context) error

	// DeleteAll removes every expedition row (full reset only)
	DeleteAll(ctx context.Context) error
}

// TreasuryRepository defines the interface for guild treasury access
type TreasuryRepository interface {
	// GetLatest returns the live treasury row, or nil if none exists yet
	GetLatest(ctx context.Context) (*models.GuildTreasury, error)

	// Credit adds sand and melange, creating the balance row on first use
	Credit(ctx context.Context, sandAmount, melangeAmount int64) (*models.GuildTreasury, error)

	// WithdrawMelange conditionally decrements the melange balance;
	// returns nil when funds are insufficient
	WithdrawMelange(ctx context.Context, amount int64) (*models.GuildTreasury, error)

	// DeleteAll removes every treasury row (full reset only)
	DeleteAll(ctx context.Context) error
}

// GuildTransactionRepository defines the interface for treasury audit rows
type GuildTransactionRepository interface {
	// Create appends an audit row
	Create(ctx context.Context, txn *models.GuildTransaction) error

	// GetRecent returns a page of audit rows, newest first
	GetRecent(ctx context.Context, limit, offset int) ([]*models.GuildTransaction, error)

	// DeleteAll removes every audit row (full reset only)
	DeleteAll(ctx context.Context) error
}

// PaymentRepository defines the interface for settlement records
type PaymentRepository interface {
	// Create appends a settlement record
	Create(ctx context.Context, payment *models.MelangePayment) error

	// GetByUser returns a page of payments for a user, newest first
	GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.MelangePayment, error)

	// SumByUser returns the total melange ever paid to a user
	SumByUser(ctx context.Context, userID int64) (int64, error)

	// DeleteAll removes every payment row (full reset only)
	DeleteAll(ctx context.Context) error
}

// SettingsRepository defines the interface for persisted settings
type SettingsRepository interface {
	// GetAll returns every persisted setting row
	GetAll(ctx context.Context) ([]*models.GlobalSetting, error)

	// Upsert writes a setting value, last writer wins
	Upsert(ctx context.Context, key, value, description string) error

	// DeleteAll removes every setting row (full reset only)
	DeleteAll(ctx context.Context) error
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser upserts the user (created on first contact) and
	// refreshes their display name
	GetOrCreateUser(ctx context.Context, user models.UserRef) (*models.User, error)

	// GetUser retrieves a user, returning NotFoundError when absent
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// GetLeaderboard returns the top users by lifetime melange
	GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error)
}

// DepositService defines the interface for recording harvested sand
type DepositService interface {
	// RecordSoloDeposit converts and credits a solo harvest for one user
	RecordSoloDeposit(ctx context.Context, user models.UserRef, sandAmount int64) (*models.DepositResult, error)

	// RecordGuildDeposit converts a harvest directly into the guild treasury
	RecordGuildDeposit(ctx context.Context, actor models.UserRef, sandAmount int64) (*models.DepositResult, error)

	// ListDeposits returns one page of a user's deposits plus the total count
	ListDeposits(ctx context.Context, userID int64, page, pageSize int) ([]*models.Deposit, int64, error)
}

// DistributionService defines the interface for the splitting policies
type DistributionService interface {
	// EqualSplit divides totalSand evenly; the modular leftover goes to
	// the first participant
	EqualSplit(ctx context.Context, initiator models.UserRef, totalSand int64, participants []models.UserRef) (*models.DistributionResult, error)

	// PercentageSplit gives each participant userCutPercent of the total;
	// the remainder goes to the guild treasury
	PercentageSplit(ctx context.Context, initiator models.UserRef, totalSand int64, participants []models.UserRef, userCutPercent int64) (*models.DistributionResult, error)

	// HarvesterSplit gives the harvester harvesterPercent off the top,
	// then divides the rest equally among harvester and participants
	HarvesterSplit(ctx context.Context, harvester models.UserRef, totalSand int64, participants []models.UserRef, harvesterPercent int64) (*models.DistributionResult, error)

	// GetExpedition retrieves an expedition and its participant allocations
	GetExpedition(ctx context.Context, id int64) (*models.Expedition, []*models.ExpeditionParticipant, error)
}

// TreasuryService defines the interface for guild treasury operations
type TreasuryService interface {
	// GetBalance returns the current treasury balance (zero-value when empty)
	GetBalance(ctx context.Context) (*models.GuildTreasury, error)

	// Withdraw pays melange from the treasury to a user, failing with
	// InsufficientFundsError when the balance does not cover the amount
	Withdraw(ctx context.Context, amount int64, actor, recipient models.UserRef) (*models.GuildTreasury, error)

	// History returns one page of treasury audit rows
	History(ctx context.Context, page, pageSize int) ([]*models.GuildTransaction, error)
}

// PaymentService defines the interface for settling pending melange
type PaymentService interface {
	// PayUser settles pending melange for one user. A nil amount pays the
	// full pending balance; an amount exceeding pending is rejected.
	PayUser(ctx context.Context, userID int64, admin models.UserRef, amount *int64) (*models.MelangePayment, error)

	// PayAll settles every user with a positive pending balance in one
	// transaction; a partial failure rolls back the whole batch
	PayAll(ctx context.Context, admin models.UserRef) (*models.PayrollResult, error)

	// ListPayments returns one page of a user's settlement history
	ListPayments(ctx context.Context, userID int64, page, pageSize int) ([]*models.MelangePayment, error)
}

// AdminService defines the interface for administrative maintenance
type AdminService interface {
	// ResetAll deletes every ledger entity in foreign-key-safe order,
	// all-or-nothing
	ResetAll(ctx context.Context) error

	// CleanupSettledDeposits removes deposits older than the retention
	// window whose owner has no pending melange
	CleanupSettledDeposits(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SettingsService is the process-wide settings cache: reads are served
// synchronously from memory, updates take effect immediately in memory
// and are persisted asynchronously.
type SettingsService interface {
	// Load populates the cache from the persisted table; a load failure
	// leaves documented defaults in place and does not prevent startup
	Load(ctx context.Context) error

	// ActiveRate returns the conversion rate for the active regime
	ActiveRate() models.Rate

	BonusActive() bool
	DefaultUserCutPercent() (int64, bool)
	DefaultGuildCutPercent() int64
	Region() string
	AdminRoleIDs() []int64
	OfficerRoleIDs() []int64
	UserRoleIDs() []int64

	SetBonusActive(ctx context.Context, active bool) error
	SetDefaultUserCutPercent(ctx context.Context, percent *int64) error
	SetDefaultGuildCutPercent(ctx context.Context, percent int64) error
	SetRegion(ctx context.Context, region string) error
	SetRoleIDs(ctx context.Context, level RoleLevel, roleIDs []int64) error
}

// RoleLevel identifies one of the closed set of permission tiers consumed
// by the external permission collaborator
type RoleLevel string

const (
	RoleLevelAdmin   RoleLevel = "admin"
	RoleLevelOfficer RoleLevel = "officer"
	RoleLevelUser    RoleLevel = "user"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction, retrying acquisition only
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	DepositRepository() DepositRepository
	ExpeditionRepository() ExpeditionRepository
	TreasuryRepository() TreasuryRepository
	GuildTransactionRepository() GuildTransactionRepository
	PaymentRepository() PaymentRepository
	SettingsRepository() SettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
