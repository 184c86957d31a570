package service

import (
	"context"
	"time"

	"harvester/events"
	"harvester/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUserID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, userID int64, username string) (*models.User, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreditMelange(ctx context.Context, userID int64, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) AddPaidMelange(ctx context.Context, userID int64, amount int64) (bool, error) {
	args := m.Called(ctx, userID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetUsersWithPendingMelange(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetTopByTotalMelange(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDepositRepository is a mock implementation of DepositRepository
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) Create(ctx context.Context, deposit *models.Deposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

func (m *MockDepositRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Deposit, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deposit), args.Error(1)
}

func (m *MockDepositRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDepositRepository) DeleteSettledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDepositRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockExpeditionRepository is a mock implementation of ExpeditionRepository
type MockExpeditionRepository struct {
	mock.Mock
}

func (m *MockExpeditionRepository) Create(ctx context.Context, expedition *models.Expedition) error {
	args := m.Called(ctx, expedition)
	return args.Error(0)
}

func (m *MockExpeditionRepository) GetByID(ctx context.Context, id int64) (*models.Expedition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expedition), args.Error(1)
}

func (m *MockExpeditionRepository) CreateParticipant(ctx context.Context, participant *models.ExpeditionParticipant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockExpeditionRepository) GetParticipants(ctx context.Context, expeditionID int64) ([]*models.ExpeditionParticipant, error) {
	args := m.Called(ctx, expeditionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExpeditionParticipant), args.Error(1)
}

func (m *MockExpeditionRepository) DeleteAllParticipants(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockExpeditionRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTreasuryRepository is a mock implementation of TreasuryRepository
type MockTreasuryRepository struct {
	mock.Mock
}

func (m *MockTreasuryRepository) GetLatest(ctx context.Context) (*models.GuildTreasury, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildTreasury), args.Error(1)
}

func (m *MockTreasuryRepository) Credit(ctx context.Context, sandAmount, melangeAmount int64) (*models.GuildTreasury, error) {
	args := m.Called(ctx, sandAmount, melangeAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildTreasury), args.Error(1)
}

func (m *MockTreasuryRepository) WithdrawMelange(ctx context.Context, amount int64) (*models.GuildTreasury, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildTreasury), args.Error(1)
}

func (m *MockTreasuryRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockGuildTransactionRepository is a mock implementation of GuildTransactionRepository
type MockGuildTransactionRepository struct {
	mock.Mock
}

func (m *MockGuildTransactionRepository) Create(ctx context.Context, txn *models.GuildTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockGuildTransactionRepository) GetRecent(ctx context.Context, limit, offset int) ([]*models.GuildTransaction, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GuildTransaction), args.Error(1)
}

func (m *MockGuildTransactionRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.MelangePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.MelangePayment, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MelangePayment), args.Error(1)
}

func (m *MockPaymentRepository) SumByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetAll(ctx context.Context) ([]*models.GlobalSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GlobalSetting), args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, key, value, description string) error {
	args := m.Called(ctx, key, value, description)
	return args.Error(0)
}

func (m *MockSettingsRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// discardPublisher drops events; used when a test does not care about them
type discardPublisher struct{}

func (discardPublisher) Publish(event events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Call SetRepositories
// before use; a nil event publisher discards events.
type MockUnitOfWork struct {
	mock.Mock

	userRepo     UserRepository
	depositRepo  DepositRepository
	expRepo      ExpeditionRepository
	treasuryRepo TreasuryRepository
	guildTxnRepo GuildTransactionRepository
	paymentRepo  PaymentRepository
	settingsRepo SettingsRepository
	eventBus     EventPublisher
}

func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	depositRepo DepositRepository,
	expRepo ExpeditionRepository,
	treasuryRepo TreasuryRepository,
	guildTxnRepo GuildTransactionRepository,
	paymentRepo PaymentRepository,
	settingsRepo SettingsRepository,
	eventBus EventPublisher,
) {
	m.userRepo = userRepo
	m.depositRepo = depositRepo
	m.expRepo = expRepo
	m.treasuryRepo = treasuryRepo
	m.guildTxnRepo = guildTxnRepo
	m.paymentRepo = paymentRepo
	m.settingsRepo = settingsRepo
	if eventBus == nil {
		eventBus = discardPublisher{}
	}
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository { return m.userRepo }

func (m *MockUnitOfWork) DepositRepository() DepositRepository { return m.depositRepo }

func (m *MockUnitOfWork) ExpeditionRepository() ExpeditionRepository { return m.expRepo }

func (m *MockUnitOfWork) TreasuryRepository() TreasuryRepository { return m.treasuryRepo }

func (m *MockUnitOfWork) GuildTransactionRepository() GuildTransactionRepository {
	return m.guildTxnRepo
}

func (m *MockUnitOfWork) PaymentRepository() PaymentRepository { return m.paymentRepo }

func (m *MockUnitOfWork) SettingsRepository() SettingsRepository { return m.settingsRepo }

func (m *MockUnitOfWork) EventBus() EventPublisher { return m.eventBus }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
