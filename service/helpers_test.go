package service

import (
	"harvester/config"
	"harvester/models"

	"github.com/stretchr/testify/mock"
)

// testRepos bundles one mock of every repository for unit-of-work wiring
type testRepos struct {
	users        *MockUserRepository
	deposits     *MockDepositRepository
	expeditions  *MockExpeditionRepository
	treasury     *MockTreasuryRepository
	guildTxns    *MockGuildTransactionRepository
	payments     *MockPaymentRepository
	settingsRepo *MockSettingsRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		users:        new(MockUserRepository),
		deposits:     new(MockDepositRepository),
		expeditions:  new(MockExpeditionRepository),
		treasury:     new(MockTreasuryRepository),
		guildTxns:    new(MockGuildTransactionRepository),
		payments:     new(MockPaymentRepository),
		settingsRepo: new(MockSettingsRepository),
	}
}

func (r *testRepos) wire(uow *MockUnitOfWork, events EventPublisher) {
	uow.SetRepositories(r.users, r.deposits, r.expeditions, r.treasury,
		r.guildTxns, r.payments, r.settingsRepo, events)
}

// newTestSettings returns a settings cache with fixed conversion regimes
// and no persisted state.
func newTestSettings(normal, bonus models.Rate) SettingsService {
	cfg := &config.Config{
		SandPerMelange:         normal,
		BonusSandPerMelange:    bonus,
		DefaultGuildCutPercent: 10,
	}
	repo := new(MockSettingsRepository)
	// Setters persist in the background; accept whatever they write.
	repo.On("Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return NewSettingsService(repo, cfg)
}

func standardRate() models.Rate {
	return models.Rate{SandUnits: 50, MelangeUnits: 1}
}

func bonusRate() models.Rate {
	return models.Rate{SandUnits: 75, MelangeUnits: 2}
}
