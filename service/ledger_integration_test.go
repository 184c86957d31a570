package service_test

import (
	"context"
	"testing"

	"harvester/config"
	"harvester/events"
	"harvester/models"
	"harvester/repository"
	"harvester/repository/testutil"
	"harvester/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedger(t *testing.T) (*testutil.TestDatabase, service.DepositService, service.DistributionService, service.TreasuryService, service.PaymentService, service.UserService) {
	t.Helper()

	testDB := testutil.SetupTestDatabase(t)

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus, 3, 0)

	cfg := &config.Config{
		SandPerMelange:         models.Rate{SandUnits: 50, MelangeUnits: 1},
		BonusSandPerMelange:    models.Rate{SandUnits: 75, MelangeUnits: 2},
		DefaultGuildCutPercent: 10,
	}
	settings := service.NewSettingsService(repository.NewSettingsRepository(testDB.DB), cfg)

	return testDB,
		service.NewDepositService(uowFactory, settings),
		service.NewDistributionService(uowFactory, settings),
		service.NewTreasuryService(uowFactory),
		service.NewPaymentService(uowFactory),
		service.NewUserService(uowFactory)
}

func TestLedger_DepositThenPayroll_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	testDB, deposits, _, _, payments, users := setupLedger(t)

	stilgar := models.UserRef{ID: 1, Username: "stilgar"}
	chani := models.UserRef{ID: 2, Username: "chani"}
	admin := models.UserRef{ID: 9, Username: "duncan"}

	// Two solo deposits at 50 sand per melange
	result, err := deposits.RecordSoloDeposit(ctx, stilgar, 334)
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.Melange)
	assert.Equal(t, int64(34), result.SandRemainder)

	result, err = deposits.RecordSoloDeposit(ctx, chani, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.Melange)

	// Payroll settles every pending balance in one transaction
	payroll, err := payments.PayAll(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, payroll.UsersPaid)
	assert.Equal(t, int64(16), payroll.TotalPaid)

	// Everyone fully settled afterwards, and the payment rows account for
	// every unit of paid melange
	paymentRepo := repository.NewPaymentRepository(testDB.DB)
	for _, ref := range []models.UserRef{stilgar, chani} {
		user, err := users.GetUser(ctx, ref.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), user.PendingMelange(), "user %s", ref.Username)
		assert.Equal(t, user.TotalMelange, user.PaidMelange)

		paid, err := paymentRepo.SumByUser(ctx, ref.ID)
		require.NoError(t, err)
		assert.Equal(t, user.PaidMelange, paid)
	}

	// A second payroll has nothing to do
	payroll, err = payments.PayAll(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, payroll.UsersPaid)
}

func TestLedger_ExpeditionAndTreasury_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	_, _, distributions, treasury, _, users := setupLedger(t)

	initiator := models.UserRef{ID: 1, Username: "stilgar"}
	participants := []models.UserRef{
		{ID: 2, Username: "chani"},
		{ID: 3, Username: "jamis"},
	}

	// 10000 sand, 10% per participant, 80% to the guild
	result, err := distributions.PercentageSplit(ctx, initiator, 10000, participants, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), result.GuildSand)
	assert.Equal(t, int64(160), result.GuildMelange)

	balance, err := treasury.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), balance.TotalSand)
	assert.Equal(t, int64(160), balance.TotalMelange)

	// Each participant accrued 20 melange from their 1000 sand cut
	for _, ref := range participants {
		user, err := users.GetUser(ctx, ref.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(20), user.TotalMelange)
	}

	// Withdraw part of the treasury to a participant
	balance, err = treasury.Withdraw(ctx, 60, initiator, participants[0])
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.TotalMelange)

	user, err := users.GetUser(ctx, participants[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), user.TotalMelange)

	// Overdraw attempt leaves the balance alone
	_, err = treasury.Withdraw(ctx, 101, initiator, participants[1])
	var fundsErr *service.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)

	balance, err = treasury.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.TotalMelange)

	// Expedition and allocations are readable afterwards
	expedition, expParticipants, err := distributions.GetExpedition(ctx, result.Expedition.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), expedition.TotalSand)
	assert.Len(t, expParticipants, 2)
}
