package repository

import (
	"context"
	"testing"

	"harvester/models"
	"harvester/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpeditionRepository_CreateAndRead(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewExpeditionRepository(testDB.DB)
	ctx := context.Background()

	for _, ref := range []models.UserRef{
		testutil.TestUserRef(1, "stilgar"),
		testutil.TestUserRef(2, "chani"),
		testutil.TestUserRef(3, "jamis"),
	} {
		_, err := userRepo.Upsert(ctx, ref.ID, ref.Username)
		require.NoError(t, err)
	}

	expedition := testutil.CreateTestExpedition(1, "stilgar", 1000)
	err := repo.Create(ctx, expedition)
	require.NoError(t, err)
	assert.NotZero(t, expedition.ID)

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, expedition.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(1000), got.TotalSand)
		assert.Equal(t, float64(50), got.SandPerMelange)
	})

	t.Run("missing expedition is nil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("participants come back harvester first", func(t *testing.T) {
		regular := testutil.CreateTestParticipant(expedition.ID, 2, "chani", 450, 9)
		require.NoError(t, repo.CreateParticipant(ctx, regular))

		harvester := testutil.CreateTestParticipant(expedition.ID, 1, "stilgar", 550, 11)
		harvester.IsHarvester = true
		require.NoError(t, repo.CreateParticipant(ctx, harvester))

		participants, err := repo.GetParticipants(ctx, expedition.ID)
		require.NoError(t, err)
		require.Len(t, participants, 2)

		assert.True(t, participants[0].IsHarvester)
		assert.Equal(t, int64(1), participants[0].UserID)
		assert.Equal(t, int64(2), participants[1].UserID)
	})
}

func TestGuildTransactionRepository_AuditTrail(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	treasuryRepo := NewTreasuryRepository(testDB.DB)
	repo := NewGuildTransactionRepository(testDB.DB)
	ctx := context.Background()

	_, err := treasuryRepo.Credit(ctx, 5000, 100)
	require.NoError(t, err)

	first := testutil.CreateTestGuildTransaction(models.GuildTransactionTypeExpeditionCut, 5000, 100, 9)
	require.NoError(t, repo.Create(ctx, first))

	second := testutil.CreateTestGuildTransaction(models.GuildTransactionTypeWithdrawal, 0, -30, 9)
	require.NoError(t, repo.Create(ctx, second))

	txns, err := repo.GetRecent(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	// Newest first, negative amounts preserved
	assert.Equal(t, models.GuildTransactionTypeWithdrawal, txns[0].Type)
	assert.Equal(t, int64(-30), txns[0].MelangeAmount)
	assert.Equal(t, models.GuildTransactionTypeExpeditionCut, txns[1].Type)
}
