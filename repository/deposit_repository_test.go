package repository

import (
	"context"
	"testing"
	"time"

	"harvester/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositRepository_CreateAndPaginate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewDepositRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Upsert(ctx, 1, "stilgar")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		deposit := testutil.CreateTestDeposit(1, "stilgar", int64(100*(i+1)))
		err := repo.Create(ctx, deposit)
		require.NoError(t, err)
		assert.NotZero(t, deposit.ID)
		assert.False(t, deposit.CreatedAt.IsZero())
	}

	count, err := repo.CountByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	t.Run("newest first", func(t *testing.T) {
		deposits, err := repo.GetByUser(ctx, 1, 10, 0)
		require.NoError(t, err)
		require.Len(t, deposits, 5)
		assert.Equal(t, int64(500), deposits[0].SandAmount)
		assert.Equal(t, int64(100), deposits[4].SandAmount)
	})

	t.Run("pagination", func(t *testing.T) {
		page1, err := repo.GetByUser(ctx, 1, 2, 0)
		require.NoError(t, err)
		require.Len(t, page1, 2)

		page2, err := repo.GetByUser(ctx, 1, 2, 2)
		require.NoError(t, err)
		require.Len(t, page2, 2)

		assert.NotEqual(t, page1[0].ID, page2[0].ID)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		deposits, err := repo.GetByUser(ctx, 2, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, deposits)

		count, err := repo.CountByUser(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestDepositRepository_DeleteSettledBefore(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewDepositRepository(testDB.DB)
	ctx := context.Background()

	// A settled user and one with pending melange
	_, err := userRepo.Upsert(ctx, 1, "stilgar")
	require.NoError(t, err)
	_, err = userRepo.Upsert(ctx, 2, "chani")
	require.NoError(t, err)
	_, err = userRepo.CreditMelange(ctx, 2, 10)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, testutil.CreateTestDeposit(1, "stilgar", 100)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestDeposit(2, "chani", 500)))

	t.Run("future cutoff removes only settled owners", func(t *testing.T) {
		deleted, err := repo.DeleteSettledBefore(ctx, time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		// The pending user's history is retained
		count, err := repo.CountByUser(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("past cutoff removes nothing", func(t *testing.T) {
		deleted, err := repo.DeleteSettledBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
	})
}
