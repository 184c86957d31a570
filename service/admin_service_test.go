package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAdmin(t *testing.T) (*testRepos, *MockUnitOfWork, AdminService) {
	t.Helper()

	repos := newTestRepos()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	repos.wire(mockUoW, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return repos, mockUoW, NewAdminService(mockFactory)
}

func TestAdminService_ResetAll(t *testing.T) {
	ctx := context.Background()
	repos, mockUoW, service := setupAdmin(t)

	// Children before parents
	var order []string
	track := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { order = append(order, name) }
	}

	repos.payments.On("DeleteAll", ctx).Run(track("payments")).Return(nil)
	repos.guildTxns.On("DeleteAll", ctx).Run(track("guild_transactions")).Return(nil)
	repos.expeditions.On("DeleteAllParticipants", ctx).Run(track("participants")).Return(nil)
	repos.deposits.On("DeleteAll", ctx).Run(track("deposits")).Return(nil)
	repos.expeditions.On("DeleteAll", ctx).Run(track("expeditions")).Return(nil)
	repos.users.On("DeleteAll", ctx).Run(track("users")).Return(nil)
	repos.treasury.On("DeleteAll", ctx).Run(track("treasury")).Return(nil)
	repos.settingsRepo.On("DeleteAll", ctx).Run(track("settings")).Return(nil)

	err := service.ResetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"payments", "guild_transactions", "participants",
		"deposits", "expeditions", "users", "treasury", "settings",
	}, order)
	mockUoW.AssertCalled(t, "Commit")
}

func TestAdminService_ResetAll_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repos, mockUoW, service := setupAdmin(t)

	repos.payments.On("DeleteAll", ctx).Return(nil)
	repos.guildTxns.On("DeleteAll", ctx).Return(nil)
	repos.expeditions.On("DeleteAllParticipants", ctx).Return(errors.New("database error"))

	err := service.ResetAll(ctx)
	assert.Error(t, err)

	mockUoW.AssertNotCalled(t, "Commit")
	mockUoW.AssertCalled(t, "Rollback")
	repos.users.AssertNotCalled(t, "DeleteAll")
}

func TestAdminService_CleanupSettledDeposits(t *testing.T) {
	ctx := context.Background()
	repos, _, service := setupAdmin(t)

	repos.deposits.On("DeleteSettledBefore", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		// cutoff falls roughly 90 days in the past
		expected := time.Now().UTC().Add(-90 * 24 * time.Hour)
		return cutoff.Sub(expected).Abs() < time.Minute
	})).Return(int64(42), nil)

	deleted, err := service.CleanupSettledDeposits(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(42), deleted)
}

func TestAdminService_CleanupSettledDeposits_Validation(t *testing.T) {
	ctx := context.Background()
	_, _, service := setupAdmin(t)

	var validationErr *ValidationError
	_, err := service.CleanupSettledDeposits(ctx, 0)
	require.ErrorAs(t, err, &validationErr)
}
