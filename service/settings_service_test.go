package service

import (
	"context"
	"errors"
	"testing"

	"harvester/config"
	"harvester/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_ActiveRate_FollowsBonusFlag(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(standardRate(), bonusRate())

	assert.Equal(t, standardRate(), settings.ActiveRate())

	require.NoError(t, settings.SetBonusActive(ctx, true))
	assert.Equal(t, bonusRate(), settings.ActiveRate())
	assert.True(t, settings.BonusActive())

	require.NoError(t, settings.SetBonusActive(ctx, false))
	assert.Equal(t, standardRate(), settings.ActiveRate())
}

func TestSettingsService_Load_OverlaysPersistedValues(t *testing.T) {
	ctx := context.Background()

	repo := new(MockSettingsRepository)
	repo.On("GetAll", ctx).Return([]*models.GlobalSetting{
		{Key: "bonus_active", Value: "true"},
		{Key: "default_user_cut", Value: "15"},
		{Key: "default_guild_cut", Value: "25"},
		{Key: "region", Value: "arrakis-north"},
		{Key: "admin_roles", Value: "100,200"},
		{Key: "unknown_key", Value: "ignored"},
	}, nil)

	cfg := &config.Config{
		SandPerMelange:         standardRate(),
		BonusSandPerMelange:    bonusRate(),
		DefaultGuildCutPercent: 10,
	}
	settings := NewSettingsService(repo, cfg)

	require.NoError(t, settings.Load(ctx))

	assert.True(t, settings.BonusActive())
	assert.Equal(t, bonusRate(), settings.ActiveRate())

	cut, ok := settings.DefaultUserCutPercent()
	assert.True(t, ok)
	assert.Equal(t, int64(15), cut)

	assert.Equal(t, int64(25), settings.DefaultGuildCutPercent())
	assert.Equal(t, "arrakis-north", settings.Region())
	assert.Equal(t, []int64{100, 200}, settings.AdminRoleIDs())
}

func TestSettingsService_Load_FailureKeepsDefaults(t *testing.T) {
	ctx := context.Background()

	repo := new(MockSettingsRepository)
	repo.On("GetAll", ctx).Return(nil, errors.New("database error"))

	cfg := &config.Config{
		SandPerMelange:         standardRate(),
		BonusSandPerMelange:    bonusRate(),
		DefaultGuildCutPercent: 10,
	}
	settings := NewSettingsService(repo, cfg)

	// A failed load is not fatal; defaults stay in effect
	require.NoError(t, settings.Load(ctx))
	assert.False(t, settings.BonusActive())
	assert.Equal(t, standardRate(), settings.ActiveRate())
	assert.Equal(t, int64(10), settings.DefaultGuildCutPercent())

	_, ok := settings.DefaultUserCutPercent()
	assert.False(t, ok)
}

func TestSettingsService_SetDefaultUserCutPercent(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(standardRate(), bonusRate())

	cut := int64(20)
	require.NoError(t, settings.SetDefaultUserCutPercent(ctx, &cut))

	got, ok := settings.DefaultUserCutPercent()
	assert.True(t, ok)
	assert.Equal(t, int64(20), got)

	// Clearing the default
	require.NoError(t, settings.SetDefaultUserCutPercent(ctx, nil))
	_, ok = settings.DefaultUserCutPercent()
	assert.False(t, ok)

	// Out of range
	bad := int64(101)
	var validationErr *ValidationError
	err := settings.SetDefaultUserCutPercent(ctx, &bad)
	require.ErrorAs(t, err, &validationErr)
}

func TestSettingsService_SetDefaultGuildCutPercent_Validation(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(standardRate(), bonusRate())

	var validationErr *ValidationError
	err := settings.SetDefaultGuildCutPercent(ctx, -1)
	require.ErrorAs(t, err, &validationErr)

	require.NoError(t, settings.SetDefaultGuildCutPercent(ctx, 30))
	assert.Equal(t, int64(30), settings.DefaultGuildCutPercent())
}

func TestSettingsService_SetRegion(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(standardRate(), bonusRate())

	var validationErr *ValidationError
	err := settings.SetRegion(ctx, "   ")
	require.ErrorAs(t, err, &validationErr)

	require.NoError(t, settings.SetRegion(ctx, "arrakis-south"))
	assert.Equal(t, "arrakis-south", settings.Region())
}

func TestSettingsService_SetRoleIDs(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(standardRate(), bonusRate())

	require.NoError(t, settings.SetRoleIDs(ctx, RoleLevelAdmin, []int64{1, 2}))
	require.NoError(t, settings.SetRoleIDs(ctx, RoleLevelOfficer, []int64{3}))
	require.NoError(t, settings.SetRoleIDs(ctx, RoleLevelUser, nil))

	assert.Equal(t, []int64{1, 2}, settings.AdminRoleIDs())
	assert.Equal(t, []int64{3}, settings.OfficerRoleIDs())
	assert.Empty(t, settings.UserRoleIDs())

	var validationErr *ValidationError
	err := settings.SetRoleIDs(ctx, RoleLevel("bogus"), []int64{9})
	require.ErrorAs(t, err, &validationErr)
}

func TestSettingsService_SetBonusActive_PersistsInBackground(t *testing.T) {
	ctx := context.Background()

	persisted := make(chan string, 1)
	repo := new(MockSettingsRepository)
	repo.On("Upsert", mock.Anything, "bonus_active", "true", mock.Anything).
		Run(func(args mock.Arguments) { persisted <- args.String(2) }).
		Return(nil)

	cfg := &config.Config{
		SandPerMelange:      standardRate(),
		BonusSandPerMelange: bonusRate(),
	}
	settings := NewSettingsService(repo, cfg)

	require.NoError(t, settings.SetBonusActive(ctx, true))

	// The in-memory flip is immediate; the write lands asynchronously
	assert.True(t, settings.BonusActive())
	assert.Equal(t, "true", <-persisted)
}
