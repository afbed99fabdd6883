package service

import (
	"context"
	"testing"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
	"ffclash/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedSettings(t *testing.T) (*SettingService, *testutil.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := testutil.NewStore()
	return NewSettingService(store.Settings(), client), store, mr
}

func TestLimitsUseDefaultsWhenUnset(t *testing.T) {
	f := newFixture(t)

	limits, err := f.settings.WithdrawLimits(context.Background())
	require.NoError(t, err)
	assert.True(t, dec(20).Equal(limits.Min))
	assert.True(t, dec(1000).Equal(limits.Max))

	f.store.PutSetting(model.SettingMaxWithdraw, "lots")
	limits, err = f.settings.WithdrawLimits(context.Background())
	require.NoError(t, err)
	assert.True(t, dec(1000).Equal(limits.Max), "non numeric value falls back")
}

func TestSettingsCache(t *testing.T) {
	svc, store, mr := newCachedSettings(t)
	ctx := context.Background()
	store.PutSetting(model.SettingMinBalanceAdd, "50")

	limits, err := svc.BalanceAddLimits(ctx)
	require.NoError(t, err)
	assert.True(t, dec(50).Equal(limits.Min))
	assert.True(t, mr.Exists(settingsCacheKey))

	// Served from cache until a write through the service invalidates it.
	store.PutSetting(model.SettingMinBalanceAdd, "60")
	limits, err = svc.BalanceAddLimits(ctx)
	require.NoError(t, err)
	assert.True(t, dec(50).Equal(limits.Min))

	_, err = svc.Update(ctx, model.SettingMinBalanceAdd, UpdateSettingRequest{Value: "70"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(settingsCacheKey))

	limits, err = svc.BalanceAddLimits(ctx)
	require.NoError(t, err)
	assert.True(t, dec(70).Equal(limits.Min))
}

func TestSettingsCacheOutageFallsBackToRepository(t *testing.T) {
	svc, store, mr := newCachedSettings(t)
	store.PutSetting(model.SettingSocialTelegram, "https://t.me/ffclash")
	mr.Close()

	links, err := svc.SocialLinks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/ffclash", links.Telegram)
}

func TestSettingCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.settings.Create(ctx, CreateSettingRequest{Key: " maintenance ", Value: "off"})
	require.NoError(t, err)
	assert.Equal(t, "maintenance", created.Key)

	_, err = f.settings.Create(ctx, CreateSettingRequest{Key: "maintenance", Value: "on"})
	assert.ErrorIs(t, err, common.ErrConflict)
	_, err = f.settings.Create(ctx, CreateSettingRequest{Value: "on"})
	assert.ErrorIs(t, err, common.ErrValidation)

	desc := "site maintenance flag"
	updated, err := f.settings.Update(ctx, "maintenance", UpdateSettingRequest{Value: "on", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "on", updated.Value)
	assert.Equal(t, desc, *updated.Description)

	got, err := f.settings.Get(ctx, "maintenance")
	require.NoError(t, err)
	assert.Equal(t, "on", got.Value)

	_, err = f.settings.Get(ctx, "missing")
	assert.EqualError(t, err, "setting not found")
	_, err = f.settings.Update(ctx, "missing", UpdateSettingRequest{Value: "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutSetting(model.SettingMinWithdraw, "100")

	n, err := f.settings.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(model.DefaultSettings)-1, n)

	n, err = f.settings.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	public, err := f.settings.Public(ctx)
	require.NoError(t, err)
	assert.True(t, dec(100).Equal(public.Withdraw.Min), "existing value kept")
	assert.True(t, dec(1000).Equal(public.BalanceAdd.Max))
}

func TestWalletUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.wallets.Upsert(ctx, UpsertWalletRequest{PaymentMethod: model.PaymentBkash, WalletNumber: "01711111111"})
	require.NoError(t, err)
	assert.True(t, w.IsActive)

	inactive := false
	_, err = f.wallets.Upsert(ctx, UpsertWalletRequest{PaymentMethod: model.PaymentNagad, WalletNumber: "01822222222", IsActive: &inactive})
	require.NoError(t, err)
	_, err = f.wallets.Upsert(ctx, UpsertWalletRequest{PaymentMethod: model.PaymentBkash, WalletNumber: "01733333333"})
	require.NoError(t, err)

	all, err := f.wallets.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.wallets.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "01733333333", active[0].WalletNumber)

	_, err = f.wallets.Upsert(ctx, UpsertWalletRequest{PaymentMethod: model.PaymentBkash, WalletNumber: "123"})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = f.wallets.Upsert(ctx, UpsertWalletRequest{PaymentMethod: "upay", WalletNumber: "01733333333"})
	assert.ErrorIs(t, err, common.ErrValidation)
}
