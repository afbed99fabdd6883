package service

import (
	"context"
	"testing"

	"ffclash/internal/common"
	"ffclash/internal/common/security"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func decp(v int64) *decimal.Decimal {
	d := dec(v)
	return &d
}

func TestUpdateProfileLogsUIDChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := f.seedUser("u1", "alice", 0)

	user, err := f.users.UpdateProfile(ctx, "u1", UpdateProfileRequest{
		Username:    strp("  alice2 "),
		FreeFireUID: strp("555555555"),
		Password:    strp("newpass1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", user.Username)
	assert.Equal(t, "555555555", f.store.User("u1").FreeFireUID)
	assert.True(t, security.CheckPasswordHash("newpass1", f.store.User("u1").HashedPassword))

	logs, err := f.users.UIDLogs(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, old.FreeFireUID, *logs[0].OldUID)
	assert.Equal(t, "555555555", logs[0].NewUID)
	assert.Nil(t, logs[0].ChangedBy)
	assert.Equal(t, "User self-update", *logs[0].ChangeReason)
}

func TestUpdateProfileWithoutUIDChangeWritesNoLog(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser("u1", "alice", 0)

	_, err := f.users.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{FreeFireUID: strp(u.FreeFireUID)})
	require.NoError(t, err)
	assert.Empty(t, f.store.UIDLogEntries())
}

func TestUpdateProfileConflictsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser("u1", "alice", 0)
	bob := f.seedUser("u2", "bob", 0)

	_, err := f.users.UpdateProfile(ctx, "u1", UpdateProfileRequest{Username: strp("bob")})
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = f.users.UpdateProfile(ctx, "u1", UpdateProfileRequest{FreeFireUID: strp(bob.FreeFireUID)})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.EqualError(t, err, "free fire uid already registered")

	_, err = f.users.UpdateProfile(ctx, "u1", UpdateProfileRequest{FreeFireUID: strp("12345abcd")})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.users.UpdateProfile(ctx, "ghost", UpdateProfileRequest{})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, f.store.UIDLogEntries())
}

func TestAdminChangeUID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser("u1", "alice", 0)

	user, err := f.users.ChangeUID(ctx, "admin-1", "u1", ChangeUIDRequest{FreeFireUID: "222222222", ChangeReason: strp("account recovery")})
	require.NoError(t, err)
	assert.Equal(t, "222222222", user.FreeFireUID)

	logs := f.store.UIDLogEntries()
	require.Len(t, logs, 1)
	assert.Equal(t, "admin-1", *logs[0].ChangedBy)
	assert.Equal(t, "account recovery", *logs[0].ChangeReason)

	_, err = f.users.ChangeUID(ctx, "admin-1", "u1", ChangeUIDRequest{FreeFireUID: "2222"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.users.ChangeUID(ctx, "admin-1", "u1", ChangeUIDRequest{FreeFireUID: "333333333"})
	require.NoError(t, err)
	logs = f.store.UIDLogEntries()
	require.Len(t, logs, 2)
	assert.Equal(t, "Admin update", *logs[1].ChangeReason)
}

func TestAdminBalanceUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser("u1", "alice", 100)

	user, err := f.balance.AdminUpdate(ctx, "u1", UpdateBalanceRequest{Amount: decp(50)})
	require.NoError(t, err)
	assert.True(t, dec(150).Equal(user.Balance), "empty operation adds")

	user, err = f.balance.AdminUpdate(ctx, "u1", UpdateBalanceRequest{Amount: decp(40), Operation: "subtract"})
	require.NoError(t, err)
	assert.True(t, dec(110).Equal(user.Balance))

	_, err = f.balance.AdminUpdate(ctx, "u1", UpdateBalanceRequest{Amount: decp(500), Operation: "subtract"})
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.True(t, dec(110).Equal(f.store.User("u1").Balance))

	user, err = f.balance.AdminUpdate(ctx, "u1", UpdateBalanceRequest{Amount: decp(7), Operation: "set"})
	require.NoError(t, err)
	assert.True(t, dec(7).Equal(user.Balance))

	_, err = f.balance.AdminUpdate(ctx, "u1", UpdateBalanceRequest{Amount: decp(7), Operation: "multiply"})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = f.balance.AdminUpdate(ctx, "u1", UpdateBalanceRequest{Amount: decp(-7), Operation: "add"})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = f.balance.AdminUpdate(ctx, "ghost", UpdateBalanceRequest{Amount: decp(1)})
	assert.ErrorIs(t, err, common.ErrNotFound)

	ledger, err := f.balance.Ledger(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, "set", string(ledger[0].Operation))
}

func TestAdminBalanceUpdateRejectsBadAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser("u1", "alice", 75)

	subCent := decimal.RequireFromString("10.005")
	huge := decimal.New(1, 9)
	tests := []struct {
		name string
		req  UpdateBalanceRequest
		msg  string
	}{
		{"missing amount with set", UpdateBalanceRequest{Operation: "set"}, "amount is required"},
		{"missing amount with subtract", UpdateBalanceRequest{Operation: "subtract"}, "amount is required"},
		{"empty body", UpdateBalanceRequest{}, "amount is required"},
		{"zero add", UpdateBalanceRequest{Amount: decp(0)}, "amount must be greater than 0"},
		{"zero subtract", UpdateBalanceRequest{Amount: decp(0), Operation: "subtract"}, "amount must be greater than 0"},
		{"sub-cent", UpdateBalanceRequest{Amount: &subCent, Operation: "add"}, "amount must have at most 2 decimal places"},
		{"too large", UpdateBalanceRequest{Amount: &huge, Operation: "set"}, "amount must be less than 100000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.balance.AdminUpdate(ctx, "u1", tt.req)
			var vErr *common.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, []string{tt.msg}, vErr.Details)
		})
	}
	assert.True(t, dec(75).Equal(f.store.User("u1").Balance))
	assert.Empty(t, f.store.LedgerEntries())

	user, err := f.balance.AdminUpdate(ctx, "u1", UpdateBalanceRequest{Amount: decp(0), Operation: "set"})
	require.NoError(t, err)
	assert.True(t, user.Balance.IsZero(), "set accepts an explicit zero")
}
