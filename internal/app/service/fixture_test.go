package service

import (
	"testing"

	"ffclash/internal/common/security"
	"ffclash/internal/domain/model"
	"ffclash/internal/platform/config"
	"ffclash/internal/testutil"

	"github.com/shopspring/decimal"
)

type fixture struct {
	store         *testutil.Store
	queue         *testutil.RecordingQueue
	notifications *NotificationService
	balance       *BalanceService
	settings      *SettingService
	auth          *AuthService
	users         *UserService
	tournaments   *TournamentService
	requests      *RequestService
	resets        *PasswordResetService
	wallets       *WalletService
	dashboard     *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	config.AppConfig = &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1}
	security.InitJWT()

	store := testutil.NewStore()
	queue := &testutil.RecordingQueue{}
	notifications := NewNotificationService(queue)
	balance := NewBalanceService(store.Users(), store.Ledger(), store)
	settings := NewSettingService(store.Settings(), nil)

	return &fixture{
		store:         store,
		queue:         queue,
		notifications: notifications,
		balance:       balance,
		settings:      settings,
		auth:          NewAuthService(store.Users(), store.Admins()),
		users:         NewUserService(store.Users(), store.UIDLogs(), store),
		tournaments:   NewTournamentService(store.Tournaments(), store.Participants(), store.Users(), balance, store),
		requests: NewRequestService(store.BalanceRequests(), store.WithdrawRequests(), store.Users(),
			balance, settings, notifications, store),
		resets:    NewPasswordResetService(store.Users(), store.ResetTokens(), store, notifications, "https://ffclash.test/"),
		wallets:   NewWalletService(store.Wallets()),
		dashboard: NewDashboardService(store.Tournaments()),
	}
}

func (f *fixture) seedUser(id, username string, balance int64) model.User {
	u := model.User{
		ID:          id,
		Username:    username,
		Email:       username + "@example.com",
		FreeFireUID: uidFor(id),
		Balance:     decimal.NewFromInt(balance),
	}
	f.store.PutUser(u)
	return u
}

// uidFor derives a distinct nine digit uid from a short id.
func uidFor(id string) string {
	uid := []byte("100000000")
	for i := 0; i < len(id) && i < 8; i++ {
		uid[8-i] = '0' + id[i]%10
	}
	return string(uid)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
