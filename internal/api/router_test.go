package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ffclash/internal/app/service"
	"ffclash/internal/common/security"
	"ffclash/internal/domain/model"
	"ffclash/internal/platform/config"
	"ffclash/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	handler http.Handler
	store   *testutil.Store
	auth    *service.AuthService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:          "router-test-secret",
		JWTExpirationHours: 1,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		AuthRateLimit:      1000,
	}
	config.AppConfig = cfg
	security.InitJWT()

	store := testutil.NewStore()
	notifications := service.NewNotificationService(&testutil.RecordingQueue{})
	balance := service.NewBalanceService(store.Users(), store.Ledger(), store)
	settings := service.NewSettingService(store.Settings(), nil)
	auth := service.NewAuthService(store.Users(), store.Admins())
	tournaments := service.NewTournamentService(store.Tournaments(), store.Participants(), store.Users(), balance, store)

	h := NewRouter(cfg, Services{
		Auth:          auth,
		PasswordReset: service.NewPasswordResetService(store.Users(), store.ResetTokens(), store, notifications, "http://localhost:5173"),
		User:          service.NewUserService(store.Users(), store.UIDLogs(), store),
		Balance:       balance,
		Tournament:    tournaments,
		Request: service.NewRequestService(store.BalanceRequests(), store.WithdrawRequests(), store.Users(),
			balance, settings, notifications, store),
		Wallet:    service.NewWalletService(store.Wallets()),
		Setting:   settings,
		Dashboard: service.NewDashboardService(store.Tournaments()),
	})
	return &testAPI{handler: h, store: store, auth: auth}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func (a *testAPI) register(t *testing.T, username, uid string) (string, string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":      username,
		"email":         username + "@example.com",
		"password":      "secret123",
		"free_fire_uid": uid,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	decodeBody(t, rec, &res)
	return res.User.ID, res.Token
}

func (a *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	_, err := a.auth.EnsureAdmin(context.Background(), "root", "root@example.com", "supersecret")
	require.NoError(t, err)
	rec := a.do(t, http.MethodPost, "/api/admin/auth/login", "", map[string]string{"username": "root", "password": "supersecret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &res)
	return res.Token
}

func balanceOf(t *testing.T, a *testAPI, token string) decimal.Decimal {
	t.Helper()
	rec := a.do(t, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user model.User
	decodeBody(t, rec, &user)
	return user.Balance
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestUserRoutesRequireUserToken(t *testing.T) {
	a := newTestAPI(t)
	userID, userToken := a.register(t, "alice", "123456789")
	adminToken := a.adminToken(t)

	rec := a.do(t, http.MethodGet, "/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/user/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/user/profile", adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token type")

	rec = a.do(t, http.MethodGet, "/api/admin/users", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/user/profile", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hashed_password")
	var profile model.User
	decodeBody(t, rec, &profile)
	assert.Equal(t, userID, profile.ID)
}

func TestTokenForDeletedSubjectRejected(t *testing.T) {
	a := newTestAPI(t)
	token, err := security.GenerateToken("ghost", model.TokenTypeUser)
	require.NoError(t, err)

	rec := a.do(t, http.MethodGet, "/api/user/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"user not found"}`, rec.Body.String())
}

func TestRegisterErrors(t *testing.T) {
	a := newTestAPI(t)
	a.register(t, "alice", "123456789")

	rec := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "email": "bob@example.com", "password": "secret123", "free_fire_uid": "12345",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"validation failed","details":["free_fire_uid must be exactly 9 digits"]}`, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret123", "free_fire_uid": "987654321",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"message":"username already taken"}`, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username_or_email": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"invalid credentials"}`, rec.Body.String())
}

func TestTournamentJoinOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	admin := a.adminToken(t)
	_, alice := a.register(t, "alice", "111111111")
	_, bob := a.register(t, "bob", "222222222")

	rec := a.do(t, http.MethodPost, "/api/admin/tournaments", admin, map[string]interface{}{
		"title":       "Solo Showdown",
		"game_type":   "battle_royale",
		"max_players": 1,
		"entry_fee":   0,
		"start_time":  time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tournament model.Tournament
	decodeBody(t, rec, &tournament)

	rec = a.do(t, http.MethodGet, "/api/tournaments", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var open []model.Tournament
	decodeBody(t, rec, &open)
	require.Len(t, open, 1)

	path := "/api/tournaments/" + tournament.ID + "/join"
	rec = a.do(t, http.MethodPost, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, path, alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, path, alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"tournament is full"}`, rec.Body.String())

	rec = a.do(t, http.MethodPost, path, bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, a.store.Tournament(tournament.ID).CurrentPlayers)

	rec = a.do(t, http.MethodGet, "/api/admin/tournaments/"+tournament.ID+"/participants", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var participants []model.TournamentParticipant
	decodeBody(t, rec, &participants)
	require.Len(t, participants, 1)
	assert.Equal(t, "alice", *participants[0].Username)

	rec = a.do(t, http.MethodGet, "/api/user/tournaments", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), tournament.ID)

	rec = a.do(t, http.MethodGet, "/api/tournaments/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateJoinOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	_, alice := a.register(t, "alice", "111111111")
	a.store.PutTournament(model.Tournament{
		ID: "t1", Title: "Cup", Slug: "cup", GameType: model.GameClashSquad, TeamFormation: model.Formation4v4,
		MaxPlayers: 8, Status: model.TournamentActive, StartTime: time.Now().Add(time.Hour),
	})

	rec := a.do(t, http.MethodPost, "/api/tournaments/t1/join", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, "/api/tournaments/t1/join", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"already registered for this tournament"}`, rec.Body.String())
}

func TestWalletRequestFlowOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	admin := a.adminToken(t)
	_, alice := a.register(t, "alice", "111111111")

	rec := a.do(t, http.MethodPost, "/api/user/balance/request", alice, map[string]interface{}{
		"amount": 50, "payment_method": "bkash", "sender_wallet": "01712345678", "transaction_id": "ABC123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var br model.BalanceRequest
	decodeBody(t, rec, &br)

	rec = a.do(t, http.MethodGet, "/api/admin/pending-requests-count", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"balance_requests":1,"withdraw_requests":0,"total":1,"count":1}`, rec.Body.String())

	rec = a.do(t, http.MethodPut, "/api/admin/balance-requests/"+br.ID+"/status", admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decimal.NewFromInt(50).Equal(balanceOf(t, a, alice)))

	rec = a.do(t, http.MethodPut, "/api/admin/balance-requests/"+br.ID+"/status", admin, map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/user/withdraw/request", alice, map[string]interface{}{
		"amount": 30, "payment_method": "nagad", "receiver_wallet": "01812345678",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var wr model.WithdrawRequest
	decodeBody(t, rec, &wr)

	rec = a.do(t, http.MethodPut, "/api/admin/withdraw-requests/"+wr.ID+"/status", admin, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decimal.NewFromInt(20).Equal(balanceOf(t, a, alice)))

	rec = a.do(t, http.MethodGet, "/api/admin/withdraw-requests?status=completed", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), wr.ID)

	rec = a.do(t, http.MethodGet, "/api/user/transactions", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txs model.UserTransactions
	decodeBody(t, rec, &txs)
	assert.Len(t, txs.BalanceRequests, 1)
	assert.Len(t, txs.WithdrawRequests, 1)

	rec = a.do(t, http.MethodGet, "/api/user/ledger", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ledger []model.LedgerEntry
	decodeBody(t, rec, &ledger)
	assert.Len(t, ledger, 2)
}

func TestAdminUserManagementOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	admin := a.adminToken(t)
	aliceID, alice := a.register(t, "alice", "111111111")

	rec := a.do(t, http.MethodPut, "/api/admin/users/"+aliceID+"/balance", admin, map[string]interface{}{"amount": 75, "operation": "set"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decimal.NewFromInt(75).Equal(balanceOf(t, a, alice)))

	rec = a.do(t, http.MethodPut, "/api/admin/users/"+aliceID+"/balance", admin, map[string]interface{}{"amount": 100, "operation": "subtract"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"insufficient balance"}`, rec.Body.String())

	// a set without an amount must not zero the balance
	rec = a.do(t, http.MethodPut, "/api/admin/users/"+aliceID+"/balance", admin, map[string]interface{}{"operation": "set"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "amount is required")
	rec = a.do(t, http.MethodPut, "/api/admin/users/"+aliceID+"/balance", admin, map[string]interface{}{"amount": 1000000000, "operation": "set"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, decimal.NewFromInt(75).Equal(balanceOf(t, a, alice)))

	rec = a.do(t, http.MethodPut, "/api/admin/users/"+aliceID+"/uid", admin, map[string]string{"free_fire_uid": "999999999", "change_reason": "support ticket"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/admin/users/"+aliceID+"/uid-logs", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []model.UIDChangeLog
	decodeBody(t, rec, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "111111111", *logs[0].OldUID)
	assert.NotNil(t, logs[0].ChangedBy)

	rec = a.do(t, http.MethodGet, "/api/admin/dashboard/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_users":1`)
}

func TestWalletsAndSettingsOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	admin := a.adminToken(t)

	rec := a.do(t, http.MethodPost, "/api/admin/wallets", admin, map[string]string{"payment_method": "bkash", "wallet_number": "01711111111"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, "/api/admin/wallets", admin, map[string]string{"payment_method": "bkash", "wallet_number": "0171"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, path := range []string{"/api/wallets/active", "/api/admin/wallets/active"} {
		rec = a.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "01711111111", path)
	}

	rec = a.do(t, http.MethodPost, "/api/admin/settings", admin, map[string]string{"key": model.SettingSocialFacebook, "value": "https://fb.com/ffclash"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPut, "/api/admin/settings/"+model.SettingSocialFacebook, admin, map[string]string{"value": "https://fb.com/ffclash.bd"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/admin/settings/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"setting not found"}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/social-media", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"facebook":"https://fb.com/ffclash.bd","telegram":"","whatsapp":""}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/settings/public", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"balance_add"`))
}

func TestPasswordResetOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	a.register(t, "alice", "111111111")

	rec := a.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"`+service.ForgotPasswordMessage+`"}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/auth/verify-reset-token/bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	a.store.PutResetToken(model.PasswordResetToken{ID: "r1", UserID: "", Token: "known", ExpiresAt: time.Now().Add(time.Hour)})
	rec = a.do(t, http.MethodGet, "/api/auth/verify-reset-token/known", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
