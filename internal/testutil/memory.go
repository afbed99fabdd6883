// Package testutil provides in-memory repositories for service and handler tests.
package testutil

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"

	"github.com/shopspring/decimal"
)

type state struct {
	users        map[string]model.User
	admins       map[string]model.Admin
	tournaments  map[string]model.Tournament
	participants map[string]model.TournamentParticipant
	balanceReqs  map[string]model.BalanceRequest
	withdrawReqs map[string]model.WithdrawRequest
	wallets      map[model.PaymentMethod]model.AdminWallet
	settings     map[string]model.SystemSetting
	uidLogs      []model.UIDChangeLog
	resetTokens  map[string]model.PasswordResetToken
	ledger       []model.LedgerEntry
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s state) clone() state {
	return state{
		users:        cloneMap(s.users),
		admins:       cloneMap(s.admins),
		tournaments:  cloneMap(s.tournaments),
		participants: cloneMap(s.participants),
		balanceReqs:  cloneMap(s.balanceReqs),
		withdrawReqs: cloneMap(s.withdrawReqs),
		wallets:      cloneMap(s.wallets),
		settings:     cloneMap(s.settings),
		uidLogs:      append([]model.UIDChangeLog(nil), s.uidLogs...),
		resetTokens:  cloneMap(s.resetTokens),
		ledger:       append([]model.LedgerEntry(nil), s.ledger...),
	}
}

// Store holds every table in memory. WithinTx restores a snapshot when fn fails,
// which mirrors a rolled back transaction.
type Store struct {
	mu sync.Mutex
	st state
}

func NewStore() *Store {
	return &Store{st: state{
		users:        map[string]model.User{},
		admins:       map[string]model.Admin{},
		tournaments:  map[string]model.Tournament{},
		participants: map[string]model.TournamentParticipant{},
		balanceReqs:  map[string]model.BalanceRequest{},
		withdrawReqs: map[string]model.WithdrawRequest{},
		wallets:      map[model.PaymentMethod]model.AdminWallet{},
		settings:     map[string]model.SystemSetting{},
		resetTokens:  map[string]model.PasswordResetToken{},
	}}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Users() repository.UserRepository                       { return userRepo{s} }
func (s *Store) Admins() repository.AdminRepository                     { return adminRepo{s} }
func (s *Store) Tournaments() repository.TournamentRepository           { return tournamentRepo{s} }
func (s *Store) Participants() repository.ParticipantRepository         { return participantRepo{s} }
func (s *Store) BalanceRequests() repository.BalanceRequestRepository   { return balanceReqRepo{s} }
func (s *Store) WithdrawRequests() repository.WithdrawRequestRepository { return withdrawReqRepo{s} }
func (s *Store) Wallets() repository.AdminWalletRepository              { return walletRepo{s} }
func (s *Store) Settings() repository.SettingRepository                 { return settingRepo{s} }
func (s *Store) UIDLogs() repository.UIDChangeLogRepository             { return uidLogRepo{s} }
func (s *Store) ResetTokens() repository.PasswordResetTokenRepository   { return resetTokenRepo{s} }
func (s *Store) Ledger() repository.LedgerRepository                    { return ledgerRepo{s} }

// Seed helpers.

func (s *Store) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.st.users[u.ID] = u
}

func (s *Store) User(id string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.users[id]
}

func (s *Store) PutTournament(t model.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.tournaments[t.ID] = t
}

func (s *Store) Tournament(id string) model.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.tournaments[id]
}

func (s *Store) PutBalanceRequest(r model.BalanceRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.balanceReqs[r.ID] = r
}

func (s *Store) PutWithdrawRequest(r model.WithdrawRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.withdrawReqs[r.ID] = r
}

func (s *Store) PutSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.settings[key] = model.SystemSetting{ID: key, Key: key, Value: value}
}

func (s *Store) PutResetToken(t model.PasswordResetToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.resetTokens[t.Token] = t
}

func (s *Store) ResetToken(token string) (model.PasswordResetToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.st.resetTokens[token]
	return t, ok
}

func (s *Store) LedgerEntries() []model.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LedgerEntry(nil), s.st.ledger...)
}

func (s *Store) ParticipantCount(tournamentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.st.participants {
		if p.TournamentID == tournamentID {
			n++
		}
	}
	return n
}

func (s *Store) UIDLogEntries() []model.UIDChangeLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.UIDChangeLog(nil), s.st.uidLogs...)
}

// users

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.users {
		if existing.Username == u.Username || existing.Email == u.Email || existing.FreeFireUID == u.FreeFireUID {
			return common.ErrConflict
		}
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	r.s.st.users[u.ID] = *u
	return nil
}

func (r userRepo) findBy(match func(model.User) bool) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.findBy(func(u model.User) bool { return u.Email == email })
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.findBy(func(u model.User) bool { return u.Username == username })
}

func (r userRepo) FindByFreeFireUID(_ context.Context, uid string) (*model.User, error) {
	return r.findBy(func(u model.User) bool { return u.FreeFireUID == uid })
}

func (r userRepo) FindByID(_ context.Context, _ *sql.Tx, id string) (*model.User, error) {
	return r.findBy(func(u model.User) bool { return u.ID == id })
}

func (r userRepo) List(context.Context) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := []model.User{}
	for _, u := range r.s.st.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r userRepo) UpdateProfile(_ context.Context, _ *sql.Tx, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.st.users[u.ID]
	if !ok {
		return common.ErrNotFound
	}
	for id, other := range r.s.st.users {
		if id != u.ID && (other.Username == u.Username || other.FreeFireUID == u.FreeFireUID) {
			return common.ErrConflict
		}
	}
	current.Username, current.FreeFireUID, current.HashedPassword = u.Username, u.FreeFireUID, u.HashedPassword
	current.UpdatedAt = time.Now()
	r.s.st.users[u.ID] = current
	u.UpdatedAt = current.UpdatedAt
	return nil
}

func (r userRepo) UpdatePassword(_ context.Context, _ *sql.Tx, userID, hashed string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.HashedPassword = hashed
	r.s.st.users[userID] = u
	return nil
}

func (r userRepo) UpdateBalance(_ context.Context, _ *sql.Tx, userID string, amount decimal.Decimal, op model.BalanceOperation) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	switch op {
	case model.BalanceAdd:
		u.Balance = u.Balance.Add(amount)
	case model.BalanceSubtract:
		if u.Balance.LessThan(amount) {
			return nil, common.NewError(common.ErrInsufficientBalance, "insufficient balance")
		}
		u.Balance = u.Balance.Sub(amount)
	case model.BalanceSet:
		u.Balance = amount
	default:
		return nil, common.ErrValidation
	}
	r.s.st.users[userID] = u
	return &u, nil
}

// admins

type adminRepo struct{ s *Store }

func (r adminRepo) FindByID(_ context.Context, id string) (*model.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.st.admins[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &a, nil
}

func (r adminRepo) FindByUsername(_ context.Context, username string) (*model.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.st.admins {
		if a.Username == username {
			found := a
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r adminRepo) Upsert(_ context.Context, a *model.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.st.admins {
		if existing.Username == a.Username {
			a.ID = id
			break
		}
	}
	r.s.st.admins[a.ID] = *a
	return nil
}

// tournaments

type tournamentRepo struct{ s *Store }

func (r tournamentRepo) Create(_ context.Context, t *model.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.tournaments {
		if existing.Slug == t.Slug {
			return common.ErrConflict
		}
	}
	r.s.st.tournaments[t.ID] = *t
	return nil
}

func (r tournamentRepo) Update(_ context.Context, t *model.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.st.tournaments[t.ID]
	if !ok {
		return common.ErrNotFound
	}
	t.CurrentPlayers = current.CurrentPlayers
	r.s.st.tournaments[t.ID] = *t
	return nil
}

func (r tournamentRepo) UpdateStatus(_ context.Context, id string, status model.TournamentStatus) (*model.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.tournaments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	t.Status = status
	r.s.st.tournaments[id] = t
	return &t, nil
}

func (r tournamentRepo) FindByID(_ context.Context, id string) (*model.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.tournaments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &t, nil
}

func (r tournamentRepo) FindByIDForUpdate(ctx context.Context, _ *sql.Tx, id string) (*model.Tournament, error) {
	return r.FindByID(ctx, id)
}

func (r tournamentRepo) IncrementPlayers(_ context.Context, _ *sql.Tx, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.tournaments[id]
	if !ok {
		return common.ErrNotFound
	}
	if t.CurrentPlayers >= t.MaxPlayers {
		return repository.ErrTournamentFull
	}
	t.CurrentPlayers++
	r.s.st.tournaments[id] = t
	return nil
}

func (r tournamentRepo) Delete(_ context.Context, _ *sql.Tx, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.tournaments[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.st.tournaments, id)
	return nil
}

func (r tournamentRepo) filter(match func(model.Tournament) bool, less func(a, b model.Tournament) bool) []model.Tournament {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Tournament{}
	for _, t := range r.s.st.tournaments {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (r tournamentRepo) ListOpen(context.Context) ([]model.Tournament, error) {
	return r.filter(
		func(t model.Tournament) bool { return t.Status.Joinable() },
		func(a, b model.Tournament) bool { return a.StartTime.Before(b.StartTime) },
	), nil
}

func (r tournamentRepo) ListAll(context.Context) ([]model.Tournament, error) {
	return r.filter(
		func(model.Tournament) bool { return true },
		func(a, b model.Tournament) bool { return a.CreatedAt.After(b.CreatedAt) },
	), nil
}

func (r tournamentRepo) ListJoinedByUser(_ context.Context, userID string) ([]model.Tournament, error) {
	r.s.mu.Lock()
	joined := map[string]bool{}
	for _, p := range r.s.st.participants {
		if p.UserID == userID {
			joined[p.TournamentID] = true
		}
	}
	r.s.mu.Unlock()
	return r.filter(
		func(t model.Tournament) bool { return joined[t.ID] },
		func(a, b model.Tournament) bool { return a.StartTime.After(b.StartTime) },
	), nil
}

func (r tournamentRepo) DashboardStats(context.Context) (*model.DashboardStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &model.DashboardStats{TotalUsers: len(r.s.st.users), TotalRevenue: decimal.Zero}
	for _, t := range r.s.st.tournaments {
		if t.Status.Joinable() {
			stats.ActiveTournaments++
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(t.EntryFee.Mul(decimal.NewFromInt(int64(t.CurrentPlayers))))
	}
	for _, br := range r.s.st.balanceReqs {
		if br.Status == model.RequestPending {
			stats.PendingRequests++
		}
	}
	for _, wr := range r.s.st.withdrawReqs {
		if wr.Status == model.RequestPending {
			stats.PendingRequests++
		}
	}
	return stats, nil
}

// participants

type participantRepo struct{ s *Store }

func (r participantRepo) Create(_ context.Context, _ *sql.Tx, p *model.TournamentParticipant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.participants {
		if existing.TournamentID == p.TournamentID && existing.UserID == p.UserID {
			return repository.ErrAlreadyJoined
		}
	}
	p.JoinedAt = time.Now()
	r.s.st.participants[p.ID] = *p
	return nil
}

func (r participantRepo) Exists(_ context.Context, _ *sql.Tx, tournamentID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st.participants {
		if p.TournamentID == tournamentID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r participantRepo) ListByTournament(_ context.Context, tournamentID string) ([]model.TournamentParticipant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.TournamentParticipant{}
	for _, p := range r.s.st.participants {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r participantRepo) DeleteByTournament(_ context.Context, _ *sql.Tx, tournamentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.st.participants {
		if p.TournamentID == tournamentID {
			delete(r.s.st.participants, id)
		}
	}
	return nil
}

// balance requests

type balanceReqRepo struct{ s *Store }

func (r balanceReqRepo) Create(_ context.Context, br *model.BalanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	br.CreatedAt, br.UpdatedAt = time.Now(), time.Now()
	r.s.st.balanceReqs[br.ID] = *br
	return nil
}

func (r balanceReqRepo) FindByIDForUpdate(_ context.Context, _ *sql.Tx, id string) (*model.BalanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	br, ok := r.s.st.balanceReqs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &br, nil
}

func (r balanceReqRepo) UpdateStatus(_ context.Context, _ *sql.Tx, id string, status model.RequestStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	br, ok := r.s.st.balanceReqs[id]
	if !ok {
		return common.ErrNotFound
	}
	br.Status = status
	r.s.st.balanceReqs[id] = br
	return nil
}

func (r balanceReqRepo) collect(match func(model.BalanceRequest) bool) []model.BalanceRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.BalanceRequest{}
	for _, br := range r.s.st.balanceReqs {
		if match(br) {
			out = append(out, br)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r balanceReqRepo) List(_ context.Context, status model.RequestStatus) ([]model.BalanceRequest, error) {
	return r.collect(func(br model.BalanceRequest) bool { return status == "" || br.Status == status }), nil
}

func (r balanceReqRepo) ListByUser(_ context.Context, userID string) ([]model.BalanceRequest, error) {
	return r.collect(func(br model.BalanceRequest) bool { return br.UserID == userID }), nil
}

func (r balanceReqRepo) CountPending(ctx context.Context) (int, error) {
	list, _ := r.List(ctx, model.RequestPending)
	return len(list), nil
}

// withdraw requests

type withdrawReqRepo struct{ s *Store }

func (r withdrawReqRepo) Create(_ context.Context, wr *model.WithdrawRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wr.CreatedAt, wr.UpdatedAt = time.Now(), time.Now()
	r.s.st.withdrawReqs[wr.ID] = *wr
	return nil
}

func (r withdrawReqRepo) FindByIDForUpdate(_ context.Context, _ *sql.Tx, id string) (*model.WithdrawRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wr, ok := r.s.st.withdrawReqs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &wr, nil
}

func (r withdrawReqRepo) UpdateStatus(_ context.Context, _ *sql.Tx, id string, status model.RequestStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wr, ok := r.s.st.withdrawReqs[id]
	if !ok {
		return common.ErrNotFound
	}
	wr.Status = status
	r.s.st.withdrawReqs[id] = wr
	return nil
}

func (r withdrawReqRepo) collect(match func(model.WithdrawRequest) bool) []model.WithdrawRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.WithdrawRequest{}
	for _, wr := range r.s.st.withdrawReqs {
		if match(wr) {
			out = append(out, wr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r withdrawReqRepo) List(_ context.Context, status model.RequestStatus) ([]model.WithdrawRequest, error) {
	return r.collect(func(wr model.WithdrawRequest) bool { return status == "" || wr.Status == status }), nil
}

func (r withdrawReqRepo) ListByUser(_ context.Context, userID string) ([]model.WithdrawRequest, error) {
	return r.collect(func(wr model.WithdrawRequest) bool { return wr.UserID == userID }), nil
}

func (r withdrawReqRepo) CountPending(ctx context.Context) (int, error) {
	list, _ := r.List(ctx, model.RequestPending)
	return len(list), nil
}

// wallets

type walletRepo struct{ s *Store }

func (r walletRepo) List(context.Context) ([]model.AdminWallet, error) {
	return r.collect(func(model.AdminWallet) bool { return true }), nil
}

func (r walletRepo) ListActive(context.Context) ([]model.AdminWallet, error) {
	return r.collect(func(w model.AdminWallet) bool { return w.IsActive }), nil
}

func (r walletRepo) collect(match func(model.AdminWallet) bool) []model.AdminWallet {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.AdminWallet{}
	for _, w := range r.s.st.wallets {
		if match(w) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentMethod < out[j].PaymentMethod })
	return out
}

func (r walletRepo) Upsert(_ context.Context, w *model.AdminWallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.st.wallets[w.PaymentMethod]; ok {
		w.ID = existing.ID
		w.CreatedAt = existing.CreatedAt
	}
	r.s.st.wallets[w.PaymentMethod] = *w
	return nil
}

// settings

type settingRepo struct{ s *Store }

func (r settingRepo) List(context.Context) ([]model.SystemSetting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.SystemSetting{}
	for _, st := range r.s.st.settings {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r settingRepo) Get(_ context.Context, key string) (*model.SystemSetting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.st.settings[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &st, nil
}

func (r settingRepo) Create(_ context.Context, st *model.SystemSetting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.settings[st.Key]; ok {
		return common.ErrConflict
	}
	r.s.st.settings[st.Key] = *st
	return nil
}

func (r settingRepo) Update(_ context.Context, st *model.SystemSetting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.st.settings[st.Key]
	if !ok {
		return common.ErrNotFound
	}
	current.Value = st.Value
	if st.Description != nil {
		current.Description = st.Description
	}
	r.s.st.settings[st.Key] = current
	*st = current
	return nil
}

func (r settingRepo) InsertIfMissing(_ context.Context, st *model.SystemSetting) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.settings[st.Key]; ok {
		return false, nil
	}
	r.s.st.settings[st.Key] = *st
	return true, nil
}

// uid logs

type uidLogRepo struct{ s *Store }

func (r uidLogRepo) Create(_ context.Context, _ *sql.Tx, l *model.UIDChangeLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.CreatedAt = time.Now()
	r.s.st.uidLogs = append(r.s.st.uidLogs, *l)
	return nil
}

func (r uidLogRepo) ListByUser(_ context.Context, userID string) ([]model.UIDChangeLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.UIDChangeLog{}
	for i := len(r.s.st.uidLogs) - 1; i >= 0; i-- {
		if r.s.st.uidLogs[i].UserID == userID {
			out = append(out, r.s.st.uidLogs[i])
		}
	}
	return out, nil
}

// reset tokens

type resetTokenRepo struct{ s *Store }

func (r resetTokenRepo) Create(_ context.Context, t *model.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.CreatedAt = time.Now()
	r.s.st.resetTokens[t.Token] = *t
	return nil
}

func (r resetTokenRepo) FindByToken(_ context.Context, _ *sql.Tx, token string) (*model.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.resetTokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &t, nil
}

func (r resetTokenRepo) MarkUsed(_ context.Context, _ *sql.Tx, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key, t := range r.s.st.resetTokens {
		if t.ID == id {
			t.Used = true
			r.s.st.resetTokens[key] = t
		}
	}
	return nil
}

func (r resetTokenRepo) DeleteStale(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for key, t := range r.s.st.resetTokens {
		if t.Used || t.ExpiresAt.Before(now) {
			delete(r.s.st.resetTokens, key)
			n++
		}
	}
	return n, nil
}

// ledger

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) Create(_ context.Context, _ *sql.Tx, e *model.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.CreatedAt = time.Now()
	r.s.st.ledger = append(r.s.st.ledger, *e)
	return nil
}

func (r ledgerRepo) ListByUser(_ context.Context, userID string) ([]model.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.LedgerEntry{}
	for i := len(r.s.st.ledger) - 1; i >= 0; i-- {
		if r.s.st.ledger[i].UserID == userID {
			out = append(out, r.s.st.ledger[i])
		}
	}
	return out, nil
}

// RecordingQueue captures pushed notification jobs.
type RecordingQueue struct {
	mu   sync.Mutex
	Jobs []model.NotificationJob
}

func (q *RecordingQueue) Push(_ context.Context, job model.NotificationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Jobs = append(q.Jobs, job)
	return nil
}

func (q *RecordingQueue) Snapshot() []model.NotificationJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.NotificationJob(nil), q.Jobs...)
}
