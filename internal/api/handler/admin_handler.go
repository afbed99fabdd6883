package handler

import (
	"net/http"

	"ffclash/internal/app/service"
	"ffclash/internal/common"

	"github.com/go-chi/chi/v5"
)

// AdminHandler serves /api/admin. Every route sits behind middleware.AdminAuthenticator.
type AdminHandler struct {
	dashboardService  *service.DashboardService
	tournamentService *service.TournamentService
	requestService    *service.RequestService
	userService       *service.UserService
	balanceService    *service.BalanceService
	walletService     *service.WalletService
	settingService    *service.SettingService
}

type AdminServices struct {
	Dashboard  *service.DashboardService
	Tournament *service.TournamentService
	Request    *service.RequestService
	User       *service.UserService
	Balance    *service.BalanceService
	Wallet     *service.WalletService
	Setting    *service.SettingService
}

func NewAdminHandler(s AdminServices) *AdminHandler {
	return &AdminHandler{
		dashboardService:  s.Dashboard,
		tournamentService: s.Tournament,
		requestService:    s.Request,
		userService:       s.User,
		balanceService:    s.Balance,
		walletService:     s.Wallet,
		settingService:    s.Setting,
	}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/stats", h.dashboardStats)

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.listTournaments)
		r.Post("/", h.createTournament)
		r.Put("/{id}", h.updateTournament)
		r.Put("/{id}/status", h.updateTournamentStatus)
		r.Delete("/{id}", h.deleteTournament)
		r.Get("/{id}/participants", h.tournamentParticipants)
	})

	r.Get("/balance-requests", h.listBalanceRequests)
	r.Put("/balance-requests/{id}/status", h.updateBalanceRequestStatus)
	r.Get("/withdraw-requests", h.listWithdrawRequests)
	r.Put("/withdraw-requests/{id}/status", h.updateWithdrawRequestStatus)
	r.Get("/pending-requests-count", h.pendingRequestsCount)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Put("/{id}/balance", h.updateUserBalance)
		r.Put("/{id}/uid", h.changeUserUID)
		r.Get("/{id}/uid-logs", h.userUIDLogs)
	})

	r.Get("/wallets", h.listWallets)
	r.Post("/wallets", h.upsertWallet)

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.listSettings)
		r.Post("/", h.createSetting)
		r.Get("/{key}", h.getSetting)
		r.Put("/{key}", h.updateSetting)
	})
}

func (h *AdminHandler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

// Tournaments

func (h *AdminHandler) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListAll(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tournaments)
}

func (h *AdminHandler) createTournament(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTournamentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tournament, err := h.tournamentService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, tournament)
}

func (h *AdminHandler) updateTournament(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTournamentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tournament, err := h.tournamentService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tournament)
}

func (h *AdminHandler) updateTournamentStatus(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTournamentStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tournament, err := h.tournamentService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tournament)
}

func (h *AdminHandler) deleteTournament(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "tournament deleted"})
}

func (h *AdminHandler) tournamentParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.tournamentService.Participants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, participants)
}

// Requests

func (h *AdminHandler) listBalanceRequests(w http.ResponseWriter, r *http.Request) {
	list, err := h.requestService.ListBalanceRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) listWithdrawRequests(w http.ResponseWriter, r *http.Request) {
	list, err := h.requestService.ListWithdrawRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) pendingRequestsCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.requestService.PendingCount(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, count)
}

func (h *AdminHandler) updateBalanceRequestStatus(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRequestStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	br, err := h.requestService.UpdateBalanceRequestStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, br)
}

func (h *AdminHandler) updateWithdrawRequestStatus(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRequestStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	wr, err := h.requestService.UpdateWithdrawRequestStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, wr)
}

// Users

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) updateUserBalance(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.balanceService.AdminUpdate(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) changeUserUID(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(w, r)
	if !ok {
		return
	}
	var req service.ChangeUIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.userService.ChangeUID(r.Context(), admin.ID, chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) userUIDLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.userService.UIDLogs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, logs)
}

// Wallets

func (h *AdminHandler) listWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.walletService.List(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, wallets)
}

func (h *AdminHandler) upsertWallet(w http.ResponseWriter, r *http.Request) {
	var req service.UpsertWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	wallet, err := h.walletService.Upsert(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, wallet)
}

// Settings

func (h *AdminHandler) listSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingService.List(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) getSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settingService.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, setting)
}

func (h *AdminHandler) createSetting(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	setting, err := h.settingService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, setting)
}

func (h *AdminHandler) updateSetting(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	setting, err := h.settingService.Update(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, setting)
}
