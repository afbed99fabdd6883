package handler

import (
	"net/http"

	"ffclash/internal/app/service"
	"ffclash/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService       *service.UserService
	tournamentService *service.TournamentService
	requestService    *service.RequestService
	balanceService    *service.BalanceService
}

func NewUserHandler(
	userService *service.UserService,
	tournamentService *service.TournamentService,
	requestService *service.RequestService,
	balanceService *service.BalanceService,
) *UserHandler {
	return &UserHandler{
		userService:       userService,
		tournamentService: tournamentService,
		requestService:    requestService,
		balanceService:    balanceService,
	}
}

// RegisterRoutes expects the router to be behind middleware.UserAuthenticator.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.profile)
	r.Put("/profile", h.updateProfile)
	r.Get("/tournaments", h.tournaments)
	r.Get("/transactions", h.transactions)
	r.Get("/ledger", h.ledger)
	r.Post("/balance/request", h.submitBalanceRequest)
	r.Post("/withdraw/request", h.submitWithdrawRequest)
}

func (h *UserHandler) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) tournaments(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	tournaments, err := h.tournamentService.ListJoined(r.Context(), user.ID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tournaments)
}

func (h *UserHandler) transactions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	txs, err := h.requestService.UserTransactions(r.Context(), user.ID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, txs)
}

func (h *UserHandler) ledger(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	entries, err := h.balanceService.Ledger(r.Context(), user.ID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *UserHandler) submitBalanceRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.SubmitBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	br, err := h.requestService.SubmitBalanceRequest(r.Context(), user.ID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, br)
}

func (h *UserHandler) submitWithdrawRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.SubmitWithdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	wr, err := h.requestService.SubmitWithdrawRequest(r.Context(), user.ID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, wr)
}
