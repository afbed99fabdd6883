package handler

import (
	"net/http"

	"ffclash/internal/app/service"
	"ffclash/internal/common"

	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	tournamentService *service.TournamentService
	// requireUser guards the join route.
	requireUser func(http.Handler) http.Handler
}

func NewTournamentHandler(tournamentService *service.TournamentService, requireUser func(http.Handler) http.Handler) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService, requireUser: requireUser}
}

func (h *TournamentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.With(h.requireUser).Post("/{id}/join", h.join)
}

func (h *TournamentHandler) list(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListOpen(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tournaments)
}

func (h *TournamentHandler) get(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tournament)
}

func (h *TournamentHandler) join(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	resp, err := h.tournamentService.Join(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}
