package handler

import (
	"net/http"

	"ffclash/internal/app/service"
	"ffclash/internal/common"

	"github.com/go-chi/chi/v5"
)

// PublicHandler serves unauthenticated lookups clients need before login.
type PublicHandler struct {
	walletService  *service.WalletService
	settingService *service.SettingService
}

func NewPublicHandler(walletService *service.WalletService, settingService *service.SettingService) *PublicHandler {
	return &PublicHandler{walletService: walletService, settingService: settingService}
}

func (h *PublicHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/active", h.ActiveWallets)
	r.Get("/social-media", h.socialMedia)
	r.Get("/settings/public", h.publicSettings)
}

// ActiveWallets is exported so the router can also mount it under /api/admin.
func (h *PublicHandler) ActiveWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.walletService.ListActive(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, wallets)
}

func (h *PublicHandler) socialMedia(w http.ResponseWriter, r *http.Request) {
	links, err := h.settingService.SocialLinks(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, links)
}

func (h *PublicHandler) publicSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingService.Public(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, settings)
}
