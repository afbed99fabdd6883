package handler

import (
	"encoding/json"
	"net/http"

	"ffclash/internal/api/middleware"
	"ffclash/internal/common"
	"ffclash/internal/domain/model"
)

// decodeJSON reads the request body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "authentication required")
	}
	return user, ok
}

func currentAdmin(w http.ResponseWriter, r *http.Request) (*model.Admin, bool) {
	admin, ok := middleware.GetAdminFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "authentication required")
	}
	return admin, ok
}
