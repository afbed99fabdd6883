package middleware

import (
	"context"
	"errors"
	"net/http"

	"ffclash/internal/common"
	"ffclash/internal/common/security"
	"ffclash/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserCtxKey  contextKey = "user"
	AdminCtxKey contextKey = "admin"
)

// SubjectLoader re-reads the token subject so deleted accounts lose access immediately.
type SubjectLoader interface {
	CurrentUser(ctx context.Context, id string) (*model.User, error)
	CurrentAdmin(ctx context.Context, id string) (*model.Admin, error)
}

// subjectFromRequest returns the sub claim of a verified token of the given type.
// It writes the 401 itself and reports false when the request must stop.
func subjectFromRequest(w http.ResponseWriter, r *http.Request, tokenType string) (string, bool) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		if errors.Is(err, jwtauth.ErrNoTokenFound) || token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "authorization token required")
		} else {
			common.RespondWithError(w, http.StatusUnauthorized, "invalid or expired token")
		}
		return "", false
	}

	gotType, err := security.GetTokenTypeFromClaims(claims)
	if err != nil || gotType != tokenType {
		common.RespondWithError(w, http.StatusUnauthorized, "invalid token type")
		return "", false
	}
	subject, err := security.GetSubjectFromClaims(claims)
	if err != nil {
		common.RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
		return "", false
	}
	return subject, true
}

func respondSubjectError(w http.ResponseWriter, r *http.Request, err error, missing string) {
	if errors.Is(err, common.ErrNotFound) {
		common.RespondWithError(w, http.StatusUnauthorized, missing)
		return
	}
	common.RespondWithServiceError(w, r, err)
}

// UserAuthenticator admits user tokens whose subject still exists.
func UserAuthenticator(loader SubjectLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := subjectFromRequest(w, r, model.TokenTypeUser)
			if !ok {
				return
			}
			user, err := loader.CurrentUser(r.Context(), id)
			if err != nil {
				respondSubjectError(w, r, err, "user not found")
				return
			}
			ctx := context.WithValue(r.Context(), UserCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuthenticator admits admin tokens whose subject still exists.
func AdminAuthenticator(loader SubjectLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := subjectFromRequest(w, r, model.TokenTypeAdmin)
			if !ok {
				return
			}
			admin, err := loader.CurrentAdmin(r.Context(), id)
			if err != nil {
				respondSubjectError(w, r, err, "admin not found")
				return
			}
			ctx := context.WithValue(r.Context(), AdminCtxKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Helper to get the authenticated user from context
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok && user != nil
}

func GetAdminFromContext(ctx context.Context) (*model.Admin, bool) {
	admin, ok := ctx.Value(AdminCtxKey).(*model.Admin)
	return admin, ok && admin != nil
}
