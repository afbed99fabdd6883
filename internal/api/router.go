package api

import (
	"net/http"
	"time"

	"ffclash/internal/api/handler"
	"ffclash/internal/api/middleware"
	"ffclash/internal/app/service"
	"ffclash/internal/common/security"
	"ffclash/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth          *service.AuthService
	PasswordReset *service.PasswordResetService
	User          *service.UserService
	Balance       *service.BalanceService
	Tournament    *service.TournamentService
	Request       *service.RequestService
	Wallet        *service.WalletService
	Setting       *service.SettingService
	Dashboard     *service.DashboardService
}

func NewRouter(cfg *config.Config, s Services) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.AccessLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// It will search for a token in "Authorization: Bearer T".
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	requireUser := middleware.UserAuthenticator(s.Auth)
	requireAdmin := middleware.AdminAuthenticator(s.Auth)
	authLimit := httprate.LimitByIP(cfg.AuthRateLimit, time.Minute)

	authHandler := handler.NewAuthHandler(s.Auth, s.PasswordReset)
	publicHandler := handler.NewPublicHandler(s.Wallet, s.Setting)
	tournamentHandler := handler.NewTournamentHandler(s.Tournament, requireUser)
	userHandler := handler.NewUserHandler(s.User, s.Tournament, s.Request, s.Balance)
	adminHandler := handler.NewAdminHandler(handler.AdminServices{
		Dashboard:  s.Dashboard,
		Tournament: s.Tournament,
		Request:    s.Request,
		User:       s.User,
		Balance:    s.Balance,
		Wallet:     s.Wallet,
		Setting:    s.Setting,
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Use(authLimit)
			authHandler.RegisterRoutes(ar)
		})

		api.Route("/tournaments", tournamentHandler.RegisterRoutes)
		api.Group(publicHandler.RegisterRoutes)

		api.Route("/user", func(ur chi.Router) {
			ur.Use(requireUser)
			userHandler.RegisterRoutes(ur)
		})

		api.Route("/admin", func(ar chi.Router) {
			ar.Route("/auth", func(aar chi.Router) {
				aar.Use(authLimit)
				authHandler.RegisterAdminRoutes(aar)
			})
			// Older clients read receiving wallets from here.
			ar.Get("/wallets/active", publicHandler.ActiveWallets)

			ar.Group(func(protected chi.Router) {
				protected.Use(requireAdmin)
				adminHandler.RegisterRoutes(protected)
			})
		})
	})

	return r
}
