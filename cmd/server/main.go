package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ffclash/internal/api"
	"ffclash/internal/app/service"
	"ffclash/internal/app/worker"
	"ffclash/internal/common/security"
	"ffclash/internal/domain/repository"
	"ffclash/internal/platform/config"
	"ffclash/internal/platform/database"
	"ffclash/internal/platform/logger"
	"ffclash/internal/platform/mailer"
	"ffclash/internal/platform/notify"
	"ffclash/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	tx := database.NewTransactor(database.DB)

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	notificationQueue := queue.NewNotificationQueue(queue.RDB, cfg.NotificationQueueName)

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	adminRepo := repository.NewPgAdminRepository(database.DB)
	tournamentRepo := repository.NewPgTournamentRepository(database.DB)
	participantRepo := repository.NewPgParticipantRepository(database.DB)
	balanceReqRepo := repository.NewPgBalanceRequestRepository(database.DB)
	withdrawReqRepo := repository.NewPgWithdrawRequestRepository(database.DB)
	walletRepo := repository.NewPgAdminWalletRepository(database.DB)
	settingRepo := repository.NewPgSettingRepository(database.DB)
	uidLogRepo := repository.NewPgUIDChangeLogRepository(database.DB)
	resetTokenRepo := repository.NewPgPasswordResetTokenRepository(database.DB)
	ledgerRepo := repository.NewPgLedgerRepository(database.DB)

	// 6. Initialize Services
	notificationService := service.NewNotificationService(notificationQueue)
	balanceService := service.NewBalanceService(userRepo, ledgerRepo, tx)
	settingService := service.NewSettingService(settingRepo, queue.RDB)
	authService := service.NewAuthService(userRepo, adminRepo)
	resetService := service.NewPasswordResetService(userRepo, resetTokenRepo, tx, notificationService, cfg.PublicBaseURL)
	services := api.Services{
		Auth:          authService,
		PasswordReset: resetService,
		User:          service.NewUserService(userRepo, uidLogRepo, tx),
		Balance:       balanceService,
		Tournament:    service.NewTournamentService(tournamentRepo, participantRepo, userRepo, balanceService, tx),
		Request: service.NewRequestService(balanceReqRepo, withdrawReqRepo, userRepo,
			balanceService, settingService, notificationService, tx),
		Wallet:    service.NewWalletService(walletRepo),
		Setting:   settingService,
		Dashboard: service.NewDashboardService(tournamentRepo),
	}

	// 7. Initialize Notification Worker (as a goroutine)
	var emailSender worker.EmailSender = mailer.LogMailer{}
	if cfg.SMTPEnabled() {
		smtpMailer, err := mailer.NewSMTPMailer(cfg)
		if err != nil {
			logger.Fatalf("Failed to configure SMTP: %v", err)
		}
		emailSender = smtpMailer
	} else {
		logger.Warnf("SMTP_HOST not set, emails will only be logged")
	}

	var alertSender worker.AlertSender = notify.LogNotifier{}
	if chats := cfg.TelegramChats(); cfg.TelegramBotToken != "" && len(chats) > 0 {
		telegram, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, chats)
		if err != nil {
			logger.Errorf("Telegram unavailable, admin alerts will only be logged: %v", err)
		} else {
			alertSender = telegram
		}
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	notificationWorker := worker.NewNotificationWorker(notificationQueue, emailSender, alertSender)
	go notificationWorker.Start(workerCtx)

	// 8. Initialize Scheduler
	scheduler, err := worker.NewScheduler(resetService, time.Hour)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}
	scheduler.Start()

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(cfg, services)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Infof("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Could not listen on %s: %v", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("Shutting down server...")
	workerCancel() // Signal worker to stop
	if err := scheduler.Shutdown(); err != nil {
		logger.Errorf("Scheduler shutdown failed: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}

	logger.Info("Server and worker stopped gracefully.")
}
