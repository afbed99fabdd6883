package main

import (
	"context"
	"flag"
	"time"

	"ffclash/internal/app/service"
	"ffclash/internal/domain/repository"
	"ffclash/internal/platform/config"
	"ffclash/internal/platform/database"
	"ffclash/internal/platform/logger"
)

// admin creates or refreshes the operator account and optionally seeds default settings.
func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password (min 6 characters)")
	seedSettings := flag.Bool("seed-settings", false, "insert default system settings that are missing")
	flag.Parse()

	config.Load()
	logger.Configure(config.AppConfig.LogLevel, config.AppConfig.LogFormat)

	database.Connect()
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *password != "" {
		authService := service.NewAuthService(
			repository.NewPgUserRepository(database.DB),
			repository.NewPgAdminRepository(database.DB),
		)
		admin, err := authService.EnsureAdmin(ctx, *username, *email, *password)
		if err != nil {
			logger.Fatalf("Failed to save admin: %v", err)
		}
		logger.WithField("admin_id", admin.ID).Infof("Admin %s is ready", admin.Username)
	} else if !*seedSettings {
		logger.Fatalf("nothing to do: pass -password to create the admin and/or -seed-settings")
	}

	if *seedSettings {
		// No cache client here; the server drops its cache on its own writes and expires it after five minutes.
		settingService := service.NewSettingService(repository.NewPgSettingRepository(database.DB), nil)
		n, err := settingService.SeedDefaults(ctx)
		if err != nil {
			logger.Fatalf("Failed to seed settings: %v", err)
		}
		logger.Infof("Seeded %d default settings", n)
	}
}
