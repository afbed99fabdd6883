package main

import (
	"flag"

	"ffclash/internal/platform/config"
	"ffclash/internal/platform/database"
	"ffclash/internal/platform/logger"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	config.Load()
	logger.Configure(config.AppConfig.LogLevel, config.AppConfig.LogFormat)

	if err := database.Migrate(config.AppConfig.DBURL(), *direction); err != nil {
		logger.Fatalf("Migration %s failed: %v", *direction, err)
	}
	logger.Infof("Migrations applied (%s)", *direction)
}
