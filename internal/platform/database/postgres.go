package database

import (
	"context"
	"database/sql"
	"time"

	"ffclash/internal/platform/config"
	"ffclash/internal/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/sirupsen/logrus"
)

var DB *sql.DB

const connectTimeout = 10 * time.Second

// Connect opens the shared pool and exits the process when Postgres is unreachable.
func Connect() {
	cfg := config.AppConfig
	db, err := sql.Open("pgx", cfg.DBConnStr())
	if err != nil {
		logger.Fatalf("Error opening database: %v", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxConns)
	db.SetMaxIdleConns(cfg.DBMaxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("Error connecting to database %s@%s: %v", cfg.DBName, cfg.DBHost, err)
	}

	DB = db
	logger.WithFields(logrus.Fields{"host": cfg.DBHost, "db": cfg.DBName}).Info("connected to PostgreSQL")
}

func Close() {
	if DB == nil {
		return
	}
	if err := DB.Close(); err != nil {
		logger.Errorf("closing database: %v", err)
		return
	}
	logger.Info("database connection closed")
}
