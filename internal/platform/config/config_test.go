package config

import (
	"testing"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnvDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cleanenv.ReadEnv(&cfg))

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 72*time.Hour, cfg.JWTExpiry())
	assert.Equal(t, "notification_jobs_queue", cfg.NotificationQueueName)
	assert.Equal(t, 25, cfg.DBMaxConns)
	assert.False(t, cfg.SMTPEnabled())
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	var cfg Config
	require.NoError(t, cleanenv.ReadEnv(&cfg))

	assert.Equal(t, "9090", cfg.APIPort)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestTelegramChats(t *testing.T) {
	cfg := &Config{TelegramChatIDs: "123, -456,abc,,789"}
	assert.Equal(t, []int64{123, -456, 789}, cfg.TelegramChats())
}

func TestDBURL(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSslMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DBURL())
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", cfg.DBConnStr())
}
