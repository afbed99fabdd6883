package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	APIPort            string `env:"API_PORT" env-default:"8080"`
	JWTSecret          string `env:"JWT_SECRET" env-default:"defaultsecret"`
	JWTExpirationHours int    `env:"JWT_EXPIRATION_HOURS" env-default:"72"`
	PublicBaseURL      string `env:"PUBLIC_BASE_URL" env-default:"http://localhost:5173"`

	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"user"`
	DBPassword string `env:"DB_PASSWORD" env-default:"password"`
	DBName     string `env:"DB_NAME" env-default:"ffclash"`
	DBSslMode  string `env:"DB_SSLMODE" env-default:"disable"`
	DBMaxConns int    `env:"DB_MAX_CONNS" env-default:"25"`

	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	NotificationQueueName string `env:"NOTIFICATION_QUEUE_NAME" env-default:"notification_jobs_queue"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173" env-separator:","`
	AuthRateLimit      int      `env:"AUTH_RATE_LIMIT_PER_MINUTE" env-default:"20"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" env-default:"FF Clash <noreply@ffclash.local>"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatIDs  string `env:"TELEGRAM_CHAT_IDS"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}
	AppConfig = &cfg
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

// DBConnStr is the key/value DSN used by the pgx stdlib driver.
func (c *Config) DBConnStr() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSslMode
}

// DBURL is the URL form golang-migrate expects.
func (c *Config) DBURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSslMode)
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// TelegramChats parses the comma separated chat id list, skipping invalid entries.
func (c *Config) TelegramChats() []int64 {
	var ids []int64
	for _, part := range strings.Split(c.TelegramChatIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Invalid telegram chat id %q: %v", part, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
