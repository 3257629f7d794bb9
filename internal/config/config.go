// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры,
// вне production перед этим подхватывается файл .env (godotenv).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID группы сообщества, в которой задают вопросы
	CommunityChatID int64 `envconfig:"COMMUNITY_CHAT_ID" required:"true"`

	// --- Database ---
	// Полная строка подключения, аналог MONGODB_URL у сайта.
	// Пустая строка не роняет загрузку конфига: подключение само залогирует проблему.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	// Имя базы, перекрывает имя из DATABASE_URL
	DBName     string `envconfig:"DB_NAME" default:"devflow"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	// --- Site ---
	// Базовый адрес сайта DevFlow для ссылок на профиль и вопросы
	SiteURL string `envconfig:"SITE_URL" default:"https://devflow.example.com"`

	// --- Bot runtime ---
	BotMaxInflight          int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Badges ---
	// YAML с порогами бейджей. Если пусто, используется встроенная таблица.
	BadgeThresholdsFile string `envconfig:"BADGE_THRESHOLDS_FILE"`
	BadgeRecomputeSpec  string `envconfig:"BADGE_RECOMPUTE_SPEC" default:"0 * * * *"`
	ActivityLimit       int    `envconfig:"ACTIVITY_LIMIT" default:"10"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureBadgeNotifications bool `envconfig:"FEATURE_BADGE_NOTIFICATIONS" default:"true"`
	FeatureViewTracking       bool `envconfig:"FEATURE_VIEW_TRACKING" default:"true"`
}

// IsProduction сообщает, запущен ли бот в production-окружении.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) Validate() error {
	if c.CommunityChatID == 0 {
		return fmt.Errorf("COMMUNITY_CHAT_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.ActivityLimit <= 0 {
		return fmt.Errorf("ACTIVITY_LIMIT должен быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("некорректные RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW")
	}
	return nil
}

// Load читает .env (кроме production) и переменные окружения, заполняя Config.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// Файла может не быть: это нормально
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
