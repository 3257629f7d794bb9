// Package app инициализирует все компоненты приложения.
// app.go собирает приложение: подключается к БД, применяет миграции, создаёт
// репозитории, сервисы, обработчики, фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/devflow-bot/internal/bot"
	"serotonyl.ru/devflow-bot/internal/bot/filters"
	"serotonyl.ru/devflow-bot/internal/config"
	"serotonyl.ru/devflow-bot/internal/db/postgres"
	"serotonyl.ru/devflow-bot/internal/features/badges"
	"serotonyl.ru/devflow-bot/internal/features/interactions"
	"serotonyl.ru/devflow-bot/internal/features/members"
	"serotonyl.ru/devflow-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *postgres.Connector
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен: компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Пороги бейджей (неполная таблица даёт ошибку конфигурации) ===
	thresholds, err := badges.LoadThresholds(cfg.BadgeThresholdsFile)
	if err != nil {
		return nil, err
	}

	// === 2. База данных ===
	db := postgres.NewConnector(cfg)
	pool, err := db.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := postgres.Migrate(ctx, pool, migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 3. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppLogLevel == "trace"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 4. Репозитории ===
	memberRepo := members.NewRepository(pool)
	interactionRepo := interactions.NewRepository(pool)
	badgeRepo := badges.NewRepository(pool)

	// === 5. Сервисы ===
	memberService := members.NewService(memberRepo)
	interactionService := interactions.NewService(interactionRepo)
	badgeService := badges.NewService(badgeRepo, thresholds)

	// === 6. Обработчики ===
	memberHandler := members.NewHandler(memberService, botAPI, cfg, badgeService.Summary)
	interactionHandler := interactions.NewHandler(interactionService, botAPI, cfg)
	badgeHandler := badges.NewHandler(badgeService, botAPI, cfg)

	// === 7. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.CommunityChatID, memberService, botAPI)

	// === 8. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		memberService,
		memberHandler,
		interactionHandler,
		badgeHandler,
		chatFilter,
	)

	// === 9. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, badgeService, b.SendMessageToUser)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        db,
		BotAPI:    botAPI,
	}, nil
}
