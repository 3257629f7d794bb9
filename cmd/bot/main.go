// Package main запускает бота сообщества DevFlow.
// Загружает конфигурацию, инициализирует приложение и запускает.
// Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/devflow-bot/internal/app"
	"serotonyl.ru/devflow-bot/internal/config"
)

func main() {
	setupLogging()

	log.Info("=== Бот запускается ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}

	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	}

	// Контекст отменяется по Ctrl+C или docker stop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.WithError(err).Fatal("Бот остановлен с ошибкой")
	}

	log.Info("=== Бот остановлен ===")
}

// run собирает приложение и работает до отмены ctx.
// Пул БД закрывается при любом исходе.
func run(ctx context.Context, cfg *config.Config) error {
	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("не удалось инициализировать приложение: %w", err)
	}
	defer application.DB.Close()

	return serve(ctx, application.Scheduler, application.Bot)
}

type scheduler interface {
	Start(ctx context.Context) error
	Stop()
}

type poller interface {
	Start(ctx context.Context)
}

// serve запускает планировщик и блокируется на приёме апдейтов.
func serve(ctx context.Context, jobs scheduler, bot poller) error {
	if err := jobs.Start(ctx); err != nil {
		return fmt.Errorf("не удалось запустить планировщик: %w", err)
	}
	defer jobs.Stop()

	log.Info("=== Бот готов к работе ===")

	// Блокируется до сигнала и дожидается обработки принятых апдейтов
	bot.Start(ctx)
	return nil
}

// setupLogging настраивает формат логов.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
