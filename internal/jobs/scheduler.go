// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: периодический пересчёт бейджей
// и уведомления о новых.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/devflow-bot/internal/common"
	"serotonyl.ru/devflow-bot/internal/config"
	"serotonyl.ru/devflow-bot/internal/features/badges"
)

// BadgeRecomputer пересчитывает бейджи. Реализуется *badges.Service.
type BadgeRecomputer interface {
	RecomputeAll(ctx context.Context, notify func(userID int64, text string)) (badges.RecomputeStats, error)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	badges   BadgeRecomputer
	sendFunc func(userID int64, text string)
}

// NewScheduler создаёт планировщик в часовом поясе из конфигурации.
func NewScheduler(cfg *config.Config, badges BadgeRecomputer, sendFunc func(userID int64, text string)) *Scheduler {
	loc := common.LoadLocation(cfg.AppTimezone)

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		badges:   badges,
		sendFunc: sendFunc,
	}
}

// Start регистрирует задачи и запускает планировщик.
// Возвращает ошибку, если расписание в конфигурации некорректно.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.BadgeRecomputeSpec, func() { s.recomputeBadges(ctx) }); err != nil {
		return fmt.Errorf("некорректное расписание BADGE_RECOMPUTE_SPEC %q: %w", s.cfg.BadgeRecomputeSpec, err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"timezone": s.cfg.AppTimezone,
		"badges":   s.cfg.BadgeRecomputeSpec,
	}).Info("Планировщик задач запущен")
	return nil
}

// recomputeBadges пересчитывает бейджи всех активных участников.
// Уведомления отправляются только при включённом FEATURE_BADGE_NOTIFICATIONS.
func (s *Scheduler) recomputeBadges(ctx context.Context) {
	log.Debug("[CRON] Пересчёт бейджей")

	var notify func(userID int64, text string)
	if s.cfg.FeatureBadgeNotifications {
		notify = s.sendFunc
	}

	if _, err := s.badges.RecomputeAll(ctx, notify); err != nil {
		log.WithError(err).Error("[CRON] Ошибка пересчёта бейджей")
	}
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
