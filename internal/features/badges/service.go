// Package badges: service.go пересчитывает бейджи и сообщает о новых.
package badges

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/devflow-bot/internal/common"
)

// Store отдаёт критерии и хранит бейджи. Реализуется Repository.
type Store interface {
	Criteria(ctx context.Context, userID int64) ([]Criterion, error)
	GetTally(ctx context.Context, userID int64) (Tally, error)
	SaveTally(ctx context.Context, userID int64, t Tally) error
	ActiveUsers(ctx context.Context) ([]int64, error)
}

// Service управляет бейджами.
type Service struct {
	store      Store
	thresholds ThresholdTable
}

// NewService создаёт сервис бейджей с неизменяемой таблицей порогов.
func NewService(store Store, thresholds ThresholdTable) *Service {
	return &Service{store: store, thresholds: thresholds}
}

// Thresholds возвращает таблицу порогов.
func (s *Service) Thresholds() ThresholdTable {
	return s.thresholds
}

// Progress содержит текущие счётчики и бейджи пользователя.
type Progress struct {
	Criteria []Criterion
	Tally    Tally
}

// Progress считает бейджи «на лету», ничего не сохраняя.
func (s *Service) Progress(ctx context.Context, userID int64) (*Progress, error) {
	criteria, err := s.store.Criteria(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Progress{
		Criteria: criteria,
		Tally:    ComputeTally(criteria, s.thresholds),
	}, nil
}

// Summary возвращает строку с бейджами для профиля участника.
func (s *Service) Summary(ctx context.Context, userID int64) (string, error) {
	p, err := s.Progress(ctx, userID)
	if err != nil {
		return "", err
	}
	return FormatTally(p.Tally), nil
}

// Evaluate пересчитывает и сохраняет бейджи пользователя.
// Возвращает новый и предыдущий подсчёт.
func (s *Service) Evaluate(ctx context.Context, userID int64) (current, previous Tally, err error) {
	previous, err = s.store.GetTally(ctx, userID)
	if err != nil {
		return Tally{}, Tally{}, err
	}

	progress, err := s.Progress(ctx, userID)
	if err != nil {
		return Tally{}, Tally{}, err
	}
	current = progress.Tally

	if current != previous {
		if err := s.store.SaveTally(ctx, userID, current); err != nil {
			return Tally{}, Tally{}, err
		}
	}
	return current, previous, nil
}

// RecomputeStats подводит итоги массового пересчёта.
type RecomputeStats struct {
	Users    int // Сколько пользователей обработано
	Upgraded int // У скольких прибавились бейджи
	Failed   int // Сколько пересчётов упало
}

// RecomputeAll пересчитывает бейджи всех активных пользователей.
// Тем, у кого прибавились бейджи, отправляет уведомление через notify (если не nil).
// Ошибка одного пользователя не останавливает остальных.
func (s *Service) RecomputeAll(ctx context.Context, notify func(userID int64, text string)) (RecomputeStats, error) {
	users, err := s.store.ActiveUsers(ctx)
	if err != nil {
		return RecomputeStats{}, err
	}

	var stats RecomputeStats
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Users++

		current, previous, err := s.Evaluate(ctx, userID)
		if err != nil {
			stats.Failed++
			log.WithError(err).WithField("user_id", userID).Error("Ошибка пересчёта бейджей")
			continue
		}

		gained := current.Gained(previous)
		if gained.Total() == 0 {
			continue
		}
		stats.Upgraded++
		if notify != nil {
			notify(userID, FormatGained(gained, current))
		}
	}

	log.WithFields(log.Fields{
		"users":    stats.Users,
		"upgraded": stats.Upgraded,
		"failed":   stats.Failed,
	}).Info("Пересчёт бейджей завершён")

	return stats, nil
}

// FormatGained создаёт текст уведомления о новых бейджах.
// Пример: "🏅 New badges: 1 Gold, 2 Bronze\nYou now have 1 Gold · 0 Silver · 3 Bronze"
func FormatGained(gained, current Tally) string {
	var parts []string
	for _, tier := range Tiers {
		if n := gained.Get(tier); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, common.Title(string(tier))))
		}
	}
	return fmt.Sprintf("🏅 New badges: %s\nYou now have %s",
		strings.Join(parts, ", "), FormatTally(current))
}

// FormatTally собирает краткую строку «1 Gold · 0 Silver · 3 Bronze».
func FormatTally(t Tally) string {
	parts := make([]string, 0, len(Tiers))
	for _, tier := range Tiers {
		parts = append(parts, fmt.Sprintf("%d %s", t.Get(tier), common.Title(string(tier))))
	}
	return strings.Join(parts, " · ")
}
