// Package badges: thresholds.go загружает и проверяет таблицу порогов.
package badges

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration означает, что таблица порогов неполная или некорректная.
var ErrConfiguration = errors.New("invalid badge thresholds")

// DefaultThresholds возвращает встроенную таблицу порогов DevFlow.
// Каждый вызов отдаёт новую копию.
func DefaultThresholds() ThresholdTable {
	standard := func() TierThresholds {
		return TierThresholds{TierBronze: 10, TierSilver: 50, TierGold: 100}
	}
	return ThresholdTable{
		CategoryQuestionCount:   standard(),
		CategoryAnswerCount:     standard(),
		CategoryQuestionUpvotes: standard(),
		CategoryAnswerUpvotes:   standard(),
		CategoryTotalViews:      {TierBronze: 1000, TierSilver: 10000, TierGold: 100000},
	}
}

// Validate проверяет, что таблица полная: есть все категории, у каждой все три
// уровня, пороги неотрицательные и лишних ключей нет.
func (t ThresholdTable) Validate() error {
	known := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
		levels, ok := t[c]
		if !ok {
			return fmt.Errorf("%w: category %s is missing", ErrConfiguration, c)
		}
		for _, tier := range Tiers {
			v, ok := levels[tier]
			if !ok {
				return fmt.Errorf("%w: %s has no %s threshold", ErrConfiguration, c, tier)
			}
			if v < 0 {
				return fmt.Errorf("%w: %s %s threshold is negative (%d)", ErrConfiguration, c, tier, v)
			}
		}
		if len(levels) != len(Tiers) {
			return fmt.Errorf("%w: %s has unknown tiers", ErrConfiguration, c)
		}
	}

	for c := range t {
		if !known[c] {
			return fmt.Errorf("%w: unknown category %s", ErrConfiguration, c)
		}
	}
	return nil
}

// ParseThresholds разбирает YAML вида:
//
//	QUESTION_COUNT:
//	  BRONZE: 10
//	  SILVER: 50
//	  GOLD: 100
//
// и проверяет таблицу через Validate.
func ParseThresholds(data []byte) (ThresholdTable, error) {
	var table ThresholdTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadThresholds читает таблицу из YAML-файла.
// Пустой path: встроенная таблица.
func LoadThresholds(path string) (ThresholdTable, error) {
	if path == "" {
		return DefaultThresholds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать пороги бейджей: %w", err)
	}
	return ParseThresholds(data)
}
