// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: относительное время («5 minutes ago»), дата вступления,
// сокращение чисел и работа с query-строками ссылок на сайт.
package common

import (
	"fmt"
	"time"
)

// Единицы времени для FormatRelativeTime.
// Месяц и год считаются фиксированными: 30 и 365 дней.
const (
	minute = time.Minute
	hour   = 60 * minute
	day    = 24 * hour
	week   = 7 * day
	month  = 30 * day
	year   = 365 * day
)

// FormatRelativeTime возвращает строку вида «3 hours ago» относительно текущего времени.
func FormatRelativeTime(t time.Time) string {
	return FormatRelativeTimeAt(t, time.Now())
}

// FormatRelativeTimeAt работает как FormatRelativeTime, но с явным «сейчас».
//
// Пороги: 60 секунд, 60 минут, 24 часа, 7 дней, 30 дней, 365 дней.
// Значение округляется вниз, единственное число только для n == 1.
//
// Примеры:
//
//	FormatRelativeTimeAt(now.Add(-59*time.Second), now) → "59 seconds ago"
//	FormatRelativeTimeAt(now.Add(-time.Minute), now)    → "1 minute ago"
//	FormatRelativeTimeAt(now.Add(-8*24*time.Hour), now) → "1 week ago"
func FormatRelativeTimeAt(t, now time.Time) string {
	diff := now.Sub(t)
	// Время из будущего (рассинхрон часов) показываем как «только что»
	if diff < 0 {
		diff = 0
	}

	switch {
	case diff < minute:
		return ago(int64(diff/time.Second), "second")
	case diff < hour:
		return ago(int64(diff/minute), "minute")
	case diff < day:
		return ago(int64(diff/hour), "hour")
	case diff < week:
		return ago(int64(diff/day), "day")
	case diff < month:
		return ago(int64(diff/week), "week")
	case diff < year:
		return ago(int64(diff/month), "month")
	default:
		return ago(int64(diff/year), "year")
	}
}

func ago(n int64, unit string) string {
	return fmt.Sprintf("%d %s ago", n, Pluralize(n, unit))
}

// FormatJoinedDate форматирует дату вступления: «September 2023».
func FormatJoinedDate(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
}

// LoadLocation загружает часовой пояс по имени.
// Если tzdata недоступна, возвращает UTC, чтобы бот всё равно стартовал.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
