// Package common: pluralize.go содержит склонение английских существительных
// и форматирование чисел для ответов бота.
package common

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.English)
	title   = cases.Title(language.English)
)

// Pluralize возвращает word во множественном числе, если n != 1.
//
//	Pluralize(1, "minute") → "minute"
//	Pluralize(0, "minute") → "minutes"
func Pluralize(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// AbbreviateNumber сокращает большие числа для компактного вывода.
//
// Правила:
//   - n >= 1 000 000 → "X.YM"
//   - n >= 1 000     → "X.YK"
//   - иначе          → число как есть
//
// Примеры:
//
//	AbbreviateNumber(999)     → "999"
//	AbbreviateNumber(1000)    → "1.0K"
//	AbbreviateNumber(1250)    → "1.3K"
//	AbbreviateNumber(2500000) → "2.5M"
func AbbreviateNumber(n int64) string {
	switch {
	case n >= 1_000_000:
		return oneDecimal(n, 1_000_000) + "M"
	case n >= 1_000:
		return oneDecimal(n, 1_000) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// oneDecimal делит n на d с одним знаком после точки.
// Половина округляется вверх: 1250/1000 → "1.3".
func oneDecimal(n, d int64) string {
	q := (n*10 + d/2) / d
	return fmt.Sprintf("%d.%d", q/10, q%10)
}

// FormatNumber форматирует число с разделителями тысяч: 2350 → "2,350".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// Title приводит слово к виду «Gold» из «GOLD» или «gold».
func Title(s string) string {
	return title.String(s)
}
