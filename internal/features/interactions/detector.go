// Package interactions: detector.go распознаёт голоса и хештеги в тексте сообщений.
package interactions

import (
	"strings"
	"unicode"
)

// IsUpvote проверяет, является ли ответ на сообщение голосом «за».
// Восклицательные знаки и точка в конце допускаются.
func IsUpvote(text string) bool {
	cleaned := strings.TrimRight(strings.TrimSpace(text), "!.")
	switch cleaned {
	case "+1", "+", "👍":
		return true
	}
	return false
}

// IsRetract проверяет, отзывает ли пользователь свой голос.
func IsRetract(text string) bool {
	cleaned := strings.TrimRight(strings.TrimSpace(text), "!.")
	return cleaned == "-1" || cleaned == "👎"
}

// ParseQuestion отделяет хештеги от текста вопроса.
// Теги приводятся к нижнему регистру, повторы убираются, порядок сохраняется.
//
// Пример:
//
//	ParseQuestion("#Go #pgx how to scan arrays? #go")
//	→ "how to scan arrays?", ["go", "pgx"]
func ParseQuestion(text string) (body string, tags []string) {
	seen := make(map[string]bool)
	var words []string

	for _, w := range strings.Fields(text) {
		if strings.HasPrefix(w, "#") {
			tag := normalizeTag(w)
			if tag != "" && !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
			continue
		}
		words = append(words, w)
	}

	return strings.Join(words, " "), tags
}

// normalizeTag убирает «#», пунктуацию по краям и приводит к нижнему регистру.
func normalizeTag(word string) string {
	tag := strings.TrimLeft(word, "#")
	tag = strings.TrimFunc(tag, func(r rune) bool {
		return unicode.IsPunct(r) && r != '+' && r != '#'
	})
	return strings.ToLower(tag)
}
