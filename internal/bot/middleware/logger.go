// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// maxLoggedText ограничивает число символов текста в логе.
const maxLoggedText = 50

// LogMessage логирует входящее сообщение.
// Записывает: user_id, chat_id, username, начало текста, id сообщения-адресата реплая.
func LogMessage(message *tgbotapi.Message) {
	if message == nil {
		return
	}

	fields := log.Fields{
		"message_id": message.MessageID,
		"text":       Truncate(message.Text, maxLoggedText),
	}
	if message.From != nil {
		fields["user_id"] = message.From.ID
		fields["username"] = message.From.UserName
	}
	if message.Chat != nil {
		fields["chat_id"] = message.Chat.ID
	}
	if message.ReplyToMessage != nil {
		fields["reply_to"] = message.ReplyToMessage.MessageID
	}

	log.WithFields(fields).Debug("Входящее сообщение")
}

// Truncate обрезает текст до n символов (рун), добавляя «...».
func Truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
