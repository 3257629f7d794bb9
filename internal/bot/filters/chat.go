// Package filters решает, какие сообщения бот обрабатывает:
// чат сообщества и личные сообщения его участников.
package filters

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Members проверяет и регистрирует участников. Реализуется *members.Service.
type Members interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
	EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error
}

// API описывает нужную фильтру часть Telegram Bot API. Реализуется *tgbotapi.BotAPI.
type API interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type ChatFilter struct {
	communityChatID int64
	members         Members
	bot             API
}

func NewChatFilter(communityChatID int64, members Members, bot API) *ChatFilter {
	return &ChatFilter{
		communityChatID: communityChatID,
		members:         members,
		bot:             bot,
	}
}

func (f *ChatFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (service/channel message?)")
		return false
	}
	if message.From.IsBot {
		return false
	}
	if f.communityChatID == 0 {
		log.WithField("component", "ChatFilter").Error("communityChatID is 0 (config bug)")
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component":         "ChatFilter",
		"chat_id":           chatID,
		"chat_type":         message.Chat.Type,
		"user_id":           userID,
		"community_chat_id": f.communityChatID,
	})

	// 1) Чат сообщества
	if chatID == f.communityChatID {
		logger.Debug("allow: community chat")
		return true
	}

	// 2) Остальные группы и каналы игнорируем
	if !message.Chat.IsPrivate() {
		logger.Info("deny: not community chat and not private")
		return false
	}

	// 3) Личка: сначала быстро по БД
	isMember, err := f.members.IsMember(ctx, userID)
	if err != nil {
		logger.WithError(err).Error("member check failed (db)")
		return false
	}
	if isMember {
		logger.Debug("allow: private (db member)")
		return true
	}

	// 3.1) БД не знает пользователя, проверяем членство через Telegram API
	cm, err := f.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: f.communityChatID,
			UserID: userID,
		},
	})
	if err != nil {
		logger.WithError(err).Error("member check failed (telegram GetChatMember)")
		return false
	}

	switch cm.Status {
	case "creator", "administrator", "member", "restricted":
		if err := f.members.EnsureMember(
			ctx, userID,
			message.From.UserName,
			message.From.FirstName,
			message.From.LastName,
		); err != nil {
			logger.WithError(err).Warn("failed to backfill member to DB (allowing anyway)")
		}
		logger.WithField("tg_status", cm.Status).Info("allow: private (telegram member, backfilled)")
		return true

	default:
		logger.WithField("tg_status", cm.Status).Info("deny: private (not a community member)")
		msg := tgbotapi.NewMessage(chatID, "❌ This bot only works for members of the DevFlow community chat")
		if _, sendErr := f.bot.Send(msg); sendErr != nil {
			logger.WithError(sendErr).Warn("failed to send deny message")
		}
		return false
	}
}
