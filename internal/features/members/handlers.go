// Package members: handlers.go обрабатывает Telegram-события, связанные с участниками:
// вступление в чат и команду /profile.
package members

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/devflow-bot/internal/common"
	"serotonyl.ru/devflow-bot/internal/config"
)

// Sender отправляет сообщения в Telegram. Реализуется *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BadgeSummary возвращает строку с бейджами пользователя для профиля.
type BadgeSummary func(ctx context.Context, userID int64) (string, error)

// Handler обрабатывает события участников.
type Handler struct {
	service *Service
	bot     Sender
	cfg     *config.Config
	badges  BadgeSummary
}

// NewHandler создаёт новый обработчик событий участников.
// badges может быть nil: тогда строка с бейджами в профиле не выводится.
func NewHandler(service *Service, bot Sender, cfg *config.Config, badges BadgeSummary) *Handler {
	return &Handler{service: service, bot: bot, cfg: cfg, badges: badges}
}

// HandleNewChatMembers регистрирует каждого нового участника чата.
func (h *Handler) HandleNewChatMembers(ctx context.Context, newMembers []tgbotapi.User) {
	for _, user := range newMembers {
		if user.IsBot {
			continue
		}
		err := h.service.HandleNewMember(ctx, user.ID, user.UserName, user.FirstName, user.LastName)
		if err != nil {
			log.WithError(err).WithField("user_id", user.ID).Error("Ошибка регистрации нового участника")
		}
	}
}

// HandleProfile обрабатывает команду /profile.
//
// Формат ответа:
//
//	👤 @gopher
//	📅 Joined September 2023
//	🏅 1 Gold · 0 Silver · 3 Bronze
//	🔗 https://devflow.example.com/profile/42?ref=telegram
func (h *Handler) HandleProfile(ctx context.Context, chatID, userID int64) {
	member, err := h.service.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "❌ You are not registered yet. Write something in the community chat first.")
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения профиля")
		h.sendMessage(chatID, "❌ Could not load your profile")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 %s\n", member.DisplayName())
	fmt.Fprintf(&sb, "📅 Joined %s\n", common.FormatJoinedDate(member.JoinedAt))

	if h.badges != nil {
		summary, err := h.badges(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Не удалось получить бейджи для профиля")
		} else {
			fmt.Fprintf(&sb, "🏅 %s\n", summary)
		}
	}

	ref := "telegram"
	path := strings.TrimRight(h.cfg.SiteURL, "/") + "/profile/" + strconv.FormatInt(userID, 10)
	sb.WriteString("🔗 " + common.SetQueryParam(path, "", "ref", &ref))

	h.sendMessage(chatID, sb.String())
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
