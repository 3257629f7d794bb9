// Package interactions: handlers.go обрабатывает команды /ask, /activity, /q
// и ответы на сообщения в чате сообщества (ответ на вопрос, +1, -1).
package interactions

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

// Handler обрабатывает события вопросов и ответов.
type Handler struct {
	service *Service
	bot     Sender
	cfg     *config.Config
}

// NewHandler создаёт обработчик взаимодействий.
func NewHandler(service *Service, bot Sender, cfg *config.Config) *Handler {
	return &Handler{service: service, bot: bot, cfg: cfg}
}

// HandleAsk обрабатывает команду /ask #tag текст вопроса.
// Сообщение с командой становится вопросом, на него отвечают реплаем.
func (h *Handler) HandleAsk(ctx context.Context, message *tgbotapi.Message, args []string) {
	chatID := message.Chat.ID
	text := strings.Join(args, " ")

	q, err := h.service.RecordQuestion(ctx, message.From.ID, int64(message.MessageID), text)
	if err != nil {
		if errors.Is(err, common.ErrEmptyQuestion) {
			h.reply(chatID, message.MessageID, "Usage: /ask #tag your question")
			return
		}
		log.WithError(err).WithField("user_id", message.From.ID).Error("Ошибка сохранения вопроса")
		h.reply(chatID, message.MessageID, "❌ Could not save your question, try again later")
		return
	}

	_, tags := ParseQuestion(text)
	reply := fmt.Sprintf("❓ Question #%d saved", *q.QuestionID)
	if len(tags) > 0 {
		reply += "\nTags: " + strings.Join(tags, ", ")
	}
	reply += "\nReply to it to answer, reply +1 to upvote."
	h.reply(chatID, message.MessageID, reply)
}

// HandleReply обрабатывает ответ на сообщение в чате сообщества.
// Возвращает false, если сообщение не относится к вопросам и ответам.
func (h *Handler) HandleReply(ctx context.Context, message *tgbotapi.Message) bool {
	chatID := message.Chat.ID
	userID := message.From.ID
	targetID := int64(message.ReplyToMessage.MessageID)

	logger := log.WithFields(log.Fields{
		"user_id":   userID,
		"target_id": targetID,
	})

	switch {
	case IsUpvote(message.Text):
		_, err := h.service.RecordUpvote(ctx, userID, targetID)
		switch {
		case err == nil:
			h.reply(chatID, message.MessageID, "👍 Upvoted!")
		case errors.Is(err, common.ErrTargetNotFound):
			return false
		case errors.Is(err, common.ErrSelfVote), errors.Is(err, common.ErrAlreadyVoted):
			h.reply(chatID, message.MessageID, "❌ "+capitalize(err.Error()))
		default:
			logger.WithError(err).Error("Ошибка сохранения голоса")
		}
		return true

	case IsRetract(message.Text):
		err := h.service.RetractUpvote(ctx, userID, targetID)
		switch {
		case err == nil:
			h.reply(chatID, message.MessageID, "↩️ Upvote retracted")
		case errors.Is(err, common.ErrTargetNotFound):
			return false
		case errors.Is(err, common.ErrInteractionNotFound):
			h.reply(chatID, message.MessageID, "❌ You have not upvoted this post")
		default:
			logger.WithError(err).Error("Ошибка отзыва голоса")
		}
		return true

	default:
		_, err := h.service.RecordAnswer(ctx, userID, targetID, int64(message.MessageID))
		if errors.Is(err, common.ErrTargetNotFound) {
			return false
		}
		if err != nil {
			logger.WithError(err).Error("Ошибка сохранения ответа")
			return true
		}
		// Ответы засчитываются молча, чтобы не засорять чат
		logger.Debug("Ответ засчитан")
		return true
	}
}

// HandleActivity обрабатывает команду /activity и показывает последние действия пользователя.
func (h *Handler) HandleActivity(ctx context.Context, chatID, userID int64) {
	items, err := h.service.RecentActivity(ctx, userID, h.cfg.ActivityLimit)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения активности")
		h.send(chatID, "❌ Could not load your activity")
		return
	}
	if len(items) == 0 {
		h.send(chatID, "📭 No activity yet. Ask something with /ask #tag your question")
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 Your recent activity\n")
	for _, item := range items {
		sb.WriteString("\n• ")
		sb.WriteString(item.Describe())
		if item.QuestionID != nil {
			fmt.Fprintf(&sb, " #%d", *item.QuestionID)
		}
		if len(item.Tags) > 0 {
			sb.WriteString(" · ")
			sb.WriteString(strings.Join(item.Tags, ", "))
		}
		sb.WriteString(" · ")
		sb.WriteString(common.FormatRelativeTime(item.CreatedAt))
	}
	h.send(chatID, sb.String())
}

// HandleQuestion обрабатывает команду /q <id> и присылает карточку вопроса со ссылкой на сайт.
// При включённом FEATURE_VIEW_TRACKING засчитывает просмотр.
func (h *Handler) HandleQuestion(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.send(chatID, "Usage: /q <question id>")
		return
	}
	questionID, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || questionID <= 0 {
		h.send(chatID, "❌ Question id must be a positive number")
		return
	}

	if h.cfg.FeatureViewTracking {
		if _, _, err := h.service.RecordView(ctx, userID, questionID); err != nil && !errors.Is(err, common.ErrTargetNotFound) {
			log.WithError(err).WithField("question_id", questionID).Warn("Просмотр не засчитан")
		}
	}

	q, err := h.service.Question(ctx, questionID)
	if err != nil {
		if errors.Is(err, common.ErrTargetNotFound) {
			h.send(chatID, fmt.Sprintf("❌ Question #%d not found", questionID))
			return
		}
		log.WithError(err).WithField("question_id", questionID).Error("Ошибка получения вопроса")
		h.send(chatID, "❌ Could not load the question")
		return
	}

	text := fmt.Sprintf("❓ Question #%d\nAsked %s", questionID, common.FormatRelativeTime(q.CreatedAt))
	if len(q.Tags) > 0 {
		text += "\nTags: " + strings.Join(q.Tags, ", ")
	}
	text += "\n🔗 " + QuestionLink(h.cfg.SiteURL, questionID)
	h.send(chatID, text)
}

// QuestionLink строит ссылку на вопрос на сайте с меткой источника.
func QuestionLink(siteURL string, questionID int64) string {
	source := "telegram"
	path := strings.TrimRight(siteURL, "/") + "/question/" + strconv.FormatInt(questionID, 10)
	return common.SetQueryParam(path, "", "ref", &source)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (h *Handler) reply(chatID int64, messageID int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

func (h *Handler) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
