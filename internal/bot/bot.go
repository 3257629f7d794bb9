// Package bot содержит главный модуль бота: запуск, остановку и маршрутизацию апдейтов.
// bot.go получает готовые обработчики и запускает polling.
package bot

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/devflow-bot/internal/bot/filters"
	"serotonyl.ru/devflow-bot/internal/bot/middleware"
	"serotonyl.ru/devflow-bot/internal/config"
)

// API описывает используемую часть Telegram Bot API. Реализуется *tgbotapi.BotAPI.
type API interface {
	filters.API
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// MemberRegistry регистрирует авторов сообщений. Реализуется *members.Service.
type MemberRegistry interface {
	EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error
}

// MemberHandler реализуется *members.Handler.
type MemberHandler interface {
	HandleNewChatMembers(ctx context.Context, newMembers []tgbotapi.User)
	HandleProfile(ctx context.Context, chatID, userID int64)
}

// InteractionHandler реализуется *interactions.Handler.
type InteractionHandler interface {
	HandleAsk(ctx context.Context, message *tgbotapi.Message, args []string)
	HandleReply(ctx context.Context, message *tgbotapi.Message) bool
	HandleActivity(ctx context.Context, chatID, userID int64)
	HandleQuestion(ctx context.Context, chatID, userID int64, args []string)
}

// BadgeHandler реализуется *badges.Handler.
type BadgeHandler interface {
	HandleBadges(ctx context.Context, chatID, userID int64)
}

const helpText = `👋 DevFlow community bot

/ask #tag your question — ask the community
Reply to a question — answer it
Reply +1 / -1 — upvote or retract
/q <id> — open a question
/activity — your recent activity
/badges — your badges and progress
/profile — your profile`

// Bot объединяет все компоненты бота.
type Bot struct {
	api API
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	members            MemberRegistry
	memberHandler      MemberHandler
	interactionHandler InteractionHandler
	badgeHandler       BadgeHandler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
	wg       sync.WaitGroup
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api API,
	cfg *config.Config,
	members MemberRegistry,
	memberHandler MemberHandler,
	interactionHandler InteractionHandler,
	badgeHandler BadgeHandler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:                api,
		cfg:                cfg,
		chatFilter:         chatFilter,
		rateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		members:            members,
		memberHandler:      memberHandler,
		interactionHandler: interactionHandler,
		badgeHandler:       badgeHandler,
		parser:             NewCommandParser(),
		inflight:           make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram и блокируется до отмены ctx.
// Перед возвратом дожидается обработки уже принятых апдейтов.
func (b *Bot) Start(ctx context.Context) {
	defer b.rateLimiter.Close()
	defer b.wg.Wait()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			select {
			case b.inflight <- struct{}{}:
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				return
			}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}

	// Вступление в чат сообщества
	if len(message.NewChatMembers) > 0 {
		if message.Chat.ID == b.cfg.CommunityChatID {
			b.memberHandler.HandleNewChatMembers(ctx, message.NewChatMembers)
		}
		return
	}

	if message.Text == "" {
		return
	}

	middleware.LogMessage(message)

	// Доступ: чат сообщества или личка участника
	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// Взаимодействия ссылаются на участника, поэтому регистрируем до записи
	if err := b.members.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if isCommand {
		log.WithFields(log.Fields{
			"cmd":  cmd,
			"args": args,
		}).Debug("parsed command")
		if b.routeCommand(ctx, message, cmd, args) {
			return
		}
	}

	// Реплай в чате сообщества: ответ на вопрос или голос.
	// Неизвестная «команда» в реплае (например, "!важно") тоже считается ответом.
	if chatID == b.cfg.CommunityChatID && message.ReplyToMessage != nil {
		b.interactionHandler.HandleReply(ctx, message)
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
// Возвращает false, если команда неизвестна.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) bool {
	chatID := message.Chat.ID
	userID := message.From.ID

	switch cmd {
	case "start", "help":
		b.sendMessage(chatID, helpText)

	case "ask":
		if chatID != b.cfg.CommunityChatID {
			b.sendMessage(chatID, "❓ Questions are asked in the community chat so everyone can answer")
			return true
		}
		b.interactionHandler.HandleAsk(ctx, message, args)

	case "q", "question":
		b.interactionHandler.HandleQuestion(ctx, chatID, userID, args)

	case "activity":
		b.interactionHandler.HandleActivity(ctx, chatID, userID)

	case "badges":
		b.badgeHandler.HandleBadges(ctx, chatID, userID)

	case "profile":
		b.memberHandler.HandleProfile(ctx, chatID, userID)

	default:
		return false
	}
	return true
}

// sendMessage отправляет текст в чат.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет личное сообщение (уведомления о бейджах).
// Пользователь мог не начинать диалог с ботом, тогда ошибка только логируется.
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	} else {
		log.WithField("user_id", userID).Debug("message sent")
	}
}

// CommandParser парсит команды с префиксами /, ! и .
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"/", "!", "."},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Суффикс @botname у команды отбрасывается: "/badges@devflow_bot" → "badges".
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command, _, _ := strings.Cut(parts[0], "@")
	command = strings.ToLower(command)
	if command == "" {
		return "", nil, false
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
