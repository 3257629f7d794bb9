// Package badges: handlers.go обрабатывает команду /badges.
// Показывает бейджи и прогресс до следующего уровня по каждой категории.
package badges

import (
	"context"
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

// Handler обрабатывает команды бейджей.
type Handler struct {
	service *Service
	bot     Sender
	cfg     *config.Config
}

// NewHandler создаёт обработчик бейджей.
func NewHandler(service *Service, bot Sender, cfg *config.Config) *Handler {
	return &Handler{service: service, bot: bot, cfg: cfg}
}

var tierIcons = map[Tier]string{
	TierGold:   "🥇",
	TierSilver: "🥈",
	TierBronze: "🥉",
}

// HandleBadges обрабатывает команду /badges.
//
// Формат ответа:
//
//	🏅 Your badges
//	🥇 Gold: 0
//	🥈 Silver: 1
//	🥉 Bronze: 3
//
//	📊 Progress
//	Questions asked: 12 → Silver at 50, 38 to go
//	Question views: 12.3K → Gold at 100.0K, 87,655 to go
//	...
//	🔗 https://devflow.example.com/profile/42?tab=badges
func (h *Handler) HandleBadges(ctx context.Context, chatID, userID int64) {
	progress, err := h.service.Progress(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка подсчёта бейджей")
		h.sendMessage(chatID, "❌ Could not load your badges")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏅 Your badges\n")
	for _, tier := range Tiers {
		fmt.Fprintf(&sb, "%s %s: %d\n", tierIcons[tier], common.Title(string(tier)), progress.Tally.Get(tier))
	}

	sb.WriteString("\n📊 Progress\n")
	for _, c := range progress.Criteria {
		fmt.Fprintf(&sb, "%s: %s", c.Category.Label(), common.AbbreviateNumber(c.Count))
		if tier, need, ok := NextTier(c, h.service.Thresholds()); ok {
			fmt.Fprintf(&sb, " → %s at %s, %s to go",
				common.Title(string(tier)), common.AbbreviateNumber(need), common.FormatNumber(need-c.Count))
		} else {
			sb.WriteString(" ✅")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n🔗 ")
	sb.WriteString(ProfileLink(h.cfg.SiteURL, userID, "badges"))
	h.sendMessage(chatID, sb.String())
}

// ProfileLink строит ссылку на вкладку профиля на сайте.
func ProfileLink(siteURL string, userID int64, tab string) string {
	path := strings.TrimRight(siteURL, "/") + "/profile/" + strconv.FormatInt(userID, 10)
	return common.SetQueryParam(path, "", "tab", &tab)
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
