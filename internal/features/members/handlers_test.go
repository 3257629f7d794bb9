package members

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/devflow-bot/internal/config"
)

type fakeSender struct {
	texts []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func TestHandleNewChatMembers(t *testing.T) {
	store := newMemStore()
	h := NewHandler(NewService(store), &fakeSender{}, &config.Config{}, nil)

	h.HandleNewChatMembers(context.Background(), []tgbotapi.User{
		{ID: 1, UserName: "alice"},
		{ID: 2, UserName: "helper_bot", IsBot: true},
		{ID: 3, FirstName: "Bob"},
	})

	assert.Len(t, store.members, 2)
	assert.NotContains(t, store.members, int64(2))
}

func TestHandleProfile(t *testing.T) {
	store := newMemStore()
	sender := &fakeSender{}
	cfg := &config.Config{SiteURL: "https://devflow.example.com"}
	summary := func(context.Context, int64) (string, error) { return "0 Gold · 1 Silver · 2 Bronze", nil }
	h := NewHandler(NewService(store), sender, cfg, summary)
	ctx := context.Background()

	h.HandleProfile(ctx, 42, 42)
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "not registered")

	require.NoError(t, h.service.HandleNewMember(ctx, 42, "gopher", "Rob", ""))
	h.HandleProfile(ctx, 42, 42)

	text := sender.texts[1]
	assert.Contains(t, text, "👤 @gopher")
	assert.Contains(t, text, "Joined September 2023")
	assert.Contains(t, text, "🏅 0 Gold · 1 Silver · 2 Bronze")
	assert.Contains(t, text, "https://devflow.example.com/profile/42?ref=telegram")
}

func TestHandleProfile_BadgesUnavailable(t *testing.T) {
	store := newMemStore()
	sender := &fakeSender{}
	failing := func(context.Context, int64) (string, error) { return "", errors.New("timeout") }
	h := NewHandler(NewService(store), sender, &config.Config{SiteURL: "https://x.dev"}, failing)
	ctx := context.Background()

	require.NoError(t, h.service.HandleNewMember(ctx, 5, "", "Ken", ""))
	h.HandleProfile(ctx, 5, 5)

	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "👤 Ken")
	assert.NotContains(t, sender.texts[0], "🏅")
}
