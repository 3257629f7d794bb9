package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"serotonyl.ru/devflow-bot/internal/bot/filters"
	"serotonyl.ru/devflow-bot/internal/config"
)

const community = int64(-100777)

type fakeAPI struct {
	mu      sync.Mutex
	texts   []string
	updates chan tgbotapi.Update
	stopped bool
}

func (f *fakeAPI) GetChatMember(tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	return tgbotapi.ChatMember{Status: "left"}, nil
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

// recorder записывает вызовы всех обработчиков.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) IsMember(context.Context, int64) (bool, error) { return true, nil }

func (r *recorder) EnsureMember(context.Context, int64, string, string, string) error {
	r.add("ensure")
	return nil
}

func (r *recorder) HandleNewChatMembers(_ context.Context, users []tgbotapi.User) {
	r.add("new_members")
}

func (r *recorder) HandleProfile(context.Context, int64, int64) { r.add("profile") }

func (r *recorder) HandleAsk(context.Context, *tgbotapi.Message, []string) { r.add("ask") }

func (r *recorder) HandleReply(context.Context, *tgbotapi.Message) bool {
	r.add("reply")
	return true
}

func (r *recorder) HandleActivity(context.Context, int64, int64) { r.add("activity") }

func (r *recorder) HandleQuestion(context.Context, int64, int64, []string) { r.add("question") }

func (r *recorder) HandleBadges(context.Context, int64, int64) { r.add("badges") }

func newTestBot(t *testing.T, limit int) (*Bot, *fakeAPI, *recorder) {
	t.Helper()
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	rec := &recorder{}
	cfg := &config.Config{
		CommunityChatID:   community,
		BotMaxInflight:    4,
		RateLimitRequests: limit,
		RateLimitWindow:   time.Minute,
	}
	b := New(api, cfg, rec, rec, rec, rec, filters.NewChatFilter(community, rec, api))
	t.Cleanup(b.rateLimiter.Close)
	return b, api, rec
}

func textUpdate(chatID int64, chatType string, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID, Type: chatType},
		From:      &tgbotapi.User{ID: 42, UserName: "gopher"},
		Text:      text,
	}}
}

func TestHandleUpdate_Routing(t *testing.T) {
	tests := []struct {
		name   string
		update tgbotapi.Update
		want   []string
	}{
		{"ask", textUpdate(community, "supergroup", "/ask #go why?"), []string{"ensure", "ask"}},
		{"badges в личке", textUpdate(42, "private", "/badges"), []string{"ensure", "badges"}},
		{"activity с префиксом !", textUpdate(42, "private", "!activity"), []string{"ensure", "activity"}},
		{"profile с именем бота", textUpdate(community, "supergroup", "/profile@devflow_bot"), []string{"ensure", "profile"}},
		{"q", textUpdate(42, "private", "/q 10"), []string{"ensure", "question"}},
		{"обычный текст", textUpdate(community, "supergroup", "hello"), []string{"ensure"}},
		{"чужая группа", textUpdate(-1, "group", "/badges"), nil},
		{
			name: "вступление",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Chat:           &tgbotapi.Chat{ID: community, Type: "supergroup"},
				NewChatMembers: []tgbotapi.User{{ID: 5}},
			}},
			want: []string{"new_members"},
		},
		{"пустой апдейт", tgbotapi.Update{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, rec := newTestBot(t, 10)
			b.handleUpdate(context.Background(), tt.update)
			assert.Equal(t, tt.want, rec.list())
		})
	}
}

func TestHandleUpdate_Replies(t *testing.T) {
	b, _, rec := newTestBot(t, 10)

	upd := textUpdate(community, "supergroup", "+1")
	upd.Message.ReplyToMessage = &tgbotapi.Message{MessageID: 10}
	b.handleUpdate(context.Background(), upd)

	upd = textUpdate(community, "supergroup", "!important: use context")
	upd.Message.ReplyToMessage = &tgbotapi.Message{MessageID: 10}
	b.handleUpdate(context.Background(), upd)

	assert.Equal(t, []string{"ensure", "reply", "ensure", "reply"}, rec.list())
}

func TestHandleUpdate_AskOutsideCommunity(t *testing.T) {
	b, api, rec := newTestBot(t, 10)

	b.handleUpdate(context.Background(), textUpdate(42, "private", "/ask why?"))

	assert.Equal(t, []string{"ensure"}, rec.list())
	require.Len(t, api.texts, 1)
	assert.Contains(t, api.texts[0], "community chat")
}

func TestHandleUpdate_Help(t *testing.T) {
	b, api, _ := newTestBot(t, 10)

	b.handleUpdate(context.Background(), textUpdate(42, "private", "/start"))

	require.Len(t, api.texts, 1)
	assert.Contains(t, api.texts[0], "/badges")
}

func TestHandleUpdate_RateLimited(t *testing.T) {
	b, _, rec := newTestBot(t, 1)

	b.handleUpdate(context.Background(), textUpdate(42, "private", "/badges"))
	b.handleUpdate(context.Background(), textUpdate(42, "private", "/badges"))

	assert.Equal(t, []string{"ensure", "badges"}, rec.list())
}

func TestStart_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, api, rec := newTestBot(t, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(done)
	}()

	api.updates <- textUpdate(42, "private", "/badges")
	require.Eventually(t, func() bool { return len(rec.list()) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}

	api.mu.Lock()
	assert.True(t, api.stopped)
	api.mu.Unlock()
}

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		in    string
		cmd   string
		args  []string
		isCmd bool
	}{
		{"/ask #go why", "ask", []string{"#go", "why"}, true},
		{"  !Badges ", "badges", nil, true},
		{".q 10", "q", []string{"10"}, true},
		{"/profile@devflow_bot", "profile", nil, true},
		{"hello", "", nil, false},
		{"/", "", nil, false},
		{"/@bot", "", nil, false},
		{"+1", "", nil, false},
	}

	for _, tt := range tests {
		cmd, args, ok := p.ParseCommand(tt.in)
		assert.Equal(t, tt.isCmd, ok, "%q", tt.in)
		assert.Equal(t, tt.cmd, cmd, "%q", tt.in)
		assert.Equal(t, tt.args, args, "%q", tt.in)
	}
}
