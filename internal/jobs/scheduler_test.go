package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"serotonyl.ru/devflow-bot/internal/config"
	"serotonyl.ru/devflow-bot/internal/features/badges"
)

type fakeRecomputer struct {
	calls     int
	hadNotify bool
	err       error
}

func (f *fakeRecomputer) RecomputeAll(_ context.Context, notify func(int64, string)) (badges.RecomputeStats, error) {
	f.calls++
	f.hadNotify = notify != nil
	if notify != nil {
		notify(42, "🏅 New badges: 1 Bronze")
	}
	return badges.RecomputeStats{Users: 1, Upgraded: 1}, f.err
}

func TestRecomputeBadges_Notifications(t *testing.T) {
	var sent []int64
	send := func(userID int64, _ string) { sent = append(sent, userID) }

	cfg := &config.Config{AppTimezone: "UTC", FeatureBadgeNotifications: true}
	rec := &fakeRecomputer{}
	NewScheduler(cfg, rec, send).recomputeBadges(context.Background())

	assert.Equal(t, 1, rec.calls)
	assert.True(t, rec.hadNotify)
	assert.Equal(t, []int64{42}, sent)

	cfg.FeatureBadgeNotifications = false
	rec = &fakeRecomputer{err: errors.New("db down")}
	sent = nil
	NewScheduler(cfg, rec, send).recomputeBadges(context.Background())

	assert.Equal(t, 1, rec.calls)
	assert.False(t, rec.hadNotify)
	assert.Empty(t, sent)
}

func TestStart_InvalidSpec(t *testing.T) {
	cfg := &config.Config{AppTimezone: "UTC", BadgeRecomputeSpec: "every hour"}
	s := NewScheduler(cfg, &fakeRecomputer{}, nil)

	assert.Error(t, s.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := &config.Config{AppTimezone: "Europe/Moscow", BadgeRecomputeSpec: "0 * * * *"}
	s := NewScheduler(cfg, &fakeRecomputer{}, nil)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
