package badges

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	criteria map[int64][]Criterion
	tallies  map[int64]Tally
	saves    int
	failFor  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		criteria: make(map[int64][]Criterion),
		tallies:  make(map[int64]Tally),
	}
}

func (f *fakeStore) Criteria(_ context.Context, userID int64) ([]Criterion, error) {
	if userID == f.failFor {
		return nil, errors.New("db is down")
	}
	return f.criteria[userID], nil
}

func (f *fakeStore) GetTally(_ context.Context, userID int64) (Tally, error) {
	return f.tallies[userID], nil
}

func (f *fakeStore) SaveTally(_ context.Context, userID int64, t Tally) error {
	f.saves++
	f.tallies[userID] = t
	return nil
}

func (f *fakeStore) ActiveUsers(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.criteria))
	for _, id := range []int64{1, 2, 3} {
		if _, ok := f.criteria[id]; ok || id == f.failFor {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func questions(n int64) []Criterion {
	return []Criterion{{Category: CategoryQuestionCount, Count: n}}
}

func TestService_Progress(t *testing.T) {
	store := newFakeStore()
	store.criteria[1] = questions(7)
	svc := NewService(store, smallTable())

	p, err := svc.Progress(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Tally{Silver: 1, Bronze: 1}, p.Tally)
	assert.Equal(t, questions(7), p.Criteria)
	assert.Zero(t, store.saves, "Progress ничего не сохраняет")
}

func TestService_Evaluate(t *testing.T) {
	store := newFakeStore()
	store.criteria[1] = questions(5)
	svc := NewService(store, smallTable())
	ctx := context.Background()

	cur, prev, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Tally{}, prev)
	assert.Equal(t, Tally{Silver: 1, Bronze: 1}, cur)
	assert.Equal(t, 1, store.saves)

	// без изменений повторно не пишем
	_, _, err = svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)
}

func TestService_RecomputeAll(t *testing.T) {
	store := newFakeStore()
	store.criteria[1] = questions(10)
	store.criteria[2] = questions(0)
	store.tallies[3] = Tally{Bronze: 1}
	store.criteria[3] = questions(1)
	svc := NewService(store, smallTable())

	notified := map[int64]string{}
	stats, err := svc.RecomputeAll(context.Background(), func(userID int64, text string) {
		notified[userID] = text
	})
	require.NoError(t, err)

	if diff := cmp.Diff(RecomputeStats{Users: 3, Upgraded: 1}, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, notified, 1)
	assert.Equal(t,
		"🏅 New badges: 1 Gold, 1 Silver, 1 Bronze\nYou now have 1 Gold · 1 Silver · 1 Bronze",
		notified[1])
}

func TestService_RecomputeAll_ContinuesAfterFailure(t *testing.T) {
	store := newFakeStore()
	store.failFor = 1
	store.criteria[2] = questions(1)
	svc := NewService(store, smallTable())

	stats, err := svc.RecomputeAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, RecomputeStats{Users: 2, Upgraded: 1, Failed: 1}, stats)
	assert.Equal(t, Tally{Bronze: 1}, store.tallies[2])
}

func TestService_RecomputeAll_Cancelled(t *testing.T) {
	store := newFakeStore()
	store.criteria[1] = questions(1)
	svc := NewService(store, smallTable())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RecomputeAll(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.saves)
}

func TestFormatTally(t *testing.T) {
	assert.Equal(t, "0 Gold · 2 Silver · 5 Bronze", FormatTally(Tally{Silver: 2, Bronze: 5}))
}

func TestService_Summary(t *testing.T) {
	store := newFakeStore()
	store.criteria[1] = questions(10)
	svc := NewService(store, smallTable())

	s, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "1 Gold · 1 Silver · 1 Bronze", s)
}
