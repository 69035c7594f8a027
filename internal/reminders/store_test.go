package reminders

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAddAndPollDue(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	_, err := store.Add(ctx, "купить молоко", now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = store.Add(ctx, "позвонить маме", now.Add(time.Hour))
	require.NoError(t, err)

	due, err := store.PollDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "купить молоко", due[0].Text)
	assert.True(t, due[0].Notified)
}

func TestStorePollDueMarksExactlyOnce(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Add(ctx, "первое", now.Add(-2*time.Minute))
	require.NoError(t, err)
	_, err = store.Add(ctx, "второе", now.Add(-time.Minute))
	require.NoError(t, err)

	first, err := store.PollDue(ctx, now)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := store.PollDue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, second, "a polled reminder must never surface twice")
}

func TestStoreIdenticalDueTimesKeepInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	due := now.Add(-time.Minute)

	for _, text := range []string{"первое", "второе", "третье"} {
		_, err := store.Add(ctx, text, due)
		require.NoError(t, err)
	}

	got, err := store.PollDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "первое", got[0].Text)
	assert.Equal(t, "второе", got[1].Text)
	assert.Equal(t, "третье", got[2].Text)
}

func TestStoreOrdersByDueTime(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Add(ctx, "позднее", now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = store.Add(ctx, "раннее", now.Add(-time.Hour))
	require.NoError(t, err)

	got, err := store.PollDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "раннее", got[0].Text)
	assert.Equal(t, "позднее", got[1].Text)
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.db")
	ctx := context.Background()
	now := time.Now()

	store, err := OpenStore(path)
	require.NoError(t, err)
	_, err = store.Add(ctx, "пережить рестарт", now.Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	due, err := reopened.PollDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "пережить рестарт", due[0].Text)
}

func TestStoreUpcoming(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Add(ctx, "уже прошло", now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = store.Add(ctx, "скоро", now.Add(10*time.Minute))
	require.NoError(t, err)
	_, err = store.Add(ctx, "позже", now.Add(time.Hour))
	require.NoError(t, err)

	got, err := store.Upcoming(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "скоро", got[0].Text)
	assert.Equal(t, "позже", got[1].Text)
}
