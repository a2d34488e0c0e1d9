package repository

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimerBot/bot/chat"
	"TimerBot/entity"
)

func newTestSQLite(t *testing.T, ttl time.Duration) *SQLite {
	t.Helper()
	db, err := NewSQLite(":memory:", ttl, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteChainRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestSQLite(t, 0)
	sessions := chat.NewSessionStore(chat.NewRepositoryStorage(db), slog.New(slog.DiscardHandler))

	first, err := sessions.CreateStep(ctx, "telegram:42", chat.NewOptions(
		chat.Option{Name: "Acme - Site", ID: 10, Type: "project"},
	), "start")
	require.NoError(t, err)
	require.NoError(t, first.AddParam("entries", entity.Daily{ForDay: "2024-03-01"}))
	require.NoError(t, sessions.Commit(ctx, first))

	second, err := sessions.CreateStep(ctx, "telegram:42", chat.NewOptions(), "start")
	require.NoError(t, err)

	current, err := sessions.Current(ctx, "telegram:42")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, second.ID, current.ID)
	assert.Equal(t, 1, current.Ordinal)

	var day entity.Daily
	ok, err := current.Ancestor(0).GetParam("entries", &day)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-01", day.ForDay)

	opt, err := current.PreviousStep().GetOption("1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), opt.ID)

	require.NoError(t, sessions.Clear(ctx, "telegram:42"))
	current, err = sessions.Current(ctx, "telegram:42")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestSQLiteChainExpires(t *testing.T) {
	ctx := context.Background()
	db := newTestSQLite(t, time.Minute)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	c := chat.NewChain("u1")
	require.NoError(t, db.SaveChain(ctx, c))

	loaded, err := db.LoadChain(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, loaded)

	now = now.Add(time.Hour)
	loaded, err = db.LoadChain(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteCorruptChainIsDropped(t *testing.T) {
	ctx := context.Background()
	db := newTestSQLite(t, 0)
	sessions := chat.NewSessionStore(chat.NewRepositoryStorage(db), slog.New(slog.DiscardHandler))

	_, err := db.DB.Exec(`INSERT INTO chat_sessions (user_id, chain, updated_at) VALUES (?, ?, ?)`,
		"u1", "{not json", time.Now().UnixNano())
	require.NoError(t, err)

	current, err := sessions.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, current)

	var count int
	require.NoError(t, db.DB.QueryRow(`SELECT COUNT(*) FROM chat_sessions`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestSQLiteInteractionsAreTrimmed(t *testing.T) {
	db := newTestSQLite(t, 0)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < historyLimit+5; i++ {
		require.NoError(t, db.SaveInteraction(entity.InteractionRecord{
			UserID:    "u1",
			Value:     fmt.Sprint(i),
			View:      "view",
			Ordinal:   -1,
			CreatedAt: start.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, db.SaveInteraction(entity.InteractionRecord{UserID: "u2", Caller: "monitor", CreatedAt: start}))

	records, err := db.GetInteractions("u1", 1000, 0)
	require.NoError(t, err)
	require.Len(t, records, historyLimit)
	assert.Equal(t, fmt.Sprint(historyLimit+4), records[0].Value)
	assert.Equal(t, "5", records[len(records)-1].Value)

	page, err := db.GetInteractions("u1", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, fmt.Sprint(historyLimit+3), page[0].Value)

	other, err := db.GetInteractions("u2", 10, 0)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "monitor", other[0].Caller)
	assert.Empty(t, records[0].Caller)
}

func TestSQLiteApiKeys(t *testing.T) {
	db := newTestSQLite(t, 0)

	key, err := db.GenerateApiKey("monitor")
	require.NoError(t, err)
	require.NotEmpty(t, key)

	again, err := db.GenerateApiKey("monitor")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	owner, err := db.CheckApiKey(key)
	require.NoError(t, err)
	assert.Equal(t, "monitor", owner)

	_, err = db.CheckApiKey("unknown")
	assert.Error(t, err)
}
