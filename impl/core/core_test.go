package core

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimerBot/bot/chat"
	"TimerBot/entity"
	"TimerBot/internal/lib/api/cont"
)

// menu opens a two-step dialogue for any action.
type menu struct {
	sessions *chat.SessionStore
}

func (m menu) Validate(in chat.Interaction, previous *chat.Step) bool {
	return previous == nil && in.Action != ""
}

func (m menu) Execute(ctx context.Context, in chat.Interaction, _ *chat.Step) chat.StepResult {
	step, err := m.sessions.CreateStep(ctx, in.UserID, chat.NewOptions(chat.Option{Name: "A", Type: "item"}), in.Action)
	if err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{View: "menu " + string(in.Action), Next: step}
}

func (m menu) CreateView(*chat.Step) string { return "" }

type pick struct {
	chat.Continuation
}

func (p pick) Execute(ctx context.Context, in chat.Interaction, previous *chat.Step) chat.StepResult {
	option, _ := previous.GetOption(in.Value)
	if p.IsRejectResponse(option, in.Value) {
		return p.ExecuteRejectResponse(ctx, in.UserID)
	}
	return chat.StepResult{View: "picked " + option.Name}
}

func (p pick) CreateView(*chat.Step) string { return "" }

type sentText struct {
	chatID, text string
}

type fakeMessenger struct {
	sent []sentText
}

func (f *fakeMessenger) SendText(chatID, text string) error {
	f.sent = append(f.sent, sentText{chatID, text})
	return nil
}

type fakeRepo struct {
	keys    map[string]string
	records []entity.InteractionRecord
}

func (f *fakeRepo) CheckApiKey(key string) (string, error) {
	if user, ok := f.keys[key]; ok {
		return user, nil
	}
	return "", errors.New("api key not found")
}

func (f *fakeRepo) SaveInteraction(rec entity.InteractionRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRepo) GetInteractions(string, int, int) ([]entity.InteractionRecord, error) {
	return f.records, nil
}

type fakeHub struct {
	seen []entity.InteractionRecord
}

func (f *fakeHub) BroadcastInteraction(rec entity.InteractionRecord) {
	f.seen = append(f.seen, rec)
}

func newTestCore(t *testing.T) (*Core, *chat.SessionStore) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	sessions := chat.NewSessionStore(chat.NewMemoryStorage(0), log)
	resolver := chat.NewResolver(sessions, log)
	require.NoError(t, resolver.AddStepProvider(0, menu{sessions: sessions}))
	require.NoError(t, resolver.AddStepProvider(1, pick{chat.Continuation{Sessions: sessions}}))

	c := New(log)
	c.SetResolver(resolver)
	resolver.SetMessageListener(c)
	return c, sessions
}

func TestHandleMessage(t *testing.T) {
	ctx := context.Background()
	c, sessions := newTestCore(t)
	m := &fakeMessenger{}

	require.NoError(t, c.HandleMessage(ctx, m, "telegram", "42", "100", "/start"))
	require.NoError(t, c.HandleMessage(ctx, m, "telegram", "42", "100", "1"))

	assert.Equal(t, []sentText{{"100", "menu start"}, {"100", "picked A"}}, m.sent)

	current, err := sessions.Current(ctx, "telegram:42")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestCommandRestartsDialogue(t *testing.T) {
	ctx := context.Background()
	c, sessions := newTestCore(t)
	m := &fakeMessenger{}

	require.NoError(t, c.HandleMessage(ctx, m, "discord", "7", "c1", "/start"))
	require.NoError(t, c.HandleMessage(ctx, m, "discord", "7", "c1", "/stop"))

	current, err := sessions.Current(ctx, "discord:7")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, chat.Action("stop"), current.Action)
	assert.Equal(t, 0, current.Ordinal)
	assert.Equal(t, "menu stop", m.sent[1].text)
}

func TestHandleText(t *testing.T) {
	c, _ := newTestCore(t)

	view, done, err := c.HandleText(context.Background(), "u1", "/start")
	require.NoError(t, err)
	assert.Equal(t, "menu start", view)
	assert.False(t, done)

	view, done, err = c.HandleText(context.Background(), "u1", "no")
	require.NoError(t, err)
	assert.Equal(t, chat.QuitView, view)
	assert.True(t, done)
}

func TestSaveInteraction(t *testing.T) {
	c, _ := newTestCore(t)
	repo := &fakeRepo{}
	hub := &fakeHub{}
	c.SetRepository(repo)
	c.SetWsHub(hub)

	_, err := c.Interact(context.Background(), chat.Interaction{UserID: "u1", Action: "start"})
	require.NoError(t, err)

	require.Len(t, repo.records, 1)
	assert.Equal(t, "start", repo.records[0].Action)
	assert.Equal(t, 0, repo.records[0].Ordinal)
	assert.Equal(t, repo.records, hub.seen)

	history, err := c.History("u1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Empty(t, history[0].Caller)
}

func TestSaveInteractionRecordsApiCaller(t *testing.T) {
	c, _ := newTestCore(t)
	repo := &fakeRepo{}
	c.SetRepository(repo)

	ctx := cont.PutUser(context.Background(), &entity.UserAuth{Username: "monitor"})
	_, err := c.Interact(ctx, chat.Interaction{UserID: "api:1", Action: "start"})
	require.NoError(t, err)
	_, err = c.Interact(ctx, chat.Interaction{UserID: "api:1", Value: "1"})
	require.NoError(t, err)

	require.Len(t, repo.records, 2)
	for _, rec := range repo.records {
		assert.Equal(t, "monitor", rec.Caller)
	}
}

func TestAuthenticateByToken(t *testing.T) {
	c := New(slog.New(slog.DiscardHandler))
	c.SetAuthKey("config-key")

	user, err := c.AuthenticateByToken("config-key")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = c.AuthenticateByToken("other")
	assert.Error(t, err)

	c.SetRepository(&fakeRepo{keys: map[string]string{"issued": "ops"}})
	name, err := c.ValidateToken("issued")
	require.NoError(t, err)
	assert.Equal(t, "ops", name)
}
