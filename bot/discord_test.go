package bot

import (
	"context"
	"log/slog"
	"testing"

	"TimerBot/bot/chat"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	channelID string
	content   string
}

type fakeDiscord struct {
	sent []sentMessage
}

func (f *fakeDiscord) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, sentMessage{channelID, content})
	return &discordgo.Message{}, nil
}

type echoHandler struct {
	platform string
	userID   string
}

func (h *echoHandler) HandleMessage(_ context.Context, m chat.Messenger, platform, userID, chatID, text string) error {
	h.platform = platform
	h.userID = userID
	return m.SendText(chatID, "echo: "+text)
}

func newTestDiscord(handler MessageHandler) (*DiscordBot, *fakeDiscord) {
	fake := &fakeDiscord{}
	d := &DiscordBot{
		log:       slog.New(slog.DiscardHandler),
		messenger: &discordMessenger{session: fake},
		handler:   handler,
	}
	return d, fake
}

func TestDiscordHandle(t *testing.T) {
	handler := &echoHandler{}
	d, fake := newTestDiscord(handler)

	d.handle("u1", "c1", " /status ")

	require.Len(t, fake.sent, 1)
	assert.Equal(t, sentMessage{"c1", "echo: /status"}, fake.sent[0])
	assert.Equal(t, "discord", handler.platform)
	assert.Equal(t, "u1", handler.userID)
}

func TestDiscordIgnoresBots(t *testing.T) {
	handler := &echoHandler{}
	d, fake := newTestDiscord(handler)

	d.onMessage(&discordgo.Session{}, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "c1",
		Content:   "/status",
		Author:    &discordgo.User{ID: "b1", Bot: true},
	}})
	d.handle("u1", "c1", "   ")

	assert.Empty(t, fake.sent)
}
