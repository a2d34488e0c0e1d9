package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"TimerBot/internal/lib/sl"

	"github.com/bwmarrin/discordgo"
)

const platformDiscord = "discord"

// discordSession is the part of discordgo.Session the bot sends through.
type discordSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// discordMessenger implements chat.Messenger for Discord channels.
type discordMessenger struct {
	session discordSession
}

func (m *discordMessenger) SendText(chatID, text string) error {
	_, err := m.session.ChannelMessageSend(chatID, text)
	return err
}

type DiscordBot struct {
	log       *slog.Logger
	session   *discordgo.Session
	messenger *discordMessenger
	handler   MessageHandler
}

func NewDiscordBot(token string, log *slog.Logger) (*DiscordBot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return &DiscordBot{
		log:       log.With(sl.Module("discord")),
		session:   session,
		messenger: &discordMessenger{session: session},
	}, nil
}

func (d *DiscordBot) SetMessageHandler(handler MessageHandler) {
	d.handler = handler
}

// Start opens the gateway connection. Handlers run on discordgo goroutines.
func (d *DiscordBot) Start() error {
	d.session.AddHandler(d.onMessage)
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("opening discord connection: %w", err)
	}
	d.log.Info("discord bot started")
	return nil
}

func (d *DiscordBot) Close() error {
	return d.session.Close()
}

func (d *DiscordBot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	d.handle(m.Author.ID, m.ChannelID, m.Content)
}

func (d *DiscordBot) handle(userID, channelID, content string) {
	if d.handler == nil {
		d.log.Warn("message handler not set")
		return
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	err := d.handler.HandleMessage(context.Background(), d.messenger, platformDiscord, userID, channelID, content)
	if err != nil {
		d.log.With(
			slog.String("user_id", userID),
			slog.String("channel_id", channelID),
		).Error("handling message", sl.Err(err))
	}
}
