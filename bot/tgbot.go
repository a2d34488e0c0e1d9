package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"TimerBot/bot/chat"
	"TimerBot/bot/chat/telegram"
	"TimerBot/bot/chat/timer"
	"TimerBot/internal/lib/sl"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
)

const platformTelegram = "telegram"

// MessageHandler answers chat messages arriving from any transport.
type MessageHandler interface {
	HandleMessage(ctx context.Context, m chat.Messenger, platform, userID, chatID, text string) error
}

type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	messenger   *telegram.Messenger
	handler     MessageHandler
	botUsername string
	adminId     int64
}

func NewTgBot(botName, apiKey string, adminId int64, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminId:     adminId,
		botUsername: botName,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api
	tgBot.messenger = telegram.NewMessenger(api)

	return tgBot, nil
}

func (t *TgBot) SetMessageHandler(handler MessageHandler) {
	t.handler = handler
}

func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	updater := ext.NewUpdater(dispatcher, nil)

	commands := make([]tgbotapi.BotCommand, 0, len(timer.Commands()))
	for _, action := range timer.Commands() {
		dispatcher.AddHandler(handlers.NewCommand(string(action), t.handleMessage))
		commands = append(commands, tgbotapi.BotCommand{
			Command:     string(action),
			Description: timer.Description(action),
		})
	}
	dispatcher.AddHandler(handlers.NewMessage(message.Text, t.handleMessage))

	if _, err := t.api.SetMyCommands(commands, nil); err != nil {
		t.log.Warn("setting bot commands", sl.Err(err))
	}

	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("telegram bot started", slog.String("username", t.botUsername))

	// Idle, to keep updates coming in, and avoid bot stopping.
	updater.Idle()

	return nil
}

// handleMessage routes commands and replies to the dialogue engine.
func (t *TgBot) handleMessage(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.handler == nil {
		t.log.Warn("message handler not set")
		return nil
	}
	if ctx.EffectiveUser == nil || ctx.EffectiveMessage == nil {
		return nil
	}

	userID := strconv.FormatInt(ctx.EffectiveUser.Id, 10)
	chatID := strconv.FormatInt(ctx.EffectiveChat.Id, 10)

	err := t.handler.HandleMessage(context.Background(), t.messenger, platformTelegram, userID, chatID, ctx.EffectiveMessage.Text)
	if err != nil {
		t.log.With(
			slog.String("user_id", userID),
		).Error("handling message", sl.Err(err))
	}
	return nil
}

// SendMessage delivers a message to the admin chat.
func (t *TgBot) SendMessage(msg string) {
	if t.adminId == 0 || msg == "" {
		return
	}
	chatID := strconv.FormatInt(t.adminId, 10)
	if err := t.messenger.SendText(chatID, msg); err != nil {
		t.log.With(
			slog.Int64("id", t.adminId),
		).Warn("sending admin message", sl.Err(err))
	}
}
