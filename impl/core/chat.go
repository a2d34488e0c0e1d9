package core

import (
	"TimerBot/bot/chat"
	"TimerBot/entity"
	"TimerBot/internal/lib/api/cont"
	"TimerBot/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"time"
)

const wsPlatform = "ws"

// Interact resolves one interaction. An interaction naming an action always
// starts a new dialogue, dropping the one in progress.
func (c *Core) Interact(ctx context.Context, in chat.Interaction) (chat.Result, error) {
	if c.resolver == nil {
		return chat.Result{}, fmt.Errorf("resolver not set")
	}
	if in.Action != "" {
		return c.resolver.Restart(ctx, in)
	}
	return c.resolver.Resolve(ctx, in)
}

// HandleMessage answers a chat message received on a platform.
func (c *Core) HandleMessage(ctx context.Context, m chat.Messenger, platform, userID, chatID, text string) error {
	in, _ := chat.ParseInput(chat.SessionKey(platform, userID), text)

	res, err := c.Interact(ctx, in)
	if err != nil {
		c.log.Error("interaction failed",
			slog.String("platform", platform),
			slog.String("user_id", userID),
			sl.Err(err),
		)
	}
	if res.View == "" {
		return err
	}
	if sendErr := m.SendText(chatID, res.View); sendErr != nil {
		return fmt.Errorf("sending view: %w", sendErr)
	}
	return nil
}

// HandleText answers text typed into a WebSocket chat.
func (c *Core) HandleText(ctx context.Context, userID, text string) (string, bool, error) {
	in, _ := chat.ParseInput(chat.SessionKey(wsPlatform, userID), text)
	res, err := c.Interact(ctx, in)
	return res.View, res.Done(), err
}

func (c *Core) Session(ctx context.Context, userID string) (*chat.Step, error) {
	return c.resolver.Current(ctx, userID)
}

func (c *Core) ResetSession(ctx context.Context, userID string) error {
	return c.resolver.Reset(ctx, userID)
}

func (c *Core) History(userID string, limit, offset int) ([]entity.InteractionRecord, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("history is not stored")
	}
	return c.repo.GetInteractions(userID, limit, offset)
}

// SaveInteraction records a resolved interaction and broadcasts it to monitors.
// Interactions made through the HTTP API carry the authenticated caller.
func (c *Core) SaveInteraction(ctx context.Context, in chat.Interaction, res chat.Result) error {
	rec := entity.InteractionRecord{
		UserID:    in.UserID,
		Action:    string(in.Action),
		Value:     in.Value,
		Name:      in.Name,
		View:      res.View,
		Ordinal:   -1,
		CreatedAt: time.Now(),
	}
	if res.Next != nil {
		rec.Ordinal = res.Next.Ordinal
	}
	if user := cont.GetUser(ctx); user != nil {
		rec.Caller = user.Username
	}

	if c.wsHub != nil {
		c.wsHub.BroadcastInteraction(rec)
	}
	if c.repo == nil {
		return nil
	}
	return c.repo.SaveInteraction(rec)
}
