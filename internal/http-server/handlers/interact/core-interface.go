package interact

import (
	"TimerBot/bot/chat"
	"context"
)

type Core interface {
	Interact(ctx context.Context, in chat.Interaction) (chat.Result, error)
}
