package session

import (
	"TimerBot/bot/chat"
	"TimerBot/entity"
	"context"
)

type Core interface {
	Session(ctx context.Context, userID string) (*chat.Step, error)
	ResetSession(ctx context.Context, userID string) error
	History(userID string, limit, offset int) ([]entity.InteractionRecord, error)
}
