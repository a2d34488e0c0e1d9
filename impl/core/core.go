package core

import (
	"TimerBot/bot/chat"
	"TimerBot/entity"
	"TimerBot/internal/lib/sl"
	"crypto/subtle"
	"fmt"
	"log/slog"
)

type Repository interface {
	CheckApiKey(key string) (string, error)
	SaveInteraction(rec entity.InteractionRecord) error
	GetInteractions(userID string, limit, offset int) ([]entity.InteractionRecord, error)
}

type Broadcaster interface {
	BroadcastInteraction(rec entity.InteractionRecord)
}

type Core struct {
	repo     Repository
	resolver *chat.Resolver
	wsHub    Broadcaster
	authKey  string
	log      *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log: log.With(sl.Module("core")),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}

func (c *Core) SetResolver(resolver *chat.Resolver) {
	c.resolver = resolver
}

func (c *Core) SetWsHub(hub Broadcaster) {
	c.wsHub = hub
}

// AuthenticateByToken accepts the configured API key or a key issued in the repository.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if c.authKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(c.authKey)) == 1 {
		return &entity.UserAuth{Username: "admin"}, nil
	}
	if c.repo == nil {
		return nil, fmt.Errorf("invalid token")
	}
	username, err := c.repo.CheckApiKey(token)
	if err != nil {
		return nil, err
	}
	return &entity.UserAuth{Username: username}, nil
}

// ValidateToken authenticates WebSocket clients.
func (c *Core) ValidateToken(token string) (string, error) {
	user, err := c.AuthenticateByToken(token)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
