package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"TimerBot/entity"
)

// ClientMessageHandler answers text typed into a WebSocket chat.
type ClientMessageHandler interface {
	HandleText(ctx context.Context, userID, text string) (view string, done bool, err error)
}

// Event represents a WebSocket event sent to clients.
type Event struct {
	Type string      `json:"type"` // "view", "interaction"
	Data interface{} `json:"data"`
}

// ViewData is the payload of a "view" event.
type ViewData struct {
	UserID string `json:"user_id"`
	View   string `json:"view"`
	Done   bool   `json:"done"`
}

type envelope struct {
	userID string // empty: monitors only
	event  *Event
}

// Hub maintains the set of active WebSocket clients. Views go to every socket
// of their user; interaction records go to monitor sockets.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	handler    ClientMessageHandler
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// SetHandler sets the handler for incoming client messages.
func (h *Hub) SetHandler(handler ClientMessageHandler) {
	h.handler = handler
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case env := <-h.broadcast:
			data, err := json.Marshal(env.event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if !client.receives(env.userID) {
					continue
				}
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastView sends a view event to every socket of the user.
func (h *Hub) BroadcastView(userID, view string, done bool) {
	h.broadcast <- envelope{
		userID: userID,
		event: &Event{
			Type: "view",
			Data: ViewData{UserID: userID, View: view, Done: done},
		},
	}
}

// BroadcastInteraction sends a handled interaction to monitor sockets.
func (h *Hub) BroadcastInteraction(rec entity.InteractionRecord) {
	h.broadcast <- envelope{
		event: &Event{
			Type: "interaction",
			Data: rec,
		},
	}
}

// clientEvent represents an incoming WebSocket message from a client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming message from a client.
func (h *Hub) HandleClientMessage(userID string, raw []byte) {
	if h.handler == nil || userID == "" {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		if h.log != nil {
			h.log.Warn("failed to parse client ws message", slog.String("error", err.Error()))
		}
		return
	}

	switch event.Type {
	case "message":
		var data struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil || data.Text == "" {
			return
		}
		view, done, err := h.handler.HandleText(context.Background(), userID, data.Text)
		if err != nil && h.log != nil {
			h.log.Error("failed to handle message",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		if view != "" {
			h.BroadcastView(userID, view, done)
		}
	}
}

func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
