package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"go-inventory-ledger/internal/notify"

	"github.com/gofiber/contrib/websocket"
)

// Client is the part of *websocket.Conn the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Event is the JSON frame pushed to every connected client.
type Event struct {
	Type    notify.Topic `json:"type"`
	Subject string       `json:"subject,omitempty"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
}

// Hub fans stock and alert events out to websocket clients. It is a notify.Sender.
type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	logger     *slog.Logger
	mutex      sync.Mutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte),
		logger:     logger,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.logger.Debug("websocket client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

func (h *Hub) Name() string { return "websocket" }

// Send queues msg for broadcast. It gives up when ctx expires, e.g. when Run has stopped.
func (h *Hub) Send(ctx context.Context, msg *notify.Message) error {
	payload, err := json.Marshal(Event{
		Type:    msg.Topic,
		Subject: msg.Subject,
		Message: msg.Body,
		Data:    msg.Data,
	})
	if err != nil {
		return err
	}

	select {
	case h.Broadcast <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
