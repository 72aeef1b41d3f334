package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"nutscredit/internal/metrics"
	"nutscredit/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Hub maintains the set of connected chat endpoints, addressable by chat
// id, and delivers outbound frames to them. It is the concrete Messenger
// the services talk through. Delivery is best-effort: sending to a chat
// that is not connected, or whose queue is full, fails without retry.
type Hub struct {
	mu         sync.Mutex
	clients    map[string]*Client // keyed by chat id
	register   chan *Client
	unregister chan *Client
	log        zerolog.Logger
}

// NewHub initializes a new chat Hub instance
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the core dispatch loop for connection lifecycle events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// A reconnect for the same chat replaces the old connection.
			if old, ok := h.clients[client.chatID]; ok {
				close(old.send)
			} else {
				metrics.ChatConnections.Inc()
			}
			h.clients[client.chatID] = client
			h.mu.Unlock()
			h.log.Info().Str("chat_id", client.chatID).Msg("chat endpoint connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.chatID]; ok && current == client {
				delete(h.clients, client.chatID)
				close(client.send)
				metrics.ChatConnections.Dec()
			}
			h.mu.Unlock()
			h.log.Info().Str("chat_id", client.chatID).Msg("chat endpoint disconnected")
		}
	}
}

func (h *Hub) deliver(chatID string, frame OutboundFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	// The send stays under the lock: Run closes send channels while holding
	// h.mu, so releasing it first would allow a send on a closed channel when
	// a delivery races a reconnect. The select never blocks.
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[chatID]
	if !ok {
		return fmt.Errorf("chat %s is not connected", chatID)
	}

	select {
	case client.send <- payload:
		return nil
	default:
		return fmt.Errorf("chat %s send queue is full", chatID)
	}
}

// SendText delivers a plain text message to a chat endpoint.
func (h *Hub) SendText(ctx context.Context, chatID, text string) error {
	return h.deliver(chatID, OutboundFrame{Type: FrameMessage, Text: text})
}

// SendPrompt delivers a message with inline action buttons and returns a
// reference usable to edit it later.
func (h *Hub) SendPrompt(ctx context.Context, chatID, text string, buttons [][]service.Button) (service.MessageRef, error) {
	ref := service.MessageRef{ChatID: chatID, MessageID: uuid.NewString()}
	err := h.deliver(chatID, OutboundFrame{
		Type:      FramePrompt,
		MessageID: ref.MessageID,
		Text:      text,
		Buttons:   buttons,
	})
	if err != nil {
		return service.MessageRef{}, err
	}
	return ref, nil
}

// Edit rewrites a previously delivered message in place.
func (h *Hub) Edit(ctx context.Context, ref service.MessageRef, text string) error {
	return h.deliver(ref.ChatID, OutboundFrame{
		Type:      FrameEdit,
		MessageID: ref.MessageID,
		Text:      text,
	})
}

var _ service.Messenger = (*Hub)(nil)
