package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, chatID string) *Client {
	return &Client{hub: h, send: make(chan []byte, 1), chatID: chatID}
}

func TestHub_SendToDisconnectedChat(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	err := h.SendText(context.Background(), "nobody", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestHub_DeliveryRacingReconnectNeverPanics(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	const chatID = "c1"
	const rounds = 200

	// Churn the connection: every replacement closes the previous client's
	// send channel. Deliveries racing that close must fail cleanly, never
	// send on the closed channel.
	reconnects := make(chan struct{})
	go func() {
		defer close(reconnects)
		for i := 0; i < rounds; i++ {
			h.register <- newTestClient(h, chatID)
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				// Queue-full and not-connected errors are expected here;
				// only a panic would fail the test.
				_ = h.SendText(context.Background(), chatID, "ping")
			}
		}()
	}

	wg.Wait()
	<-reconnects
}

func TestHub_SendQueueFull(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	client := newTestClient(h, "c1")
	h.register <- client

	// Registration is asynchronous; wait for the first send to land. Nothing
	// drains the queue, so the next send must fail instead of block.
	require.Eventually(t, func() bool {
		return h.SendText(context.Background(), "c1", "first") == nil
	}, time.Second, time.Millisecond)

	err := h.SendText(context.Background(), "c1", "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}
