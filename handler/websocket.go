package handler

import (
	"context"
	"log"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// UpgradeWebSocket only lets websocket handshakes through to the stream.
func UpgradeWebSocket(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// SessionAvailability streams booked-seat changes of one session. The first
// message is the current session state; later ones are notify events.
func (h *Handler) SessionAvailability(c *websocket.Conn) {
	id64, err := strconv.ParseUint(c.Params("sessionId"), 10, 64)
	if err != nil || id64 == 0 {
		c.Close()
		return
	}
	sessionID := uint(id64)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, unsubscribe := h.Hub.Subscribe(sessionID)
	defer unsubscribe()

	snapshot, err := h.Sessions.Get(ctx, sessionID)
	if err != nil {
		if werr := c.WriteJSON(map[string]string{"error": err.Error()}); werr != nil {
			log.Printf("websocket session %d: %v", sessionID, werr)
		}
		return
	}
	if err := c.WriteJSON(snapshot); err != nil {
		return
	}

	// The client sends nothing; reading only detects the disconnect.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(ev); err != nil {
				log.Printf("websocket session %d: %v", sessionID, err)
				return
			}
		}
	}
}
