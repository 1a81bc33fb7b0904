package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"societygate/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// EventsHandler streams live gate events to browsers over SSE
type EventsHandler struct {
	notifyService *services.NotifyService
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(notifyService *services.NotifyService) *EventsHandler {
	return &EventsHandler{notifyService: notifyService}
}

// ============================================================
// GET /api/v1/events — per-user SSE stream
// ============================================================
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return fiber.ErrUnauthorized
	}
	role, _ := c.Locals("role").(string)
	flat, _ := c.Locals("flat").(string)

	clientID := fmt.Sprintf("sse-%d-%d", userID, time.Now().UnixNano())

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		client := &services.SSEClient{
			ID:      clientID,
			Role:    role,
			Flat:    flat,
			Channel: make(chan services.SSEEvent, 50),
		}

		h.notifyService.Hub.Register(client)
		defer h.notifyService.Hub.Unregister(clientID)

		// Send initial connection event
		fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q}\n\n", clientID)
		if err := w.Flush(); err != nil {
			return
		}

		// Heartbeat ticker
		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case event, ok := <-client.Channel:
				if !ok {
					return
				}
				writeSSEEvent(w, event)
				if err := w.Flush(); err != nil {
					return
				}

			case <-heartbeat.C:
				fmt.Fprintf(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					log.Printf("📡 SSE client disconnected: %s", clientID)
					return
				}
			}
		}
	})

	return nil
}

// writeSSEEvent writes a formatted SSE event to the writer
func writeSSEEvent(w *bufio.Writer, event services.SSEEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, payload)
}
