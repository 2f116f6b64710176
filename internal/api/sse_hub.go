// Package api provides Server-Sent Events streaming of pipeline progress to
// the wizard frontend.
package api

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	SessionID string
	Channel   chan PipelineEvent
}

// PipelineEvent represents one file-pipeline transition for SSE streaming
type PipelineEvent struct {
	SessionID string    `json:"session_id"`
	FileID    string    `json:"file_id,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	EventType string    `json:"event_type"`
	Status    string    `json:"status,omitempty"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SSEHub manages Server-Sent Events for real-time pipeline updates
type SSEHub struct {
	clients    map[string]map[chan PipelineEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan PipelineEvent
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan PipelineEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan PipelineEvent, 100),
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan PipelineEvent]bool)
			}
			h.clients[client.SessionID][client.Channel] = true
			log.Printf("[SSE] Client registered for session %s (total clients: %d)",
				client.SessionID, len(h.clients[client.SessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists {
				delete(clients, client.Channel)
				close(client.Channel)
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			if clients, exists := h.clients[event.SessionID]; exists {
				for ch := range clients {
					select {
					case ch <- event:
					default:
						// Slow client, drop the event rather than block the hub
					}
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Broadcast publishes a pipeline event to all clients of its session
func (h *SSEHub) Broadcast(event PipelineEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast buffer full, dropping event %s for session %s",
			event.EventType, event.SessionID)
	}
}

// ServeSSE streams pipeline events for one session over an SSE connection
func (h *SSEHub) ServeSSE(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		c.JSON(400, gin.H{"error": "session ID is required"})
		return
	}

	client := SSEClient{
		SessionID: sessionID,
		Channel:   make(chan PipelineEvent, 16),
	}
	h.register <- client
	defer func() { h.unregister <- client }()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-client.Channel:
			if !ok {
				return false
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("pipeline", string(data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
