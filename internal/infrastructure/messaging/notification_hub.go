// Package messaging pushes analysis and cache events to connected dashboard
// clients over websockets.
package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
)

const (
	EventAnalysisCompleted = "analysis.completed"
	EventCacheInvalidated  = "cache.invalidated"
	EventHeartbeat         = "heartbeat"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	sendBufferSize = 16
)

// Event is the JSON frame sent to live clients.
type Event struct {
	Type         string    `json:"type"`
	At           time.Time `json:"at"`
	TimeRange    string    `json:"timeRange,omitempty"`
	ResultID     string    `json:"resultId,omitempty"`
	StartDate    string    `json:"startDate,omitempty"`
	EndDate      string    `json:"endDate,omitempty"`
	TotalRecords int       `json:"totalRecords,omitempty"`
	Cached       bool      `json:"cached,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	Removed      int       `json:"removed,omitempty"`
	Clients      int       `json:"clients,omitempty"`
}

// LiveClient represents a single connected dashboard client.
type LiveClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NotificationHub manages all connected live clients and fans events out to
// them. Slow clients drop frames rather than block the hub.
type NotificationHub struct {
	clients    map[*LiveClient]bool
	register   chan *LiveClient
	unregister chan *LiveClient
	broadcast  chan []byte
	done       chan struct{}
	upgrader   websocket.Upgrader
	heartbeat  time.Duration
	maxClients int
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

func NewNotificationHub(heartbeat time.Duration, maxClients int, logger *logging.ChanneledLogger) *NotificationHub {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &NotificationHub{
		clients:    make(map[*LiveClient]bool),
		register:   make(chan *LiveClient),
		unregister: make(chan *LiveClient),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		heartbeat:  heartbeat,
		maxClients: maxClients,
		logger:     logger,
	}
}

// Run starts the hub's main loop. It returns when ctx is cancelled, closing
// every client.
func (h *NotificationHub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Shutdown().Info("Notification hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.HTTP().Debug("Live client registered", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.HTTP().Debug("Live client unregistered", "clients", count)

		case message := <-h.broadcast:
			h.fanOut(message)

		case <-ticker.C:
			h.Publish(Event{Type: EventHeartbeat, Clients: h.ClientCount()})
		}
	}
}

func (h *NotificationHub) fanOut(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
		}
	}
}

// Publish queues an event. It never blocks; events are dropped when the
// queue is full.
func (h *NotificationHub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.HTTP().Error("Failed to marshal live event", "type", event.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.logger.HTTP().Warn("Live event dropped, queue full", "type", event.Type)
	}
}

// AnalysisCompleted announces a finished analysis.
func (h *NotificationHub) AnalysisCompleted(result *insights.AnalysisResult, cached bool) {
	if result == nil {
		return
	}
	h.Publish(Event{
		Type:         EventAnalysisCompleted,
		TimeRange:    string(result.TimeRange),
		ResultID:     result.ID,
		StartDate:    result.StartDate.Format(time.RFC3339),
		EndDate:      result.EndDate.Format(time.RFC3339),
		TotalRecords: result.Statistics.TotalRecords,
		Cached:       cached,
	})
}

// CacheInvalidated announces removed cache entries.
func (h *NotificationHub) CacheInvalidated(scope string, removed int) {
	h.Publish(Event{Type: EventCacheInvalidated, Scope: scope, Removed: removed})
}

func (h *NotificationHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and serves the connection until the client
// goes away.
func (h *NotificationHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.maxClients > 0 && h.ClientCount() >= h.maxClients {
		http.Error(w, "too many live clients", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.HTTP().Warn("Websocket upgrade failed", "error", err)
		return
	}

	client := &LiveClient{conn: conn, send: make(chan []byte, sendBufferSize)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go h.writePump(client)
	h.readPump(client)
}

// readPump discards client frames and detects disconnects.
func (h *NotificationHub) readPump(client *LiveClient) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
		client.conn.Close()
	}()

	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *NotificationHub) writePump(client *LiveClient) {
	ping := time.NewTicker(pongWait * 9 / 10)
	defer func() {
		ping.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ping.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
