package logging

import (
	"encoding/json"
	"log/slog"
	"sync"
)

const (
	defaultBacklog    = 200
	clientBufferSize  = 100
	submitQueueLength = 1000
)

// LogEntry represents a single log entry to be sent to the client.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Channel   string `json:"channel"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Operation string `json:"operation,omitempty"`
}

func (e LogEntry) level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// AppliedFilters defines the filtering criteria for a client.
type AppliedFilters struct {
	Channel Channel    // "all" matches every channel
	Level   slog.Level // minimum level delivered
}

// Matches reports whether entry passes the filters.
func (f AppliedFilters) Matches(entry LogEntry) bool {
	if f.Channel != "all" && f.Channel != "" && f.Channel != Channel(entry.Channel) {
		return false
	}
	return entry.level() >= f.Level
}

// Client is one stream listener. Channel is closed on unregister.
type Client struct {
	Channel chan []byte
	filters AppliedFilters
}

// LogBroadcaster fans log entries out to stream listeners. It keeps the most
// recent entries so a new listener starts with some context.
type LogBroadcaster struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan LogEntry
	backlog    []LogEntry
	backlogCap int
	mu         sync.RWMutex
	stop       chan struct{}
	stopOnce   sync.Once
}

var (
	broadcaster *LogBroadcaster
	once        sync.Once
)

// GetBroadcaster returns the process-wide broadcaster fed by every
// ChanneledLogger with BroadcastLogs enabled.
func GetBroadcaster() *LogBroadcaster {
	once.Do(func() {
		broadcaster = NewLogBroadcaster(defaultBacklog)
	})
	return broadcaster
}

// NewLogBroadcaster starts a broadcaster keeping up to backlog recent entries.
func NewLogBroadcaster(backlog int) *LogBroadcaster {
	b := &LogBroadcaster{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan LogEntry, submitQueueLength),
		backlogCap: backlog,
		stop:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *LogBroadcaster) run() {
	for {
		select {
		case <-b.stop:
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client.Channel)
			}
			b.mu.Unlock()
			return
		case client := <-b.register:
			b.replay(client)
			b.mu.Lock()
			b.clients[client] = struct{}{}
			b.mu.Unlock()
		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Channel)
			}
			b.mu.Unlock()
		case entry := <-b.broadcast:
			b.remember(entry)
			b.distribute(entry)
		}
	}
}

func (b *LogBroadcaster) remember(entry LogEntry) {
	if b.backlogCap <= 0 {
		return
	}
	if len(b.backlog) == b.backlogCap {
		copy(b.backlog, b.backlog[1:])
		b.backlog = b.backlog[:len(b.backlog)-1]
	}
	b.backlog = append(b.backlog, entry)
}

// replay sends matching backlog entries to a new client, oldest first, until
// its buffer is full.
func (b *LogBroadcaster) replay(client *Client) {
	for _, entry := range b.backlog {
		if !client.filters.Matches(entry) {
			continue
		}
		message, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		select {
		case client.Channel <- message:
		default:
			return
		}
	}
}

func (b *LogBroadcaster) distribute(entry LogEntry) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.clients) == 0 {
		return
	}

	message, err := json.Marshal(entry)
	if err != nil {
		return
	}
	for client := range b.clients {
		if !client.filters.Matches(entry) {
			continue
		}
		select {
		case client.Channel <- message:
		default:
			// slow client, drop
		}
	}
}

// SubmitLog queues an entry without blocking the caller.
func (b *LogBroadcaster) SubmitLog(entry LogEntry) {
	select {
	case b.broadcast <- entry:
	default:
	}
}

// NewClient creates a listener; it receives nothing until registered.
func (b *LogBroadcaster) NewClient(filters AppliedFilters) *Client {
	return &Client{
		Channel: make(chan []byte, clientBufferSize),
		filters: filters,
	}
}

// Shutdown stops the broadcaster loop and closes every client.
func (b *LogBroadcaster) Shutdown() {
	b.stopOnce.Do(func() { close(b.stop) })
}

func (b *LogBroadcaster) RegisterClient(client *Client) {
	select {
	case b.register <- client:
	case <-b.stop:
		close(client.Channel)
	}
}

func (b *LogBroadcaster) UnregisterClient(client *Client) {
	select {
	case b.unregister <- client:
	case <-b.stop:
	}
}

// ClientCount returns the number of registered listeners.
func (b *LogBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
