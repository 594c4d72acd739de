// Package stream pushes live game updates to watching clients as
// server-sent events.
package stream

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/trackmyhand/internal/metrics"
	"github.com/mcoot/trackmyhand/internal/model"
)

// Event names sent on a game stream
const (
	EventGame   = "game"
	EventClock  = "clock"
	EventClosed = "closed"
)

// Hub fans events out to every client following one game
type Hub struct {
	gameID  model.GameID
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub for a game. Run must be started before broadcasts
// reach clients.
func NewHub(gameID model.GameID, logger *slog.Logger) *Hub {
	return &Hub{
		gameID:    gameID,
		clients:   make(map[*Client]bool),
		logger:    logger.With(slog.String("game_id", string(gameID))),
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
	}
}

// Run delivers broadcasts until the hub is closed. Messages queued before
// Close are still delivered, then every client's channel is closed.
func (h *Hub) Run() {
	for {
		select {
		case message := <-h.broadcast:
			h.deliver(message)

		case <-h.done:
			h.drain()

			h.mu.Lock()
			count := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Debug("stream hub stopped", slog.Int("disconnected_clients", count))
			return
		}
	}
}

func (h *Hub) drain() {
	for {
		select {
		case message := <-h.broadcast:
			h.deliver(message)
		default:
			return
		}
	}
}

func (h *Hub) deliver(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("stream messages dropped, client buffer full", slog.Int("dropped", dropped))
	}
}

// Register adds a client. It reports false when the hub is already closed.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return false
	default:
	}
	h.clients[client] = true
	return true
}

// Unregister removes a client and closes its channel. Unregistering a client
// the hub no longer holds does nothing.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Debug("stream client left",
			slog.String("remote", client.remote),
			slog.Duration("connection_duration", time.Since(client.connectedAt)))
	}
}

// Broadcast queues a raw message for every client
func (h *Hub) Broadcast(message []byte) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("stream broadcast dropped, hub buffer full")
	}
}

// BroadcastEvent queues a named event
func (h *Hub) BroadcastEvent(event, data string) {
	h.Broadcast(formatEvent(event, data))
}

// Close shuts the hub down. Closing twice does nothing.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatEvent renders an event in the text/event-stream format. Every line
// of data gets its own "data: " prefix.
func formatEvent(event, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + event + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits on newlines, dropping carriage returns and one trailing
// newline. The empty string is a single empty line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// Manager owns one hub per followed game. A hub exists only while a client
// is connected or a close is pending.
type Manager struct {
	hubs    map[model.GameID]*Hub
	mu      sync.Mutex
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewManager creates an empty Manager
func NewManager(m *metrics.Metrics, logger *slog.Logger) *Manager {
	return &Manager{
		hubs:    make(map[model.GameID]*Hub),
		metrics: m,
		logger:  logger.With(slog.String("component", "stream")),
	}
}

// subscribe registers a new client on the game's hub, creating the hub when
// it is the first
func (m *Manager) subscribe(gameID model.GameID, client *Client) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[gameID]
	if !ok {
		hub = NewHub(gameID, m.logger)
		m.hubs[gameID] = hub
		go hub.Run()
	}
	hub.Register(client)
	m.metrics.StreamSubscribed()
	return hub
}

// unsubscribe removes a client and drops its hub once empty
func (m *Manager) unsubscribe(gameID model.GameID, hub *Hub, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub.Unregister(client)
	m.metrics.StreamUnsubscribed()
	if hub.ClientCount() == 0 && m.hubs[gameID] == hub {
		hub.Close()
		delete(m.hubs, gameID)
	}
}

// Hub returns the hub for a game, or nil when nobody is following it
func (m *Manager) Hub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[gameID]
}

// Remove closes a game's hub after its queued events are delivered
func (m *Manager) Remove(gameID model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		hub.Close()
		delete(m.hubs, gameID)
	}
}

// CloseAll closes every hub, ending all open streams
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}
