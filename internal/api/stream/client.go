package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mcoot/trackmyhand/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64

	// Reconnect delay suggested to clients, in milliseconds
	retryMillis = 3000
)

// Client is one connected stream reader
type Client struct {
	remote      string
	connectedAt time.Time
	send        chan []byte
}

// NewClient creates a client for the given remote address
func NewClient(remote string) *Client {
	return &Client{
		remote:      remote,
		connectedAt: time.Now(),
		send:        make(chan []byte, sendBufferSize),
	}
}

// Serve streams a game's events to w until the client disconnects or the
// game's hub closes. initial is sent first as a game event. When follow is
// false only the initial event is written.
func (m *Manager) Serve(w http.ResponseWriter, r *http.Request, gameID model.GameID, initial any, follow bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	data, err := json.Marshal(initial)
	if err != nil {
		m.logger.Error("stream failed to encode snapshot",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	var hub *Hub
	var client *Client
	if follow {
		client = NewClient(r.RemoteAddr)
		hub = m.subscribe(gameID, client)
		defer m.unsubscribe(gameID, hub, client)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("retry: " + strconv.Itoa(retryMillis) + "\n\n"))
	_, _ = w.Write(formatEvent(EventGame, string(data)))
	flusher.Flush()

	if !follow {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
