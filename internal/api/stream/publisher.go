package stream

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/trackmyhand/internal/model"
)

// Publisher sends updates to a game's followers. Games nobody follows cost
// nothing.
type Publisher struct {
	hubs   *Manager
	logger *slog.Logger
}

// NewPublisher creates a Publisher over hubs
func NewPublisher(hubs *Manager, logger *slog.Logger) *Publisher {
	return &Publisher{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "stream-publisher")),
	}
}

// Publish sends payload as a JSON event to everyone following the game
func (p *Publisher) Publish(gameID model.GameID, event string, payload any) {
	hub := p.hubs.Hub(gameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("stream failed to encode event",
			slog.String("game_id", string(gameID)),
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(event, string(data))
}

// Close tells followers the game's stream is over and disconnects them
func (p *Publisher) Close(gameID model.GameID, reason string) {
	p.Publish(gameID, EventClosed, map[string]string{"reason": reason})
	p.hubs.Remove(gameID)
}
