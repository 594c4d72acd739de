package tracker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/trackmyhand/internal/dependencies/clock"
	"github.com/mcoot/trackmyhand/internal/metrics"
	"github.com/mcoot/trackmyhand/internal/model"
)

// Manager owns the clocks of all games in this process, keyed by game id
type Manager struct {
	clock      clock.Clock
	checkpoint Checkpointer
	metrics    *metrics.Metrics
	logger     *slog.Logger
	cfg        Config

	mu       sync.Mutex
	trackers map[model.GameID]*Tracker
}

// NewManager creates a new Manager
func NewManager(clock clock.Clock, checkpoint Checkpointer, metrics *metrics.Metrics, logger *slog.Logger, cfg Config) *Manager {
	return &Manager{
		clock:      clock,
		checkpoint: checkpoint,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		trackers:   make(map[model.GameID]*Tracker),
	}
}

// Start runs the clock for a game, creating it from initial if the game has
// no clock yet. Starting a running clock does nothing.
func (m *Manager) Start(gameID model.GameID, initial model.Elapsed) error {
	m.mu.Lock()
	t, ok := m.trackers[gameID]
	if !ok {
		t = New(gameID, initial, m.clock, m.checkpoint, m.metrics, m.logger, m.cfg)
		m.trackers[gameID] = t
	}
	m.mu.Unlock()
	return t.Start()
}

// Pause pauses a game's clock. Unknown games are ignored.
func (m *Manager) Pause(gameID model.GameID) {
	if t, ok := m.get(gameID); ok {
		t.Pause()
	}
}

// Resume restarts a paused clock
func (m *Manager) Resume(gameID model.GameID) error {
	t, ok := m.get(gameID)
	if !ok {
		return model.Statef("game %s has no clock", gameID)
	}
	return t.Resume()
}

// Stop stops and forgets a game's clock. Unknown games are ignored.
func (m *Manager) Stop(gameID model.GameID) {
	m.mu.Lock()
	t, ok := m.trackers[gameID]
	delete(m.trackers, gameID)
	m.mu.Unlock()

	if ok {
		t.Stop()
	}
}

// StopAndWait stops a game's clock and waits until its final checkpoint
// has been written, so a following read of the game sees the last value
func (m *Manager) StopAndWait(ctx context.Context, gameID model.GameID) error {
	m.mu.Lock()
	t, ok := m.trackers[gameID]
	delete(m.trackers, gameID)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	t.Stop()
	select {
	case <-t.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Elapsed returns a game's live clock value
func (m *Manager) Elapsed(gameID model.GameID) (model.Elapsed, bool) {
	t, ok := m.get(gameID)
	if !ok {
		return model.Elapsed{}, false
	}
	return t.Elapsed(), true
}

// State returns a game's clock state, idle for games without a clock
func (m *Manager) State(gameID model.GameID) State {
	t, ok := m.get(gameID)
	if !ok {
		return StateIdle
	}
	return t.State()
}

// StopAll stops every clock and waits for final checkpoints or ctx
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	trackers := m.trackers
	m.trackers = make(map[model.GameID]*Tracker)
	m.mu.Unlock()

	for _, t := range trackers {
		t.Stop()
	}
	for _, t := range trackers {
		select {
		case <-t.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Manager) get(gameID model.GameID) (*Tracker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trackers[gameID]
	return t, ok
}
