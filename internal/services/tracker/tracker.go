// Package tracker runs the per-game session clock and checkpoints its value
// to storage without blocking the tick loop.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/trackmyhand/internal/dependencies/clock"
	"github.com/mcoot/trackmyhand/internal/metrics"
	"github.com/mcoot/trackmyhand/internal/model"
)

// Checkpointer persists a game's elapsed time
type Checkpointer interface {
	UpdateElapsed(ctx context.Context, gameID model.GameID, elapsed model.Elapsed) error
}

// State is a tracker's run state
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// Config holds tracker timing settings
type Config struct {
	// TickInterval is the wall time between ticks; each tick adds one second
	TickInterval time.Duration
	// WriteTimeout bounds a single checkpoint write
	WriteTimeout time.Duration
}

// DefaultConfig returns default tracker configuration
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Tracker is the clock for one game. Ticks run on their own goroutine;
// checkpoints go to a single writer goroutine that only ever holds the most
// recent value, so writes never overlap and a slow store never delays a
// tick.
type Tracker struct {
	gameID     model.GameID
	clock      clock.Clock
	checkpoint Checkpointer
	metrics    *metrics.Metrics
	logger     *slog.Logger
	cfg        Config

	mu       sync.Mutex
	state    State
	elapsed  model.Elapsed
	stopTick chan struct{}
	tickDone chan struct{}

	offerMu sync.Mutex
	latest  chan model.Elapsed
	quit    chan struct{}
	done    chan struct{}
}

// New creates an idle tracker starting from initial
func New(gameID model.GameID, initial model.Elapsed, clock clock.Clock, checkpoint Checkpointer, metrics *metrics.Metrics, logger *slog.Logger, cfg Config) *Tracker {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return &Tracker{
		gameID:     gameID,
		clock:      clock,
		checkpoint: checkpoint,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		state:      StateIdle,
		elapsed:    initial,
		latest:     make(chan model.Elapsed, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins ticking. Starting a running tracker does nothing; starting a
// paused one resumes it. A stopped tracker cannot be restarted.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateRunning:
		return nil
	case StateStopped:
		return model.Statef("clock for game %s is stopped", t.gameID)
	case StateIdle:
		go t.write()
	}

	t.stopTick = make(chan struct{})
	t.tickDone = make(chan struct{})
	go t.run(t.clock.NewTicker(t.cfg.TickInterval), t.stopTick, t.tickDone)

	t.state = StateRunning
	t.metrics.TrackerStarted()
	t.logger.Debug("clock started", slog.String("game_id", string(t.gameID)))
	return nil
}

// Resume is Start under the name the pause control uses
func (t *Tracker) Resume() error {
	return t.Start()
}

// Pause stops ticking and checkpoints the current value. Pausing a tracker
// that is not running does nothing.
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return
	}
	t.state = StatePaused
	t.haltTicks()
	t.offer(t.elapsed)
}

// Stop halts the tracker for good. Ticking ends before Stop returns; the
// final checkpoint is written in the background and Done is closed once it
// completes. Stopping twice does nothing.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.state
	if prev == StateStopped {
		return
	}
	t.state = StateStopped

	switch prev {
	case StateIdle:
		// The writer was never started
		close(t.done)
		return
	case StateRunning:
		t.haltTicks()
		t.offer(t.elapsed)
	}
	close(t.quit)
}

// Done is closed once a stopped tracker has written its last checkpoint
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

// Elapsed returns the current clock value
func (t *Tracker) Elapsed() model.Elapsed {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// State returns the run state
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// haltTicks stops the tick goroutine and waits for it. Caller holds mu and
// has already moved state away from running.
func (t *Tracker) haltTicks() {
	close(t.stopTick)
	done := t.tickDone
	// The tick goroutine needs mu to finish an in-flight tick
	t.mu.Unlock()
	<-done
	t.mu.Lock()
	t.metrics.TrackerStopped()
}

func (t *Tracker) run(ticker clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			t.tick(stop)
		}
	}
}

func (t *Tracker) tick(stop <-chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A pause may have raced this tick
	select {
	case <-stop:
		return
	default:
	}
	t.elapsed = t.elapsed.Tick()
	t.offer(t.elapsed)
}

// offer hands v to the writer, replacing any value it has not picked up yet
func (t *Tracker) offer(v model.Elapsed) {
	t.offerMu.Lock()
	defer t.offerMu.Unlock()

	select {
	case t.latest <- v:
		return
	default:
	}
	select {
	case <-t.latest:
	default:
	}
	t.latest <- v
}

func (t *Tracker) write() {
	defer close(t.done)
	for {
		select {
		case v := <-t.latest:
			t.persist(v)
		case <-t.quit:
			select {
			case v := <-t.latest:
				t.persist(v)
			default:
			}
			return
		}
	}
}

func (t *Tracker) persist(v model.Elapsed) {
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.WriteTimeout)
	defer cancel()

	if err := t.checkpoint.UpdateElapsed(ctx, t.gameID, v); err != nil {
		t.metrics.CheckpointFailed()
		t.logger.Warn("clock checkpoint failed",
			slog.String("game_id", string(t.gameID)),
			slog.String("elapsed", v.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	t.metrics.CheckpointWritten()
}
