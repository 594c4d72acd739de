package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mcoot/trackmyhand/internal/dependencies/clock"
	"github.com/mcoot/trackmyhand/internal/dependencies/random"
	"github.com/mcoot/trackmyhand/internal/metrics"
	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/services/profile"
	"github.com/mcoot/trackmyhand/internal/services/settlement"
	"github.com/mcoot/trackmyhand/internal/services/stats"
	"github.com/mcoot/trackmyhand/internal/storage"
)

// Config holds configuration for the game controller
type Config struct {
	// DefaultBuyIn is used when a game is created without a buy-in unit
	DefaultBuyIn decimal.Decimal
}

// DefaultConfig returns default controller configuration
func DefaultConfig() Config {
	return Config{
		DefaultBuyIn: decimal.NewFromInt(5),
	}
}

// ArchiveResult describes what archiving a game did
type ArchiveResult struct {
	Game *model.Game
	// Deleted is set when a zero-length game was removed instead of archived
	Deleted bool
	Report  *stats.FoldReport
}

// Controller drives games through setup, play, settlement and archival.
// Every mutation of one game is serialized and persisted before returning.
type Controller struct {
	storage    storage.Storage
	profiles   *profile.Service
	aggregator *stats.Aggregator
	clock      clock.Clock
	random     random.Random
	metrics    *metrics.Metrics
	logger     *slog.Logger
	cfg        Config

	mu    sync.Mutex
	locks map[model.GameID]*gameLock
}

// gameLock serializes one game's mutations. refs counts holders and waiters
// so the entry can be dropped once nobody needs it.
type gameLock struct {
	sync.Mutex
	refs int
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	profiles *profile.Service,
	aggregator *stats.Aggregator,
	clock clock.Clock,
	random random.Random,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	if !cfg.DefaultBuyIn.IsPositive() {
		cfg.DefaultBuyIn = DefaultConfig().DefaultBuyIn
	}
	return &Controller{
		storage:    storage,
		profiles:   profiles,
		aggregator: aggregator,
		clock:      clock,
		random:     random,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		locks:      make(map[model.GameID]*gameLock),
	}
}

// CreateGame creates a game in setup with the given roster. An empty buyIn
// uses the configured default unit.
func (c *Controller) CreateGame(ctx context.Context, players []string, buyIn string) (*model.Game, error) {
	unit := c.cfg.DefaultBuyIn
	if strings.TrimSpace(buyIn) != "" {
		parsed, err := model.ParseAmount(buyIn)
		if err != nil {
			return nil, err
		}
		if !parsed.IsPositive() {
			return nil, model.Validationf("buy-in unit must be positive")
		}
		unit = parsed
	}

	now := c.clock.Now()
	id := model.GameID(c.random.UUID())
	game := &model.Game{
		ID:           id,
		Code:         ShareCode(id),
		State:        model.GameStateSetup,
		BuyInUnit:    unit,
		Pot:          decimal.Zero,
		CashOutTotal: decimal.Zero,
		Players:      []model.Player{},
		Entries:      []model.Entry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, raw := range players {
		next, err := settlement.AddPlayer(game, model.NormalizePlayerID(raw))
		if err != nil {
			return nil, err
		}
		game = next
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, model.Persistence("save game", err)
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("code", string(game.Code)),
		slog.Int("player_count", len(game.Players)),
		slog.String("buy_in", model.FormatAmount(unit)),
	)
	return game, nil
}

// AddPlayer adds a player to a game still in setup
func (c *Controller) AddPlayer(ctx context.Context, gameID model.GameID, player string) (*model.Game, error) {
	return c.update(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		return settlement.AddPlayer(g, model.NormalizePlayerID(player))
	})
}

// StartGame opens the bank, records every player's initial buy-in and
// makes sure each player has a profile to fold results into
func (c *Controller) StartGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	game, err := c.update(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		next, err := settlement.Start(g, c.clock.Now())
		if err != nil {
			return nil, err
		}
		for _, id := range next.PlayerIDs() {
			if _, _, err := c.profiles.EnsureUser(ctx, id); err != nil {
				return nil, err
			}
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	for _, e := range game.Entries {
		c.metrics.EntryApplied(e.Kind)
	}
	c.logger.Info("game started",
		slog.String("game_id", string(game.ID)),
		slog.Int("player_count", len(game.Players)),
		slog.String("pot", model.FormatAmount(game.Pot)),
	)
	return game, nil
}

// RecordEntry validates, applies and persists one ledger entry
func (c *Controller) RecordEntry(ctx context.Context, gameID model.GameID, req model.EntryRequest) (*model.Game, error) {
	entry, err := model.ValidateEntry(req)
	if err != nil {
		c.metrics.EntryRejected(err)
		return nil, err
	}

	applied := false
	game, err := c.update(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		entry.Time = c.clock.Now()
		next, err := settlement.Apply(g, entry)
		applied = err == nil && next != g
		return next, err
	})
	if err != nil {
		if !errors.Is(err, model.ErrPersistence) && !errors.Is(err, model.ErrGameNotFound) {
			c.metrics.EntryRejected(err)
		}
		return nil, err
	}

	if applied {
		c.metrics.EntryApplied(entry.Kind)
		c.logger.Info("entry recorded",
			slog.String("game_id", string(gameID)),
			slog.String("kind", string(entry.Kind)),
			slog.String("from", string(entry.From)),
			slog.String("to", string(entry.To)),
			slog.String("amount", entry.Amount),
		)
	}
	return game, nil
}

// JoinPlayer adds a late player funded by the bank. An empty amount uses
// the game's buy-in unit.
func (c *Controller) JoinPlayer(ctx context.Context, gameID model.GameID, player, amount string) (*model.Game, error) {
	id := model.NormalizePlayerID(player)
	if id == "" || id.IsBank() {
		return nil, model.Validationf("invalid player id %q", player)
	}

	if strings.TrimSpace(amount) == "" {
		game, err := c.GetGame(ctx, gameID)
		if err != nil {
			return nil, err
		}
		amount = model.FormatAmount(game.BuyInUnit)
	}

	game, err := c.RecordEntry(ctx, gameID, model.EntryRequest{
		Kind:   model.EntryPlayerJoined,
		From:   string(model.BankID),
		To:     string(id),
		Amount: amount,
	})
	if err != nil {
		return nil, err
	}

	if _, _, err := c.profiles.EnsureUser(ctx, id); err != nil {
		c.logger.Warn("failed to create profile for joined player",
			slog.String("game_id", string(gameID)),
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
	return game, nil
}

// EndGame records game-over. Ending a game that is already over is a no-op.
func (c *Controller) EndGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.RecordEntry(ctx, gameID, model.EntryRequest{Kind: model.EntryGameOver})
}

// CashOut records or revises a player's final cash-out
func (c *Controller) CashOut(ctx context.Context, gameID model.GameID, player, amount string) (*model.Game, error) {
	return c.RecordEntry(ctx, gameID, model.EntryRequest{
		Kind:   model.EntryCashOut,
		From:   player,
		To:     string(model.BankID),
		Amount: amount,
	})
}

// ArchiveGame settles an ended game. A game with no elapsed time is deleted
// instead. Otherwise the pot must match the cash-out total, the game is
// archived and every player's profile is updated. A fold failure is
// returned alongside the result: the game stays archived and the report
// lists the players that were not updated.
func (c *Controller) ArchiveGame(ctx context.Context, gameID model.GameID) (*ArchiveResult, error) {
	unlock := c.lock(gameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, model.Persistence("get game", err)
	}

	switch game.State {
	case model.GameStateArchived:
		return nil, model.Statef("game %s is already archived", gameID)
	case model.GameStateEnded:
	default:
		return nil, model.Statef("game %s is %s, not ended", gameID, game.State)
	}

	if game.Elapsed.IsZero() {
		if err := c.storage.DeleteGame(ctx, gameID); err != nil {
			return nil, model.Persistence("delete game", err)
		}
		c.metrics.GameDeleted()
		c.logger.Info("zero-length game deleted", slog.String("game_id", string(gameID)))
		return &ArchiveResult{Game: game, Deleted: true}, nil
	}

	archived, err := settlement.Archive(game, c.clock.Now())
	if err != nil {
		if errors.Is(err, model.ErrReconciliation) {
			c.metrics.ReconciliationRefused()
			c.logger.Warn("archive refused",
				slog.String("game_id", string(gameID)),
				slog.String("pot", model.FormatAmount(game.Pot)),
				slog.String("cash_out", model.FormatAmount(game.CashOutTotal)),
			)
		}
		return nil, err
	}

	if err := c.storage.SaveGame(ctx, archived); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return nil, model.Persistence("save game", err)
	}
	c.metrics.GameArchived()

	report, err := c.aggregator.Fold(ctx, archived)
	result := &ArchiveResult{Game: archived, Report: report}

	c.logger.Info("game archived",
		slog.String("game_id", string(gameID)),
		slog.String("pot", model.FormatAmount(archived.Pot)),
		slog.String("elapsed", archived.Elapsed.String()),
	)
	return result, err
}

// UpdateElapsed persists a clock checkpoint. Checkpoints older than the
// stored value are ignored so a late write cannot rewind the clock.
func (c *Controller) UpdateElapsed(ctx context.Context, gameID model.GameID, elapsed model.Elapsed) error {
	_, err := c.update(ctx, gameID, func(g *model.Game) (*model.Game, error) {
		switch g.State {
		case model.GameStateActive, model.GameStateEnded:
		default:
			return nil, model.Statef("game %s is %s, clock is not running", g.ID, g.State)
		}
		if !g.Elapsed.Before(elapsed) {
			return g, nil
		}
		next := g.Clone()
		next.Elapsed = elapsed
		return next, nil
	})
	return err
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, model.Persistence("get game", err)
	}
	return game, nil
}

// ListGames returns up to limit games, most recently started first
func (c *Controller) ListGames(ctx context.Context, limit int) ([]*model.Game, error) {
	games, err := c.storage.ListGames(ctx, limit)
	if err != nil {
		return nil, model.Persistence("list games", err)
	}
	return games, nil
}

func (c *Controller) CountGames(ctx context.Context) (int, error) {
	n, err := c.storage.CountGames(ctx)
	if err != nil {
		return 0, model.Persistence("count games", err)
	}
	return n, nil
}

// update runs fn on the stored game under the game's lock and saves the
// result. When fn returns its input unchanged nothing is written.
func (c *Controller) update(ctx context.Context, gameID model.GameID, fn func(*model.Game) (*model.Game, error)) (*model.Game, error) {
	unlock := c.lock(gameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, model.Persistence("get game", err)
	}

	next, err := fn(game)
	if err != nil {
		return nil, err
	}
	if next == game {
		return game, nil
	}

	if err := c.storage.SaveGame(ctx, next); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return nil, model.Persistence("save game", err)
	}
	return next, nil
}

func (c *Controller) lock(gameID model.GameID) func() {
	c.mu.Lock()
	l, ok := c.locks[gameID]
	if !ok {
		l = &gameLock{}
		c.locks[gameID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, gameID)
		}
		c.mu.Unlock()
	}
}

// heldLocks reports how many games currently have a lock entry
func (c *Controller) heldLocks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}

// ShareCode derives the short code players type to find a game: the first
// and last three characters of its id, upper-cased
func ShareCode(id model.GameID) model.GameCode {
	s := strings.ToUpper(string(id))
	if len(s) <= 6 {
		return model.GameCode(s)
	}
	return model.GameCode(s[:3] + s[len(s)-3:])
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, players []string, buyIn string) (*model.Game, error)
	AddPlayer(ctx context.Context, gameID model.GameID, player string) (*model.Game, error)
	StartGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	RecordEntry(ctx context.Context, gameID model.GameID, req model.EntryRequest) (*model.Game, error)
	JoinPlayer(ctx context.Context, gameID model.GameID, player, amount string) (*model.Game, error)
	EndGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	CashOut(ctx context.Context, gameID model.GameID, player, amount string) (*model.Game, error)
	ArchiveGame(ctx context.Context, gameID model.GameID) (*ArchiveResult, error)
	UpdateElapsed(ctx context.Context, gameID model.GameID, elapsed model.Elapsed) error
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	ListGames(ctx context.Context, limit int) ([]*model.Game, error)
	CountGames(ctx context.Context) (int, error)
}

var _ ControllerInterface = (*Controller)(nil)
