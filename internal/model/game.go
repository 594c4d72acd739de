package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// GameID uniquely identifies a game
type GameID string

// GameCode is the short code players use to find a game
type GameCode string

// GameState is a game's lifecycle phase
type GameState string

const (
	GameStateSetup    GameState = "setup"    // Roster being assembled
	GameStateActive   GameState = "active"   // Clock may run, transfers allowed
	GameStateEnded    GameState = "ended"    // Only cash-outs and exit allowed
	GameStateArchived GameState = "archived" // Statistics folded, immutable
)

// MinPlayers is the smallest roster a game can start with
const MinPlayers = 2

// Game is the ledger snapshot for one session. Values returned by the
// settlement engine are never mutated afterwards; use Clone to derive.
type Game struct {
	ID        GameID          `json:"id"`
	Code      GameCode        `json:"code"`
	State     GameState       `json:"state"`
	BuyInUnit decimal.Decimal `json:"buy_in_unit"`

	Pot          decimal.Decimal `json:"pot"`
	CashOutTotal decimal.Decimal `json:"cash_out_total"`

	// Bank is set while the game is active or ended, nil otherwise
	Bank *Bank `json:"bank,omitempty"`

	Players []Player `json:"players"`
	Entries []Entry  `json:"entries"`

	Elapsed   Elapsed   `json:"elapsed"`
	StartedAt time.Time `json:"started_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy
func (g *Game) Clone() *Game {
	c := *g
	c.Players = slices.Clone(g.Players)
	c.Entries = slices.Clone(g.Entries)
	if g.Bank != nil {
		bank := *g.Bank
		c.Bank = &bank
	}
	return &c
}

// PlayerIndex returns the roster position of id, or -1
func (g *Game) PlayerIndex(id PlayerID) int {
	return slices.IndexFunc(g.Players, func(p Player) bool { return p.ID == id })
}

// HasPlayer reports whether id is in the roster
func (g *Game) HasPlayer(id PlayerID) bool {
	return g.PlayerIndex(id) >= 0
}

// Player returns a copy of the roster entry for id
func (g *Game) Player(id PlayerID) (Player, bool) {
	idx := g.PlayerIndex(id)
	if idx < 0 {
		return Player{}, false
	}
	return g.Players[idx], true
}

// PlayerIDs lists the roster in order
func (g *Game) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.ID
	}
	return ids
}

// IsOver reports whether a game-over entry has been applied
func (g *Game) IsOver() bool {
	return g.State == GameStateEnded || g.State == GameStateArchived
}

// Reconciled reports whether every dollar paid in has been paid out
func (g *Game) Reconciled() bool {
	return g.Pot.Equal(g.CashOutTotal)
}

// CashOutEntryIndex returns the log position of the cash-out entry from
// the given player, or -1
func (g *Game) CashOutEntryIndex(from PlayerID) int {
	return slices.IndexFunc(g.Entries, func(e Entry) bool {
		return e.Kind == EntryCashOut && e.From == from
	})
}

// GameSummary is a lightweight listing record
type GameSummary struct {
	ID          GameID    `json:"id"`
	Code        GameCode  `json:"code"`
	State       GameState `json:"state"`
	Pot         string    `json:"pot"`
	PlayerCount int       `json:"player_count"`
	Elapsed     Elapsed   `json:"elapsed"`
	StartedAt   time.Time `json:"started_at"`
}

// Summary builds a listing record
func (g *Game) Summary() GameSummary {
	return GameSummary{
		ID:          g.ID,
		Code:        g.Code,
		State:       g.State,
		Pot:         FormatAmount(g.Pot),
		PlayerCount: len(g.Players),
		Elapsed:     g.Elapsed,
		StartedAt:   g.StartedAt,
	}
}

// SortTime is the time listings order by: the start time, or the creation
// time for games still in setup
func (g *Game) SortTime() time.Time {
	if g.StartedAt.IsZero() {
		return g.CreatedAt
	}
	return g.StartedAt
}
