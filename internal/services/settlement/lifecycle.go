package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcoot/trackmyhand/internal/model"
)

// Start moves a game from setup to active. It opens the bank and records an
// initial buy-in from the bank to every player for the game's buy-in unit.
func Start(g *model.Game, now time.Time) (*model.Game, error) {
	if g.State != model.GameStateSetup {
		return nil, model.Statef("game %s is %s, not setup", g.ID, g.State)
	}
	if len(g.Players) < model.MinPlayers {
		return nil, model.Validationf("need at least %d players, have %d", model.MinPlayers, len(g.Players))
	}
	if !g.BuyInUnit.IsPositive() {
		return nil, model.Validationf("buy-in unit must be positive")
	}

	next := g.Clone()
	next.State = model.GameStateActive
	next.Bank = &model.Bank{BuyIn: decimal.Zero, Profit: decimal.Zero}
	next.StartedAt = now
	next.UpdatedAt = now

	amount := model.FormatAmount(g.BuyInUnit)
	for _, id := range g.PlayerIDs() {
		var err error
		next, err = Apply(next, model.Entry{
			Time:   now,
			Kind:   model.EntryInitialBuyIn,
			From:   model.BankID,
			To:     id,
			Amount: amount,
		})
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// Archive moves an ended game to archived. The pot must equal the cash-out
// total; otherwise a *model.ReconciliationError is returned. The bank is
// closed on success.
func Archive(g *model.Game, now time.Time) (*model.Game, error) {
	switch g.State {
	case model.GameStateArchived:
		return nil, model.Statef("game %s is already archived", g.ID)
	case model.GameStateEnded:
	default:
		return nil, model.Statef("game %s is %s, not ended", g.ID, g.State)
	}

	if !g.Reconciled() {
		return nil, &model.ReconciliationError{Pot: g.Pot, CashOut: g.CashOutTotal}
	}

	next := g.Clone()
	next.State = model.GameStateArchived
	next.Bank = nil
	next.UpdatedAt = now
	return next, nil
}

// AddPlayer appends a player to a game that has not started yet
func AddPlayer(g *model.Game, id model.PlayerID) (*model.Game, error) {
	if g.State != model.GameStateSetup {
		return nil, model.Statef("players can only be added during setup")
	}
	if id == "" || id.IsBank() {
		return nil, model.Validationf("invalid player id %q", id)
	}
	if g.HasPlayer(id) {
		return nil, model.Validationf("player %s is already in game %s", id, g.ID)
	}

	next := g.Clone()
	next.Players = append(next.Players, model.Player{
		ID:      id,
		BuyIn:   decimal.Zero,
		CashOut: decimal.Zero,
		Profit:  decimal.Zero,
	})
	return next, nil
}
