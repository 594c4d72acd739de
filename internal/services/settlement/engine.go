// Package settlement applies ledger entries to game snapshots.
//
// Every function here is pure: the input game is never modified and a new
// snapshot is returned on success. On error the input is still valid and
// nothing has been appended.
package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/mcoot/trackmyhand/internal/model"
)

// Apply applies one validated entry to g and returns the resulting snapshot.
//
// A game-over entry on a game that is already over returns g itself with a
// nil error; callers can compare pointers to detect the no-op.
func Apply(g *model.Game, e model.Entry) (*model.Game, error) {
	if err := CheckAllowed(g.State, e.Kind); err != nil {
		return nil, err
	}
	if e.Kind == model.EntryGameOver && g.IsOver() {
		return g, nil
	}
	if err := checkReferences(g, e); err != nil {
		return nil, err
	}

	next := g.Clone()
	if !e.Time.IsZero() {
		next.UpdatedAt = e.Time
	}

	switch e.Kind {
	case model.EntryInitialBuyIn, model.EntryBuyIn:
		if !e.SelfTransfer() {
			pay(next, e.From, e.To, e.Value(), true)
			if !e.To.IsBank() {
				next.Pot = next.Pot.Add(e.Value())
			}
		}
		appendEntry(next, e)

	case model.EntryInGameCashOut:
		if !e.SelfTransfer() {
			pay(next, e.From, e.To, e.Value(), true)
			addCashOut(next, e.From, e.Value())
		}
		appendEntry(next, e)

	case model.EntryPlayerJoined:
		next.Players = append(next.Players, model.Player{
			ID:      e.To,
			BuyIn:   decimal.Zero,
			CashOut: decimal.Zero,
			Profit:  decimal.Zero,
		})
		pay(next, e.From, e.To, e.Value(), false)
		next.Pot = next.Pot.Add(e.Value())
		appendEntry(next, e)

	case model.EntryCashOut:
		applyCashOut(next, e)

	case model.EntryGameOver:
		next.State = model.GameStateEnded
		appendEntry(next, e)

	case model.EntryExit:
		appendEntry(next, e)
	}

	return next, nil
}

// applyCashOut upserts the single cash-out entry allowed per source player.
// A revised cash-out reverses the earlier amount and takes over its log
// position and sequence number.
func applyCashOut(g *model.Game, e model.Entry) {
	idx := g.CashOutEntryIndex(e.From)
	if idx >= 0 {
		old := g.Entries[idx]
		unpay(g, old.From, old.To, old.Value())
		addCashOut(g, old.From, old.Value().Neg())
		e.Seq = old.Seq
		g.Entries[idx] = e
	} else {
		appendEntry(g, e)
	}

	pay(g, e.From, e.To, e.Value(), true)
	addCashOut(g, e.From, e.Value())
}

// pay moves amount from payer to receiver. The receiver's buy-in grows and,
// when chargeReceiver is set, its profit falls by the same amount. The
// payer's profit always grows.
func pay(g *model.Game, from, to model.PlayerID, amount decimal.Decimal, chargeReceiver bool) {
	receiverProfit := decimal.Zero
	if chargeReceiver {
		receiverProfit = amount.Neg()
	}
	adjust(g, to, amount, receiverProfit)
	adjust(g, from, decimal.Zero, amount)
}

// unpay is the exact inverse of pay with chargeReceiver set
func unpay(g *model.Game, from, to model.PlayerID, amount decimal.Decimal) {
	adjust(g, to, amount.Neg(), amount)
	adjust(g, from, decimal.Zero, amount.Neg())
}

func adjust(g *model.Game, id model.PlayerID, buyIn, profit decimal.Decimal) {
	if id.IsBank() {
		g.Bank.BuyIn = g.Bank.BuyIn.Add(buyIn)
		g.Bank.Profit = g.Bank.Profit.Add(profit)
		return
	}
	idx := g.PlayerIndex(id)
	g.Players[idx].BuyIn = g.Players[idx].BuyIn.Add(buyIn)
	g.Players[idx].Profit = g.Players[idx].Profit.Add(profit)
}

// addCashOut records money leaving the table through a player's cash-out
func addCashOut(g *model.Game, from model.PlayerID, amount decimal.Decimal) {
	g.CashOutTotal = g.CashOutTotal.Add(amount)
	if idx := g.PlayerIndex(from); idx >= 0 {
		g.Players[idx].CashOut = g.Players[idx].CashOut.Add(amount)
	}
}

func appendEntry(g *model.Game, e model.Entry) {
	e.Seq = len(g.Entries)
	g.Entries = append(g.Entries, e)
}

func checkReferences(g *model.Game, e model.Entry) error {
	if !e.Kind.MovesMoney() {
		return nil
	}
	if g.Bank == nil {
		return model.Statef("game %s has no bank", g.ID)
	}
	if !known(g, e.From) {
		return model.Referencef("player %s is not in game %s", e.From, g.ID)
	}
	if e.Kind == model.EntryPlayerJoined {
		if g.HasPlayer(e.To) {
			return model.Validationf("player %s already joined game %s", e.To, g.ID)
		}
		return nil
	}
	if !known(g, e.To) {
		return model.Referencef("player %s is not in game %s", e.To, g.ID)
	}
	return nil
}

func known(g *model.Game, id model.PlayerID) bool {
	return id.IsBank() || g.HasPlayer(id)
}
