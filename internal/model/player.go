package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlayerID identifies a participant. IDs are case-normalized so "laksh" and
// " LAKSH " name the same player.
type PlayerID string

// BankID is the sentinel id used in entries for money entering or leaving
// the table. It never appears in a game's Players slice.
const BankID PlayerID = "BANK"

// NormalizePlayerID trims and upper-cases a raw player id
func NormalizePlayerID(raw string) PlayerID {
	return PlayerID(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsBank reports whether the id is the bank sentinel
func (id PlayerID) IsBank() bool {
	return id == BankID
}

// Player is one participant's running position within a single game
type Player struct {
	ID      PlayerID        `json:"id"`
	BuyIn   decimal.Decimal `json:"buy_in"`
	CashOut decimal.Decimal `json:"cash_out"`
	Profit  decimal.Decimal `json:"profit"`
}

// Bank holds the house side of every transfer that starts or ends at BANK
type Bank struct {
	BuyIn  decimal.Decimal `json:"buy_in"`
	Profit decimal.Decimal `json:"profit"`
}
