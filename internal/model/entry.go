package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind is the closed set of ledger events
type EntryKind string

const (
	EntryInitialBuyIn  EntryKind = "initial-buy-in"
	EntryBuyIn         EntryKind = "buy-in"
	EntryInGameCashOut EntryKind = "in-game-cash-out"
	EntryCashOut       EntryKind = "cash-out"
	EntryPlayerJoined  EntryKind = "player-joined"
	EntryGameOver      EntryKind = "game-over"
	EntryExit          EntryKind = "exit"
)

// IsValid reports whether k is one of the known kinds
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryInitialBuyIn, EntryBuyIn, EntryInGameCashOut, EntryCashOut,
		EntryPlayerJoined, EntryGameOver, EntryExit:
		return true
	}
	return false
}

// MovesMoney reports whether entries of this kind carry an amount
func (k EntryKind) MovesMoney() bool {
	return k != EntryGameOver && k != EntryExit
}

// Entry is one record in a game's append-only log
type Entry struct {
	Seq    int       `json:"seq"`
	Time   time.Time `json:"time"`
	Kind   EntryKind `json:"kind"`
	From   PlayerID  `json:"from"`
	To     PlayerID  `json:"to"`
	Amount string    `json:"amount"`
}

// Value returns the parsed amount, zero for marker entries
func (e Entry) Value() decimal.Decimal {
	if e.Amount == "" {
		return decimal.Zero
	}
	d, err := ParseAmount(e.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SelfTransfer reports whether the entry starts and ends at the same party
func (e Entry) SelfTransfer() bool {
	return e.From == e.To
}

// EntryRequest is the caller's intent before validation and sequencing
type EntryRequest struct {
	Kind   EntryKind `json:"kind"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Amount string    `json:"amount"`
}

// ValidateEntry checks that an entry is well-formed and returns it with
// normalized ids and a two-place amount. Roster membership is checked by
// the settlement engine, which reports ErrReference instead.
func ValidateEntry(req EntryRequest) (Entry, error) {
	if !req.Kind.IsValid() {
		return Entry{}, Validationf("unknown entry kind %q", req.Kind)
	}

	entry := Entry{
		Kind: req.Kind,
		From: NormalizePlayerID(req.From),
		To:   NormalizePlayerID(req.To),
	}

	if !req.Kind.MovesMoney() {
		if req.Amount != "" {
			amount, err := ParseAmount(req.Amount)
			if err != nil {
				return Entry{}, err
			}
			if !amount.IsZero() {
				return Entry{}, Validationf("%s entries carry no amount", req.Kind)
			}
		}
		return entry, nil
	}

	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return Entry{}, err
	}
	if entry.From == "" || entry.To == "" {
		return Entry{}, Validationf("%s entries need both from and to", req.Kind)
	}

	switch req.Kind {
	case EntryInitialBuyIn, EntryPlayerJoined:
		if entry.To.IsBank() {
			return Entry{}, Validationf("%s must be paid to a player", req.Kind)
		}
	case EntryInGameCashOut, EntryCashOut:
		if !entry.To.IsBank() {
			return Entry{}, Validationf("%s must be paid to %s", req.Kind, BankID)
		}
		if entry.From.IsBank() {
			return Entry{}, Validationf("%s must come from a player", req.Kind)
		}
	}

	entry.Amount = FormatAmount(amount)
	return entry, nil
}
