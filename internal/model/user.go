package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// UserID is a player's cross-game identity. It shares the PlayerID
// normalization so a roster entry maps to exactly one profile.
type UserID = PlayerID

// User is the lifetime profile folded from archived games
type User struct {
	ID          UserID          `json:"id"`
	PINHash     string          `json:"pin_hash,omitempty"`
	IsFavorite  bool            `json:"is_favorite"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	TotalBuyIn  decimal.Decimal `json:"total_buy_in"`

	// ProfitData is the cumulative profit after each session, starting at 0
	ProfitData []decimal.Decimal `json:"profit_data"`
	TotalWins  int               `json:"total_wins"`

	// MinutesPlayed is the lifetime time at the table
	MinutesPlayed int       `json:"minutes_played"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser returns an empty profile
func NewUser(id UserID, now time.Time) *User {
	return &User{
		ID:          id,
		TotalProfit: decimal.Zero,
		TotalBuyIn:  decimal.Zero,
		ProfitData:  []decimal.Decimal{decimal.Zero},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasPIN reports whether the profile is PIN-protected
func (u *User) HasPIN() bool {
	return u.PINHash != ""
}

// Sessions is the number of archived games folded into the profile
func (u *User) Sessions() int {
	if len(u.ProfitData) == 0 {
		return 0
	}
	return len(u.ProfitData) - 1
}

// LastCumulativeProfit returns the most recent point of ProfitData
func (u *User) LastCumulativeProfit() decimal.Decimal {
	if len(u.ProfitData) == 0 {
		return decimal.Zero
	}
	return u.ProfitData[len(u.ProfitData)-1]
}

// Clone returns a deep copy
func (u *User) Clone() *User {
	c := *u
	c.ProfitData = slices.Clone(u.ProfitData)
	return &c
}
