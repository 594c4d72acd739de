package stats

import (
	"github.com/shopspring/decimal"

	"github.com/mcoot/trackmyhand/internal/model"
)

// Summary is the derived view of a profile
type Summary struct {
	UserID           model.UserID    `json:"user_id"`
	Sessions         int             `json:"sessions"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TotalBuyIn       decimal.Decimal `json:"total_buy_in"`
	ProfitPerSession decimal.Decimal `json:"profit_per_session"`
	ProfitPerHour    decimal.Decimal `json:"profit_per_hour"`
	AverageBuyIn     decimal.Decimal `json:"average_buy_in"`
	// WinRate is the percentage of sessions finished in profit
	WinRate       decimal.Decimal `json:"win_rate"`
	TotalWins     int             `json:"total_wins"`
	MinutesPlayed int             `json:"minutes_played"`
}

// Summarize derives per-session and per-hour figures. Ratios over zero
// sessions or zero minutes are reported as zero.
func Summarize(u *model.User) Summary {
	s := Summary{
		UserID:           u.ID,
		Sessions:         u.Sessions(),
		TotalProfit:      u.TotalProfit,
		TotalBuyIn:       u.TotalBuyIn,
		ProfitPerSession: decimal.Zero,
		ProfitPerHour:    decimal.Zero,
		AverageBuyIn:     decimal.Zero,
		WinRate:          decimal.Zero,
		TotalWins:        u.TotalWins,
		MinutesPlayed:    u.MinutesPlayed,
	}

	if s.Sessions > 0 {
		sessions := decimal.NewFromInt(int64(s.Sessions))
		s.ProfitPerSession = u.TotalProfit.DivRound(sessions, model.AmountPlaces)
		s.AverageBuyIn = u.TotalBuyIn.DivRound(sessions, model.AmountPlaces)
		s.WinRate = decimal.NewFromInt(int64(u.TotalWins)).
			Mul(decimal.NewFromInt(100)).
			DivRound(sessions, 0)
	}
	if u.MinutesPlayed > 0 {
		s.ProfitPerHour = u.TotalProfit.
			Mul(decimal.NewFromInt(60)).
			DivRound(decimal.NewFromInt(int64(u.MinutesPlayed)), model.AmountPlaces)
	}
	return s
}
