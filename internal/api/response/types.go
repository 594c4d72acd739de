package response

import (
	"time"

	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/services/game"
	"github.com/mcoot/trackmyhand/internal/services/prediction"
	"github.com/mcoot/trackmyhand/internal/services/stats"
)

// Player represents a player's position in API responses
type Player struct {
	ID      string `json:"id"`
	BuyIn   string `json:"buy_in"`
	CashOut string `json:"cash_out"`
	Profit  string `json:"profit"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:      string(p.ID),
		BuyIn:   model.FormatAmount(p.BuyIn),
		CashOut: model.FormatAmount(p.CashOut),
		Profit:  model.FormatAmount(p.Profit),
	}
}

// Bank represents the house side of a game
type Bank struct {
	BuyIn  string `json:"buy_in"`
	Profit string `json:"profit"`
}

// Clock is a game's elapsed time and whether it is ticking
type Clock struct {
	State   string        `json:"state"`
	Elapsed model.Elapsed `json:"elapsed"`
	Display string        `json:"display"`
}

// NewClock builds a Clock
func NewClock(state string, elapsed model.Elapsed) Clock {
	return Clock{State: state, Elapsed: elapsed, Display: elapsed.String()}
}

// Game represents a full game ledger in API responses
type Game struct {
	ID           string        `json:"id"`
	Code         string        `json:"code"`
	State        string        `json:"state"`
	BuyInUnit    string        `json:"buy_in_unit"`
	Pot          string        `json:"pot"`
	CashOutTotal string        `json:"cash_out_total"`
	Reconciled   bool          `json:"reconciled"`
	Bank         *Bank         `json:"bank,omitempty"`
	Players      []Player      `json:"players"`
	Entries      []model.Entry `json:"entries"`
	Clock        Clock         `json:"clock"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// GameFromModel converts a model.Game. The clock is supplied by the caller
// since a running clock is ahead of the persisted checkpoint.
func GameFromModel(g *model.Game, clock Clock) Game {
	players := make([]Player, len(g.Players))
	for i, p := range g.Players {
		players[i] = PlayerFromModel(p)
	}

	resp := Game{
		ID:           string(g.ID),
		Code:         string(g.Code),
		State:        string(g.State),
		BuyInUnit:    model.FormatAmount(g.BuyInUnit),
		Pot:          model.FormatAmount(g.Pot),
		CashOutTotal: model.FormatAmount(g.CashOutTotal),
		Reconciled:   g.Reconciled(),
		Players:      players,
		Entries:      g.Entries,
		Clock:        clock,
		CreatedAt:    g.CreatedAt,
	}
	if g.Bank != nil {
		resp.Bank = &Bank{
			BuyIn:  model.FormatAmount(g.Bank.BuyIn),
			Profit: model.FormatAmount(g.Bank.Profit),
		}
	}
	if !g.StartedAt.IsZero() {
		started := g.StartedAt
		resp.StartedAt = &started
	}
	return resp
}

// GameList is the response for listing games
type GameList struct {
	Games []model.GameSummary `json:"games"`
	Total int                 `json:"total"`
}

// GameListFromModel converts a page of games
func GameListFromModel(games []*model.Game, total int) GameList {
	summaries := make([]model.GameSummary, len(games))
	for i, g := range games {
		summaries[i] = g.Summary()
	}
	return GameList{Games: summaries, Total: total}
}

// Archive is the response for archiving a game
type Archive struct {
	Deleted bool     `json:"deleted"`
	Game    *Game    `json:"game,omitempty"`
	Updated []string `json:"updated,omitempty"`
	Failed  []string `json:"failed,omitempty"`
	// Warning is set when the game was archived but some profiles were not
	// updated
	Warning string `json:"warning,omitempty"`
}

// ArchiveFromResult converts a game.ArchiveResult
func ArchiveFromResult(res *game.ArchiveResult, foldErr error) Archive {
	if res.Deleted {
		return Archive{Deleted: true}
	}
	g := GameFromModel(res.Game, NewClock("stopped", res.Game.Elapsed))
	resp := Archive{Game: &g}
	if res.Report != nil {
		resp.Updated = ids(res.Report.Updated)
		resp.Failed = ids(res.Report.Failed)
	}
	if foldErr != nil {
		resp.Warning = foldErr.Error()
	}
	return resp
}

// Prediction is one player's predicted final profit
type Prediction struct {
	PlayerID string `json:"player_id"`
	Value    string `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
}

// PredictionsFromModel converts prediction results
func PredictionsFromModel(preds []prediction.Prediction) []Prediction {
	out := make([]Prediction, len(preds))
	for i, p := range preds {
		out[i] = Prediction{PlayerID: string(p.PlayerID)}
		if p.Err != nil {
			out[i].Error = p.Err.Error()
			continue
		}
		out[i].Value = model.FormatAmount(p.Value)
	}
	return out
}

// User represents a profile in API responses. The PIN hash is never
// exposed.
type User struct {
	ID            string    `json:"id"`
	HasPIN        bool      `json:"has_pin"`
	IsFavorite    bool      `json:"is_favorite"`
	TotalProfit   string    `json:"total_profit"`
	TotalBuyIn    string    `json:"total_buy_in"`
	ProfitData    []string  `json:"profit_data"`
	TotalWins     int       `json:"total_wins"`
	MinutesPlayed int       `json:"minutes_played"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserFromModel converts a model.User
func UserFromModel(u *model.User) User {
	history := make([]string, len(u.ProfitData))
	for i, p := range u.ProfitData {
		history[i] = model.FormatAmount(p)
	}
	return User{
		ID:            string(u.ID),
		HasPIN:        u.HasPIN(),
		IsFavorite:    u.IsFavorite,
		TotalProfit:   model.FormatAmount(u.TotalProfit),
		TotalBuyIn:    model.FormatAmount(u.TotalBuyIn),
		ProfitData:    history,
		TotalWins:     u.TotalWins,
		MinutesPlayed: u.MinutesPlayed,
		CreatedAt:     u.CreatedAt,
	}
}

// UserList is the response for listing users
type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// Summary is a profile's derived statistics
type Summary struct {
	UserID           string `json:"user_id"`
	Sessions         int    `json:"sessions"`
	TotalProfit      string `json:"total_profit"`
	TotalBuyIn       string `json:"total_buy_in"`
	ProfitPerSession string `json:"profit_per_session"`
	ProfitPerHour    string `json:"profit_per_hour"`
	AverageBuyIn     string `json:"average_buy_in"`
	WinRate          string `json:"win_rate"`
	TotalWins        int    `json:"total_wins"`
	MinutesPlayed    int    `json:"minutes_played"`
}

// SummaryFromStats converts stats.Summary
func SummaryFromStats(s stats.Summary) Summary {
	return Summary{
		UserID:           string(s.UserID),
		Sessions:         s.Sessions,
		TotalProfit:      model.FormatAmount(s.TotalProfit),
		TotalBuyIn:       model.FormatAmount(s.TotalBuyIn),
		ProfitPerSession: model.FormatAmount(s.ProfitPerSession),
		ProfitPerHour:    model.FormatAmount(s.ProfitPerHour),
		AverageBuyIn:     model.FormatAmount(s.AverageBuyIn),
		WinRate:          s.WinRate.String(),
		TotalWins:        s.TotalWins,
		MinutesPlayed:    s.MinutesPlayed,
	}
}

// LeaderboardEntry is one ranked profile
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	TotalProfit string `json:"total_profit"`
}

// LeaderboardFromModel ranks users in the order given
func LeaderboardFromModel(users []*model.User) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		out[i] = LeaderboardEntry{
			Rank:        i + 1,
			UserID:      string(u.ID),
			TotalProfit: model.FormatAmount(u.TotalProfit),
		}
	}
	return out
}

func ids(in []model.PlayerID) []string {
	out := make([]string, len(in))
	for i, id := range in {
		out[i] = string(id)
	}
	return out
}
