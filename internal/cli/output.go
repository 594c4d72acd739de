package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintEvent outputs one stream event. JSON output is one object per line.
func (o *Output) PrintEvent(event, data string) {
	if o.format == "json" {
		fmt.Fprintf(o.w, "{\"event\":%q,\"data\":%s}\n", event, data)
		return
	}

	switch event {
	case "game":
		var g Game
		if err := json.Unmarshal([]byte(data), &g); err == nil {
			fmt.Fprintf(o.w, "[%s] %s  pot %s  cashed out %s\n", g.Clock.Display, g.State, g.Pot, g.CashOutTotal)
			return
		}
	case "clock":
		var c Clock
		if err := json.Unmarshal([]byte(data), &c); err == nil {
			fmt.Fprintf(o.w, "[%s] clock %s\n", c.Display, c.State)
			return
		}
	}
	fmt.Fprintf(o.w, "%s: %s\n", event, data)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Game:
		o.printGame(v)
	case GameList:
		o.printGameList(v)
	case Clock:
		o.printClock(v)
	case ArchiveResult:
		o.printArchive(v)
	case []Prediction:
		o.printPredictions(v)
	case User:
		o.printUser(v)
	case UserList:
		for _, u := range v.Users {
			fmt.Fprintf(o.w, "%-12s %10s  %d sessions\n", u.ID, u.TotalProfit, len(u.ProfitData)-1)
		}
		fmt.Fprintf(o.w, "(%d users)\n", v.Total)
	case Summary:
		o.printSummary(v)
	case []LeaderboardEntry:
		for _, e := range v {
			fmt.Fprintf(o.w, "%d. %-12s %10s\n", e.Rank, e.UserID, e.TotalProfit)
		}
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID      string `json:"id"`
	BuyIn   string `json:"buy_in"`
	CashOut string `json:"cash_out"`
	Profit  string `json:"profit"`
}

// Bank response type
type Bank struct {
	BuyIn  string `json:"buy_in"`
	Profit string `json:"profit"`
}

// Entry response type
type Entry struct {
	Seq    int    `json:"seq"`
	Kind   string `json:"kind"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// Clock response type
type Clock struct {
	State   string `json:"state"`
	Elapsed [3]int `json:"elapsed"`
	Display string `json:"display"`
}

// Game response type
type Game struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	State        string   `json:"state"`
	BuyInUnit    string   `json:"buy_in_unit"`
	Pot          string   `json:"pot"`
	CashOutTotal string   `json:"cash_out_total"`
	Reconciled   bool     `json:"reconciled"`
	Bank         *Bank    `json:"bank,omitempty"`
	Players      []Player `json:"players"`
	Entries      []Entry  `json:"entries"`
	Clock        Clock    `json:"clock"`
}

// GameSummary response type
type GameSummary struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	State       string `json:"state"`
	Pot         string `json:"pot"`
	PlayerCount int    `json:"player_count"`
	Elapsed     [3]int `json:"elapsed"`
}

// GameList response type
type GameList struct {
	Games []GameSummary `json:"games"`
	Total int           `json:"total"`
}

// ArchiveResult response type
type ArchiveResult struct {
	Deleted bool     `json:"deleted"`
	Game    *Game    `json:"game,omitempty"`
	Updated []string `json:"updated,omitempty"`
	Failed  []string `json:"failed,omitempty"`
	Warning string   `json:"warning,omitempty"`
}

// Prediction response type
type Prediction struct {
	PlayerID string `json:"player_id"`
	Value    string `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
}

// User response type
type User struct {
	ID            string   `json:"id"`
	HasPIN        bool     `json:"has_pin"`
	IsFavorite    bool     `json:"is_favorite"`
	TotalProfit   string   `json:"total_profit"`
	TotalBuyIn    string   `json:"total_buy_in"`
	ProfitData    []string `json:"profit_data"`
	TotalWins     int      `json:"total_wins"`
	MinutesPlayed int      `json:"minutes_played"`
}

// UserList response type
type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// Summary response type
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

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	TotalProfit string `json:"total_profit"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printGame(g Game) {
	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.Code, g.ID)
	fmt.Fprintf(o.w, "State: %s\n", g.State)
	fmt.Fprintf(o.w, "Buy-in: %s\n", g.BuyInUnit)
	fmt.Fprintf(o.w, "Clock: %s (%s)\n", g.Clock.Display, g.Clock.State)

	settled := "no"
	if g.Reconciled {
		settled = "yes"
	}
	fmt.Fprintf(o.w, "Pot: %s  Cashed out: %s  Settled: %s\n", g.Pot, g.CashOutTotal, settled)

	if len(g.Players) > 0 {
		fmt.Fprintf(o.w, "\n%-12s %10s %10s %10s\n", "PLAYER", "BUY-IN", "CASH-OUT", "PROFIT")
		for _, p := range g.Players {
			fmt.Fprintf(o.w, "%-12s %10s %10s %10s\n", p.ID, p.BuyIn, p.CashOut, p.Profit)
		}
		if g.Bank != nil {
			fmt.Fprintf(o.w, "%-12s %10s %10s %10s\n", "BANK", g.Bank.BuyIn, "", g.Bank.Profit)
		}
	}

	if len(g.Entries) > 0 {
		fmt.Fprintln(o.w, "\nLedger:")
		for _, e := range g.Entries {
			line := fmt.Sprintf("  %3d %-16s", e.Seq, e.Kind)
			if e.From != "" || e.To != "" {
				line += fmt.Sprintf(" %s -> %s", e.From, e.To)
			}
			if e.Amount != "" {
				line += " " + e.Amount
			}
			fmt.Fprintln(o.w, line)
		}
	}
}

func (o *Output) printGameList(l GameList) {
	for _, g := range l.Games {
		fmt.Fprintf(o.w, "%s  %-8s %10s  %d players\n", g.Code, g.State, g.Pot, g.PlayerCount)
	}
	fmt.Fprintf(o.w, "(%d games)\n", l.Total)
}

func (o *Output) printClock(c Clock) {
	fmt.Fprintf(o.w, "Clock: %s (%s)\n", c.Display, c.State)
}

func (o *Output) printArchive(a ArchiveResult) {
	if a.Deleted {
		fmt.Fprintln(o.w, "Game had no play time and was deleted")
		return
	}
	fmt.Fprintln(o.w, "Game archived")
	if len(a.Updated) > 0 {
		fmt.Fprintf(o.w, "Profiles updated: %s\n", strings.Join(a.Updated, ", "))
	}
	if len(a.Failed) > 0 {
		fmt.Fprintf(o.w, "Profiles NOT updated: %s\n", strings.Join(a.Failed, ", "))
	}
	if a.Warning != "" {
		fmt.Fprintf(o.w, "Warning: %s\n", a.Warning)
	}
}

func (o *Output) printPredictions(preds []Prediction) {
	for _, p := range preds {
		if p.Error != "" {
			fmt.Fprintf(o.w, "%-12s unavailable (%s)\n", p.PlayerID, p.Error)
			continue
		}
		fmt.Fprintf(o.w, "%-12s %10s\n", p.PlayerID, p.Value)
	}
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.w, "User: %s\n", u.ID)
	fmt.Fprintf(o.w, "PIN: %t  Favorite: %t\n", u.HasPIN, u.IsFavorite)
	fmt.Fprintf(o.w, "Total profit: %s\n", u.TotalProfit)
	fmt.Fprintf(o.w, "Total buy-in: %s\n", u.TotalBuyIn)
	fmt.Fprintf(o.w, "Wins: %d  Minutes: %d\n", u.TotalWins, u.MinutesPlayed)
	if len(u.ProfitData) > 1 {
		fmt.Fprintf(o.w, "History: %s\n", strings.Join(u.ProfitData, " "))
	}
}

func (o *Output) printSummary(s Summary) {
	fmt.Fprintf(o.w, "User: %s\n", s.UserID)
	fmt.Fprintf(o.w, "Sessions: %d\n", s.Sessions)
	fmt.Fprintf(o.w, "Total profit: %s\n", s.TotalProfit)
	fmt.Fprintf(o.w, "Profit / session: %s\n", s.ProfitPerSession)
	fmt.Fprintf(o.w, "Profit / hour: %s\n", s.ProfitPerHour)
	fmt.Fprintf(o.w, "Average buy-in: %s\n", s.AverageBuyIn)
	fmt.Fprintf(o.w, "Win rate: %s%%\n", s.WinRate)
}
