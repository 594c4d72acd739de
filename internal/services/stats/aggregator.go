// Package stats folds archived games into lifetime user profiles and
// derives the figures shown on profile and leaderboard screens.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/trackmyhand/internal/dependencies/clock"
	"github.com/mcoot/trackmyhand/internal/metrics"
	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/storage"
)

// DefaultLeaderboardSize is the number of users shown when no limit is given
const DefaultLeaderboardSize = 3

// FoldReport lists which players' profiles were updated by a fold
type FoldReport struct {
	GameID  model.GameID
	Updated []model.UserID
	Failed  []model.UserID
}

// Aggregator folds archived games into user profiles
type Aggregator struct {
	storage storage.Storage
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAggregator creates a new Aggregator
func NewAggregator(storage storage.Storage, clock clock.Clock, metrics *metrics.Metrics, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		storage: storage,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Fold adds one archived game's results to every participant's profile.
// Players are updated independently: a failure for one player does not stop
// the rest, and every failure is joined into the returned error. The report
// is returned even when err is non-nil.
func (a *Aggregator) Fold(ctx context.Context, game *model.Game) (*FoldReport, error) {
	if game.State != model.GameStateArchived {
		return nil, model.Statef("game %s is %s, only archived games are folded", game.ID, game.State)
	}

	report := &FoldReport{GameID: game.ID}
	minutes := game.Elapsed.SessionMinutes()

	var errs []error
	for _, p := range game.Players {
		if err := a.foldPlayer(ctx, p, minutes); err != nil {
			report.Failed = append(report.Failed, p.ID)
			errs = append(errs, fmt.Errorf("player %s: %w", p.ID, err))
			continue
		}
		report.Updated = append(report.Updated, p.ID)
	}

	if len(errs) > 0 {
		a.metrics.FoldFailed(len(errs))
		a.logger.Error("statistics fold incomplete",
			slog.String("game_id", string(game.ID)),
			slog.Int("updated", len(report.Updated)),
			slog.Int("failed", len(report.Failed)),
		)
		return report, errors.Join(errs...)
	}

	a.logger.Info("statistics folded",
		slog.String("game_id", string(game.ID)),
		slog.Int("players", len(report.Updated)),
		slog.Int("minutes", minutes),
	)
	return report, nil
}

func (a *Aggregator) foldPlayer(ctx context.Context, p model.Player, minutes int) error {
	user, err := a.storage.GetUser(ctx, p.ID)
	if errors.Is(err, model.ErrUserNotFound) {
		user = model.NewUser(p.ID, a.clock.Now())
	} else if err != nil {
		return model.Persistence("get user", err)
	}

	Apply(user, p, minutes)
	user.UpdatedAt = a.clock.Now()

	if err := a.storage.SaveUser(ctx, user); err != nil {
		return model.Persistence("save user", err)
	}
	return nil
}

// Apply folds one player's game result into user
func Apply(user *model.User, p model.Player, minutes int) {
	if len(user.ProfitData) == 0 {
		user.ProfitData = append(user.ProfitData, user.TotalProfit)
	}
	user.TotalBuyIn = user.TotalBuyIn.Add(p.BuyIn)
	user.TotalProfit = user.TotalProfit.Add(p.Profit)
	user.ProfitData = append(user.ProfitData, user.LastCumulativeProfit().Add(p.Profit))
	user.MinutesPlayed += minutes
	if p.Profit.IsPositive() {
		user.TotalWins++
	}
}

// Leaderboard returns the users with the highest total profit
func (a *Aggregator) Leaderboard(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	users, err := a.storage.ListUsers(ctx, limit)
	if err != nil {
		return nil, model.Persistence("list users", err)
	}
	return users, nil
}
