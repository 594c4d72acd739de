// Package prediction estimates each player's final profit from their
// current standing. The estimator itself is an injected collaborator.
package prediction

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mcoot/trackmyhand/internal/model"
)

// Predictor estimates a player's profit at the end of the game
type Predictor interface {
	PredictFinalProfit(ctx context.Context, buyIn, currentProfit decimal.Decimal) (decimal.Decimal, error)
}

// LinearPredictor is a fixed linear model over buy-in and current profit
type LinearPredictor struct {
	Intercept    decimal.Decimal
	BuyInWeight  decimal.Decimal
	ProfitWeight decimal.Decimal
}

// NewLinearPredictor returns a predictor that expects current standings to
// hold until the end of the game
func NewLinearPredictor() *LinearPredictor {
	return &LinearPredictor{
		Intercept:    decimal.Zero,
		BuyInWeight:  decimal.Zero,
		ProfitWeight: decimal.NewFromInt(1),
	}
}

var _ Predictor = (*LinearPredictor)(nil)

func (p *LinearPredictor) PredictFinalProfit(ctx context.Context, buyIn, currentProfit decimal.Decimal) (decimal.Decimal, error) {
	if buyIn.IsNegative() {
		return decimal.Zero, model.Validationf("buy-in %s is negative", buyIn)
	}
	return p.Intercept.
		Add(p.BuyInWeight.Mul(buyIn)).
		Add(p.ProfitWeight.Mul(currentProfit)).
		Round(model.AmountPlaces), nil
}

// Prediction is the estimate for one player. Err is set instead of Value
// when the predictor failed for that player.
type Prediction struct {
	PlayerID model.PlayerID
	Value    decimal.Decimal
	Err      error
}

// Service runs a Predictor over a game's roster
type Service struct {
	predictor Predictor
	logger    *slog.Logger
}

// New creates a new prediction service
func New(predictor Predictor, logger *slog.Logger) *Service {
	return &Service{
		predictor: predictor,
		logger:    logger,
	}
}

// PredictGame returns one prediction per player in roster order. A failure
// for one player is recorded on that player's result and does not stop the
// others.
func (s *Service) PredictGame(ctx context.Context, game *model.Game) []Prediction {
	out := make([]Prediction, 0, len(game.Players))
	for _, p := range game.Players {
		value, err := s.predictor.PredictFinalProfit(ctx, p.BuyIn, p.Profit)
		if err != nil {
			s.logger.Warn("prediction failed",
				slog.String("game_id", string(game.ID)),
				slog.String("player_id", string(p.ID)),
				slog.String("error", err.Error()),
			)
			out = append(out, Prediction{PlayerID: p.ID, Err: err})
			continue
		}
		out = append(out, Prediction{PlayerID: p.ID, Value: value})
	}
	return out
}
