package prediction

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trackmyhand/internal/dependencies/mocks"
	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	predictor *mocks.MockPredictor
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.predictor = mocks.NewMockPredictor()
	s.service = New(s.predictor, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) game() *model.Game {
	return &model.Game{
		ID: "game-1",
		Players: []model.Player{
			{ID: "A", BuyIn: decimal.NewFromInt(5), Profit: decimal.NewFromInt(-5)},
			{ID: "B", BuyIn: decimal.NewFromInt(8), Profit: decimal.NewFromInt(2)},
			{ID: "C", BuyIn: decimal.NewFromInt(5), Profit: decimal.NewFromInt(3)},
		},
	}
}

func (s *ServiceSuite) TestOnePredictionPerPlayer() {
	preds := s.service.PredictGame(s.ctx, s.game())

	s.Require().Len(preds, 3)
	s.Equal(model.PlayerID("A"), preds[0].PlayerID)
	s.True(preds[1].Value.Equal(decimal.NewFromInt(2)))
	s.Equal(3, s.predictor.Calls())
}

func (s *ServiceSuite) TestFailureDoesNotAbortOthers() {
	boom := errors.New("model unavailable")
	s.predictor.QueueResult(decimal.NewFromInt(1), nil)
	s.predictor.QueueResult(decimal.Zero, boom)
	s.predictor.QueueResult(decimal.NewFromInt(7), nil)

	preds := s.service.PredictGame(s.ctx, s.game())

	s.Require().Len(preds, 3)
	s.NoError(preds[0].Err)
	s.ErrorIs(preds[1].Err, boom)
	s.NoError(preds[2].Err)
	s.True(preds[2].Value.Equal(decimal.NewFromInt(7)))
}

func (s *ServiceSuite) TestLinearPredictor() {
	p := &LinearPredictor{
		Intercept:    decimal.RequireFromString("1.5"),
		BuyInWeight:  decimal.RequireFromString("0.1"),
		ProfitWeight: decimal.RequireFromString("0.5"),
	}

	v, err := p.PredictFinalProfit(s.ctx, decimal.NewFromInt(20), decimal.NewFromInt(-4))
	s.Require().NoError(err)
	s.True(v.Equal(decimal.RequireFromString("1.5")))

	_, err = p.PredictFinalProfit(s.ctx, decimal.NewFromInt(-1), decimal.Zero)
	s.ErrorIs(err, model.ErrValidation)
}

func (s *ServiceSuite) TestDefaultLinearPredictorHoldsStanding() {
	v, err := NewLinearPredictor().PredictFinalProfit(s.ctx, decimal.NewFromInt(10), decimal.RequireFromString("3.25"))
	s.Require().NoError(err)
	s.True(v.Equal(decimal.RequireFromString("3.25")))
}
