package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/services/stats"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Trackers.StopAll(s.ctx))
}

// Test: a session from setup to archived profiles
func (s *IntegrationSuite) TestCompleteSession() {
	s.app.MockRandom.QueueUUID("abc00000-0000-4000-8000-000000000xyz")

	// Step 1: Create a game and start it
	game, err := s.app.GameController.CreateGame(s.ctx, []string{"alice", " Bob "}, "5")
	s.Require().NoError(err)
	s.Equal(model.GameCode("ABCXYZ"), game.Code)

	game, err = s.app.GameController.StartGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal("10", game.Pot.String())

	// Step 2: Run the clock for 31 seconds
	s.Require().NoError(s.app.Trackers.Start(game.ID, game.Elapsed))
	for range 31 {
		s.app.MockClock.Tick()
	}
	s.Eventually(func() bool {
		e, ok := s.app.Trackers.Elapsed(game.ID)
		return ok && e.TotalSeconds() == 31
	}, time.Second, 5*time.Millisecond)

	// Step 3: Alice rebuys from the bank
	game, err = s.app.GameController.RecordEntry(s.ctx, game.ID, model.EntryRequest{
		Kind: model.EntryBuyIn, From: "bank", To: "alice", Amount: "5",
	})
	s.Require().NoError(err)
	s.Equal("15", game.Pot.String())

	// Step 4: End the game and stop the clock; the final value is persisted
	_, err = s.app.GameController.EndGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.app.Trackers.Stop(game.ID)
	s.Eventually(func() bool {
		g, err := s.app.GameController.GetGame(s.ctx, game.ID)
		return err == nil && g.Elapsed == model.Elapsed{Seconds: 31}
	}, time.Second, 5*time.Millisecond)

	// Step 5: Cash out and archive
	_, err = s.app.GameController.CashOut(s.ctx, game.ID, "ALICE", "3")
	s.Require().NoError(err)
	_, err = s.app.GameController.CashOut(s.ctx, game.ID, "BOB", "12")
	s.Require().NoError(err)

	result, err := s.app.GameController.ArchiveGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.False(result.Deleted)
	s.Equal(model.GameStateArchived, result.Game.State)
	s.ElementsMatch([]model.PlayerID{"ALICE", "BOB"}, result.Report.Updated)

	// Step 6: Profiles reflect the session
	leaders, err := s.app.Aggregator.Leaderboard(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(leaders, 2)
	s.Equal(model.UserID("BOB"), leaders[0].ID)

	bob := stats.Summarize(leaders[0])
	s.Equal(1, bob.Sessions)
	s.Equal(1, bob.TotalWins)
	s.Equal(1, bob.MinutesPlayed)
	s.Equal("7", bob.TotalProfit.String())
	s.Equal("420", bob.ProfitPerHour.String())

	alice := stats.Summarize(leaders[1])
	s.Equal("-7", alice.TotalProfit.String())
	s.Equal(0, alice.TotalWins)
}

// Test: ending and archiving a game whose clock never ran deletes it
func (s *IntegrationSuite) TestZeroLengthGameIsDeleted() {
	game, err := s.app.GameController.CreateGame(s.ctx, []string{"a", "b"}, "")
	s.Require().NoError(err)
	_, err = s.app.GameController.StartGame(s.ctx, game.ID)
	s.Require().NoError(err)
	_, err = s.app.GameController.EndGame(s.ctx, game.ID)
	s.Require().NoError(err)

	result, err := s.app.GameController.ArchiveGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.True(result.Deleted)

	_, err = s.app.GameController.GetGame(s.ctx, game.ID)
	s.ErrorIs(err, model.ErrGameNotFound)

	// Profiles were created at start but never folded
	user, err := s.app.Profiles.GetUser(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal(0, user.Sessions())
}

// Test: predictions use the current positions of an active game
func (s *IntegrationSuite) TestPredictionsForActiveGame() {
	game, err := s.app.GameController.CreateGame(s.ctx, []string{"a", "b"}, "5")
	s.Require().NoError(err)
	game, err = s.app.GameController.StartGame(s.ctx, game.ID)
	s.Require().NoError(err)

	predictions := s.app.Predictions.PredictGame(s.ctx, game)
	s.Require().Len(predictions, 2)
	for _, p := range predictions {
		s.NoError(p.Err)
		s.Equal("-5", p.Value.String())
	}
	s.Equal(2, s.app.MockPredictor.Calls())
}
