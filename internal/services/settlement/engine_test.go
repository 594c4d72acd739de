package settlement

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trackmyhand/internal/model"
)

type EngineSuite struct {
	suite.Suite
	now time.Time
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.now = time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// newGame returns a setup-state game with the given roster
func (s *EngineSuite) newGame(players ...model.PlayerID) *model.Game {
	g := &model.Game{
		ID:        "game-1",
		Code:      "GAM001",
		State:     model.GameStateSetup,
		BuyInUnit: dec("5"),
		CreatedAt: s.now,
	}
	for _, p := range players {
		var err error
		g, err = AddPlayer(g, p)
		s.Require().NoError(err)
	}
	return g
}

// startedGame returns an active game with A and B at a $5 buy-in
func (s *EngineSuite) startedGame() *model.Game {
	g, err := Start(s.newGame("A", "B"), s.now)
	s.Require().NoError(err)
	return g
}

func (s *EngineSuite) apply(g *model.Game, kind model.EntryKind, from, to, amount string) *model.Game {
	entry, err := model.ValidateEntry(model.EntryRequest{Kind: kind, From: from, To: to, Amount: amount})
	s.Require().NoError(err)
	entry.Time = s.now
	next, err := Apply(g, entry)
	s.Require().NoError(err)
	return next
}

func (s *EngineSuite) applyErr(g *model.Game, kind model.EntryKind, from, to, amount string) error {
	entry, err := model.ValidateEntry(model.EntryRequest{Kind: kind, From: from, To: to, Amount: amount})
	s.Require().NoError(err)
	_, err = Apply(g, entry)
	return err
}

func (s *EngineSuite) player(g *model.Game, id model.PlayerID) model.Player {
	p, ok := g.Player(id)
	s.Require().True(ok, "player %s missing", id)
	return p
}

func (s *EngineSuite) countKind(g *model.Game, kind model.EntryKind) int {
	n := 0
	for _, e := range g.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Start tests

func (s *EngineSuite) TestStartEmitsInitialBuyIns() {
	g := s.startedGame()

	s.Equal(model.GameStateActive, g.State)
	s.NotNil(g.Bank)
	s.True(g.Pot.Equal(dec("10")))
	s.Len(g.Entries, 2)
	for i, e := range g.Entries {
		s.Equal(i, e.Seq)
		s.Equal(model.EntryInitialBuyIn, e.Kind)
		s.Equal(model.BankID, e.From)
		s.Equal("5.00", e.Amount)
	}
	s.True(s.player(g, "A").Profit.Equal(dec("-5")))
	s.True(s.player(g, "A").BuyIn.Equal(dec("5")))
	s.True(g.Bank.Profit.Equal(dec("10")))
	s.Equal(s.now, g.StartedAt)
}

func (s *EngineSuite) TestStartRequiresTwoPlayers() {
	_, err := Start(s.newGame("A"), s.now)
	s.ErrorIs(err, model.ErrValidation)
}

func (s *EngineSuite) TestStartTwiceIsStateError() {
	_, err := Start(s.startedGame(), s.now)
	s.ErrorIs(err, model.ErrState)
}

func (s *EngineSuite) TestStartDoesNotMutateInput() {
	g := s.newGame("A", "B")
	_, err := Start(g, s.now)
	s.Require().NoError(err)
	s.Equal(model.GameStateSetup, g.State)
	s.Empty(g.Entries)
	s.Nil(g.Bank)
}

func (s *EngineSuite) TestAddPlayerRejectsDuplicateAndBank() {
	g := s.newGame("A")
	_, err := AddPlayer(g, "A")
	s.ErrorIs(err, model.ErrValidation)
	_, err = AddPlayer(g, model.BankID)
	s.ErrorIs(err, model.ErrValidation)
}

// Buy-in tests

func (s *EngineSuite) TestBuyInBetweenPlayers() {
	g := s.apply(s.startedGame(), model.EntryBuyIn, "A", "B", "3")

	b := s.player(g, "B")
	s.True(b.BuyIn.Equal(dec("8")))
	s.True(b.Profit.Equal(dec("-8")))
	s.True(s.player(g, "A").Profit.Equal(dec("-2")))
	s.True(g.Pot.Equal(dec("13")))
	s.Equal(2, g.Entries[2].Seq)
}

func (s *EngineSuite) TestBuyInToBankDoesNotGrowPot() {
	g := s.apply(s.startedGame(), model.EntryBuyIn, "A", "BANK", "2")
	s.True(g.Pot.Equal(dec("10")))
	s.True(g.Bank.BuyIn.Equal(dec("2")))
}

func (s *EngineSuite) TestSelfTransferIsRecordedWithoutEffect() {
	before := s.startedGame()
	g := s.apply(before, model.EntryBuyIn, "A", "A", "4")

	s.Len(g.Entries, 3)
	s.True(g.Pot.Equal(before.Pot))
	s.Equal(s.player(before, "A"), s.player(g, "A"))
}

func (s *EngineSuite) TestApplyDoesNotMutateInput() {
	g := s.startedGame()
	_ = s.apply(g, model.EntryBuyIn, "A", "B", "3")

	s.Len(g.Entries, 2)
	s.True(g.Pot.Equal(dec("10")))
	s.True(s.player(g, "B").BuyIn.Equal(dec("5")))
}

func (s *EngineSuite) TestUnknownPlayerIsReferenceError() {
	g := s.startedGame()
	s.ErrorIs(s.applyErr(g, model.EntryBuyIn, "A", "ZED", "1"), model.ErrReference)
	s.ErrorIs(s.applyErr(g, model.EntryBuyIn, "ZED", "A", "1"), model.ErrReference)
}

// In-game cash-out tests

func (s *EngineSuite) TestInGameCashOut() {
	g := s.apply(s.startedGame(), model.EntryInGameCashOut, "A", "BANK", "4")

	a := s.player(g, "A")
	s.True(a.Profit.Equal(dec("-1")))
	s.True(a.CashOut.Equal(dec("4")))
	s.True(g.CashOutTotal.Equal(dec("4")))
	s.True(g.Pot.Equal(dec("10")))
}

// Player joined tests

func (s *EngineSuite) TestPlayerJoinedDoesNotChargeJoiner() {
	g := s.apply(s.startedGame(), model.EntryPlayerJoined, "BANK", "c", "5")

	c := s.player(g, "C")
	s.True(c.BuyIn.Equal(dec("5")))
	s.True(c.Profit.IsZero())
	s.True(g.Pot.Equal(dec("15")))
	s.True(g.Bank.Profit.Equal(dec("15")))
	s.Equal(model.PlayerID("C"), g.Players[2].ID)
}

func (s *EngineSuite) TestPlayerJoinedTwiceIsValidationError() {
	g := s.startedGame()
	s.ErrorIs(s.applyErr(g, model.EntryPlayerJoined, "BANK", "A", "5"), model.ErrValidation)
}

// Game over tests

func (s *EngineSuite) TestGameOverEndsGame() {
	g := s.apply(s.startedGame(), model.EntryGameOver, "", "", "")
	s.Equal(model.GameStateEnded, g.State)
	s.Equal(1, s.countKind(g, model.EntryGameOver))
}

func (s *EngineSuite) TestGameOverIsIdempotent() {
	ended := s.apply(s.startedGame(), model.EntryGameOver, "", "", "")
	again := s.apply(ended, model.EntryGameOver, "", "", "")

	s.Same(ended, again)
	s.Equal(1, s.countKind(again, model.EntryGameOver))
}

func (s *EngineSuite) TestTransfersRejectedAfterGameOver() {
	g := s.apply(s.startedGame(), model.EntryGameOver, "", "", "")
	s.ErrorIs(s.applyErr(g, model.EntryBuyIn, "A", "B", "1"), model.ErrState)
	s.ErrorIs(s.applyErr(g, model.EntryInGameCashOut, "A", "BANK", "1"), model.ErrState)
	s.ErrorIs(s.applyErr(g, model.EntryPlayerJoined, "BANK", "C", "5"), model.ErrState)
}

func (s *EngineSuite) TestEntriesRejectedBeforeStart() {
	s.ErrorIs(s.applyErr(s.newGame("A", "B"), model.EntryBuyIn, "A", "B", "1"), model.ErrState)
}

// Cash-out tests

func (s *EngineSuite) TestCashOutOnlyAfterGameOver() {
	s.ErrorIs(s.applyErr(s.startedGame(), model.EntryCashOut, "A", "BANK", "1"), model.ErrState)
}

func (s *EngineSuite) TestCashOutUpsertBySource() {
	g := s.apply(s.startedGame(), model.EntryGameOver, "", "", "")
	g = s.apply(g, model.EntryCashOut, "A", "BANK", "7")
	pos := len(g.Entries) - 1
	seq := g.Entries[pos].Seq
	g = s.apply(g, model.EntryCashOut, "B", "BANK", "1")
	g = s.apply(g, model.EntryCashOut, "A", "BANK", "4")

	s.Equal(2, s.countKind(g, model.EntryCashOut))
	s.Equal("4.00", g.Entries[pos].Amount)
	s.Equal(seq, g.Entries[pos].Seq)
	s.True(g.CashOutTotal.Equal(dec("5")))

	a := s.player(g, "A")
	s.True(a.Profit.Equal(dec("-1")))
	s.True(a.CashOut.Equal(dec("4")))
}

func (s *EngineSuite) TestCashOutRevisionRestoresBank() {
	g := s.apply(s.startedGame(), model.EntryGameOver, "", "", "")
	bank := *g.Bank
	g = s.apply(g, model.EntryCashOut, "A", "BANK", "7")
	g = s.apply(g, model.EntryCashOut, "A", "BANK", "0")

	s.True(g.Bank.BuyIn.Equal(bank.BuyIn))
	s.True(g.Bank.Profit.Equal(bank.Profit))
	s.True(g.CashOutTotal.IsZero())
}

// Exit tests

func (s *EngineSuite) TestExitHasNoMonetaryEffect() {
	ended := s.apply(s.startedGame(), model.EntryGameOver, "", "", "")
	g := s.apply(ended, model.EntryExit, "A", "", "")

	s.Len(g.Entries, len(ended.Entries)+1)
	s.True(g.Pot.Equal(ended.Pot))
	s.True(g.CashOutTotal.Equal(ended.CashOutTotal))
}

// Archive tests

func (s *EngineSuite) TestArchiveRequiresEnded() {
	_, err := Archive(s.startedGame(), s.now)
	s.ErrorIs(err, model.ErrState)
}

func (s *EngineSuite) TestArchiveRefusesMismatch() {
	g := s.apply(s.startedGame(), model.EntryGameOver, "", "", "")
	g = s.apply(g, model.EntryCashOut, "A", "BANK", "3")

	_, err := Archive(g, s.now)
	s.ErrorIs(err, model.ErrReconciliation)

	var rerr *model.ReconciliationError
	s.Require().ErrorAs(err, &rerr)
	s.True(rerr.Pot.Equal(dec("10")))
	s.True(rerr.CashOut.Equal(dec("3")))
}

func (s *EngineSuite) TestArchiveTwiceIsStateError() {
	g := s.apply(s.startedGame(), model.EntryGameOver, "", "", "")
	g = s.apply(g, model.EntryCashOut, "A", "BANK", "10")
	archived, err := Archive(g, s.now)
	s.Require().NoError(err)
	s.Nil(archived.Bank)

	_, err = Archive(archived, s.now)
	s.ErrorIs(err, model.ErrState)
}

func (s *EngineSuite) TestMoneyEntryOnArchivedGameIsStateError() {
	g := s.apply(s.startedGame(), model.EntryGameOver, "", "", "")
	g = s.apply(g, model.EntryCashOut, "A", "BANK", "10")
	archived, err := Archive(g, s.now)
	s.Require().NoError(err)

	s.ErrorIs(s.applyErr(archived, model.EntryCashOut, "A", "BANK", "1"), model.ErrState)
	s.ErrorIs(s.applyErr(archived, model.EntryBuyIn, "A", "B", "1"), model.ErrState)

	same := s.apply(archived, model.EntryGameOver, "", "", "")
	s.Same(archived, same)
}

// End-to-end scenario

func (s *EngineSuite) TestFullSessionReconciles() {
	g := s.startedGame()
	s.True(g.Pot.Equal(dec("10")))

	g = s.apply(g, model.EntryBuyIn, "A", "B", "3")
	s.True(s.player(g, "A").Profit.Equal(dec("-2")))
	s.True(s.player(g, "B").Profit.Equal(dec("-8")))
	s.True(g.Pot.Equal(dec("13")))

	g = s.apply(g, model.EntryGameOver, "", "", "")
	g = s.apply(g, model.EntryCashOut, "A", "BANK", "2")
	s.True(s.player(g, "A").Profit.IsZero())
	s.True(g.CashOutTotal.Equal(dec("2")))

	g = s.apply(g, model.EntryCashOut, "B", "BANK", "11")
	s.True(s.player(g, "B").Profit.Equal(dec("3")))
	s.True(g.CashOutTotal.Equal(dec("13")))

	s.True(g.Reconciled())
	archived, err := Archive(g, s.now)
	s.Require().NoError(err)
	s.Equal(model.GameStateArchived, archived.State)
}

// Properties

// profitOf returns the running profit of a party, bank included
func profitOf(g *model.Game, id model.PlayerID) decimal.Decimal {
	if id.IsBank() {
		return g.Bank.Profit
	}
	p, _ := g.Player(id)
	return p.Profit
}

func (s *EngineSuite) TestTransfersConserveProfitBetweenEndpoints() {
	rng := rand.New(rand.NewPCG(1, 2))
	parties := []model.PlayerID{model.BankID, "A", "B", "C"}

	g, err := Start(s.newGame("A", "B", "C"), s.now)
	s.Require().NoError(err)

	for i := 0; i < 200; i++ {
		from := parties[rng.IntN(len(parties))]
		to := parties[rng.IntN(len(parties))]
		amount := decimal.New(int64(rng.IntN(5000)), -2)

		kind := model.EntryBuyIn
		if to.IsBank() && !from.IsBank() {
			kind = model.EntryInGameCashOut
		}

		before := profitOf(g, from).Add(profitOf(g, to))
		g = s.apply(g, kind, string(from), string(to), model.FormatAmount(amount))
		after := profitOf(g, from).Add(profitOf(g, to))

		s.True(before.Equal(after), "entry %d %s %s->%s %s", i, kind, from, to, amount)
	}
}

func (s *EngineSuite) TestMismatchedTotalsNeverArchive() {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 50; round++ {
		g, err := Start(s.newGame("A", "B", "C"), s.now)
		s.Require().NoError(err)

		for i := 0; i < rng.IntN(10); i++ {
			from := []string{"A", "B", "C"}[rng.IntN(3)]
			to := []string{"A", "B", "C"}[rng.IntN(3)]
			g = s.apply(g, model.EntryBuyIn, from, to, model.FormatAmount(decimal.New(int64(rng.IntN(2000)), -2)))
		}
		g = s.apply(g, model.EntryGameOver, "", "", "")

		// Pay out everything except a non-zero remainder
		shortfall := decimal.New(int64(rng.IntN(500)+1), -2)
		payout := g.Pot.Sub(shortfall)
		if payout.IsNegative() {
			payout = decimal.Zero
		}
		g = s.apply(g, model.EntryCashOut, "A", "BANK", model.FormatAmount(payout))
		s.Require().False(g.Reconciled())

		_, err = Archive(g, s.now)
		s.ErrorIs(err, model.ErrReconciliation)
	}
}
