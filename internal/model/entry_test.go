package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type EntrySuite struct {
	suite.Suite
}

func TestEntrySuite(t *testing.T) {
	suite.Run(t, new(EntrySuite))
}

// ParseAmount tests

func (s *EntrySuite) TestParseAmountAcceptsTwoPlaces() {
	d, err := ParseAmount("12.50")
	s.Require().NoError(err)
	s.True(d.Equal(decimal.RequireFromString("12.5")))
}

func (s *EntrySuite) TestParseAmountAcceptsWholeNumbers() {
	d, err := ParseAmount(" 5 ")
	s.Require().NoError(err)
	s.Equal("5.00", FormatAmount(d))
}

func (s *EntrySuite) TestParseAmountAcceptsOnePlace() {
	d, err := ParseAmount("3.1")
	s.Require().NoError(err)
	s.Equal("3.10", FormatAmount(d))
}

func (s *EntrySuite) TestParseAmountRejectsExtraTrailingZeros() {
	_, err := ParseAmount("3.100")
	s.ErrorIs(err, ErrValidation)
}

func (s *EntrySuite) TestParseAmountRejectsExponentNotation() {
	for _, in := range []string{"1e3", "5e-1", "1E2", "1e200000000"} {
		done := make(chan error, 1)
		go func() {
			_, err := ParseAmount(in)
			done <- err
		}()
		select {
		case err := <-done:
			s.ErrorIs(err, ErrValidation, in)
		case <-time.After(time.Second):
			s.Failf("parse did not return", "input %q", in)
		}
	}
}

func (s *EntrySuite) TestParseAmountRejectsOversizedValues() {
	d, err := ParseAmount("999999999999.99")
	s.Require().NoError(err)
	s.Equal("999999999999.99", FormatAmount(d))

	_, err = ParseAmount("1000000000000")
	s.ErrorIs(err, ErrValidation)

	d, err = ParseAmount("0005")
	s.Require().NoError(err)
	s.Equal("5.00", FormatAmount(d))
}

func (s *EntrySuite) TestParseAmountRejectsMalformedForms() {
	for _, in := range []string{".5", "5.", "+5", "1,000", "1.2.3", "0x10", " 1 2 "} {
		_, err := ParseAmount(in)
		s.ErrorIs(err, ErrValidation, in)
	}
}

func (s *EntrySuite) TestEntryValueIgnoresExponentNotation() {
	s.True(Entry{Amount: "1e200000000"}.Value().IsZero())
	s.Equal("2.50", FormatAmount(Entry{Amount: "2.50"}.Value()))
}

func (s *EntrySuite) TestParseAmountRejectsThreePlaces() {
	_, err := ParseAmount("1.005")
	s.ErrorIs(err, ErrValidation)
}

func (s *EntrySuite) TestParseAmountRejectsNegative() {
	_, err := ParseAmount("-1")
	s.ErrorIs(err, ErrValidation)
}

func (s *EntrySuite) TestParseAmountRejectsGarbage() {
	_, err := ParseAmount("five")
	s.ErrorIs(err, ErrValidation)

	_, err = ParseAmount("")
	s.ErrorIs(err, ErrValidation)
}

// ValidateEntry tests

func (s *EntrySuite) TestValidateEntryNormalizesIDsAndAmount() {
	entry, err := ValidateEntry(EntryRequest{Kind: EntryBuyIn, From: " alice", To: "bob ", Amount: "3"})
	s.Require().NoError(err)
	s.Equal(PlayerID("ALICE"), entry.From)
	s.Equal(PlayerID("BOB"), entry.To)
	s.Equal("3.00", entry.Amount)
}

func (s *EntrySuite) TestValidateEntryRejectsUnknownKind() {
	_, err := ValidateEntry(EntryRequest{Kind: "refund", From: "A", To: "B", Amount: "1"})
	s.ErrorIs(err, ErrValidation)
}

func (s *EntrySuite) TestValidateEntryRequiresEndpoints() {
	_, err := ValidateEntry(EntryRequest{Kind: EntryBuyIn, From: "A", Amount: "1"})
	s.ErrorIs(err, ErrValidation)
}

func (s *EntrySuite) TestValidateEntryCashOutMustGoToBank() {
	_, err := ValidateEntry(EntryRequest{Kind: EntryCashOut, From: "A", To: "B", Amount: "1"})
	s.ErrorIs(err, ErrValidation)

	_, err = ValidateEntry(EntryRequest{Kind: EntryInGameCashOut, From: "A", To: "B", Amount: "1"})
	s.ErrorIs(err, ErrValidation)

	entry, err := ValidateEntry(EntryRequest{Kind: EntryCashOut, From: "a", To: "bank", Amount: "1"})
	s.Require().NoError(err)
	s.True(entry.To.IsBank())
}

func (s *EntrySuite) TestValidateEntryJoinMustPayPlayer() {
	_, err := ValidateEntry(EntryRequest{Kind: EntryPlayerJoined, From: "A", To: "BANK", Amount: "5"})
	s.ErrorIs(err, ErrValidation)
}

func (s *EntrySuite) TestValidateEntryMarkersCarryNoAmount() {
	entry, err := ValidateEntry(EntryRequest{Kind: EntryGameOver})
	s.Require().NoError(err)
	s.Empty(entry.Amount)

	_, err = ValidateEntry(EntryRequest{Kind: EntryGameOver, Amount: "2"})
	s.ErrorIs(err, ErrValidation)
}

// Elapsed tests

func (s *EntrySuite) TestElapsedTickCarries() {
	e := Elapsed{Hours: 0, Minutes: 59, Seconds: 59}.Tick()
	s.Equal(Elapsed{Hours: 1, Minutes: 0, Seconds: 0}, e)

	e = Elapsed{Seconds: 59}.Tick()
	s.Equal(Elapsed{Minutes: 1}, e)
}

func (s *EntrySuite) TestElapsedSessionMinutesRounding() {
	s.Equal(61, Elapsed{Hours: 1, Minutes: 1, Seconds: 30}.SessionMinutes())
	s.Equal(62, Elapsed{Hours: 1, Minutes: 1, Seconds: 31}.SessionMinutes())
	s.Equal(0, Elapsed{}.SessionMinutes())
}

func (s *EntrySuite) TestElapsedJSONIsTriple() {
	data, err := json.Marshal(Elapsed{Hours: 1, Minutes: 2, Seconds: 3})
	s.Require().NoError(err)
	s.JSONEq(`[1,2,3]`, string(data))

	var e Elapsed
	s.Require().NoError(json.Unmarshal([]byte(`[4,5,6]`), &e))
	s.Equal(Elapsed{Hours: 4, Minutes: 5, Seconds: 6}, e)

	s.Error(json.Unmarshal([]byte(`[1,2]`), &e))
}

// Game helpers

func (s *EntrySuite) TestCloneIsDeep() {
	g := &Game{
		Players: []Player{{ID: "A"}},
		Entries: []Entry{{Seq: 0}},
		Bank:    &Bank{},
	}
	c := g.Clone()
	c.Players[0].ID = "B"
	c.Entries[0].Seq = 9
	c.Bank.Profit = decimal.NewFromInt(3)

	s.Equal(PlayerID("A"), g.Players[0].ID)
	s.Equal(0, g.Entries[0].Seq)
	s.True(g.Bank.Profit.IsZero())
}

func (s *EntrySuite) TestNormalizePlayerID() {
	s.Equal(PlayerID("LAKSH"), NormalizePlayerID("  laksh\n"))
	s.True(NormalizePlayerID("bank").IsBank())
}
