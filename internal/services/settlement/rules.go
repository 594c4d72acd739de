package settlement

import "github.com/mcoot/trackmyhand/internal/model"

// allowedKinds lists the entry kinds each lifecycle state accepts
var allowedKinds = map[model.GameState]map[model.EntryKind]bool{
	model.GameStateActive: {
		model.EntryInitialBuyIn:  true,
		model.EntryBuyIn:         true,
		model.EntryInGameCashOut: true,
		model.EntryPlayerJoined:  true,
		model.EntryGameOver:      true,
		model.EntryExit:          true,
	},
	model.GameStateEnded: {
		model.EntryCashOut:  true,
		model.EntryGameOver: true,
		model.EntryExit:     true,
	},
	model.GameStateArchived: {
		model.EntryGameOver: true,
	},
}

// CheckAllowed returns ErrState when entries of kind may not be applied to a
// game in state
func CheckAllowed(state model.GameState, kind model.EntryKind) error {
	if allowedKinds[state][kind] {
		return nil
	}
	switch state {
	case model.GameStateSetup:
		return model.Statef("game has not started")
	case model.GameStateArchived:
		return model.Statef("game is archived")
	case model.GameStateEnded:
		return model.Statef("%s not allowed after game over", kind)
	case model.GameStateActive:
		return model.Statef("%s only allowed after game over", kind)
	}
	return model.Statef("unknown game state %q", state)
}

// Reconciled reports whether every dollar paid into the pot has been paid
// back out
func Reconciled(g *model.Game) bool {
	return g.Reconciled()
}
