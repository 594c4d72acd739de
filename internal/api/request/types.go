package request

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Players []string `json:"players"`
	// BuyIn is the buy-in unit; empty uses the server default
	BuyIn string `json:"buy_in,omitempty"`
}

// AddPlayerRequest is the request body for adding a player during setup
type AddPlayerRequest struct {
	Player string `json:"player"`
}

// EntryRequest is the request body for recording a ledger entry
type EntryRequest struct {
	Kind   string `json:"kind"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount,omitempty"`
}

// JoinRequest is the request body for a late join
type JoinRequest struct {
	Player string `json:"player"`
	Amount string `json:"amount,omitempty"`
}

// CashOutRequest is the request body for a final cash-out
type CashOutRequest struct {
	Player string `json:"player"`
	Amount string `json:"amount"`
}

// CreateUserRequest is the request body for creating a profile
type CreateUserRequest struct {
	ID  string  `json:"id"`
	PIN *string `json:"pin,omitempty"`
}

// SetPINRequest is the request body for changing or clearing a PIN
type SetPINRequest struct {
	NewPIN string `json:"new_pin"`
}
