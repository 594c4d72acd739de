package model

import (
	"encoding/json"
	"fmt"
)

// Elapsed is the time a game's clock has been running
type Elapsed struct {
	Hours   int
	Minutes int
	Seconds int
}

// Tick returns the value one second later, carrying at 60
func (e Elapsed) Tick() Elapsed {
	e.Seconds++
	if e.Seconds >= 60 {
		e.Seconds = 0
		e.Minutes++
	}
	if e.Minutes >= 60 {
		e.Minutes = 0
		e.Hours++
	}
	return e
}

// IsZero reports whether the clock never ran
func (e Elapsed) IsZero() bool {
	return e == Elapsed{}
}

// TotalSeconds flattens the triple
func (e Elapsed) TotalSeconds() int {
	return e.Hours*3600 + e.Minutes*60 + e.Seconds
}

// Before reports whether e is strictly earlier than other
func (e Elapsed) Before(other Elapsed) bool {
	return e.TotalSeconds() < other.TotalSeconds()
}

// SessionMinutes is the whole minutes credited to a player's lifetime total.
// A seconds remainder over 30 rounds up.
func (e Elapsed) SessionMinutes() int {
	minutes := e.Hours*60 + e.Minutes
	if e.Seconds > 30 {
		minutes++
	}
	return minutes
}

func (e Elapsed) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", e.Hours, e.Minutes, e.Seconds)
}

// MarshalJSON encodes as [hours, minutes, seconds]
func (e Elapsed) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{e.Hours, e.Minutes, e.Seconds})
}

// UnmarshalJSON decodes [hours, minutes, seconds]
func (e *Elapsed) UnmarshalJSON(data []byte) error {
	var parts []int
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("elapsed: expected 3 elements, got %d", len(parts))
	}
	e.Hours, e.Minutes, e.Seconds = parts[0], parts[1], parts[2]
	return nil
}
