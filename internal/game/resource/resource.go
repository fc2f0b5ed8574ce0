// Package resource implements the two-currency ledger shared by every player.
// All operations are pure value transformations; balances never go negative.
package resource

// State is a player's standing balance of the two currencies.
type State struct {
	Material int `json:"material"`
	Mind     int `json:"mind"`
}

// Cost is the price attached to a card or ability. The zero value is free.
type Cost struct {
	Material int `json:"material"`
	Mind     int `json:"mind"`
}

// CanAfford reports whether every component of the cost is covered by the
// balance.
func (s State) CanAfford(c Cost) bool {
	return s.Material >= c.Material && s.Mind >= c.Mind
}

// Spend subtracts the cost from the balance, clamping each currency at zero.
// Callers are expected to check CanAfford first; overspending without the
// check clamps rather than going negative.
func (s State) Spend(c Cost) State {
	return State{
		Material: clampZero(s.Material - c.Material),
		Mind:     clampZero(s.Mind - c.Mind),
	}
}

// Add credits the gain to the balance.
func (s State) Add(gain State) State {
	return State{
		Material: s.Material + gain.Material,
		Mind:     s.Mind + gain.Mind,
	}
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
