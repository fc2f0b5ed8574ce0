package resource

import (
	"testing"
)

func TestState_CanAfford(t *testing.T) {
	s := State{Material: 3, Mind: 1}

	if !s.CanAfford(Cost{Material: 3, Mind: 1}) {
		t.Error("expected exact balance to afford cost")
	}
	if !s.CanAfford(Cost{Material: 2}) {
		t.Error("expected partial cost to be affordable")
	}
	if s.CanAfford(Cost{Material: 4}) {
		t.Error("expected material shortfall to fail")
	}
	if s.CanAfford(Cost{Mind: 2}) {
		t.Error("expected mind shortfall to fail")
	}
	if !s.CanAfford(Cost{}) {
		t.Error("expected free cost to always be affordable")
	}
}

func TestState_Spend(t *testing.T) {
	s := State{Material: 3, Mind: 2}

	got := s.Spend(Cost{Material: 2, Mind: 1})
	if got.Material != 1 || got.Mind != 1 {
		t.Errorf("expected {1 1}, got %+v", got)
	}

	// Original value untouched
	if s.Material != 3 || s.Mind != 2 {
		t.Errorf("expected receiver unchanged, got %+v", s)
	}
}

func TestState_Spend_ClampsAtZero(t *testing.T) {
	s := State{Material: 1, Mind: 0}

	got := s.Spend(Cost{Material: 5, Mind: 3})
	if got.Material != 0 || got.Mind != 0 {
		t.Errorf("expected overspend to clamp at zero, got %+v", got)
	}
}

func TestState_Add(t *testing.T) {
	s := State{Material: 1, Mind: 2}

	got := s.Add(State{Material: 2, Mind: 1})
	if got.Material != 3 || got.Mind != 3 {
		t.Errorf("expected {3 3}, got %+v", got)
	}
}
