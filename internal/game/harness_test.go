package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mindfall/mindfall-server/internal/game/card"
	"github.com/mindfall/mindfall-server/internal/game/resource"
)

// fakeResolver is a map-backed CardResolver for engine tests.
type fakeResolver map[string]*card.Definition

func (f fakeResolver) GetCard(_ context.Context, id string) (*card.Definition, error) {
	def, ok := f[id]
	if !ok {
		return nil, errors.New("card not found: " + id)
	}
	cp := *def
	return &cp, nil
}

func testEngine(t *testing.T, cards fakeResolver) *Engine {
	t.Helper()
	return NewEngine(zaptest.NewLogger(t), cards, DefaultRules())
}

// activeGame builds a two-player game in p1's main phase on turn 1.
func activeGame() *GameState {
	rules := DefaultRules()
	newPlayer := func(id string) *PlayerState {
		return &PlayerState{
			ID:          id,
			Health:      rules.InitialHealth,
			Field:       make([]*Card, rules.FieldSize),
			Resources:   rules.BaseResources,
			ActiveLayer: card.LayerMaterial,
		}
	}
	return &GameState{
		ID:            "test-game",
		Status:        StatusActive,
		Turn:          1,
		Phase:         card.PhaseMain,
		CurrentPlayer: "p1",
		Players: map[string]*PlayerState{
			"p1": newPlayer("p1"),
			"p2": newPlayer("p2"),
		},
		PlayerOrder: []string{"p1", "p2"},
	}
}

func unitDef(id string, attack, defense int) *card.Definition {
	return &card.Definition{
		ID:      id,
		Name:    id,
		Type:    card.TypeUnit,
		Layer:   card.LayerMaterial,
		Cost:    resource.Cost{Material: 1},
		Attack:  attack,
		Defense: defense,
	}
}

func unit(def *card.Definition) *Card {
	return &Card{Definition: *def}
}

func mustAction(t *testing.T, typ ActionType, playerID string, payload any) Action {
	t.Helper()
	a, err := NewAction(typ, playerID, 1, payload)
	require.NoError(t, err)
	return a
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func hasEvent(events []Event, typ EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}
