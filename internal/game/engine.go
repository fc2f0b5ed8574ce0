package game

import (
	"context"

	"go.uber.org/zap"

	"github.com/mindfall/mindfall-server/internal/game/card"
	"github.com/mindfall/mindfall-server/internal/game/resource"
)

// CardResolver supplies immutable card definitions by ID. The catalog
// implements it; tests use a map-backed fake.
type CardResolver interface {
	GetCard(ctx context.Context, id string) (*card.Definition, error)
}

// Rules are the tunable starting values of a game. The defaults are the
// canonical rules; config can override them for test servers.
type Rules struct {
	InitialHandSize int
	InitialHealth   int
	FieldSize       int
	BaseResources   resource.State
}

// DefaultRules returns the canonical rule set: 5-card opening hand, 20
// health, 4 field slots, 3/3 base resources replenished each turn.
func DefaultRules() Rules {
	return Rules{
		InitialHandSize: 5,
		InitialHealth:   20,
		FieldSize:       4,
		BaseResources:   resource.State{Material: 3, Mind: 3},
	}
}

// Engine applies validated actions to game state. It holds no game state of
// its own: every method is a synchronous transformation of the state value it
// is handed, so a single Engine serves every game. Card lookups during draws
// are the only collaborator calls.
type Engine struct {
	logger *zap.Logger
	cards  CardResolver
	rules  Rules
}

// NewEngine creates an engine with the given resolver and rules.
func NewEngine(logger *zap.Logger, cards CardResolver, rules Rules) *Engine {
	return &Engine{logger: logger, cards: cards, rules: rules}
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() Rules { return e.rules }
