package game

import (
	"context"

	"go.uber.org/zap"

	"github.com/mindfall/mindfall-server/internal/game/card"
)

// phaseOrder is the cyclic in-turn phase sequence. init is occupied only
// before the second player joins and never re-entered.
var phaseOrder = []card.Phase{card.PhaseDraw, card.PhaseMain, card.PhaseCombat, card.PhaseEnd}

func phaseIndex(p card.Phase) int {
	for i, ph := range phaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}

// validPhaseTransition reports whether moving from current to next is legal:
// either the immediate successor, or end from anywhere (the skip-ahead escape
// hatch). Wrapping end->draw is END_TURN's job, never CHANGE_PHASE's.
func validPhaseTransition(current, next card.Phase) bool {
	ci, ni := phaseIndex(current), phaseIndex(next)
	if ci == -1 || ni == -1 {
		return false
	}
	if next == card.PhaseEnd && current != card.PhaseEnd {
		return true
	}
	return ni == ci+1
}

// handleDrawPhase moves the top card of the current player's deck to their
// hand. The back of the deck slice is the draw position. An empty deck is a
// silent no-op draw; exhaustion is a win-condition concern, not a draw error.
// A card ID missing from the catalog is dropped from the deck with a warning
// so a stale deck cannot wedge the game.
func (e *Engine) handleDrawPhase(ctx context.Context, state *GameState) ([]Event, error) {
	player := state.Player(state.CurrentPlayer)
	if player == nil {
		return nil, fault("draw phase: current player %q missing", state.CurrentPlayer)
	}
	if len(player.Deck) == 0 {
		return nil, nil
	}

	cardID := player.Deck[len(player.Deck)-1]
	player.Deck = player.Deck[:len(player.Deck)-1]

	def, err := e.cards.GetCard(ctx, cardID)
	if err != nil {
		e.logger.Warn("drawn card missing from catalog",
			zap.String("game_id", state.ID),
			zap.String("card_id", cardID),
		)
		return nil, nil
	}
	player.Hand = append(player.Hand, &Card{Definition: *def})

	return []Event{event(EventCardDrawn, player.ID, cardID, "", 0)}, nil
}

// handleEndPhase resets the current player's resources to the base allotment.
// Resources do not carry over between turns.
func (e *Engine) handleEndPhase(state *GameState) ([]Event, error) {
	player := state.Player(state.CurrentPlayer)
	if player == nil {
		return nil, fault("end phase: current player %q missing", state.CurrentPlayer)
	}
	player.Resources = e.rules.BaseResources

	return []Event{event(EventResourcesReplenished, player.ID, "", "", 0)}, nil
}

// ProcessPhase runs the per-action post-processing pass: active timed
// effects, phase-triggered abilities, duration pruning, then the phase
// boundary hook when the applied action moved the game into draw or end.
// enteredPhase is the phase the action transitioned into, or "" when the
// action left the phase unchanged.
func (e *Engine) ProcessPhase(ctx context.Context, state *GameState, enteredPhase card.Phase) ([]Event, error) {
	events, err := e.processEffects(ctx, state)
	if err != nil {
		return events, err
	}

	switch enteredPhase {
	case card.PhaseDraw:
		drawEvents, err := e.handleDrawPhase(ctx, state)
		if err != nil {
			return events, err
		}
		events = append(events, drawEvents...)
	case card.PhaseEnd:
		endEvents, err := e.handleEndPhase(state)
		if err != nil {
			return events, err
		}
		events = append(events, endEvents...)
	}

	return events, nil
}
