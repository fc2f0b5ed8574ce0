package game

import (
	"context"

	"github.com/mindfall/mindfall-server/internal/game/card"
)

// Apply executes a validated action against the state, mutating it in place.
// It returns the phase the action transitioned into ("" when unchanged) so
// the caller can run phase-boundary hooks, plus the events emitted while
// resolving. Apply assumes ValidateAction passed; any inconsistency it still
// hits is an internal fault, never a silent no-op.
func (e *Engine) Apply(ctx context.Context, state *GameState, action Action) (card.Phase, []Event, error) {
	switch action.Type {
	case ActionPlayCard:
		events, err := e.applyPlayCard(ctx, state, action)
		return "", events, err
	case ActionActivateAbility:
		events, err := e.applyActivateAbility(ctx, state, action)
		return "", events, err
	case ActionChangePhase:
		return e.applyChangePhase(state, action)
	case ActionChangeLayer:
		return "", nil, applyChangeLayer(state, action)
	case ActionEndTurn:
		return applyEndTurn(state, action)
	case ActionDeclareAttack:
		events, err := e.applyDeclareAttack(ctx, state, action)
		return "", events, err
	case ActionSurrender:
		return "", nil, applySurrender(state, action)
	default:
		return "", nil, fault("unhandled action type %q", action.Type)
	}
}

func (e *Engine) applyPlayCard(ctx context.Context, state *GameState, action Action) ([]Event, error) {
	data, err := action.PlayCard()
	if err != nil {
		return nil, fault("play card: %v", err)
	}

	player := state.Player(action.PlayerID)
	if player == nil {
		return nil, fault("play card: player %q missing", action.PlayerID)
	}
	c, idx := player.FindCardInHand(data.CardID)
	if c == nil {
		return nil, fault("play card: card %q not in hand", data.CardID)
	}
	if data.Position < 0 || data.Position >= len(player.Field) || player.Field[data.Position] != nil {
		return nil, fault("play card: slot %d unavailable", data.Position)
	}

	player.Hand = append(player.Hand[:idx], player.Hand[idx+1:]...)
	player.Resources = player.Resources.Spend(c.Cost)

	events := []Event{event(EventCardPlayed, player.ID, c.ID, "", data.Position)}

	switch c.Type {
	case card.TypeUnit:
		player.Field[data.Position] = c
		// onEnter abilities fire as the unit arrives.
		for _, ability := range c.Abilities {
			if ability.Trigger == card.TriggerOnEnter {
				triggered, err := e.resolveEffect(ctx, state, ability, player.ID, c.ID, nil)
				if err != nil {
					return events, err
				}
				events = append(events, triggered...)
			}
		}

	case card.TypeEffect:
		// One-shot: the embedded effect resolves and the card is consumed
		// without ever occupying the slot.
		player.Destroyed = append(player.Destroyed, c.ID)
		if c.Effect != nil {
			resolved, err := e.resolveEffect(ctx, state, *c.Effect, player.ID, c.ID, nil)
			if err != nil {
				return events, err
			}
			events = append(events, resolved...)
		}

	case card.TypeRitual:
		player.Field[data.Position] = c
		// A ritual's effects tick as timed GameEffects for its duration.
		for _, eff := range c.Effects {
			player.ActiveEffects = append(player.ActiveEffects, GameEffect{
				ID:                newEffectID(),
				SourceCardID:      c.ID,
				SourceName:        c.Name,
				OwnerID:           player.ID,
				Type:              eff.Type,
				Target:            eff.Target,
				Value:             eff.Value,
				RemainingDuration: c.Duration,
			})
		}
		events = append(events, event(EventRitualActivated, player.ID, c.ID, "", c.Duration))

	default:
		return events, fault("play card: card %q has unknown type %q", c.ID, c.Type)
	}

	return events, nil
}

func (e *Engine) applyActivateAbility(ctx context.Context, state *GameState, action Action) ([]Event, error) {
	data, err := action.ActivateAbility()
	if err != nil {
		return nil, fault("activate ability: %v", err)
	}

	player := state.Player(action.PlayerID)
	if player == nil {
		return nil, fault("activate ability: player %q missing", action.PlayerID)
	}
	c, _ := player.FindCardOnField(data.CardID)
	if c == nil {
		return nil, fault("activate ability: card %q not on field", data.CardID)
	}
	if data.AbilityIndex < 0 || data.AbilityIndex >= len(c.Abilities) {
		return nil, fault("activate ability: index %d out of range", data.AbilityIndex)
	}
	ability := c.Abilities[data.AbilityIndex]

	events, err := e.resolveEffect(ctx, state, ability, player.ID, c.ID, data.Targets)
	if err != nil {
		return events, err
	}

	if ability.Cost != nil {
		player.Resources = player.Resources.Spend(*ability.Cost)
	}
	return events, nil
}

func (e *Engine) applyChangePhase(state *GameState, action Action) (card.Phase, []Event, error) {
	data, err := action.ChangePhase()
	if err != nil {
		return "", nil, fault("change phase: %v", err)
	}
	state.Phase = data.Phase
	return data.Phase, nil, nil
}

func applyChangeLayer(state *GameState, action Action) error {
	data, err := action.ChangeLayer()
	if err != nil {
		return fault("change layer: %v", err)
	}
	player := state.Player(action.PlayerID)
	if player == nil {
		return fault("change layer: player %q missing", action.PlayerID)
	}
	player.ActiveLayer = data.Layer
	return nil
}

// applyEndTurn rotates the current player, resets the phase to draw, and
// increments the turn counter in one step.
func applyEndTurn(state *GameState, action Action) (card.Phase, []Event, error) {
	next := state.OpponentOf(action.PlayerID)
	if next == "" {
		return "", nil, fault("end turn: no opponent for %q", action.PlayerID)
	}
	state.CurrentPlayer = next
	state.Phase = card.PhaseDraw
	state.Turn++
	return card.PhaseDraw, nil, nil
}

func applySurrender(state *GameState, action Action) error {
	winner := state.OpponentOf(action.PlayerID)
	if winner == "" {
		return fault("surrender: no opponent for %q", action.PlayerID)
	}
	state.Status = StatusFinished
	state.Winner = winner
	return nil
}
