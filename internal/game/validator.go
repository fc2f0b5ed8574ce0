package game

import (
	"github.com/mindfall/mindfall-server/internal/game/card"
)

// ValidateAction decides the legality of an action against the current state
// without mutating anything. A nil return means legal; otherwise the error is
// a *RuleError carrying a stable rejection code.
func ValidateAction(state *GameState, action Action) error {
	if state.Status != StatusActive {
		return reject(RejectGameNotActive, "game is not active")
	}

	// Turn-exclusive engine: the non-active player may only surrender.
	if action.PlayerID != state.CurrentPlayer && action.Type != ActionSurrender {
		return reject(RejectNotYourTurn, "not your turn")
	}
	if state.Player(action.PlayerID) == nil {
		return reject(RejectNotYourTurn, "player %q is not in this game", action.PlayerID)
	}

	switch action.Type {
	case ActionPlayCard:
		return validatePlayCard(state, action)
	case ActionActivateAbility:
		return validateActivateAbility(state, action)
	case ActionChangePhase:
		return validateChangePhase(state, action)
	case ActionChangeLayer:
		return validateChangeLayer(state, action)
	case ActionEndTurn:
		if state.Phase != card.PhaseEnd {
			return reject(RejectWrongPhase, "can only end turn during end phase")
		}
		return nil
	case ActionDeclareAttack:
		return validateDeclareAttack(state, action)
	case ActionSurrender:
		return nil
	default:
		return reject(RejectUnknownAction, "unknown action type %q", action.Type)
	}
}

func validatePlayCard(state *GameState, action Action) error {
	data, err := action.PlayCard()
	if err != nil {
		return reject(RejectMalformedPayload, "%v", err)
	}
	if state.Phase != card.PhaseMain {
		return reject(RejectWrongPhase, "can only play cards during main phase")
	}

	player := state.Player(action.PlayerID)
	c, _ := player.FindCardInHand(data.CardID)
	if c == nil {
		return reject(RejectCardNotInHand, "card %q is not in hand", data.CardID)
	}
	if data.Position < 0 || data.Position >= len(player.Field) {
		return reject(RejectInvalidPosition, "position %d out of range", data.Position)
	}
	if player.Field[data.Position] != nil {
		return reject(RejectPositionOccupied, "position %d is occupied", data.Position)
	}
	if c.Layer != player.ActiveLayer {
		return reject(RejectLayerMismatch, "card layer %s does not match active layer %s", c.Layer, player.ActiveLayer)
	}
	if !player.Resources.CanAfford(c.Cost) {
		return reject(RejectInsufficientResources, "not enough resources")
	}
	return nil
}

func validateActivateAbility(state *GameState, action Action) error {
	data, err := action.ActivateAbility()
	if err != nil {
		return reject(RejectMalformedPayload, "%v", err)
	}

	player := state.Player(action.PlayerID)
	c, _ := player.FindCardOnField(data.CardID)
	if c == nil {
		return reject(RejectCardNotOnField, "card %q is not on the field", data.CardID)
	}
	if !c.IsUnit() {
		return reject(RejectNotAUnit, "card %q is not a unit", data.CardID)
	}
	if data.AbilityIndex < 0 || data.AbilityIndex >= len(c.Abilities) {
		return reject(RejectInvalidAbility, "ability index %d does not exist", data.AbilityIndex)
	}

	ability := c.Abilities[data.AbilityIndex]
	if ability.Phase != "" && state.Phase != ability.Phase {
		return reject(RejectWrongPhase, "ability requires %s phase", ability.Phase)
	}
	if ability.Cost != nil && !player.Resources.CanAfford(*ability.Cost) {
		return reject(RejectInsufficientResources, "not enough resources for ability")
	}
	return validateTargets(state, player, ability, data.Targets)
}

// validateTargets checks declared targets against the ability's selector and
// the cross-layer rule.
func validateTargets(state *GameState, player *PlayerState, ability card.Ability, targets []string) error {
	if ability.TargetCount > 0 && len(targets) != ability.TargetCount {
		return reject(RejectInvalidTarget, "ability requires exactly %d targets, got %d", ability.TargetCount, len(targets))
	}

	for _, targetID := range targets {
		target, ok := state.FindTarget(targetID)
		if !ok {
			return reject(RejectInvalidTarget, "target %q not found", targetID)
		}

		switch ability.Target {
		case card.TargetSelf, card.TargetAlly:
			if target.PlayerID != player.ID {
				return reject(RejectInvalidTarget, "target %q is not yours", targetID)
			}
		case card.TargetEnemy:
			if target.PlayerID == player.ID {
				return reject(RejectInvalidTarget, "target %q is on your side", targetID)
			}
		case card.TargetAll:
			// unrestricted
		case card.TargetPlayer:
			if !target.IsPlayer() {
				return reject(RejectInvalidTarget, "target %q is not a player", targetID)
			}
		default:
			return reject(RejectInvalidTarget, "ability has unknown target selector %q", ability.Target)
		}

		// Cross-layer targeting is opt-in per ability.
		if !target.IsPlayer() && target.Card.Layer != player.ActiveLayer && !ability.CanTargetOtherLayer {
			return reject(RejectInvalidTarget, "target %q is outside your active layer", targetID)
		}
	}
	return nil
}

func validateChangePhase(state *GameState, action Action) error {
	data, err := action.ChangePhase()
	if err != nil {
		return reject(RejectMalformedPayload, "%v", err)
	}
	if !validPhaseTransition(state.Phase, data.Phase) {
		return reject(RejectInvalidPhaseTransition, "cannot move from %s to %s", state.Phase, data.Phase)
	}
	return nil
}

func validateChangeLayer(state *GameState, action Action) error {
	data, err := action.ChangeLayer()
	if err != nil {
		return reject(RejectMalformedPayload, "%v", err)
	}
	if state.Phase != card.PhaseMain {
		return reject(RejectWrongPhase, "can only change layer during main phase")
	}
	if !card.ValidLayer(data.Layer) {
		return reject(RejectInvalidLayer, "unknown layer %q", data.Layer)
	}
	return nil
}

func validateDeclareAttack(state *GameState, action Action) error {
	data, err := action.DeclareAttack()
	if err != nil {
		return reject(RejectMalformedPayload, "%v", err)
	}
	if state.Phase != card.PhaseCombat {
		return reject(RejectWrongPhase, "can only attack during combat phase")
	}

	player := state.Player(action.PlayerID)
	attacker, _ := player.FindCardOnField(data.AttackerID)
	if attacker == nil {
		return reject(RejectCardNotOnField, "attacker %q is not on the field", data.AttackerID)
	}
	if !attacker.IsUnit() {
		return reject(RejectNotAUnit, "attacker %q is not a unit", data.AttackerID)
	}

	target, ok := state.FindTarget(data.TargetID)
	if !ok {
		return reject(RejectInvalidTarget, "attack target %q not found", data.TargetID)
	}
	if target.PlayerID == action.PlayerID {
		return reject(RejectInvalidTarget, "cannot attack your own side")
	}
	return nil
}
