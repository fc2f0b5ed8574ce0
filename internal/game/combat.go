package game

import (
	"context"
)

// applyDeclareAttack resolves a declared attack. Against a player the attack
// deals the attacker's attack value directly to their health. Against a unit,
// damage is mutual: each unit subtracts the other's attack from its defense,
// and any unit at or below zero is destroyed, firing its onDeath abilities.
func (e *Engine) applyDeclareAttack(ctx context.Context, state *GameState, action Action) ([]Event, error) {
	data, err := action.DeclareAttack()
	if err != nil {
		return nil, fault("declare attack: %v", err)
	}

	player := state.Player(action.PlayerID)
	if player == nil {
		return nil, fault("declare attack: player %q missing", action.PlayerID)
	}
	attacker, _ := player.FindCardOnField(data.AttackerID)
	if attacker == nil {
		return nil, fault("declare attack: attacker %q not on field", data.AttackerID)
	}
	target, ok := state.FindTarget(data.TargetID)
	if !ok {
		return nil, fault("declare attack: target %q not found", data.TargetID)
	}

	events := []Event{event(EventAttackResolved, action.PlayerID, attacker.ID, data.TargetID, attacker.Attack)}

	if target.IsPlayer() {
		defender := state.Player(target.PlayerID)
		defender.Health -= attacker.Attack
		events = append(events, event(EventDamageDealt, target.PlayerID, attacker.ID, target.PlayerID, attacker.Attack))
		return events, nil
	}

	blocker := target.Card
	blocker.Defense -= attacker.Attack
	events = append(events, event(EventDamageDealt, target.PlayerID, attacker.ID, blocker.ID, attacker.Attack))

	attacker.Defense -= blocker.Attack
	if blocker.Attack > 0 {
		events = append(events, event(EventDamageDealt, action.PlayerID, blocker.ID, attacker.ID, blocker.Attack))
	}

	// Destroy the blocker first so its onDeath cascade sees the attacker's
	// post-combat stats.
	if blocker.Defense <= 0 {
		destroyed, err := e.destroyUnit(ctx, state, target.PlayerID, blocker)
		if err != nil {
			return events, err
		}
		events = append(events, destroyed...)
	}
	if attacker.Defense <= 0 {
		destroyed, err := e.destroyUnit(ctx, state, action.PlayerID, attacker)
		if err != nil {
			return events, err
		}
		events = append(events, destroyed...)
	}

	return events, nil
}
