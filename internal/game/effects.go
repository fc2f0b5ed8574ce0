package game

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindfall/mindfall-server/internal/game/card"
)

func newEffectID() string { return uuid.NewString() }

// unitScoped reports whether an effect type resolves against units rather
// than player endpoints when a selector has to choose.
func unitScoped(t card.EffectType) bool {
	switch t {
	case card.EffectBuff, card.EffectDebuff, card.EffectControl, card.EffectTransform:
		return true
	}
	return false
}

// resolveTargets expands a target selector into concrete endpoints. Unit
// targets outside the acting player's active layer are excluded unless the
// effect explicitly crosses layers.
func (e *Engine) resolveTargets(state *GameState, eff card.Effect, actingPlayerID, sourceCardID string) []Target {
	actor := state.Player(actingPlayerID)

	inLayer := func(c *Card) bool {
		if eff.CanTargetOtherLayer || actor == nil {
			return true
		}
		return c.Layer == actor.ActiveLayer
	}

	unitsOf := func(playerID string) []Target {
		var targets []Target
		p := state.Player(playerID)
		if p == nil {
			return nil
		}
		for _, c := range p.Field {
			if c != nil && c.IsUnit() && inLayer(c) {
				targets = append(targets, Target{PlayerID: playerID, Card: c})
			}
		}
		return targets
	}

	switch eff.Target {
	case card.TargetSelf:
		// Unit-scoped self means the source card itself.
		if unitScoped(eff.Type) && actor != nil {
			if c, _ := actor.FindCardOnField(sourceCardID); c != nil {
				return []Target{{PlayerID: actingPlayerID, Card: c}}
			}
			return nil
		}
		if actor == nil {
			return nil
		}
		return []Target{{PlayerID: actingPlayerID}}

	case card.TargetEnemy:
		opp := state.OpponentOf(actingPlayerID)
		if opp == "" {
			return nil
		}
		if unitScoped(eff.Type) {
			return unitsOf(opp)
		}
		return []Target{{PlayerID: opp}}

	case card.TargetAlly:
		if unitScoped(eff.Type) {
			return unitsOf(actingPlayerID)
		}
		if actor == nil {
			return nil
		}
		return []Target{{PlayerID: actingPlayerID}}

	case card.TargetAll:
		var targets []Target
		for _, id := range state.PlayerOrder {
			if unitScoped(eff.Type) {
				targets = append(targets, unitsOf(id)...)
			} else {
				targets = append(targets, Target{PlayerID: id})
			}
		}
		return targets

	case card.TargetPlayer:
		// Without explicit targets the player endpoint defaults to the actor.
		if actor == nil {
			return nil
		}
		return []Target{{PlayerID: actingPlayerID}}
	}

	return nil
}

// resolveEffect applies a single effect payload to its target set and returns
// the emitted events. explicitTargets comes from ability activation; when nil
// the selector decides. Destruction cascades re-enter this function through
// destroyUnit.
func (e *Engine) resolveEffect(ctx context.Context, state *GameState, eff card.Effect, actingPlayerID, sourceCardID string, explicitTargets []string) ([]Event, error) {
	var targets []Target
	if len(explicitTargets) > 0 {
		for _, id := range explicitTargets {
			// Cascades can leave a declared target stale; skip rather than fail.
			if t, ok := state.FindTarget(id); ok {
				targets = append(targets, t)
			}
		}
	} else {
		targets = e.resolveTargets(state, eff, actingPlayerID, sourceCardID)
	}

	switch eff.Type {
	case card.EffectDamage:
		return e.applyDamage(ctx, state, eff, sourceCardID, targets)
	case card.EffectHeal:
		return e.applyHeal(state, eff, sourceCardID, targets), nil
	case card.EffectBuff:
		return applyBuff(eff, sourceCardID, targets), nil
	case card.EffectDebuff:
		return e.applyDebuff(ctx, state, eff, sourceCardID, targets)
	case card.EffectControl:
		return applyControl(eff, actingPlayerID, sourceCardID, targets), nil
	case card.EffectDraw:
		return e.applyDraw(ctx, state, eff, targets)
	case card.EffectDiscard:
		return applyDiscard(state, eff, targets), nil
	case card.EffectTransform:
		return applyTransform(eff, sourceCardID, targets), nil
	case card.EffectSummon:
		return e.applySummon(state, eff, actingPlayerID, targets), nil
	default:
		return nil, fault("unhandled effect type %q", eff.Type)
	}
}

func (e *Engine) applyDamage(ctx context.Context, state *GameState, eff card.Effect, sourceID string, targets []Target) ([]Event, error) {
	var events []Event
	for _, t := range targets {
		if t.IsPlayer() {
			state.Player(t.PlayerID).Health -= eff.Value
			events = append(events, event(EventDamageDealt, t.PlayerID, sourceID, t.PlayerID, eff.Value))
			continue
		}
		if !t.Card.IsUnit() {
			continue
		}
		t.Card.Defense -= eff.Value
		events = append(events, event(EventDamageDealt, t.PlayerID, sourceID, t.Card.ID, eff.Value))

		if t.Card.Defense <= 0 {
			destroyed, err := e.destroyUnit(ctx, state, t.PlayerID, t.Card)
			if err != nil {
				return events, err
			}
			events = append(events, destroyed...)
		}
	}
	return events, nil
}

func (e *Engine) applyHeal(state *GameState, eff card.Effect, sourceID string, targets []Target) []Event {
	var events []Event
	for _, t := range targets {
		if t.IsPlayer() {
			p := state.Player(t.PlayerID)
			p.Health = min(e.rules.InitialHealth, p.Health+eff.Value)
			events = append(events, event(EventHealingApplied, t.PlayerID, sourceID, t.PlayerID, eff.Value))
			continue
		}
		if !t.Card.IsUnit() {
			continue
		}
		// Uncapped units cannot heal above their current defense.
		ceiling := t.Card.MaxDefense
		if ceiling == 0 {
			ceiling = t.Card.Defense
		}
		t.Card.Defense = min(ceiling, t.Card.Defense+eff.Value)
		events = append(events, event(EventHealingApplied, t.PlayerID, sourceID, t.Card.ID, eff.Value))
	}
	return events
}

func applyBuff(eff card.Effect, sourceID string, targets []Target) []Event {
	var events []Event
	for _, t := range targets {
		if t.IsPlayer() || !t.Card.IsUnit() {
			continue
		}
		t.Card.Attack += eff.Value
		t.Card.Defense += eff.Value
		events = append(events, event(EventBuffApplied, t.PlayerID, sourceID, t.Card.ID, eff.Value))
	}
	return events
}

func (e *Engine) applyDebuff(ctx context.Context, state *GameState, eff card.Effect, sourceID string, targets []Target) ([]Event, error) {
	var events []Event
	for _, t := range targets {
		if t.IsPlayer() || !t.Card.IsUnit() {
			continue
		}
		t.Card.Attack = max(0, t.Card.Attack-eff.Value)
		t.Card.Defense -= eff.Value
		events = append(events, event(EventDebuffApplied, t.PlayerID, sourceID, t.Card.ID, eff.Value))

		if t.Card.Defense <= 0 {
			destroyed, err := e.destroyUnit(ctx, state, t.PlayerID, t.Card)
			if err != nil {
				return events, err
			}
			events = append(events, destroyed...)
		}
	}
	return events, nil
}

func applyControl(eff card.Effect, actingPlayerID, sourceID string, targets []Target) []Event {
	duration := eff.Duration
	if duration <= 0 {
		duration = 1
	}
	var events []Event
	for _, t := range targets {
		if t.IsPlayer() || !t.Card.IsUnit() {
			continue
		}
		// Marker only; field ownership does not move.
		t.Card.Controlled = &ControlMarker{By: actingPlayerID, Duration: duration}
		events = append(events, event(EventControlApplied, actingPlayerID, sourceID, t.Card.ID, duration))
	}
	return events
}

func (e *Engine) applyDraw(ctx context.Context, state *GameState, eff card.Effect, targets []Target) ([]Event, error) {
	var events []Event
	for _, t := range targets {
		if !t.IsPlayer() {
			continue
		}
		p := state.Player(t.PlayerID)
		for i := 0; i < eff.Value && len(p.Deck) > 0; i++ {
			cardID := p.Deck[len(p.Deck)-1]
			p.Deck = p.Deck[:len(p.Deck)-1]
			def, err := e.cards.GetCard(ctx, cardID)
			if err != nil {
				e.logger.Warn("drawn card missing from catalog",
					zap.String("game_id", state.ID),
					zap.String("card_id", cardID),
				)
				continue
			}
			p.Hand = append(p.Hand, &Card{Definition: *def})
			events = append(events, event(EventCardDrawn, p.ID, cardID, "", 0))
		}
	}
	return events, nil
}

func applyDiscard(state *GameState, eff card.Effect, targets []Target) []Event {
	var events []Event
	for _, t := range targets {
		if !t.IsPlayer() {
			continue
		}
		p := state.Player(t.PlayerID)
		for i := 0; i < eff.Value && len(p.Hand) > 0; i++ {
			discarded := p.Hand[0]
			p.Hand = p.Hand[1:]
			p.Destroyed = append(p.Destroyed, discarded.ID)
			events = append(events, event(EventCardDiscarded, p.ID, discarded.ID, "", 0))
		}
	}
	return events
}

func applyTransform(eff card.Effect, sourceID string, targets []Target) []Event {
	var events []Event
	for _, t := range targets {
		if t.IsPlayer() || !t.Card.IsUnit() {
			continue
		}
		t.Card.Attack = eff.Value
		t.Card.Defense = eff.Value
		events = append(events, event(EventUnitTransformed, t.PlayerID, sourceID, t.Card.ID, eff.Value))
	}
	return events
}

// applySummon places a value/value token unit in the target player's first
// empty slot. A full field makes the summon a no-op.
func (e *Engine) applySummon(state *GameState, eff card.Effect, actingPlayerID string, targets []Target) []Event {
	var events []Event
	for _, t := range targets {
		if !t.IsPlayer() {
			continue
		}
		p := state.Player(t.PlayerID)
		slot := -1
		for i, c := range p.Field {
			if c == nil {
				slot = i
				break
			}
		}
		if slot == -1 {
			continue
		}

		layer := card.LayerMaterial
		if actor := state.Player(actingPlayerID); actor != nil {
			layer = actor.ActiveLayer
		}
		token := &Card{Definition: card.Definition{
			ID:      "token-" + uuid.NewString(),
			Name:    "Summoned Echo",
			Type:    card.TypeUnit,
			Layer:   layer,
			Attack:  eff.Value,
			Defense: eff.Value,
		}}
		p.Field[slot] = token
		events = append(events, event(EventUnitSummoned, p.ID, token.ID, "", eff.Value))
	}
	return events
}

// destroyUnit removes a dead unit from its field slot and fires its onDeath
// abilities, which re-enter the effect engine and may cascade further.
func (e *Engine) destroyUnit(ctx context.Context, state *GameState, ownerID string, c *Card) ([]Event, error) {
	owner := state.Player(ownerID)
	if owner == nil {
		return nil, fault("destroy unit: owner %q missing", ownerID)
	}
	if _, slot := owner.FindCardOnField(c.ID); slot >= 0 {
		owner.Field[slot] = nil
	}
	owner.Destroyed = append(owner.Destroyed, c.ID)

	events := []Event{event(EventUnitDestroyed, ownerID, c.ID, "", 0)}

	for _, ability := range c.Abilities {
		if ability.Trigger != card.TriggerOnDeath {
			continue
		}
		triggered, err := e.resolveEffect(ctx, state, ability, ownerID, c.ID, nil)
		if err != nil {
			return events, err
		}
		events = append(events, triggered...)
	}
	return events, nil
}

// processEffects runs one effect-processing pass: every active timed effect
// re-applies, onPhase abilities matching the current phase fire, then every
// timed duration decrements once and expired effects are pruned. The
// decrement happens once per pass, not per application.
func (e *Engine) processEffects(ctx context.Context, state *GameState) ([]Event, error) {
	var events []Event

	apply := func(ge GameEffect) error {
		eff := card.Effect{
			ID:     ge.ID,
			Type:   ge.Type,
			Target: ge.Target,
			Value:  ge.Value,
		}
		resolved, err := e.resolveEffect(ctx, state, eff, ge.OwnerID, ge.SourceCardID, nil)
		if err != nil {
			return err
		}
		events = append(events, resolved...)
		return nil
	}

	// Snapshot the lists; resolution may append new effects mid-pass.
	globals := append([]GameEffect(nil), state.ActiveEffects...)
	for _, ge := range globals {
		if err := apply(ge); err != nil {
			return events, err
		}
	}
	for _, id := range state.PlayerOrder {
		playerEffects := append([]GameEffect(nil), state.Players[id].ActiveEffects...)
		for _, ge := range playerEffects {
			if err := apply(ge); err != nil {
				return events, err
			}
		}
	}

	// Phase-triggered unit abilities fire on their own during the matching phase.
	for _, id := range state.PlayerOrder {
		p := state.Players[id]
		for _, c := range p.Field {
			if c == nil || !c.IsUnit() {
				continue
			}
			for _, ability := range c.Abilities {
				if ability.Trigger == card.TriggerOnPhase && ability.Phase == state.Phase {
					triggered, err := e.resolveEffect(ctx, state, ability, id, c.ID, nil)
					if err != nil {
						return events, err
					}
					events = append(events, triggered...)
				}
			}
		}
	}

	events = append(events, pruneExpiredEffects(state)...)
	return events, nil
}

// pruneExpiredEffects decrements every timed effect once and drops the ones
// that have run out, including stale control markers.
func pruneExpiredEffects(state *GameState) []Event {
	var events []Event

	tick := func(list []GameEffect) []GameEffect {
		kept := list[:0]
		for i := range list {
			list[i].RemainingDuration--
			if list[i].RemainingDuration > 0 {
				kept = append(kept, list[i])
				continue
			}
			events = append(events, event(EventEffectExpired, list[i].OwnerID, list[i].SourceCardID, "", 0))
		}
		return kept
	}

	state.ActiveEffects = tick(state.ActiveEffects)
	for _, id := range state.PlayerOrder {
		p := state.Players[id]
		p.ActiveEffects = tick(p.ActiveEffects)

		for _, c := range p.Field {
			if c == nil || c.Controlled == nil {
				continue
			}
			c.Controlled.Duration--
			if c.Controlled.Duration <= 0 {
				c.Controlled = nil
			}
		}
	}
	return events
}
