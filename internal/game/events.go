package game

import "time"

// EventType categorizes emitted game events.
type EventType string

const (
	EventCardDrawn     EventType = "CARD_DRAWN"
	EventCardPlayed    EventType = "CARD_PLAYED"
	EventCardDiscarded EventType = "CARD_DISCARDED"

	EventDamageDealt    EventType = "DAMAGE_DEALT"
	EventHealingApplied EventType = "HEALING_APPLIED"
	EventBuffApplied    EventType = "BUFF_APPLIED"
	EventDebuffApplied  EventType = "DEBUFF_APPLIED"
	EventControlApplied EventType = "CONTROL_APPLIED"

	EventUnitDestroyed   EventType = "UNIT_DESTROYED"
	EventUnitSummoned    EventType = "UNIT_SUMMONED"
	EventUnitTransformed EventType = "UNIT_TRANSFORMED"

	EventAttackResolved       EventType = "ATTACK_RESOLVED"
	EventResourcesReplenished EventType = "RESOURCES_REPLENISHED"
	EventEffectExpired        EventType = "EFFECT_EXPIRED"
	EventRitualActivated      EventType = "RITUAL_ACTIVATED"
	EventGameFinished         EventType = "GAME_FINISHED"
)

// Event is an audit record emitted while resolving actions and effects. The
// manager returns events alongside the new state for history/UI consumers.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	PlayerID  string    `json:"playerId,omitempty"`
	SourceID  string    `json:"sourceId,omitempty"`
	TargetID  string    `json:"targetId,omitempty"`
	Value     int       `json:"value,omitempty"`
}

func newEvent(t EventType) Event {
	return Event{Type: t, Timestamp: time.Now().UnixMilli()}
}

func event(t EventType, playerID, sourceID, targetID string, value int) Event {
	e := newEvent(t)
	e.PlayerID = playerID
	e.SourceID = sourceID
	e.TargetID = targetID
	e.Value = value
	return e
}
