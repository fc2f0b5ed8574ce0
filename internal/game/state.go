// Package game implements the rules engine: authoritative state, action
// validation and execution, effect resolution, combat, and the orchestrating
// manager that ties them to storage.
package game

import (
	"github.com/mindfall/mindfall-server/internal/game/card"
	"github.com/mindfall/mindfall-server/internal/game/resource"
)

// Status is the lifecycle of a game: waiting for the second player, active,
// then finished. Finished games are read-only.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// ControlMarker records that a unit is controlled by another player for a
// number of turns. The marker is bookkeeping only; no combat or targeting
// rule consumes it.
type ControlMarker struct {
	By       string `json:"by"`
	Duration int    `json:"duration"`
}

// Card is a card instance in a player's hand or field. It carries a copy of
// the catalog definition so in-game stat changes (damage, buffs, transforms)
// never touch the immutable catalog record.
type Card struct {
	card.Definition
	Controlled *ControlMarker `json:"controlled,omitempty"`
}

// GameEffect is a timed effect tracked while active: the payload plus source
// attribution and remaining duration.
type GameEffect struct {
	ID                string          `json:"id"`
	SourceCardID      string          `json:"sourceCardId"`
	SourceName        string          `json:"sourceName,omitempty"`
	OwnerID           string          `json:"ownerId,omitempty"`
	Type              card.EffectType `json:"type"`
	Target            card.TargetType `json:"target"`
	Value             int             `json:"value"`
	RemainingDuration int             `json:"remainingDuration"`
	AffectedCardIDs   []string        `json:"affectedCardIds,omitempty"`
}

// PlayerState is one player's half of the board.
type PlayerState struct {
	ID            string         `json:"id"`
	Health        int            `json:"health"`
	Deck          []string       `json:"deck"` // ordered, back = draw position
	Hand          []*Card        `json:"hand"`
	Field         []*Card        `json:"field"` // fixed length, nil = empty slot
	Destroyed     []string       `json:"destroyed,omitempty"` // card IDs that left the field
	Resources     resource.State `json:"resources"`
	ActiveLayer   card.Layer     `json:"activeLayer"`
	ActiveEffects []GameEffect   `json:"activeEffects"`
}

// GameState is the authoritative state of one game. It is created by the
// manager, mutated only by the executor and effect engine in response to
// validated actions, and persisted whole as JSON after every action.
type GameState struct {
	ID            string                  `json:"id"`
	Status        Status                  `json:"status"`
	Turn          int                     `json:"turn"`
	Phase         card.Phase              `json:"phase"`
	CurrentPlayer string                  `json:"currentPlayer"`
	Players       map[string]*PlayerState `json:"players"`
	PlayerOrder   []string                `json:"playerOrder"` // join order; keeps win checks deterministic
	ActiveEffects []GameEffect            `json:"activeEffects"`
	History       []Action                `json:"history"`
	Winner        string                  `json:"winner,omitempty"`
	CreatedBy     string                  `json:"createdBy,omitempty"`
	Created       int64                   `json:"created,omitempty"`
	StartedAt     int64                   `json:"startedAt,omitempty"`
	FinishedAt    int64                   `json:"finishedAt,omitempty"`
}

// Player returns the state for playerID, or nil.
func (g *GameState) Player(playerID string) *PlayerState {
	return g.Players[playerID]
}

// OpponentOf returns the ID of the other participant, or "" if the game is
// not yet full.
func (g *GameState) OpponentOf(playerID string) string {
	for _, id := range g.PlayerOrder {
		if id != playerID {
			return id
		}
	}
	return ""
}

// FindCardInHand returns the card and its index in the player's hand, or
// (nil, -1).
func (p *PlayerState) FindCardInHand(cardID string) (*Card, int) {
	for i, c := range p.Hand {
		if c != nil && c.ID == cardID {
			return c, i
		}
	}
	return nil, -1
}

// FindCardOnField returns the card and its slot on the player's field, or
// (nil, -1).
func (p *PlayerState) FindCardOnField(cardID string) (*Card, int) {
	for i, c := range p.Field {
		if c != nil && c.ID == cardID {
			return c, i
		}
	}
	return nil, -1
}

// Target is a resolved targeting endpoint: either a player or a unit on a
// player's field.
type Target struct {
	PlayerID string // owning player (or the player itself)
	Card     *Card  // nil for player targets
}

// IsPlayer reports whether the target is a player endpoint.
func (t Target) IsPlayer() bool { return t.Card == nil }

// FindTarget resolves a target identifier to a player or a fielded card.
// Returns false when the identifier matches nothing.
func (g *GameState) FindTarget(targetID string) (Target, bool) {
	if _, ok := g.Players[targetID]; ok {
		return Target{PlayerID: targetID}, true
	}
	for _, id := range g.PlayerOrder {
		p := g.Players[id]
		if c, _ := p.FindCardOnField(targetID); c != nil {
			return Target{PlayerID: id, Card: c}, true
		}
	}
	return Target{}, false
}
