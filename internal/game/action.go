package game

import (
	"encoding/json"
	"fmt"

	"github.com/mindfall/mindfall-server/internal/game/card"
)

// ActionType is the closed set of player actions.
type ActionType string

const (
	ActionPlayCard        ActionType = "PLAY_CARD"
	ActionActivateAbility ActionType = "ACTIVATE_ABILITY"
	ActionChangePhase     ActionType = "CHANGE_PHASE"
	ActionChangeLayer     ActionType = "CHANGE_LAYER"
	ActionEndTurn         ActionType = "END_TURN"
	ActionDeclareAttack   ActionType = "DECLARE_ATTACK"
	ActionSurrender       ActionType = "SURRENDER"
)

// ValidActionType reports whether t is a known action type.
func ValidActionType(t ActionType) bool {
	switch t {
	case ActionPlayCard, ActionActivateAbility, ActionChangePhase,
		ActionChangeLayer, ActionEndTurn, ActionDeclareAttack, ActionSurrender:
		return true
	}
	return false
}

// Action is the wire envelope for a player action. Data is the type-specific
// payload, decoded through the typed accessors below before any rule runs.
type Action struct {
	Type      ActionType      `json:"type"`
	PlayerID  string          `json:"playerId"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// PlayCardData is the payload of a PLAY_CARD action.
type PlayCardData struct {
	CardID   string `json:"cardId"`
	Position int    `json:"position"`
}

// ActivateAbilityData is the payload of an ACTIVATE_ABILITY action.
type ActivateAbilityData struct {
	CardID       string   `json:"cardId"`
	AbilityIndex int      `json:"abilityIndex"`
	Targets      []string `json:"targets,omitempty"`
}

// ChangePhaseData is the payload of a CHANGE_PHASE action.
type ChangePhaseData struct {
	Phase card.Phase `json:"phase"`
}

// ChangeLayerData is the payload of a CHANGE_LAYER action.
type ChangeLayerData struct {
	Layer card.Layer `json:"layer"`
}

// DeclareAttackData is the payload of a DECLARE_ATTACK action.
type DeclareAttackData struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
}

// PlayCard decodes the PLAY_CARD payload.
func (a Action) PlayCard() (PlayCardData, error) {
	var d PlayCardData
	return d, a.decode(&d)
}

// ActivateAbility decodes the ACTIVATE_ABILITY payload.
func (a Action) ActivateAbility() (ActivateAbilityData, error) {
	var d ActivateAbilityData
	return d, a.decode(&d)
}

// ChangePhase decodes the CHANGE_PHASE payload.
func (a Action) ChangePhase() (ChangePhaseData, error) {
	var d ChangePhaseData
	return d, a.decode(&d)
}

// ChangeLayer decodes the CHANGE_LAYER payload.
func (a Action) ChangeLayer() (ChangeLayerData, error) {
	var d ChangeLayerData
	return d, a.decode(&d)
}

// DeclareAttack decodes the DECLARE_ATTACK payload.
func (a Action) DeclareAttack() (DeclareAttackData, error) {
	var d DeclareAttackData
	return d, a.decode(&d)
}

func (a Action) decode(into any) error {
	if len(a.Data) == 0 {
		return fmt.Errorf("action %s: missing payload", a.Type)
	}
	if err := json.Unmarshal(a.Data, into); err != nil {
		return fmt.Errorf("action %s: malformed payload: %w", a.Type, err)
	}
	return nil
}

// NewAction builds an action envelope with an encoded payload. Used by tests
// and the transport layer; payload may be nil for END_TURN and SURRENDER.
func NewAction(t ActionType, playerID string, timestamp int64, payload any) (Action, error) {
	a := Action{Type: t, PlayerID: playerID, Timestamp: timestamp}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Action{}, fmt.Errorf("encode %s payload: %w", t, err)
		}
		a.Data = raw
	}
	return a, nil
}
