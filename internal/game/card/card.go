// Package card holds the immutable card and effect definitions loaded from the
// catalog. Nothing in this package mutates game state; the engine consumes
// these values and tracks its own in-game copies.
package card

import (
	"github.com/mindfall/mindfall-server/internal/game/resource"
)

// Type classifies a card definition.
type Type string

const (
	TypeUnit   Type = "unit"
	TypeEffect Type = "effect"
	TypeRitual Type = "ritual"
)

// Layer is one of the two parallel affiliations a player tunes into.
// A card can only be played while its owner's active layer matches.
type Layer string

const (
	LayerMaterial Layer = "material"
	LayerMind     Layer = "mind"
)

// ValidLayer reports whether l names a real layer.
func ValidLayer(l Layer) bool {
	return l == LayerMaterial || l == LayerMind
}

// Rarity buckets for collection/deck-building purposes. The engine never
// branches on rarity.
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
)

// Phase is one sub-step of a turn. Ability phase restrictions reference these,
// which is why the type lives with the card model rather than the engine.
type Phase string

const (
	PhaseInit   Phase = "init"
	PhaseDraw   Phase = "draw"
	PhaseMain   Phase = "main"
	PhaseCombat Phase = "combat"
	PhaseEnd    Phase = "end"
)

// EffectType is the closed set of effect payloads the resolution engine
// understands. Adding a type means extending the engine's dispatch switch.
type EffectType string

const (
	EffectDamage    EffectType = "damage"
	EffectHeal      EffectType = "heal"
	EffectBuff      EffectType = "buff"
	EffectDebuff    EffectType = "debuff"
	EffectControl   EffectType = "control"
	EffectDraw      EffectType = "draw"
	EffectDiscard   EffectType = "discard"
	EffectTransform EffectType = "transform"
	EffectSummon    EffectType = "summon"
)

// TargetType selects which side of the board an effect resolves against.
type TargetType string

const (
	TargetSelf   TargetType = "self"
	TargetAlly   TargetType = "ally"
	TargetEnemy  TargetType = "enemy"
	TargetAll    TargetType = "all"
	TargetPlayer TargetType = "player"
)

// TriggerType marks when an ability fires on its own instead of by activation.
type TriggerType string

const (
	TriggerOnEnter TriggerType = "onEnter"
	TriggerOnDeath TriggerType = "onDeath"
	TriggerOnPhase TriggerType = "onPhase"
)

// Effect is a parameterized game-rule payload attached to a card or tracked
// independently while active.
type Effect struct {
	ID                  string         `json:"id"`
	Type                EffectType     `json:"type"`
	Target              TargetType     `json:"target"`
	Value               int            `json:"value"`
	Duration            int            `json:"duration,omitempty"`
	CanTargetOtherLayer bool           `json:"canTargetOtherLayer,omitempty"`
	Phase               Phase          `json:"phase,omitempty"`
	TargetCount         int            `json:"targetCount,omitempty"`
	Trigger             TriggerType    `json:"trigger,omitempty"`
	Cost                *resource.Cost `json:"cost,omitempty"`
}

// Ability is an effect carried by a unit. The original card data makes no
// structural distinction between the two.
type Ability = Effect

// Definition is a card as stored in the catalog. Type-specific fields are
// populated according to Type: units carry Attack/Defense/Abilities, effect
// cards carry Effect, rituals carry Effects/Duration/LayerRequirements.
type Definition struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        Type          `json:"type"`
	Layer       Layer         `json:"layer"`
	Cost        resource.Cost `json:"cost"`
	Rarity      Rarity        `json:"rarity"`
	Set         string        `json:"set"`
	ReleaseDate int64         `json:"releaseDate,omitempty"`

	Attack     int       `json:"attack,omitempty"`
	Defense    int       `json:"defense,omitempty"`
	MaxDefense int       `json:"maxDefense,omitempty"` // 0 means uncapped
	Abilities  []Ability `json:"abilities,omitempty"`

	Effect *Effect `json:"effect,omitempty"`

	Effects           []Effect      `json:"effects,omitempty"`
	Duration          int           `json:"duration,omitempty"`
	LayerRequirements map[Layer]int `json:"layerRequirements,omitempty"`

	FlavorText string `json:"flavorText,omitempty"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

// IsUnit reports whether the definition describes a unit card.
func (d *Definition) IsUnit() bool { return d.Type == TypeUnit }

// IsEffect reports whether the definition describes a one-shot effect card.
func (d *Definition) IsEffect() bool { return d.Type == TypeEffect }

// IsRitual reports whether the definition describes a ritual card.
func (d *Definition) IsRitual() bool { return d.Type == TypeRitual }
