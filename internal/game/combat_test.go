package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfall/mindfall-server/internal/game/card"
)

func attackAction(t *testing.T, attacker, target string) Action {
	t.Helper()
	return mustAction(t, ActionDeclareAttack, "p1", DeclareAttackData{
		AttackerID: attacker, TargetID: target,
	})
}

func TestCombat_DirectAttackOnPlayer(t *testing.T) {
	e := testEngine(t, fakeResolver{})
	state := activeGame()
	state.Phase = card.PhaseCombat
	state.Players["p1"].Field[0] = unit(unitDef("raider", 4, 2))

	_, events, err := e.Apply(context.Background(), state, attackAction(t, "raider", "p2"))
	require.NoError(t, err)

	assert.Equal(t, 16, state.Players["p2"].Health)
	assert.True(t, hasEvent(events, EventAttackResolved))
	assert.True(t, hasEvent(events, EventDamageDealt))
	// The attacker is untouched on a direct attack.
	assert.Equal(t, 2, state.Players["p1"].Field[0].Defense)
}

func TestCombat_MutualDamage(t *testing.T) {
	e := testEngine(t, fakeResolver{})
	state := activeGame()
	state.Phase = card.PhaseCombat
	state.Players["p1"].Field[0] = unit(unitDef("raider", 3, 5))
	state.Players["p2"].Field[0] = unit(unitDef("guard", 2, 4))

	_, _, err := e.Apply(context.Background(), state, attackAction(t, "raider", "guard"))
	require.NoError(t, err)

	assert.Equal(t, 3, state.Players["p1"].Field[0].Defense)
	assert.Equal(t, 1, state.Players["p2"].Field[0].Defense)
	assert.Equal(t, 20, state.Players["p2"].Health, "blocked damage never spills over")
}

func TestCombat_BothUnitsDestroyed(t *testing.T) {
	e := testEngine(t, fakeResolver{})
	state := activeGame()
	state.Phase = card.PhaseCombat
	state.Players["p1"].Field[0] = unit(unitDef("raider", 4, 2))
	state.Players["p2"].Field[0] = unit(unitDef("guard", 3, 3))

	_, events, err := e.Apply(context.Background(), state, attackAction(t, "raider", "guard"))
	require.NoError(t, err)

	assert.Nil(t, state.Players["p1"].Field[0])
	assert.Nil(t, state.Players["p2"].Field[0])
	assert.Contains(t, state.Players["p1"].Destroyed, "raider")
	assert.Contains(t, state.Players["p2"].Destroyed, "guard")

	destroyed := 0
	for _, ev := range events {
		if ev.Type == EventUnitDestroyed {
			destroyed++
		}
	}
	assert.Equal(t, 2, destroyed)
}

func TestCombat_ZeroAttackBlockerDealsNothing(t *testing.T) {
	e := testEngine(t, fakeResolver{})
	state := activeGame()
	state.Phase = card.PhaseCombat
	state.Players["p1"].Field[0] = unit(unitDef("raider", 2, 3))
	state.Players["p2"].Field[0] = unit(unitDef("wall", 0, 6))

	_, _, err := e.Apply(context.Background(), state, attackAction(t, "raider", "wall"))
	require.NoError(t, err)

	assert.Equal(t, 3, state.Players["p1"].Field[0].Defense)
	assert.Equal(t, 4, state.Players["p2"].Field[0].Defense)
}

func TestCombat_OnDeathCascadeAfterCombat(t *testing.T) {
	e := testEngine(t, fakeResolver{})
	state := activeGame()
	state.Phase = card.PhaseCombat

	bomber := unitDef("bomber", 1, 1)
	bomber.Abilities = []card.Ability{{
		ID: "detonate", Type: card.EffectDamage, Target: card.TargetEnemy,
		Value: 3, Trigger: card.TriggerOnDeath,
	}}
	state.Players["p1"].Field[0] = unit(unitDef("raider", 5, 4))
	state.Players["p2"].Field[0] = unit(bomber)

	_, _, err := e.Apply(context.Background(), state, attackAction(t, "raider", "bomber"))
	require.NoError(t, err)

	assert.Nil(t, state.Players["p2"].Field[0])
	// The bomber's death trigger hits its enemy, the attacking player.
	assert.Equal(t, 17, state.Players["p1"].Health)
	// The raider already took the bomber's combat damage before the trigger.
	assert.Equal(t, 3, state.Players["p1"].Field[0].Defense)
}
