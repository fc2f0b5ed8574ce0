package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mindfall/mindfall-server/internal/game/card"
	"github.com/mindfall/mindfall-server/internal/game/resource"
	"github.com/mindfall/mindfall-server/internal/storage"
)

func TestCatalog_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cat := New(storage.NewMemoryStore(), zaptest.NewLogger(t))

	def := &card.Definition{
		ID:      "ember-wisp",
		Name:    "Ember Wisp",
		Type:    card.TypeUnit,
		Layer:   card.LayerMaterial,
		Cost:    resource.Cost{Material: 2},
		Rarity:  card.RarityCommon,
		Set:     "core",
		Attack:  2,
		Defense: 1,
		Abilities: []card.Ability{
			{ID: "ember-burst", Type: card.EffectDamage, Target: card.TargetEnemy, Value: 1, Trigger: card.TriggerOnDeath},
		},
	}
	require.NoError(t, cat.PutCard(ctx, def))

	got, err := cat.GetCard(ctx, "ember-wisp")
	require.NoError(t, err)
	assert.Equal(t, def, got)

	ids, err := cat.ListCardIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ember-wisp"}, ids)
}

func TestCatalog_GetMissing(t *testing.T) {
	cat := New(storage.NewMemoryStore(), zaptest.NewLogger(t))

	_, err := cat.GetCard(context.Background(), "no-such-card")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestCatalog_PutWithoutID(t *testing.T) {
	cat := New(storage.NewMemoryStore(), zaptest.NewLogger(t))

	err := cat.PutCard(context.Background(), &card.Definition{Name: "Nameless"})
	assert.Error(t, err)
}
