package deck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mindfall/mindfall-server/internal/storage"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), zaptest.NewLogger(t))

	d := &Deck{ID: "aggro", Name: "Aggro", Cards: []string{"a", "b", "c"}}
	require.NoError(t, s.Put(ctx, "user-1", d))
	assert.NotZero(t, d.CreatedAt, "first write stamps CreatedAt")

	got, err := s.Get(ctx, "user-1", "aggro")
	require.NoError(t, err)
	assert.Equal(t, d, got)

	ids, err := s.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"aggro"}, ids)

	// Decks are namespaced per user.
	_, err = s.Get(ctx, "user-2", "aggro")
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestStore_RejectsEmptyDeck(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(), zaptest.NewLogger(t))

	err := s.Put(context.Background(), "user-1", &Deck{ID: "empty"})
	assert.Error(t, err)
}
