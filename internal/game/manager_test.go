package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mindfall/mindfall-server/internal/catalog"
	"github.com/mindfall/mindfall-server/internal/deck"
	"github.com/mindfall/mindfall-server/internal/game/card"
	"github.com/mindfall/mindfall-server/internal/game/resource"
	"github.com/mindfall/mindfall-server/internal/profile"
	"github.com/mindfall/mindfall-server/internal/storage"
)

type managerFixture struct {
	manager  *Manager
	store    *storage.MemoryStore
	profiles *profile.Store
}

// newManagerFixture seeds a catalog of cheap units and an 8-card deck named
// "starter" for both players.
func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	store := storage.NewMemoryStore()

	cat := catalog.New(store, logger)
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("unit-%d", i)
		def := unitDef(id, 2, 2)
		require.NoError(t, cat.PutCard(ctx, def))
	}

	decks := deck.NewStore(store, logger)
	cardIDs := make([]string, 8)
	for i := range cardIDs {
		cardIDs[i] = fmt.Sprintf("unit-%d", i)
	}
	for _, player := range []string{"p1", "p2"} {
		require.NoError(t, decks.Put(ctx, player, &deck.Deck{
			ID: "starter", Name: "Starter", Cards: cardIDs,
		}))
	}

	profiles := profile.NewStore(store, logger)
	engine := NewEngine(logger, cat, DefaultRules())
	return &managerFixture{
		manager:  NewManager(logger, store, decks, profiles, engine),
		store:    store,
		profiles: profiles,
	}
}

func (f *managerFixture) startedGame(t *testing.T) *GameState {
	t.Helper()
	ctx := context.Background()
	state, err := f.manager.CreateGame(ctx, "p1", "starter")
	require.NoError(t, err)
	state, err = f.manager.JoinGame(ctx, state.ID, "p2", "starter")
	require.NoError(t, err)
	return state
}

func TestManager_CreateGame(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	state, err := f.manager.CreateGame(ctx, "p1", "starter")
	require.NoError(t, err)

	assert.Equal(t, StatusWaiting, state.Status)
	assert.Equal(t, card.PhaseInit, state.Phase)
	assert.Equal(t, []string{"p1"}, state.PlayerOrder)

	p1 := state.Players["p1"]
	assert.Len(t, p1.Hand, 5)
	assert.Len(t, p1.Deck, 3)
	assert.Equal(t, 20, p1.Health)
	assert.Equal(t, resource.State{Material: 3, Mind: 3}, p1.Resources)
	assert.Equal(t, card.LayerMaterial, p1.ActiveLayer)
	assert.Len(t, p1.Field, 4)

	// Persisted immediately.
	loaded, err := f.manager.GetState(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, loaded.ID)
}

func TestManager_CreateGameUnknownDeck(t *testing.T) {
	f := newManagerFixture(t)
	_, err := f.manager.CreateGame(context.Background(), "p1", "no-such-deck")
	assert.ErrorIs(t, err, deck.ErrDeckNotFound)
}

func TestManager_JoinGame(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	created, err := f.manager.CreateGame(ctx, "p1", "starter")
	require.NoError(t, err)

	state, err := f.manager.JoinGame(ctx, created.ID, "p2", "starter")
	require.NoError(t, err)

	assert.Equal(t, StatusActive, state.Status)
	assert.Equal(t, card.PhaseDraw, state.Phase)
	assert.Equal(t, 1, state.Turn)
	assert.Equal(t, "p1", state.CurrentPlayer, "the creator takes the first turn")
	assert.Len(t, state.Players["p2"].Hand, 5)
	assert.NotZero(t, state.StartedAt)
}

func TestManager_JoinGameRejections(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	_, err := f.manager.JoinGame(ctx, "no-such-game", "p2", "starter")
	assert.ErrorIs(t, err, ErrGameNotFound)

	created, err := f.manager.CreateGame(ctx, "p1", "starter")
	require.NoError(t, err)

	_, err = f.manager.JoinGame(ctx, created.ID, "p1", "starter")
	assert.True(t, IsRejection(err), "creator cannot join their own seat twice")

	_, err = f.manager.JoinGame(ctx, created.ID, "p2", "starter")
	require.NoError(t, err)

	_, err = f.manager.JoinGame(ctx, created.ID, "p3", "starter")
	assert.True(t, IsRejection(err), "active game is closed to joiners")
}

func TestManager_RejectedActionLeavesStateUntouched(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	state := f.startedGame(t)

	// p2 acting out of turn.
	_, _, err := f.manager.ApplyAction(ctx, state.ID,
		mustAction(t, ActionChangePhase, "p2", ChangePhaseData{Phase: card.PhaseMain}))
	assert.True(t, IsRejection(err))

	loaded, err := f.manager.GetState(ctx, state.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.History)
	assert.Equal(t, card.PhaseDraw, loaded.Phase)
}

func TestManager_ActionPersistsAndAppendsHistory(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	state := f.startedGame(t)

	next, _, err := f.manager.ApplyAction(ctx, state.ID,
		mustAction(t, ActionChangePhase, "p1", ChangePhaseData{Phase: card.PhaseMain}))
	require.NoError(t, err)
	assert.Equal(t, card.PhaseMain, next.Phase)

	loaded, err := f.manager.GetState(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, card.PhaseMain, loaded.Phase)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, ActionChangePhase, loaded.History[0].Type)
}

func TestManager_FullTurnCycle(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	state := f.startedGame(t)

	apply := func(typ ActionType, playerID string, payload any) *GameState {
		t.Helper()
		next, _, err := f.manager.ApplyAction(ctx, state.ID, mustAction(t, typ, playerID, payload))
		require.NoError(t, err)
		return next
	}

	apply(ActionChangePhase, "p1", ChangePhaseData{Phase: card.PhaseMain})

	// Play the first card in hand.
	loaded, err := f.manager.GetState(ctx, state.ID)
	require.NoError(t, err)
	cardID := loaded.Players["p1"].Hand[0].ID
	next := apply(ActionPlayCard, "p1", PlayCardData{CardID: cardID, Position: 0})
	assert.Equal(t, cardID, next.Players["p1"].Field[0].ID)
	assert.Equal(t, resource.State{Material: 2, Mind: 3}, next.Players["p1"].Resources)

	apply(ActionChangePhase, "p1", ChangePhaseData{Phase: card.PhaseCombat})
	next = apply(ActionDeclareAttack, "p1", DeclareAttackData{AttackerID: cardID, TargetID: "p2"})
	assert.Equal(t, 18, next.Players["p2"].Health)

	apply(ActionChangePhase, "p1", ChangePhaseData{Phase: card.PhaseEnd})
	next = apply(ActionEndTurn, "p1", nil)

	assert.Equal(t, "p2", next.CurrentPlayer)
	assert.Equal(t, 2, next.Turn)
	assert.Equal(t, card.PhaseDraw, next.Phase)
	// End-of-turn replenish, then the turn handoff draw for p2.
	assert.Equal(t, resource.State{Material: 3, Mind: 3}, next.Players["p1"].Resources)
	assert.Len(t, next.Players["p2"].Hand, 6)
	assert.Len(t, next.Players["p2"].Deck, 2)
}

func TestManager_CardConservation(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	state := f.startedGame(t)

	count := func(p *PlayerState) int {
		total := len(p.Deck) + len(p.Hand) + len(p.Destroyed)
		for _, c := range p.Field {
			if c != nil {
				total++
			}
		}
		return total
	}

	apply := func(typ ActionType, payload any) *GameState {
		t.Helper()
		next, _, err := f.manager.ApplyAction(ctx, state.ID, mustAction(t, typ, "p1", payload))
		require.NoError(t, err)
		return next
	}

	apply(ActionChangePhase, ChangePhaseData{Phase: card.PhaseMain})
	loaded, err := f.manager.GetState(ctx, state.ID)
	require.NoError(t, err)
	cardID := loaded.Players["p1"].Hand[0].ID
	next := apply(ActionPlayCard, PlayCardData{CardID: cardID, Position: 0})

	assert.Equal(t, 8, count(next.Players["p1"]))
	assert.Equal(t, 8, count(next.Players["p2"]))
}

func TestManager_WinBySurrender(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.profiles.Put(ctx, &profile.Profile{UserID: "p1"}))
	require.NoError(t, f.profiles.Put(ctx, &profile.Profile{UserID: "p2"}))

	state := f.startedGame(t)
	next, _, err := f.manager.ApplyAction(ctx, state.ID, mustAction(t, ActionSurrender, "p2", nil))
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, next.Status)
	assert.Equal(t, "p1", next.Winner)
	assert.NotZero(t, next.FinishedAt)

	winner, err := f.profiles.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, winner.Statistics.Wins)
	assert.Equal(t, 1, winner.Statistics.WinStreak)

	loser, err := f.profiles.Get(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 1, loser.Statistics.Losses)
	assert.Equal(t, 0, loser.Statistics.WinStreak)

	// Finished games refuse further actions.
	_, _, err = f.manager.ApplyAction(ctx, state.ID, mustAction(t, ActionEndTurn, "p1", nil))
	assert.ErrorIs(t, err, ErrGameFinished)
}

func TestManager_WinByHealth(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	state := f.startedGame(t)

	// Put p2 on the brink and give p1 a fielded attacker.
	loaded, err := f.manager.GetState(ctx, state.ID)
	require.NoError(t, err)
	loaded.Phase = card.PhaseCombat
	loaded.Players["p2"].Health = 2
	loaded.Players["p1"].Field[0] = unit(unitDef("finisher", 3, 3))
	require.NoError(t, f.manager.saveGame(ctx, loaded))

	next, events, err := f.manager.ApplyAction(ctx, state.ID,
		mustAction(t, ActionDeclareAttack, "p1", DeclareAttackData{AttackerID: "finisher", TargetID: "p2"}))
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, next.Status)
	assert.Equal(t, "p1", next.Winner)
	assert.True(t, hasEvent(events, EventGameFinished))
}

func TestManager_WinByExhaustion(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	state := f.startedGame(t)

	loaded, err := f.manager.GetState(ctx, state.ID)
	require.NoError(t, err)
	loaded.Players["p2"].Deck = nil
	loaded.Players["p2"].Hand = nil
	require.NoError(t, f.manager.saveGame(ctx, loaded))

	next, _, err := f.manager.ApplyAction(ctx, state.ID,
		mustAction(t, ActionChangePhase, "p1", ChangePhaseData{Phase: card.PhaseMain}))
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, next.Status)
	assert.Equal(t, "p1", next.Winner)
}
