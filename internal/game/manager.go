package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindfall/mindfall-server/internal/deck"
	"github.com/mindfall/mindfall-server/internal/game/card"
	"github.com/mindfall/mindfall-server/internal/profile"
	"github.com/mindfall/mindfall-server/internal/storage"
)

// ResultRecorder receives the outcome of a finished game. The profile store
// implements it; a nil recorder disables stats.
type ResultRecorder interface {
	RecordResult(ctx context.Context, winnerID, loserID string) error
}

// Manager orchestrates game lifecycle: creation, joining, and the
// validate-execute-persist loop for actions. State is loaded fresh from
// storage for every call and written back whole only after the full pass
// succeeds, so a failed action never leaves a partial write behind.
type Manager struct {
	logger   *zap.Logger
	store    storage.Store
	decks    *deck.Store
	profiles ResultRecorder
	engine   *Engine
}

// NewManager wires the manager to its collaborators. profiles may be nil.
func NewManager(logger *zap.Logger, store storage.Store, decks *deck.Store, profiles *profile.Store, engine *Engine) *Manager {
	m := &Manager{
		logger: logger,
		store:  store,
		decks:  decks,
		engine: engine,
	}
	if profiles != nil {
		m.profiles = profiles
	}
	return m
}

// CreateGame starts a new game with the creator as the first player. The game
// waits in the init phase until a second player joins.
func (m *Manager) CreateGame(ctx context.Context, creatorID, deckID string) (*GameState, error) {
	player, err := m.buildPlayer(ctx, creatorID, deckID)
	if err != nil {
		return nil, err
	}

	state := &GameState{
		ID:            uuid.NewString(),
		Status:        StatusWaiting,
		Phase:         card.PhaseInit,
		CurrentPlayer: creatorID,
		Players:       map[string]*PlayerState{creatorID: player},
		PlayerOrder:   []string{creatorID},
		CreatedBy:     creatorID,
		Created:       time.Now().UnixMilli(),
	}

	if err := m.saveGame(ctx, state); err != nil {
		return nil, err
	}
	m.logger.Info("game created",
		zap.String("game_id", state.ID),
		zap.String("creator", creatorID),
	)
	return state, nil
}

// JoinGame adds the second player and activates the game. The creator takes
// the first turn.
func (m *Manager) JoinGame(ctx context.Context, gameID, playerID, deckID string) (*GameState, error) {
	state, err := m.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if state.Status != StatusWaiting {
		return nil, reject(RejectGameNotActive, "game is not open for joining")
	}
	if _, ok := state.Players[playerID]; ok {
		return nil, reject(RejectGameNotActive, "player %q already joined", playerID)
	}
	if len(state.PlayerOrder) >= 2 {
		return nil, reject(RejectGameNotActive, "game is full")
	}

	player, err := m.buildPlayer(ctx, playerID, deckID)
	if err != nil {
		return nil, err
	}
	state.Players[playerID] = player
	state.PlayerOrder = append(state.PlayerOrder, playerID)

	state.Status = StatusActive
	state.Phase = card.PhaseDraw
	state.Turn = 1
	state.CurrentPlayer = state.PlayerOrder[0]
	state.StartedAt = time.Now().UnixMilli()

	if err := m.saveGame(ctx, state); err != nil {
		return nil, err
	}
	m.logger.Info("game started",
		zap.String("game_id", state.ID),
		zap.String("joiner", playerID),
	)
	return state, nil
}

// GetState loads the current state of a game.
func (m *Manager) GetState(ctx context.Context, gameID string) (*GameState, error) {
	return m.loadGame(ctx, gameID)
}

// ApplyAction runs one action through the full pipeline: load, validate,
// execute, effect pass and phase hooks, history append, win check, stats,
// persist. The returned state is the post-action state; events describe
// everything that happened while resolving.
func (m *Manager) ApplyAction(ctx context.Context, gameID string, action Action) (*GameState, []Event, error) {
	state, err := m.loadGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if state.Status == StatusFinished {
		return nil, nil, ErrGameFinished
	}

	if action.Timestamp == 0 {
		action.Timestamp = time.Now().UnixMilli()
	}
	if err := ValidateAction(state, action); err != nil {
		return nil, nil, err
	}

	enteredPhase, events, err := m.engine.Apply(ctx, state, action)
	if err != nil {
		return nil, events, err
	}

	if state.Status == StatusActive {
		phaseEvents, err := m.engine.ProcessPhase(ctx, state, enteredPhase)
		if err != nil {
			return nil, events, err
		}
		events = append(events, phaseEvents...)
	}

	state.History = append(state.History, action)

	events = append(events, m.checkWinCondition(ctx, state)...)

	if err := m.saveGame(ctx, state); err != nil {
		return nil, events, err
	}
	return state, events, nil
}

// checkWinCondition finishes the game when a player has lost: health at or
// below zero, or deck and hand both empty. The current player is examined
// first so simultaneous losses resolve deterministically against the player
// whose action caused them. A surrender arrives here already marked finished
// with a winner and only needs finalizing.
func (m *Manager) checkWinCondition(ctx context.Context, state *GameState) []Event {
	if len(state.PlayerOrder) < 2 {
		return nil
	}
	if state.Status == StatusFinished {
		if state.FinishedAt != 0 {
			return nil
		}
		return m.finishGame(ctx, state, state.Winner, state.OpponentOf(state.Winner))
	}

	ordered := make([]string, 0, len(state.PlayerOrder))
	ordered = append(ordered, state.CurrentPlayer)
	for _, id := range state.PlayerOrder {
		if id != state.CurrentPlayer {
			ordered = append(ordered, id)
		}
	}

	for _, id := range ordered {
		p := state.Players[id]
		lost := p.Health <= 0 || (len(p.Deck) == 0 && len(p.Hand) == 0)
		if !lost {
			continue
		}
		return m.finishGame(ctx, state, state.OpponentOf(id), id)
	}
	return nil
}

func (m *Manager) finishGame(ctx context.Context, state *GameState, winner, loser string) []Event {
	state.Status = StatusFinished
	state.Winner = winner
	state.FinishedAt = time.Now().UnixMilli()

	m.logger.Info("game finished",
		zap.String("game_id", state.ID),
		zap.String("winner", winner),
		zap.String("loser", loser),
	)
	if m.profiles != nil {
		if err := m.profiles.RecordResult(ctx, winner, loser); err != nil {
			m.logger.Warn("failed to record game result",
				zap.String("game_id", state.ID),
				zap.Error(err),
			)
		}
	}
	return []Event{event(EventGameFinished, winner, "", loser, 0)}
}

// buildPlayer loads and shuffles the player's deck and deals the opening
// hand. Deck card IDs missing from the catalog are dropped with a warning.
func (m *Manager) buildPlayer(ctx context.Context, playerID, deckID string) (*PlayerState, error) {
	d, err := m.decks.Get(ctx, playerID, deckID)
	if err != nil {
		return nil, err
	}

	rules := m.engine.Rules()
	shuffled := append([]string(nil), d.Cards...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	player := &PlayerState{
		ID:          playerID,
		Health:      rules.InitialHealth,
		Deck:        shuffled,
		Field:       make([]*Card, rules.FieldSize),
		Resources:   rules.BaseResources,
		ActiveLayer: card.LayerMaterial,
	}

	for len(player.Hand) < rules.InitialHandSize && len(player.Deck) > 0 {
		cardID := player.Deck[len(player.Deck)-1]
		player.Deck = player.Deck[:len(player.Deck)-1]
		def, err := m.engine.cards.GetCard(ctx, cardID)
		if err != nil {
			m.logger.Warn("deck card missing from catalog",
				zap.String("player_id", playerID),
				zap.String("card_id", cardID),
			)
			continue
		}
		player.Hand = append(player.Hand, &Card{Definition: *def})
	}
	return player, nil
}

func (m *Manager) loadGame(ctx context.Context, gameID string) (*GameState, error) {
	raw, err := m.store.Get(ctx, storage.GameKey(gameID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	var state GameState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode game %q: %w", gameID, err)
	}
	return &state, nil
}

func (m *Manager) saveGame(ctx context.Context, state *GameState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode game %q: %w", state.ID, err)
	}
	return m.store.Put(ctx, storage.GameKey(state.ID), string(raw))
}
