// Package deck stores player deck lists under the deck:<userID>/<deckID>
// namespace. A deck is just an ordered list of card IDs; the catalog owns the
// definitions.
package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mindfall/mindfall-server/internal/storage"
)

// ErrDeckNotFound is returned when a user has no deck under the given ID.
var ErrDeckNotFound = errors.New("deck: not found")

// Deck is a named, ordered list of card IDs owned by a user.
type Deck struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Cards     []string `json:"cards"`
	CreatedAt int64    `json:"createdAt,omitempty"`
}

// Store reads and writes deck records.
type Store struct {
	store  storage.Store
	logger *zap.Logger
}

// NewStore creates a deck store over the given KV store.
func NewStore(store storage.Store, logger *zap.Logger) *Store {
	return &Store{store: store, logger: logger}
}

// Get returns the user's deck, or ErrDeckNotFound.
func (s *Store) Get(ctx context.Context, userID, deckID string) (*Deck, error) {
	raw, err := s.store.Get(ctx, storage.DeckKey(userID, deckID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDeckNotFound
	}
	if err != nil {
		return nil, err
	}

	var d Deck
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode deck %s/%s: %w", userID, deckID, err)
	}
	return &d, nil
}

// Put stores the user's deck, stamping CreatedAt on first write.
func (s *Store) Put(ctx context.Context, userID string, d *Deck) error {
	if d.ID == "" {
		return errors.New("deck: missing id")
	}
	if len(d.Cards) == 0 {
		return errors.New("deck: empty card list")
	}
	if d.CreatedAt == 0 {
		d.CreatedAt = time.Now().UnixMilli()
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode deck %s/%s: %w", userID, d.ID, err)
	}
	s.logger.Debug("storing deck",
		zap.String("user_id", userID),
		zap.String("deck_id", d.ID),
		zap.Int("cards", len(d.Cards)),
	)
	return s.store.Put(ctx, storage.DeckKey(userID, d.ID), string(raw))
}

// List returns the IDs of all decks owned by the user.
func (s *Store) List(ctx context.Context, userID string) ([]string, error) {
	prefix := storage.DeckPrefix + userID + "/"
	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = strings.TrimPrefix(key, prefix)
	}
	return ids, nil
}
