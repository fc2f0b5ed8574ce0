// Package catalog serves immutable card definitions out of the storage
// collaborator under the card:<id> namespace.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mindfall/mindfall-server/internal/game/card"
	"github.com/mindfall/mindfall-server/internal/storage"
)

// ErrCardNotFound is returned when no definition exists for an ID.
var ErrCardNotFound = errors.New("catalog: card not found")

// Catalog looks up card definitions by ID.
type Catalog struct {
	store  storage.Store
	logger *zap.Logger
}

// New creates a catalog over the given store.
func New(store storage.Store, logger *zap.Logger) *Catalog {
	return &Catalog{store: store, logger: logger}
}

// GetCard returns the definition for id, or ErrCardNotFound.
func (c *Catalog) GetCard(ctx context.Context, id string) (*card.Definition, error) {
	raw, err := c.store.Get(ctx, storage.CardKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}

	var def card.Definition
	if err := json.Unmarshal([]byte(raw), &def); err != nil {
		return nil, fmt.Errorf("decode card %q: %w", id, err)
	}
	return &def, nil
}

// PutCard stores a definition under its own ID.
func (c *Catalog) PutCard(ctx context.Context, def *card.Definition) error {
	if def.ID == "" {
		return errors.New("catalog: card definition missing id")
	}
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode card %q: %w", def.ID, err)
	}
	c.logger.Debug("storing card definition",
		zap.String("card_id", def.ID),
		zap.String("type", string(def.Type)),
	)
	return c.store.Put(ctx, storage.CardKey(def.ID), string(raw))
}

// ListCardIDs returns all card IDs present in the catalog.
func (c *Catalog) ListCardIDs(ctx context.Context) ([]string, error) {
	keys, err := c.store.List(ctx, storage.CardPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = strings.TrimPrefix(key, storage.CardPrefix)
	}
	return ids, nil
}
