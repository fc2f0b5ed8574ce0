// Package storage defines the key-value store the engine persists into and
// provides memory, redis, and postgres implementations. Records are JSON text
// under namespaced keys (game:<id>, card:<id>, profile:<userID>,
// deck:<userID>/<deckID>); callers own the namespace convention.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the storage collaborator consumed by the game orchestrator and the
// record stores built on top of it. Implementations must be safe for
// concurrent use; last write wins.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all keys beginning with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Key namespaces shared by the record stores.
const (
	GamePrefix    = "game:"
	CardPrefix    = "card:"
	ProfilePrefix = "profile:"
	DeckPrefix    = "deck:"
)

// GameKey returns the storage key for a game code.
func GameKey(code string) string { return GamePrefix + code }

// CardKey returns the storage key for a card definition.
func CardKey(id string) string { return CardPrefix + id }

// ProfileKey returns the storage key for a user profile.
func ProfileKey(userID string) string { return ProfilePrefix + userID }

// DeckKey returns the storage key for a user's deck.
func DeckKey(userID, deckID string) string { return DeckPrefix + userID + "/" + deckID }
