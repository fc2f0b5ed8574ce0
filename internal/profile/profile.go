// Package profile stores user profiles and win/loss statistics under the
// profile:<userID> namespace. The engine reports game results here; nothing
// in the rules reads profiles back.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mindfall/mindfall-server/internal/storage"
)

// ErrProfileNotFound is returned when no profile exists for a user.
var ErrProfileNotFound = errors.New("profile: not found")

// Statistics is the aggregate game record shown on leaderboards.
type Statistics struct {
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	WinStreak   int `json:"winStreak"`
	GamesPlayed int `json:"gamesPlayed"`
}

// Profile is a user's public identity and record.
type Profile struct {
	UserID     string     `json:"userId"`
	Username   string     `json:"username,omitempty"`
	Statistics Statistics `json:"statistics"`
}

// Store reads and writes profile records.
type Store struct {
	store  storage.Store
	logger *zap.Logger
}

// NewStore creates a profile store over the given KV store.
func NewStore(store storage.Store, logger *zap.Logger) *Store {
	return &Store{store: store, logger: logger}
}

// Get returns the user's profile, or ErrProfileNotFound.
func (s *Store) Get(ctx context.Context, userID string) (*Profile, error) {
	raw, err := s.store.Get(ctx, storage.ProfileKey(userID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode profile %q: %w", userID, err)
	}
	return &p, nil
}

// Put stores the user's profile.
func (s *Store) Put(ctx context.Context, p *Profile) error {
	if p.UserID == "" {
		return errors.New("profile: missing user id")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", p.UserID, err)
	}
	return s.store.Put(ctx, storage.ProfileKey(p.UserID), string(raw))
}

// RecordResult updates both players' statistics after a finished game.
// Players without a stored profile are skipped; a missing profile is not an
// error at game end.
func (s *Store) RecordResult(ctx context.Context, winnerID, loserID string) error {
	if err := s.update(ctx, winnerID, func(stats *Statistics) {
		stats.Wins++
		stats.WinStreak++
		stats.GamesPlayed++
	}); err != nil {
		return err
	}
	return s.update(ctx, loserID, func(stats *Statistics) {
		stats.Losses++
		stats.WinStreak = 0
		stats.GamesPlayed++
	})
}

func (s *Store) update(ctx context.Context, userID string, apply func(*Statistics)) error {
	p, err := s.Get(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		s.logger.Debug("no profile to update", zap.String("user_id", userID))
		return nil
	}
	if err != nil {
		return err
	}
	apply(&p.Statistics)
	return s.Put(ctx, p)
}
