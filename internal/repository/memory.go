package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

type memoryEntry struct {
	game      entity.Game
	expiresAt time.Time
}

type memoryGame struct {
	mu    sync.RWMutex
	games map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryGameRepository - keeps sessions in process memory. A zero ttl never expires.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return newMemoryGameRepository(ttl, time.Now)
}

func newMemoryGameRepository(ttl time.Duration, now func() time.Time) *memoryGame {
	return &memoryGame{
		games: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   now,
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry := memoryEntry{game: cloneGame(game)}
	if that.ttl > 0 {
		entry.expiresAt = that.now().Add(that.ttl)
	}

	that.games[game.ID] = entry
	that.evictExpired()

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.games[id]
	if !ok || that.expired(entry) {
		return nil, ErrGameNotFound
	}

	game := cloneGame(&entry.game)
	return &game, nil
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, id)
	return nil
}

func (that *memoryGame) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !that.now().Before(entry.expiresAt)
}

// evictExpired must be called with the write lock held.
func (that *memoryGame) evictExpired() {
	for id, entry := range that.games {
		if that.expired(entry) {
			delete(that.games, id)
		}
	}
}

// cloneGame copies the history so callers never share it with the store.
func cloneGame(game *entity.Game) entity.Game {
	clone := *game
	clone.History = append([]entity.Board(nil), game.History...)
	return clone
}
