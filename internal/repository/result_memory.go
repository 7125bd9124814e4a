package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

type memoryEntry struct {
	result    entity.MatchResult
	expiresAt time.Time
}

type memoryResult struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	results map[string]memoryEntry
}

// NewMemoryResultRepository keeps results in process. Expired entries are dropped lazily on read.
func NewMemoryResultRepository(ttl time.Duration) ResultRepository {
	return &memoryResult{
		ttl:     ttl,
		now:     time.Now,
		results: make(map[string]memoryEntry),
	}
}

func (that *memoryResult) Save(_ context.Context, result *entity.MatchResult) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry := memoryEntry{result: *result}
	if that.ttl > 0 {
		entry.expiresAt = that.now().Add(that.ttl)
	}

	that.results[result.RoomID] = entry

	return nil
}

func (that *memoryResult) GetByRoomID(_ context.Context, roomID string) (*entity.MatchResult, error) {
	that.mu.RLock()
	entry, ok := that.results[roomID]
	that.mu.RUnlock()

	if !ok {
		return nil, ErrResultNotFound
	}

	if !entry.expiresAt.IsZero() && that.now().After(entry.expiresAt) {
		that.mu.Lock()
		delete(that.results, roomID)
		that.mu.Unlock()

		return nil, ErrResultNotFound
	}

	result := entry.result

	return &result, nil
}

func (that *memoryResult) DeleteByRoomID(_ context.Context, roomID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.results, roomID)

	return nil
}
