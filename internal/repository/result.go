package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

var ErrResultNotFound = errors.New("result not found")

const resultKeyPrefix = "result:"

type ResultRepository interface {
	Save(ctx context.Context, result *entity.MatchResult) error
	GetByRoomID(ctx context.Context, roomID string) (*entity.MatchResult, error)
	DeleteByRoomID(ctx context.Context, roomID string) error
}

type dbResult struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultRepository stores results as JSON under result:<roomID>. A zero ttl keeps them forever.
func NewResultRepository(client *redis.Client, ttl time.Duration) ResultRepository {
	return &dbResult{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbResult) Save(ctx context.Context, result *entity.MatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal result: %w", err)
	}

	if err = that.client.Set(ctx, resultKeyPrefix+result.RoomID, resultJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set result: %w", err)
	}

	return nil
}

func (that *dbResult) GetByRoomID(ctx context.Context, roomID string) (*entity.MatchResult, error) {
	response, err := that.client.Get(ctx, resultKeyPrefix+roomID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrResultNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result entity.MatchResult
	if err = json.Unmarshal([]byte(response), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

func (that *dbResult) DeleteByRoomID(ctx context.Context, roomID string) error {
	if err := that.client.Del(ctx, resultKeyPrefix+roomID).Err(); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}

	return nil
}
