package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/testing/suite"
)

func newResult(roomID string) *entity.MatchResult {
	return &entity.MatchResult{
		RoomID:      roomID,
		GameType:    entity.TypeReactionTime,
		GameMode:    entity.ModeMultiplayer,
		Players:     []string{"alice", "bob"},
		Winner:      "alice",
		Leaderboard: []entity.LeaderboardEntry{{PlayerID: "alice", Score: 750}, {PlayerID: "bob", Score: 0}},
		Details:     json.RawMessage(`{"totalRounds":5}`),
		FinishedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestResultRepository_Save(t *testing.T) {
	t.Run("Save_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, time.Hour)

		// Given: a finished match
		result := newResult("room-1")

		// When: Save is called
		err := resultRepo.Save(ctx, result)

		// Then: the result is stored with a ttl
		require.NoError(t, err)
		ttl, err := st.Storage.TTL(ctx, "result:room-1").Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})
}

func TestResultRepository_GetByRoomID(t *testing.T) {
	t.Run("GetByRoomID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 0)

		// Given: a stored result
		result := newResult("room-1")
		require.NoError(t, resultRepo.Save(ctx, result))

		// When: GetByRoomID is called
		retrieved, err := resultRepo.GetByRoomID(ctx, "room-1")

		// Then: the retrieved result matches
		require.NoError(t, err)
		assert.Equal(t, result.Winner, retrieved.Winner)
		assert.Equal(t, result.Leaderboard, retrieved.Leaderboard)
		assert.JSONEq(t, string(result.Details), string(retrieved.Details))
		assert.True(t, result.FinishedAt.Equal(retrieved.FinishedAt))
	})

	t.Run("GetByRoomID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 0)

		// When: GetByRoomID is called for an unknown room
		retrieved, err := resultRepo.GetByRoomID(ctx, "missing")

		// Then: ErrResultNotFound is returned
		require.ErrorIs(t, err, ErrResultNotFound)
		assert.Nil(t, retrieved)
	})

	t.Run("DeleteByRoomID", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 0)

		// Given: a stored result
		require.NoError(t, resultRepo.Save(ctx, newResult("room-1")))

		// When: it is deleted
		require.NoError(t, resultRepo.DeleteByRoomID(ctx, "room-1"))

		// Then: it cannot be found
		_, err := resultRepo.GetByRoomID(ctx, "room-1")
		require.ErrorIs(t, err, ErrResultNotFound)
	})
}
