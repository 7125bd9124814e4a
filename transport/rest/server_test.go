package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
)

type MockResultReader struct {
	mock.Mock
}

func (m *MockResultReader) GetByRoomID(ctx context.Context, roomID string) (*entity.MatchResult, error) {
	args := m.Called(ctx, roomID)
	if result, ok := args.Get(0).(*entity.MatchResult); ok {
		return result, args.Error(1)
	}

	return nil, args.Error(1)
}

func newRouter(t *testing.T, results *MockResultReader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(logger, results, "http://localhost:3000", "test").Router()
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

	return recorder
}

func TestServer_Discovery(t *testing.T) {
	router := newRouter(t, &MockResultReader{})

	t.Run("Ping", func(t *testing.T) {
		resp := get(router, "/ping")

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "pong", resp.Body.String())
	})

	t.Run("Health", func(t *testing.T) {
		resp := get(router, "/health")

		require.Equal(t, http.StatusOK, resp.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "test", body["environment"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("Catalog", func(t *testing.T) {
		resp := get(router, "/api/games")

		require.Equal(t, http.StatusOK, resp.Code)

		var entries []game.CatalogEntry
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &entries))
		assert.Equal(t, game.ListAvailable(), entries)
	})

	t.Run("Single game", func(t *testing.T) {
		resp := get(router, "/api/games/memory")

		require.Equal(t, http.StatusOK, resp.Code)

		var entry game.CatalogEntry
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &entry))
		assert.True(t, entry.ComingSoon)
		assert.Equal(t, []string{entity.ModeSinglePlayer}, entry.Modes)
	})

	t.Run("Unknown game", func(t *testing.T) {
		resp := get(router, "/api/games/chess")

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.JSONEq(t, `{"error":"Game not found"}`, resp.Body.String())
	})

	t.Run("Unknown route", func(t *testing.T) {
		resp := get(router, "/nowhere")

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.JSONEq(t, `{"error":"Not Found"}`, resp.Body.String())
	})
}

func TestServer_Results(t *testing.T) {
	t.Run("Archived result", func(t *testing.T) {
		// Given: a finished room in the archive
		results := &MockResultReader{}
		results.On("GetByRoomID", mock.Anything, "R1").Return(&entity.MatchResult{
			RoomID:   "R1",
			GameType: entity.TypeTicTacToe,
			Winner:   "alice",
		}, nil)

		// When: the result is requested
		resp := get(newRouter(t, results), "/api/results/R1")

		// Then: it is returned as is
		require.Equal(t, http.StatusOK, resp.Code)

		var result entity.MatchResult
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
		assert.Equal(t, "alice", result.Winner)
		results.AssertExpectations(t)
	})

	t.Run("Missing result", func(t *testing.T) {
		results := &MockResultReader{}
		results.On("GetByRoomID", mock.Anything, "R2").Return(nil, repository.ErrResultNotFound)

		resp := get(newRouter(t, results), "/api/results/R2")

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.JSONEq(t, `{"error":"Result not found"}`, resp.Body.String())
	})

	t.Run("Storage failure", func(t *testing.T) {
		results := &MockResultReader{}
		results.On("GetByRoomID", mock.Anything, "R3").Return(nil, errors.New("connection refused"))

		resp := get(newRouter(t, results), "/api/results/R3")

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}
