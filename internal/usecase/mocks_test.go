package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameroom-backend/internal/broadcast"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/scheduler"
	"github.com/rocketscienceinc/gameroom-backend/internal/tictactoe"
)

var testStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type MockResultRepo struct {
	mock.Mock
}

func (m *MockResultRepo) Save(ctx context.Context, result *entity.MatchResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// recorder is a connection that keeps every event it receives.
type recorder struct {
	mu     sync.Mutex
	events []entity.Event
}

func (that *recorder) Send(event entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
}

func (that *recorder) byAction(action string) []entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	var events []entity.Event
	for _, event := range that.events {
		if event.Action == action {
			events = append(events, event)
		}
	}

	return events
}

func (that *recorder) count(action string) int {
	return len(that.byAction(action))
}

func lastOf[T any](t *testing.T, rec *recorder, action string) T {
	t.Helper()

	events := rec.byAction(action)
	require.NotEmpty(t, events, "no %s received", action)

	payload, ok := events[len(events)-1].Payload.(T)
	require.True(t, ok, "payload of %s is %T", action, events[len(events)-1].Payload)

	return payload
}

type testEnv struct {
	manager *RoomManager
	clock   *scheduler.Manual
	hub     *broadcast.Hub
	results *MockResultRepo
}

func newTestEnv(t *testing.T, factory gameFactory) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := scheduler.NewManual(testStart)
	hub := broadcast.NewHub(logger)

	results := &MockResultRepo{}
	results.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()

	if factory == nil {
		factory = game.NewFactory(game.Options{
			Difficulty: tictactoe.DifficultyHard,
			Clock:      clock.Now,
			Seed:       99,
		})
	}

	manager := NewRoomManager(logger, factory, hub, results, clock, DefaultTimings())
	t.Cleanup(manager.Close)

	return &testEnv{
		manager: manager,
		clock:   clock,
		hub:     hub,
		results: results,
	}
}

func (that *testEnv) join(t *testing.T, roomID, playerID, gameType, mode string, caller entity.Recipient) {
	t.Helper()

	_, err := that.manager.JoinRoom(context.Background(), JoinRequest{
		RoomID:   roomID,
		PlayerID: playerID,
		GameType: gameType,
		GameMode: mode,
	}, caller)
	require.NoError(t, err)
}

// panickyFactory builds tic-tac-toe games whose moves blow up.
type panickyFactory struct {
	inner *game.Factory
}

type panickyGame struct {
	*tictactoe.Game
}

func (panickyGame) HandleAction(string, entity.Action) (*entity.Outcome, error) {
	panic("board on fire")
}

func (that panickyFactory) Create(gameType, roomID string, players []string, mode, difficulty string) (entity.Game, error) {
	instance, err := that.inner.Create(gameType, roomID, players, mode, difficulty)
	if err != nil {
		return nil, err
	}

	return panickyGame{Game: instance.(*tictactoe.Game)}, nil
}
