package reactiontime

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

type fakeClock struct {
	now time.Time
}

func (that *fakeClock) Now() time.Time {
	return that.now
}

func (that *fakeClock) Advance(d time.Duration) {
	that.now = that.now.Add(d)
}

func newTestGame(mode string, players []string) (*Game, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	game := New("room-1", mode, players, DefaultConfig(), clock.Now, rand.New(rand.NewPCG(7, 11)))

	return game, clock
}

// activeRound starts a round and activates it.
func activeRound(t *testing.T, game *Game, clock *fakeClock) RoundInfo {
	t.Helper()

	info, ok := game.StartRound()
	require.True(t, ok)
	clock.Advance(info.Delay)
	_, ok = game.TriggerActivation(info.Number)
	require.True(t, ok)

	return info
}

func TestGame_StartRound(t *testing.T) {
	t.Run("Delays stay inside the window", func(t *testing.T) {
		// Given: a game with many rounds
		game, _ := newTestGame(entity.ModeMultiplayer, []string{"alice", "bob"})
		game.config.MaxRounds = 200

		for i := 1; i <= 200; i++ {
			// When: a round starts
			info, ok := game.StartRound()
			require.True(t, ok)

			// Then: its number increases and its delay is within bounds
			assert.Equal(t, i, info.Number)
			assert.GreaterOrEqual(t, info.Delay, time.Second)
			assert.LessOrEqual(t, info.Delay, 5*time.Second)
			assert.Equal(t, entity.StatusPlaying, game.Status())
		}
	})

	t.Run("Finalizes after the last round", func(t *testing.T) {
		// Given: a game with every round played
		game, _ := newTestGame(entity.ModeSinglePlayer, []string{"alice", entity.ComputerID})
		for range 5 {
			_, ok := game.StartRound()
			require.True(t, ok)
			_, ok = game.CloseRound()
			require.True(t, ok)
		}
		assert.False(t, game.HasRoundsRemaining())

		// When: another round is requested
		_, ok := game.StartRound()

		// Then: no round starts and the game is over
		assert.False(t, ok)
		assert.True(t, game.IsGameOver())
		assert.Equal(t, entity.StatusFinished, game.Status())
	})
}

func TestGame_TriggerActivation(t *testing.T) {
	t.Run("Only the current round activates once", func(t *testing.T) {
		// Given: a started round
		game, clock := newTestGame(entity.ModeMultiplayer, []string{"alice", "bob"})
		info, ok := game.StartRound()
		require.True(t, ok)
		clock.Advance(info.Delay)

		// When: a stale round number fires
		_, ok = game.TriggerActivation(info.Number + 1)

		// Then: nothing happens
		assert.False(t, ok)

		// When: the current round fires twice
		at, ok := game.TriggerActivation(info.Number)
		require.True(t, ok)
		_, again := game.TriggerActivation(info.Number)

		// Then: only the first activation counts
		assert.Equal(t, clock.now, at)
		assert.False(t, again)
	})
}

func TestGame_RecordResponse(t *testing.T) {
	t.Run("No active round", func(t *testing.T) {
		// Given: a game that has not started a round
		game, _ := newTestGame(entity.ModeMultiplayer, []string{"alice", "bob"})

		// When: alice responds
		_, err := game.RecordResponse("alice")

		// Then: there is no round
		require.ErrorIs(t, err, apperror.ErrNoActiveRound)
	})

	t.Run("Strangers and the computer are rejected", func(t *testing.T) {
		// Given: an active round in a single-player game
		game, clock := newTestGame(entity.ModeSinglePlayer, []string{"alice", entity.ComputerID})
		activeRound(t, game, clock)

		// When / Then: non players are refused
		_, err := game.RecordResponse("mallory")
		require.ErrorIs(t, err, apperror.ErrInvalidPlayer)
		_, err = game.RecordResponse(entity.ComputerID)
		require.ErrorIs(t, err, apperror.ErrInvalidPlayer)
	})

	t.Run("False start is never stored", func(t *testing.T) {
		// Given: a round that has not activated yet
		game, clock := newTestGame(entity.ModeMultiplayer, []string{"alice", "bob"})
		_, ok := game.StartRound()
		require.True(t, ok)
		clock.Advance(400 * time.Millisecond)

		// When: alice clicks early
		result, err := game.RecordResponse("alice")
		require.NoError(t, err)

		// Then: the click is a false start and is not scored
		assert.False(t, result.Success)
		assert.False(t, result.Correct)
		assert.Equal(t, int64(400), result.ReactionTime)
		assert.Equal(t, "Too fast! False start.", result.Message)
		assert.Equal(t, 0, game.Score("alice"))
		assert.False(t, game.AllResponded())
	})

	t.Run("Scores by reaction time", func(t *testing.T) {
		// Given: an active round
		game, clock := newTestGame(entity.ModeMultiplayer, []string{"alice", "bob"})
		activeRound(t, game, clock)

		// When: alice answers after 250ms and bob after 1200ms
		clock.Advance(250 * time.Millisecond)
		alice, err := game.RecordResponse("alice")
		require.NoError(t, err)
		clock.Advance(950 * time.Millisecond)
		bob, err := game.RecordResponse("bob")
		require.NoError(t, err)

		// Then: alice earns 750 points and bob earns nothing
		require.True(t, alice.Success)
		require.NotNil(t, alice.Score)
		assert.Equal(t, 750, *alice.Score)
		assert.Equal(t, "Great! 250ms", alice.Message)
		require.True(t, bob.Success)
		assert.Equal(t, 0, *bob.Score)
		assert.Equal(t, 750, game.Score("alice"))
		assert.True(t, game.AllResponded())
	})

	t.Run("One response per round", func(t *testing.T) {
		// Given: alice already answered
		game, clock := newTestGame(entity.ModeMultiplayer, []string{"alice", "bob"})
		activeRound(t, game, clock)
		clock.Advance(300 * time.Millisecond)
		_, err := game.RecordResponse("alice")
		require.NoError(t, err)

		// When: alice answers again
		clock.Advance(100 * time.Millisecond)
		_, err = game.RecordResponse("alice")

		// Then: the second attempt is refused and the score is unchanged
		require.ErrorIs(t, err, apperror.ErrAlreadyResponded)
		assert.Equal(t, 700, game.Score("alice"))
	})

	t.Run("Outside the plausible window", func(t *testing.T) {
		// Given: an active round
		game, clock := newTestGame(entity.ModeMultiplayer, []string{"alice", "bob"})
		activeRound(t, game, clock)

		// When: alice answers implausibly fast
		clock.Advance(50 * time.Millisecond)
		fast, err := game.RecordResponse("alice")
		require.NoError(t, err)

		// When: bob answers after eleven seconds
		clock.Advance(11 * time.Second)
		slow, err := game.RecordResponse("bob")
		require.NoError(t, err)

		// Then: neither is stored
		assert.False(t, fast.Success)
		assert.Equal(t, "Too fast!", fast.Message)
		assert.False(t, slow.Success)
		assert.Equal(t, "Too slow!", slow.Message)
		assert.False(t, game.AllResponded())
		summary, ok := game.CloseRound()
		require.True(t, ok)
		assert.Empty(t, summary.Responses)
	})
}

func TestGame_CloseRound(t *testing.T) {
	t.Run("Non responders get an explicit zero", func(t *testing.T) {
		// Given: only alice answered
		game, clock := newTestGame(entity.ModeMultiplayer, []string{"alice", "bob"})
		info := activeRound(t, game, clock)
		clock.Advance(200 * time.Millisecond)
		_, err := game.RecordResponse("alice")
		require.NoError(t, err)

		// When: the round times out
		missing := game.AwardMissing()
		summary, ok := game.CloseRound()
		require.True(t, ok)

		// Then: bob is listed and the summary holds alice only
		assert.Equal(t, []string{"bob"}, missing)
		assert.Equal(t, info.Number, summary.RoundNumber)
		assert.Equal(t, []entity.RoundResponse{{PlayerID: "alice", ReactionTime: 200}}, summary.Responses)
		assert.Equal(t, []entity.LeaderboardEntry{{PlayerID: "alice", Score: 800}, {PlayerID: "bob", Score: 0}}, summary.Leaderboard)

		// When: closing again
		_, ok = game.CloseRound()

		// Then: it is a no-op
		assert.False(t, ok)
		_, ok = game.CurrentRound()
		assert.False(t, ok)
	})
}

func TestGame_Results(t *testing.T) {
	// Given: a single-player game with three answered rounds and two missed
	game, clock := newTestGame(entity.ModeSinglePlayer, []string{"alice", entity.ComputerID})
	for _, reaction := range []time.Duration{200, 300, 401, 0, 0} {
		activeRound(t, game, clock)
		if reaction > 0 {
			clock.Advance(reaction * time.Millisecond)
			_, err := game.RecordResponse("alice")
			require.NoError(t, err)
		}
		game.AwardMissing()
		_, ok := game.CloseRound()
		require.True(t, ok)
	}

	// When: the game ends
	_, ok := game.StartRound()
	require.False(t, ok)
	results := game.Results()

	// Then: the leaderboard has one entry and stats are rounded
	assert.Equal(t, 5, results.TotalRounds)
	assert.Equal(t, []entity.LeaderboardEntry{{PlayerID: "alice", Score: 2099}}, results.Leaderboard)
	assert.Equal(t, PlayerStats{Count: 3, Average: 300, Best: 200, Worst: 401, Score: 2099}, results.PlayerStats["alice"])
	assert.Len(t, results.RoundDetails, 5)
	assert.Empty(t, results.RoundDetails[4].Responses)
	assert.Equal(t, clock.now, results.Timestamp)

	result := game.Result()
	assert.Equal(t, "alice", result.Winner)
	assert.NotEmpty(t, result.Details)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 750, Score(250*time.Millisecond))
	assert.Equal(t, 0, Score(1200*time.Millisecond))
	assert.Equal(t, 900, Score(100*time.Millisecond))
}

func TestGame_HandleAction(t *testing.T) {
	// Given: a reaction game
	game, _ := newTestGame(entity.ModeMultiplayer, []string{"alice", "bob"})

	// When: a move is sent to it
	_, err := game.HandleAction("alice", entity.Action{Kind: entity.ActionMove, Cell: 1})

	// Then: the action is unknown
	require.ErrorIs(t, err, apperror.ErrUnknownAction)
}
