package game

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/reactiontime"
	"github.com/rocketscienceinc/gameroom-backend/internal/tictactoe"
)

type Options struct {
	Difficulty string
	Reaction   reactiontime.Config
	Clock      entity.Clock
	// Seed makes every created game deterministic when non zero.
	Seed uint64
}

type Factory struct {
	options Options
	created atomic.Uint64
}

func NewFactory(options Options) *Factory {
	if options.Clock == nil {
		options.Clock = time.Now
	}

	if options.Reaction.MaxRounds == 0 {
		options.Reaction = reactiontime.DefaultConfig()
	}

	return &Factory{options: options}
}

// Create builds a fresh game. Difficulty only applies to tic-tac-toe and falls back to the factory default.
func (that *Factory) Create(gameType, roomID string, players []string, mode, difficulty string) (entity.Game, error) {
	if difficulty == "" {
		difficulty = that.options.Difficulty
	}

	switch gameType {
	case entity.TypeTicTacToe:
		return tictactoe.New(roomID, mode, players, difficulty, that.options.Clock, that.newRand()), nil
	case entity.TypeReactionTime:
		return reactiontime.New(roomID, mode, players, that.options.Reaction, that.options.Clock, that.newRand()), nil
	default:
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownGameType, gameType)
	}
}

// newRand gives every game its own source so rooms never share one.
func (that *Factory) newRand() *rand.Rand {
	if that.options.Seed != 0 {
		n := that.created.Add(1)
		return rand.New(rand.NewPCG(that.options.Seed, n))
	}

	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint: gosec // game randomness
}
