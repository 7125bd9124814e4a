package reactiontime

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

const maxPoints = 1000

type Config struct {
	MaxRounds   int
	MinDelay    time.Duration
	MaxDelay    time.Duration
	MinReaction time.Duration
	MaxReaction time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRounds:   5,
		MinDelay:    time.Second,
		MaxDelay:    5 * time.Second,
		MinReaction: 100 * time.Millisecond,
		MaxReaction: 10 * time.Second,
	}
}

// Game runs a fixed number of rounds. Every round waits a random delay, activates, and scores the
// players that respond in time. The computer seat never plays.
type Game struct {
	entity.Roster

	config     Config
	clock      entity.Clock
	rng        *rand.Rand
	current    *round
	history    []*round
	roundIndex int
	finishedAt time.Time
}

type RoundInfo struct {
	Number int
	Delay  time.Duration
}

type RoundState struct {
	RoundNumber int      `json:"roundNumber"`
	Delay       int64    `json:"delay"`
	Activated   bool     `json:"activated"`
	Responded   []string `json:"responded"`
}

type State struct {
	RoomID       string                    `json:"roomId"`
	GameType     string                    `json:"gameType"`
	GameMode     string                    `json:"gameMode"`
	Status       string                    `json:"status"`
	CurrentRound *RoundState               `json:"currentRound"`
	RoundIndex   int                       `json:"roundIndex"`
	MaxRounds    int                       `json:"maxRounds"`
	Players      []string                  `json:"players"`
	Scores       map[string]int            `json:"scores"`
	Leaderboard  []entity.LeaderboardEntry `json:"leaderboard"`
	GameOver     bool                      `json:"gameOver"`
	CreatedAt    time.Time                 `json:"createdAt"`
}

func New(roomID, mode string, players []string, config Config, clock entity.Clock, rng *rand.Rand) *Game {
	return &Game{
		Roster: entity.NewRoster(roomID, mode, players, clock()),
		config: config,
		clock:  clock,
		rng:    rng,
	}
}

func (that *Game) Type() string {
	return entity.TypeReactionTime
}

func (that *Game) HandleAction(playerID string, action entity.Action) (*entity.Outcome, error) {
	if action.Kind != entity.ActionRespond {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownAction, action.Kind)
	}

	result, err := that.RecordResponse(playerID)
	if err != nil {
		return nil, err
	}

	return &entity.Outcome{Reaction: result}, nil
}

// StartRound opens the next round. Once every round has been played it finalizes the game and reports false.
func (that *Game) StartRound() (RoundInfo, bool) {
	if that.IsGameOver() {
		return RoundInfo{}, false
	}

	if that.roundIndex >= that.config.MaxRounds {
		that.Finalize()
		return RoundInfo{}, false
	}

	that.closeCurrent()

	that.roundIndex++
	that.current = &round{
		number:    that.roundIndex,
		delay:     that.randomDelay(),
		startedAt: that.clock(),
		responses: make(map[string]response),
	}
	that.SetStatus(entity.StatusPlaying)

	return that.current.info(), true
}

// TriggerActivation stamps the activation time of the given round. It reports false when the round
// is no longer current or was already activated.
func (that *Game) TriggerActivation(roundNumber int) (time.Time, bool) {
	if that.current == nil || that.current.number != roundNumber || that.current.isActive() {
		return time.Time{}, false
	}

	that.current.activatedAt = that.clock()

	return that.current.activatedAt, true
}

// RecordResponse registers a click for the current round.
func (that *Game) RecordResponse(playerID string) (*entity.ReactionResult, error) {
	if that.current == nil {
		return nil, apperror.ErrNoActiveRound
	}

	if playerID == entity.ComputerID || !that.IsMember(playerID) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidPlayer, playerID)
	}

	now := that.clock()

	if !that.current.isActive() {
		return &entity.ReactionResult{
			Success:      false,
			ReactionTime: now.Sub(that.current.startedAt).Milliseconds(),
			Correct:      false,
			Message:      "Too fast! False start.",
		}, nil
	}

	if _, ok := that.current.responses[playerID]; ok {
		return nil, apperror.ErrAlreadyResponded
	}

	elapsed := now.Sub(that.current.activatedAt)
	switch {
	case elapsed < that.config.MinReaction:
		return &entity.ReactionResult{ReactionTime: elapsed.Milliseconds(), Message: "Too fast!"}, nil
	case elapsed > that.config.MaxReaction:
		return &entity.ReactionResult{ReactionTime: elapsed.Milliseconds(), Message: "Too slow!"}, nil
	}

	that.current.record(playerID, elapsed, now)

	points := Score(elapsed)
	that.AwardPoints(playerID, points)

	return &entity.ReactionResult{
		Success:      true,
		ReactionTime: elapsed.Milliseconds(),
		Correct:      true,
		Score:        &points,
		Message:      fmt.Sprintf("Great! %dms", elapsed.Milliseconds()),
	}, nil
}

// AllResponded reports whether every human stored a response in the current round.
func (that *Game) AllResponded() bool {
	if that.current == nil {
		return false
	}

	for _, id := range that.Humans() {
		if _, ok := that.current.responses[id]; !ok {
			return false
		}
	}

	return true
}

// AwardMissing gives zero points to everyone who did not respond in the current round and returns them.
func (that *Game) AwardMissing() []string {
	if that.current == nil {
		return nil
	}

	var missing []string
	for _, id := range that.Humans() {
		if _, ok := that.current.responses[id]; !ok {
			that.AwardPoints(id, 0)
			missing = append(missing, id)
		}
	}

	return missing
}

// CloseRound moves the current round to the history.
func (that *Game) CloseRound() (*entity.RoundSummary, bool) {
	if that.current == nil {
		return nil, false
	}

	closed := that.current
	that.closeCurrent()

	return &entity.RoundSummary{
		RoundNumber: closed.number,
		Responses:   closed.summary(),
		Leaderboard: that.Leaderboard(),
	}, true
}

func (that *Game) CurrentRound() (RoundInfo, bool) {
	if that.current == nil {
		return RoundInfo{}, false
	}

	return that.current.info(), true
}

// RoundsStarted counts the rounds opened so far, the current one included.
func (that *Game) RoundsStarted() int {
	return that.roundIndex
}

func (that *Game) HasRoundsRemaining() bool {
	return !that.IsGameOver() && that.roundIndex < that.config.MaxRounds
}

func (that *Game) Finalize() {
	if that.IsGameOver() {
		return
	}

	that.closeCurrent()
	that.finishedAt = that.clock()
	that.Finish()
}

func (that *Game) State() any {
	state := State{
		RoomID:      that.RoomID(),
		GameType:    that.Type(),
		GameMode:    that.Mode(),
		Status:      that.Status(),
		RoundIndex:  that.roundIndex,
		MaxRounds:   that.config.MaxRounds,
		Players:     that.Players(),
		Scores:      that.Scores(),
		Leaderboard: that.Leaderboard(),
		GameOver:    that.IsGameOver(),
		CreatedAt:   that.CreatedAt(),
	}

	if that.current != nil {
		state.CurrentRound = &RoundState{
			RoundNumber: that.current.number,
			Delay:       that.current.delay.Milliseconds(),
			Activated:   that.current.isActive(),
			Responded:   that.current.respondedIDs(),
		}
	}

	return state
}

func (that *Game) Result() *entity.MatchResult {
	details, _ := json.Marshal(that.Results())
	leaderboard := that.Leaderboard()

	result := &entity.MatchResult{
		RoomID:      that.RoomID(),
		GameType:    that.Type(),
		GameMode:    that.Mode(),
		Players:     that.Players(),
		Leaderboard: leaderboard,
		Details:     details,
		FinishedAt:  that.finishedAt,
	}

	if len(leaderboard) > 0 && (len(leaderboard) == 1 || leaderboard[0].Score > leaderboard[1].Score) {
		result.Winner = leaderboard[0].PlayerID
	}

	return result
}

// Score converts a reaction time into points: 1000 minus the milliseconds, never negative.
func Score(reaction time.Duration) int {
	return max(0, maxPoints-int(reaction.Milliseconds()))
}

func (that *Game) closeCurrent() {
	if that.current == nil {
		return
	}

	that.history = append(that.history, that.current)
	that.current = nil
}

func (that *Game) randomDelay() time.Duration {
	span := (that.config.MaxDelay - that.config.MinDelay).Milliseconds()
	if span <= 0 {
		return that.config.MinDelay
	}

	return that.config.MinDelay + time.Duration(that.rng.Int64N(span+1))*time.Millisecond
}
