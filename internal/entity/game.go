package entity

import "time"

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	ModeSinglePlayer = "single-player"
	ModeMultiplayer  = "multiplayer"

	// ComputerID occupies the second seat of every single-player room.
	ComputerID = "COMPUTER"
)

const (
	TypeTicTacToe    = "tic-tac-toe"
	TypeReactionTime = "reaction-time"
	TypeQuiz         = "quiz"
	TypeMemory       = "memory"
)

const (
	ActionMove    = "MOVE"
	ActionRespond = "RESPOND"
)

// Clock returns the current time. Game variants never read the wall clock directly.
type Clock func() time.Time

type Action struct {
	Kind string
	Cell int
}

// Outcome describes what a successful action changed.
type Outcome struct {
	GameOver     bool
	Winner       string
	WinnerMark   string
	IsDraw       bool
	ComputerNext bool
	Reaction     *ReactionResult
}

// Game is implemented by every playable variant. A game is owned by exactly one room
// and is never touched concurrently.
type Game interface {
	Type() string
	Mode() string
	RoomID() string
	Status() string
	Players() []string
	IsMember(playerID string) bool
	HumanCount() int
	AddPlayer(playerID string) bool
	HandleAction(playerID string, action Action) (*Outcome, error)
	IsGameOver() bool
	Leaderboard() []LeaderboardEntry
	State() any
	Result() *MatchResult
}

func IsValidMode(mode string) bool {
	return mode == ModeSinglePlayer || mode == ModeMultiplayer
}
