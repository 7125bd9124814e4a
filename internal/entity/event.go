package entity

import (
	"encoding/json"
	"time"
)

const (
	EventGameStateUpdate = "GAME_STATE_UPDATE"
	EventPlayerJoined    = "PLAYER_JOINED"
	EventRoundStart      = "ROUND_START"
	EventColorChange     = "COLOR_CHANGE"
	EventReactionResult  = "REACTION_RESULT"
	EventRoundSummary    = "ROUND_SUMMARY"
	EventGameOver        = "GAME_OVER"
	EventError           = "ERROR"
)

// Event is a single outbound message. It shares the {action, payload} envelope with inbound messages.
type Event struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

// Recipient receives events for one connection. Send must not block.
type Recipient interface {
	Send(event Event)
}

type MessagePayload struct {
	Message string `json:"message"`
}

type RoundStartPayload struct {
	RoundNumber int    `json:"roundNumber"`
	Delay       int64  `json:"delay"`
	Message     string `json:"message"`
}

type ColorChangePayload struct {
	ActivationTime int64 `json:"activationTime"`
	RoundNumber    int   `json:"roundNumber"`
}

type ReactionResult struct {
	Success      bool   `json:"success"`
	ReactionTime int64  `json:"reactionTime"`
	Correct      bool   `json:"correct"`
	Score        *int   `json:"score,omitempty"`
	Message      string `json:"message"`
}

type RoundResponse struct {
	PlayerID     string `json:"playerId"`
	ReactionTime int64  `json:"reactionTime"`
}

type RoundSummary struct {
	RoundNumber int                `json:"roundNumber"`
	Responses   []RoundResponse    `json:"responses"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type GameOverPayload struct {
	Winner     string          `json:"winner,omitempty"`
	WinnerMark string          `json:"winnerMark,omitempty"`
	IsDraw     bool            `json:"isDraw"`
	Results    json.RawMessage `json:"results,omitempty"`
}

// MatchResult is what remains of a room once its game is over.
type MatchResult struct {
	RoomID      string             `json:"roomId"`
	GameType    string             `json:"gameType"`
	GameMode    string             `json:"gameMode"`
	Players     []string           `json:"players"`
	Winner      string             `json:"winner,omitempty"`
	WinnerMark  string             `json:"winnerMark,omitempty"`
	IsDraw      bool               `json:"isDraw"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Details     json.RawMessage    `json:"details,omitempty"`
	FinishedAt  time.Time          `json:"finishedAt"`
}

func ErrorEvent(message string) Event {
	return Event{Action: EventError, Payload: MessagePayload{Message: message}}
}
