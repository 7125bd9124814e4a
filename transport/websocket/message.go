package websocket

import "encoding/json"

const (
	ActionJoinGame           = "JOIN_GAME"
	ActionMakeMove           = "MAKE_MOVE"
	ActionSubmitReactionTime = "SUBMIT_REACTION_TIME"
	ActionLeaveGame          = "LEAVE_GAME"
)

// Message is an inbound frame. Outbound frames are entity.Event values with the same envelope.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinGamePayload struct {
	RoomID     string `json:"roomId"`
	PlayerID   string `json:"playerId"`
	GameType   string `json:"gameType"`
	GameMode   string `json:"gameMode"`
	Difficulty string `json:"difficulty,omitempty"`
}

type MakeMovePayload struct {
	RoomID    string `json:"roomId"`
	PlayerID  string `json:"playerId"`
	CellIndex *int   `json:"cellIndex"`
}

// ReactionPayload carries no timing: reaction times are measured on the server.
type ReactionPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}
