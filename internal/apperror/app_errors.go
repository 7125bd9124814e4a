package apperror

import "errors"

var (
	ErrInvalidGameType  = errors.New("invalid game type")
	ErrUnknownGameType  = errors.New("unknown game type")
	ErrGameTypeMismatch = errors.New("game type mismatch")
	ErrRoomFull         = errors.New("game room is full")
	ErrRoomNotFound     = errors.New("game room not found")

	ErrOutOfRange   = errors.New("invalid cell index")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrGameFinished = errors.New("game is already finished")

	ErrNoActiveRound    = errors.New("no active round")
	ErrInvalidPlayer    = errors.New("invalid player")
	ErrAlreadyResponded = errors.New("already responded this round")

	ErrUnknownAction = errors.New("unknown action")
	ErrActionFailed  = errors.New("action failed")
	ErrRateLimited   = errors.New("too many messages")
)
