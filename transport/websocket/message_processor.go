package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

var ErrInvalidPayload = errors.New("invalid message format")

// clientErrors are reported to the client verbatim. Anything else is an internal failure.
var clientErrors = []error{
	ErrInvalidPayload,
	apperror.ErrInvalidGameType,
	apperror.ErrUnknownGameType,
	apperror.ErrGameTypeMismatch,
	apperror.ErrRoomFull,
	apperror.ErrRoomNotFound,
	apperror.ErrOutOfRange,
	apperror.ErrCellOccupied,
	apperror.ErrNotYourTurn,
	apperror.ErrGameFinished,
	apperror.ErrNoActiveRound,
	apperror.ErrInvalidPlayer,
	apperror.ErrAlreadyResponded,
	apperror.ErrUnknownAction,
	apperror.ErrActionFailed,
	apperror.ErrRateLimited,
}

// handleMessage decodes one frame and dispatches it to the handler of its action.
func (that *Server) handleMessage(ctx context.Context, conn *Connection, data []byte) {
	log := conn.logger.With("method", "handleMessage")

	if !conn.limiter.Allow() {
		log.Warn("message rate exceeded")
		conn.Send(entity.ErrorEvent(apperror.ErrRateLimited.Error()))
		return
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Info("failed to unmarshal message", "error", err)
		conn.Send(entity.ErrorEvent(ErrInvalidPayload.Error()))
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Info("unknown action", "action", message.Action)
		conn.Send(entity.ErrorEvent(fmt.Sprintf("%s: %s", apperror.ErrUnknownAction, message.Action)))
		return
	}

	if err := handler(ctx, conn, message.Payload); err != nil {
		log.Info("action rejected", "action", message.Action, "error", err)
		conn.Send(entity.ErrorEvent(clientMessage(err)))
	}
}

func clientMessage(err error) string {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "internal server error"
}

func decodePayload(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return nil
}
