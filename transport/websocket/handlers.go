package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/usecase"
)

func (that *Server) handleJoinGame(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var payload JoinGamePayload
	if err := decodePayload(raw, &payload); err != nil {
		return err
	}

	_, err := that.rooms.JoinRoom(ctx, usecase.JoinRequest{
		RoomID:     payload.RoomID,
		PlayerID:   payload.PlayerID,
		GameType:   payload.GameType,
		GameMode:   payload.GameMode,
		Difficulty: payload.Difficulty,
	}, conn)
	if err != nil {
		return fmt.Errorf("failed to join game: %w", err)
	}

	prevRoom, prevPlayer := conn.bind(payload.RoomID, payload.PlayerID)
	if prevRoom != "" && (prevRoom != payload.RoomID || prevPlayer != payload.PlayerID) {
		if err = that.rooms.LeaveRoom(ctx, prevRoom, prevPlayer, conn); err != nil {
			conn.logger.Debug("failed to leave previous room", "room_id", prevRoom, "error", err)
		}
	}

	conn.logger.Info("player joined", "room_id", payload.RoomID, "player_id", payload.PlayerID)

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var payload MakeMovePayload
	if err := decodePayload(raw, &payload); err != nil {
		return err
	}

	if payload.CellIndex == nil {
		return fmt.Errorf("%w: cellIndex is required", apperror.ErrOutOfRange)
	}

	roomID, playerID, err := resolveIDs(conn, payload.RoomID, payload.PlayerID)
	if err != nil {
		return err
	}

	action := entity.Action{Kind: entity.ActionMove, Cell: *payload.CellIndex}
	if err = that.rooms.ApplyAction(ctx, roomID, playerID, action, conn); err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	return nil
}

func (that *Server) handleSubmitReaction(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var payload ReactionPayload
	if err := decodePayload(raw, &payload); err != nil {
		return err
	}

	roomID, playerID, err := resolveIDs(conn, payload.RoomID, payload.PlayerID)
	if err != nil {
		return err
	}

	if err = that.rooms.ApplyAction(ctx, roomID, playerID, entity.Action{Kind: entity.ActionRespond}, conn); err != nil {
		return fmt.Errorf("failed to submit reaction time: %w", err)
	}

	return nil
}

// handleLeaveGame drops the binding even when the room is already gone.
func (that *Server) handleLeaveGame(ctx context.Context, conn *Connection, _ json.RawMessage) error {
	roomID, playerID := conn.unbind()
	if roomID == "" {
		return nil
	}

	err := that.rooms.LeaveRoom(ctx, roomID, playerID, conn)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		conn.logger.Debug("leave from a gone room", "room_id", roomID, "error", err)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to leave game: %w", err)
	}

	return nil
}

// resolveIDs fills missing ids from the connection binding. A bound connection may only act for its own player.
func resolveIDs(conn *Connection, roomID, playerID string) (string, string, error) {
	boundRoom, boundPlayer := conn.binding()

	if roomID == "" {
		roomID = boundRoom
	}

	if playerID == "" {
		playerID = boundPlayer
	}

	if roomID == "" {
		return "", "", fmt.Errorf("%w: room id is required", apperror.ErrRoomNotFound)
	}

	if playerID == "" || (boundPlayer != "" && playerID != boundPlayer) {
		return "", "", fmt.Errorf("%w: %q", apperror.ErrInvalidPlayer, playerID)
	}

	return roomID, playerID, nil
}
