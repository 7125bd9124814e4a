package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/reactiontime"
	"github.com/rocketscienceinc/gameroom-backend/internal/scheduler"
	"github.com/rocketscienceinc/gameroom-backend/internal/tictactoe"
)

const archiveTimeout = 5 * time.Second

type gameFactory interface {
	Create(gameType, roomID string, players []string, mode, difficulty string) (entity.Game, error)
}

type broadcaster interface {
	Attach(roomID, playerID string, recipient entity.Recipient) entity.Recipient
	Detach(roomID, playerID string, recipient entity.Recipient) bool
	Broadcast(roomID string, event entity.Event)
	SendTo(roomID, playerID string, event entity.Event) bool
	Members(roomID string) int
	DropRoom(roomID string)
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.MatchResult) error
}

type Timings struct {
	ComputerMoveDelay time.Duration
	CleanupDelay      time.Duration
	FirstRoundDelay   time.Duration
	InterRoundPause   time.Duration
	ResponseTimeout   time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		ComputerMoveDelay: time.Second,
		CleanupDelay:      5 * time.Second,
		FirstRoundDelay:   time.Second,
		InterRoundPause:   3 * time.Second,
		ResponseTimeout:   5 * time.Second,
	}
}

type JoinRequest struct {
	RoomID     string
	PlayerID   string
	GameType   string
	GameMode   string
	Difficulty string
}

// RoomManager owns every live room. Operations on one room are serialized by that room's lock;
// different rooms never wait on each other.
type RoomManager struct {
	logger    *slog.Logger
	factory   gameFactory
	hub       broadcaster
	results   resultRepo
	scheduler scheduler.Scheduler
	timings   Timings

	mu    sync.RWMutex
	rooms map[string]*room

	archives sync.WaitGroup
}

func NewRoomManager(
	logger *slog.Logger,
	factory gameFactory,
	hub broadcaster,
	results resultRepo,
	sched scheduler.Scheduler,
	timings Timings,
) *RoomManager {
	return &RoomManager{
		logger:    logger.With("component", "room_manager"),
		factory:   factory,
		hub:       hub,
		results:   results,
		scheduler: sched,
		timings:   timings,
		rooms:     make(map[string]*room),
	}
}

// JoinRoom creates the room on first reference and seats the player. Joining again is a rebind:
// the caller replaces the player's previous connection and receives the current snapshot.
func (that *RoomManager) JoinRoom(_ context.Context, req JoinRequest, caller entity.Recipient) (any, error) {
	log := that.logger.With("method", "JoinRoom", "room_id", req.RoomID, "player_id", req.PlayerID)

	if !game.IsValidType(req.GameType) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidGameType, req.GameType)
	}

	if req.RoomID == "" {
		return nil, fmt.Errorf("%w: room id is required", apperror.ErrRoomNotFound)
	}

	if req.PlayerID == "" || req.PlayerID == entity.ComputerID {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidPlayer, req.PlayerID)
	}

	if !entity.IsValidMode(req.GameMode) {
		req.GameMode = entity.ModeMultiplayer
	}

	for {
		r, err := that.getOrCreateRoom(req)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.deleted {
			r.mu.Unlock()
			continue
		}

		snapshot, err := that.join(r, req, caller)
		r.mu.Unlock()

		if err != nil {
			log.Info("join rejected", "error", err)
			return nil, err
		}

		return snapshot, nil
	}
}

func (that *RoomManager) join(r *room, req JoinRequest, caller entity.Recipient) (any, error) {
	if r.game.Type() != req.GameType {
		return nil, fmt.Errorf("%w: room %s plays %s", apperror.ErrGameTypeMismatch, r.id, r.game.Type())
	}

	if !r.game.IsMember(req.PlayerID) {
		if isFull(r.game) {
			return nil, fmt.Errorf("%w: room %s", apperror.ErrRoomFull, r.id)
		}

		r.game.AddPlayer(req.PlayerID)
	}

	that.hub.Attach(r.id, req.PlayerID, caller)

	if r.abandoned {
		that.disarm(r, cleanupSlot)
		r.abandoned = false
	}

	snapshot := r.game.State()
	caller.Send(stateEvent(snapshot))
	that.hub.Broadcast(r.id, stateEvent(snapshot))

	that.maybeStart(r)
	that.resume(r)

	return snapshot, nil
}

func isFull(g entity.Game) bool {
	if g.Mode() == entity.ModeSinglePlayer {
		return g.HumanCount() >= 1
	}

	return g.HumanCount() >= 2
}

// maybeStart fires the start signal once, as soon as the room has its players.
func (that *RoomManager) maybeStart(r *room) {
	if r.started || r.game.IsGameOver() {
		return
	}

	message := "Game started! Playing against Computer..."
	if r.game.Mode() == entity.ModeMultiplayer {
		if r.game.HumanCount() < 2 {
			return
		}
		message = "Both players joined. Game starting..."
	}

	r.started = true
	that.hub.Broadcast(r.id, entity.Event{Action: entity.EventPlayerJoined, Payload: entity.MessagePayload{Message: message}})

	that.logger.Info("room started", "room_id", r.id, "game_type", r.game.Type())

	if _, ok := r.game.(*reactiontime.Game); ok {
		that.arm(r, phaseSlot, that.timings.FirstRoundDelay, that.beginRound)
	}
}

// resume re-arms the step a leave or disconnect cancelled, once every human is bound again.
func (that *RoomManager) resume(r *room) {
	if !r.started || r.game.IsGameOver() || r.timers[phaseSlot] != nil || r.timers[timeoutSlot] != nil {
		return
	}

	if that.hub.Members(r.id) < r.game.HumanCount() {
		return
	}

	switch g := r.game.(type) {
	case *tictactoe.Game:
		if g.CurrentPlayer() != entity.ComputerID {
			return
		}
		that.arm(r, phaseSlot, that.timings.ComputerMoveDelay, that.computerTurn)
	case *reactiontime.Game:
		// an interrupted round is closed as it stands, then the game goes on from the next one
		if _, ok := g.CurrentRound(); ok {
			g.AwardMissing()
			that.closeRound(r, g)
			break
		}

		delay := that.timings.InterRoundPause
		if g.RoundsStarted() == 0 {
			delay = that.timings.FirstRoundDelay
		}
		that.arm(r, phaseSlot, delay, that.beginRound)
	}

	that.logger.Info("room resumed", "room_id", r.id)
}

// LeaveRoom unbinds the caller and pauses the room. The game itself is left as it is.
func (that *RoomManager) LeaveRoom(_ context.Context, roomID, playerID string, caller entity.Recipient) error {
	return that.detach(roomID, playerID, caller, "Opponent left the game")
}

func (that *RoomManager) Disconnect(_ context.Context, roomID, playerID string, caller entity.Recipient) error {
	return that.detach(roomID, playerID, caller, "Opponent disconnected")
}

func (that *RoomManager) detach(roomID, playerID string, caller entity.Recipient, notice string) error {
	log := that.logger.With("method", "detach", "room_id", roomID, "player_id", playerID)

	r := that.lookup(roomID)
	if r == nil {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleted {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	if !that.hub.Detach(roomID, playerID, caller) {
		log.Debug("binding already replaced")
		return nil
	}

	that.disarm(r, phaseSlot)
	that.disarm(r, timeoutSlot)

	that.hub.Broadcast(roomID, entity.ErrorEvent(notice))

	if !r.game.IsGameOver() && that.hub.Members(roomID) == 0 {
		r.abandoned = true
		that.arm(r, cleanupSlot, that.timings.CleanupDelay, that.removeRoom)
	}

	log.Info("player detached", "notice", notice)

	return nil
}

// ApplyAction dispatches a player action to the room's game.
func (that *RoomManager) ApplyAction(
	_ context.Context,
	roomID, playerID string,
	action entity.Action,
	caller entity.Recipient,
) (err error) {
	log := that.logger.With("method", "ApplyAction", "room_id", roomID, "player_id", playerID, "action", action.Kind)

	r := that.lookup(roomID)
	if r == nil {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleted {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("action panicked", "panic", rec)
			err = fmt.Errorf("%w: %v", apperror.ErrActionFailed, rec)
		}
	}()

	outcome, err := r.game.HandleAction(playerID, action)
	if err != nil {
		return fmt.Errorf("failed to apply action: %w", err)
	}

	if outcome.Reaction != nil {
		event := entity.Event{Action: entity.EventReactionResult, Payload: outcome.Reaction}
		if caller != nil {
			caller.Send(event)
		} else {
			that.hub.SendTo(roomID, playerID, event)
		}
	}

	that.broadcastState(r)
	that.afterOutcome(r, outcome)

	return nil
}

func (that *RoomManager) afterOutcome(r *room, outcome *entity.Outcome) {
	switch {
	case outcome.GameOver:
		that.finishGame(r)
	case outcome.ComputerNext:
		that.arm(r, phaseSlot, that.timings.ComputerMoveDelay, that.computerTurn)
	case outcome.Reaction != nil && outcome.Reaction.Success:
		if g, ok := r.game.(*reactiontime.Game); ok && g.AllResponded() {
			that.closeRound(r, g)
		}
	}
}

// computerTurn runs on the live room when the reply delay elapses.
func (that *RoomManager) computerTurn(r *room) {
	g, ok := r.game.(*tictactoe.Game)
	if !ok || g.IsGameOver() || g.CurrentPlayer() != entity.ComputerID {
		return
	}

	outcome, err := g.ComputerMove()
	if err != nil {
		that.logger.Error("computer move failed", "room_id", r.id, "error", err)
		return
	}

	that.broadcastState(r)
	that.afterOutcome(r, outcome)
}

// finishGame announces the end, archives the result and schedules the room for removal.
func (that *RoomManager) finishGame(r *room) {
	that.disarm(r, phaseSlot)
	that.disarm(r, timeoutSlot)

	result := r.game.Result()

	payload := entity.GameOverPayload{
		Winner:     result.Winner,
		WinnerMark: result.WinnerMark,
		IsDraw:     result.IsDraw,
	}
	if r.game.Type() == entity.TypeReactionTime {
		payload.Results = result.Details
	}

	that.broadcastState(r)
	that.hub.Broadcast(r.id, entity.Event{Action: entity.EventGameOver, Payload: payload})

	that.logger.Info("game over", "room_id", r.id, "winner", result.Winner, "draw", result.IsDraw)

	if that.results != nil {
		that.archives.Add(1)
		go that.archive(result)
	}

	r.abandoned = false
	that.arm(r, cleanupSlot, that.timings.CleanupDelay, that.removeRoom)
}

func (that *RoomManager) archive(result *entity.MatchResult) {
	defer that.archives.Done()

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	if err := that.results.Save(ctx, result); err != nil {
		that.logger.Error("failed to archive result", "room_id", result.RoomID, "error", err)
	}
}

// removeRoom deletes the room from the registry only if the registry still holds this very room.
func (that *RoomManager) removeRoom(r *room) {
	r.deleted = true
	that.disarmAll(r)

	that.mu.Lock()
	if that.rooms[r.id] == r {
		delete(that.rooms, r.id)
	}
	that.mu.Unlock()

	that.hub.DropRoom(r.id)

	that.logger.Info("room removed", "room_id", r.id)
}

func (that *RoomManager) getOrCreateRoom(req JoinRequest) (*room, error) {
	if r := that.lookup(req.RoomID); r != nil {
		return r, nil
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if r, ok := that.rooms[req.RoomID]; ok {
		return r, nil
	}

	var players []string
	if req.GameMode == entity.ModeSinglePlayer {
		players = []string{req.PlayerID, entity.ComputerID}
	}

	instance, err := that.factory.Create(req.GameType, req.RoomID, players, req.GameMode, req.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	r := &room{
		id:        req.RoomID,
		game:      instance,
		createdAt: that.scheduler.Now(),
	}
	that.rooms[req.RoomID] = r

	that.logger.Info("room created", "room_id", req.RoomID, "game_type", req.GameType, "game_mode", req.GameMode)

	return r, nil
}

func (that *RoomManager) lookup(roomID string) *room {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.rooms[roomID]
}

// Snapshot returns the current state of a room.
func (that *RoomManager) Snapshot(roomID string) (any, error) {
	r := that.lookup(roomID)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleted {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return r.game.State(), nil
}

func (that *RoomManager) RoomCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// Close cancels every timer and waits for pending archives.
func (that *RoomManager) Close() {
	that.mu.RLock()
	rooms := make([]*room, 0, len(that.rooms))
	for _, r := range that.rooms {
		rooms = append(rooms, r)
	}
	that.mu.RUnlock()

	for _, r := range rooms {
		r.mu.Lock()
		that.disarmAll(r)
		r.mu.Unlock()
	}

	that.archives.Wait()
}

func (that *RoomManager) broadcastState(r *room) {
	that.hub.Broadcast(r.id, stateEvent(r.game.State()))
}

func stateEvent(snapshot any) entity.Event {
	return entity.Event{Action: entity.EventGameStateUpdate, Payload: snapshot}
}
