package broadcast

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

// Hub maps rooms to the recipients bound in them: roomID -> playerID -> recipient.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[string]entity.Recipient
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "hub"),
		rooms:  make(map[string]map[string]entity.Recipient),
	}
}

// Attach binds the recipient to the player inside the room and returns the recipient it replaced, if any.
func (that *Hub) Attach(roomID, playerID string, recipient entity.Recipient) entity.Recipient {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[roomID]
	if !ok {
		members = make(map[string]entity.Recipient)
		that.rooms[roomID] = members
	}

	previous := members[playerID]
	members[playerID] = recipient

	return previous
}

// Detach removes the binding only when it still points to the given recipient. A recipient that was
// replaced by a reconnect cannot remove its successor.
func (that *Hub) Detach(roomID, playerID string, recipient entity.Recipient) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[roomID]
	if !ok {
		return false
	}

	if current, ok := members[playerID]; !ok || current != recipient {
		return false
	}

	delete(members, playerID)
	if len(members) == 0 {
		delete(that.rooms, roomID)
	}

	return true
}

func (that *Hub) Broadcast(roomID string, event entity.Event) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, recipient := range that.rooms[roomID] {
		recipient.Send(event)
	}
}

// SendTo delivers to a single bound player and reports whether the player was bound.
func (that *Hub) SendTo(roomID, playerID string, event entity.Event) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	recipient, ok := that.rooms[roomID][playerID]
	if !ok {
		that.logger.Debug("recipient not bound", "room_id", roomID, "player_id", playerID, "action", event.Action)
		return false
	}

	recipient.Send(event)

	return true
}

func (that *Hub) Members(roomID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms[roomID])
}

func (that *Hub) DropRoom(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, roomID)
}
