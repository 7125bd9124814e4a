package broadcast

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

type inbox struct {
	mu     sync.Mutex
	events []entity.Event
}

func (that *inbox) Send(event entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
}

func (that *inbox) actions() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	actions := make([]string, 0, len(that.events))
	for _, event := range that.events {
		actions = append(actions, event.Action)
	}

	return actions
}

func newHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHub_Broadcast(t *testing.T) {
	t.Run("Only members of the room receive", func(t *testing.T) {
		// Given: two rooms with one member each
		hub := newHub()
		alice, bob := &inbox{}, &inbox{}
		hub.Attach("room-1", "alice", alice)
		hub.Attach("room-2", "bob", bob)

		// When: room-1 gets an event
		hub.Broadcast("room-1", entity.Event{Action: entity.EventGameStateUpdate})

		// Then: only alice sees it
		assert.Equal(t, []string{entity.EventGameStateUpdate}, alice.actions())
		assert.Empty(t, bob.actions())
	})

	t.Run("Unicast", func(t *testing.T) {
		// Given: a room with two members
		hub := newHub()
		alice, bob := &inbox{}, &inbox{}
		hub.Attach("room-1", "alice", alice)
		hub.Attach("room-1", "bob", bob)

		// When: an event is sent to bob
		sent := hub.SendTo("room-1", "bob", entity.Event{Action: entity.EventReactionResult})

		// Then: only bob receives it
		require.True(t, sent)
		assert.Empty(t, alice.actions())
		assert.Equal(t, []string{entity.EventReactionResult}, bob.actions())
		assert.False(t, hub.SendTo("room-1", "carol", entity.Event{Action: entity.EventError}))
	})
}

func TestHub_AttachDetach(t *testing.T) {
	t.Run("Reconnect replaces the binding", func(t *testing.T) {
		// Given: alice bound with an old connection
		hub := newHub()
		old, fresh := &inbox{}, &inbox{}
		hub.Attach("room-1", "alice", old)

		// When: alice reconnects
		previous := hub.Attach("room-1", "alice", fresh)

		// Then: the old binding is returned and cannot detach the new one
		assert.Same(t, old, previous)
		assert.False(t, hub.Detach("room-1", "alice", old))
		assert.Equal(t, 1, hub.Members("room-1"))

		hub.Broadcast("room-1", entity.Event{Action: entity.EventGameStateUpdate})
		assert.Empty(t, old.actions())
		assert.Len(t, fresh.actions(), 1)
	})

	t.Run("Detach empties the room", func(t *testing.T) {
		// Given: one member
		hub := newHub()
		alice := &inbox{}
		hub.Attach("room-1", "alice", alice)

		// When: she leaves
		detached := hub.Detach("room-1", "alice", alice)

		// Then: the room has no members
		assert.True(t, detached)
		assert.Zero(t, hub.Members("room-1"))
	})

	t.Run("DropRoom", func(t *testing.T) {
		// Given: a room with members
		hub := newHub()
		hub.Attach("room-1", "alice", &inbox{})
		hub.Attach("room-1", "bob", &inbox{})

		// When: the room is dropped
		hub.DropRoom("room-1")

		// Then: nobody is bound
		assert.Zero(t, hub.Members("room-1"))
	})
}
