package usecase

import (
	"sync"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/scheduler"
)

type timerSlot int

const (
	// phaseSlot drives the next step: round start, activation, pause or computer reply.
	phaseSlot timerSlot = iota
	timeoutSlot
	cleanupSlot

	slotCount
)

func (that timerSlot) String() string {
	switch that {
	case phaseSlot:
		return "phase"
	case timeoutSlot:
		return "timeout"
	case cleanupSlot:
		return "cleanup"
	default:
		return "unknown"
	}
}

// room owns one game. Every field is guarded by mu.
type room struct {
	mu sync.Mutex

	id        string
	game      entity.Game
	createdAt time.Time
	started   bool
	deleted   bool
	abandoned bool

	timers [slotCount]scheduler.Timer
	tokens [slotCount]uint64
}

// arm replaces the timer in the slot. The callback only runs if the slot still holds this token
// when it fires and the room is still registered.
func (that *RoomManager) arm(r *room, slot timerSlot, delay time.Duration, fn func(r *room)) {
	that.disarm(r, slot)

	token := r.tokens[slot]
	r.timers[slot] = that.scheduler.AfterFunc(delay, func() {
		that.fire(r, slot, token, fn)
	})
}

func (that *RoomManager) disarm(r *room, slot timerSlot) {
	if timer := r.timers[slot]; timer != nil {
		timer.Stop()
		r.timers[slot] = nil
	}

	r.tokens[slot]++
}

func (that *RoomManager) disarmAll(r *room) {
	for slot := range slotCount {
		that.disarm(r, slot)
	}
}

func (that *RoomManager) fire(r *room, slot timerSlot, token uint64, fn func(r *room)) {
	log := that.logger.With("method", "fire", "room_id", r.id, "slot", slot.String())

	if that.lookup(r.id) != r {
		log.Debug("stale timer, room is gone")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleted || r.tokens[slot] != token {
		log.Debug("stale timer")
		return
	}

	r.timers[slot] = nil

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("timer callback panicked", "panic", rec)
		}
	}()

	fn(r)
}
