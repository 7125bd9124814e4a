package usecase

import (
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/reactiontime"
)

const roundStartMessage = "Wait for the color to change..."

// beginRound opens the next round, or ends the game when none are left.
func (that *RoomManager) beginRound(r *room) {
	g, ok := r.game.(*reactiontime.Game)
	if !ok {
		return
	}

	info, ok := g.StartRound()
	if !ok {
		that.finishGame(r)
		return
	}

	that.hub.Broadcast(r.id, entity.Event{
		Action: entity.EventRoundStart,
		Payload: entity.RoundStartPayload{
			RoundNumber: info.Number,
			Delay:       info.Delay.Milliseconds(),
			Message:     roundStartMessage,
		},
	})
	that.broadcastState(r)

	that.arm(r, phaseSlot, info.Delay, func(r *room) {
		that.activateRound(r, info.Number)
	})
}

func (that *RoomManager) activateRound(r *room, roundNumber int) {
	g, ok := r.game.(*reactiontime.Game)
	if !ok {
		return
	}

	activatedAt, ok := g.TriggerActivation(roundNumber)
	if !ok {
		that.logger.Debug("activation for a closed round", "room_id", r.id, "round", roundNumber)
		return
	}

	that.hub.Broadcast(r.id, entity.Event{
		Action: entity.EventColorChange,
		Payload: entity.ColorChangePayload{
			ActivationTime: activatedAt.UnixMilli(),
			RoundNumber:    roundNumber,
		},
	})

	that.arm(r, timeoutSlot, that.timings.ResponseTimeout, func(r *room) {
		that.expireRound(r, roundNumber)
	})
}

// expireRound closes a round whose response window ran out.
func (that *RoomManager) expireRound(r *room, roundNumber int) {
	g, ok := r.game.(*reactiontime.Game)
	if !ok {
		return
	}

	if info, ok := g.CurrentRound(); !ok || info.Number != roundNumber {
		return
	}

	g.AwardMissing()
	that.closeRound(r, g)
}

func (that *RoomManager) closeRound(r *room, g *reactiontime.Game) {
	that.disarm(r, timeoutSlot)

	summary, ok := g.CloseRound()
	if !ok {
		return
	}

	that.hub.Broadcast(r.id, entity.Event{Action: entity.EventRoundSummary, Payload: summary})
	that.broadcastState(r)

	if g.HasRoundsRemaining() {
		that.arm(r, phaseSlot, that.timings.InterRoundPause, that.beginRound)
		return
	}

	g.Finalize()
	that.finishGame(r)
}
