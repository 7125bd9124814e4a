package reactiontime

import (
	"math"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

type response struct {
	reaction  time.Duration
	clickedAt time.Time
}

type round struct {
	number      int
	delay       time.Duration
	startedAt   time.Time
	activatedAt time.Time
	responses   map[string]response
	order       []string
}

func (that *round) isActive() bool {
	return !that.activatedAt.IsZero()
}

func (that *round) record(playerID string, reaction time.Duration, clickedAt time.Time) {
	that.responses[playerID] = response{reaction: reaction, clickedAt: clickedAt}
	that.order = append(that.order, playerID)
}

func (that *round) info() RoundInfo {
	return RoundInfo{Number: that.number, Delay: that.delay}
}

func (that *round) respondedIDs() []string {
	return append([]string{}, that.order...)
}

// summary lists responses in arrival order.
func (that *round) summary() []entity.RoundResponse {
	responses := make([]entity.RoundResponse, 0, len(that.order))
	for _, id := range that.order {
		responses = append(responses, entity.RoundResponse{
			PlayerID:     id,
			ReactionTime: that.responses[id].reaction.Milliseconds(),
		})
	}

	return responses
}

type RoundDetail struct {
	RoundNumber int                    `json:"roundNumber"`
	Responses   []entity.RoundResponse `json:"responses"`
}

type PlayerStats struct {
	Count   int   `json:"count"`
	Average int64 `json:"average"`
	Best    int64 `json:"best"`
	Worst   int64 `json:"worst"`
	Score   int   `json:"score"`
}

type Results struct {
	RoomID       string                    `json:"roomId"`
	GameMode     string                    `json:"gameMode"`
	TotalRounds  int                       `json:"totalRounds"`
	Leaderboard  []entity.LeaderboardEntry `json:"leaderboard"`
	RoundDetails []RoundDetail             `json:"roundDetails"`
	PlayerStats  map[string]PlayerStats    `json:"playerStats"`
	Timestamp    time.Time                 `json:"timestamp"`
}

// Results summarizes every closed round.
func (that *Game) Results() Results {
	results := Results{
		RoomID:       that.RoomID(),
		GameMode:     that.Mode(),
		TotalRounds:  len(that.history),
		Leaderboard:  that.Leaderboard(),
		RoundDetails: make([]RoundDetail, 0, len(that.history)),
		PlayerStats:  make(map[string]PlayerStats),
		Timestamp:    that.finishedAt,
	}

	times := make(map[string][]time.Duration)
	for _, r := range that.history {
		results.RoundDetails = append(results.RoundDetails, RoundDetail{
			RoundNumber: r.number,
			Responses:   r.summary(),
		})

		for _, id := range r.order {
			times[id] = append(times[id], r.responses[id].reaction)
		}
	}

	for _, id := range that.Humans() {
		results.PlayerStats[id] = statsFor(times[id], that.Score(id))
	}

	return results
}

func statsFor(reactions []time.Duration, score int) PlayerStats {
	stats := PlayerStats{Count: len(reactions), Score: score}
	if len(reactions) == 0 {
		return stats
	}

	var total time.Duration
	best, worst := reactions[0], reactions[0]
	for _, reaction := range reactions {
		total += reaction
		best = min(best, reaction)
		worst = max(worst, reaction)
	}

	average := float64(total.Milliseconds()) / float64(len(reactions))
	stats.Average = int64(math.Round(average))
	stats.Best = best.Milliseconds()
	stats.Worst = worst.Milliseconds()

	return stats
}
