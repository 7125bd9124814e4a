package entity

import (
	"slices"
	"sort"
	"time"
)

type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// Roster is the bookkeeping every variant shares: seats in join order, scores and the
// terminal flag. The computer seat is never scored.
type Roster struct {
	roomID    string
	mode      string
	status    string
	createdAt time.Time
	players   []string
	scores    map[string]int
	gameOver  bool
}

func NewRoster(roomID, mode string, players []string, createdAt time.Time) Roster {
	roster := Roster{
		roomID:    roomID,
		mode:      mode,
		status:    StatusWaiting,
		createdAt: createdAt,
		scores:    make(map[string]int),
	}

	for _, id := range players {
		roster.AddPlayer(id)
	}

	return roster
}

func (that *Roster) RoomID() string {
	return that.roomID
}

func (that *Roster) Mode() string {
	return that.mode
}

func (that *Roster) Status() string {
	return that.status
}

func (that *Roster) SetStatus(status string) {
	that.status = status
}

func (that *Roster) CreatedAt() time.Time {
	return that.createdAt
}

func (that *Roster) Players() []string {
	return slices.Clone(that.players)
}

// Humans returns the seated players except the computer.
func (that *Roster) Humans() []string {
	humans := make([]string, 0, len(that.players))
	for _, id := range that.players {
		if id != ComputerID {
			humans = append(humans, id)
		}
	}

	return humans
}

func (that *Roster) HumanCount() int {
	return len(that.Humans())
}

func (that *Roster) IsMember(playerID string) bool {
	return slices.Contains(that.players, playerID)
}

// AddPlayer seats the player with a zero score. It reports false when the player is already seated.
func (that *Roster) AddPlayer(playerID string) bool {
	if that.IsMember(playerID) {
		return false
	}

	that.players = append(that.players, playerID)
	if playerID != ComputerID {
		that.scores[playerID] = 0
	}

	return true
}

// Seat returns the player at the given seat or an empty string.
func (that *Roster) Seat(index int) string {
	if index < 0 || index >= len(that.players) {
		return ""
	}

	return that.players[index]
}

func (that *Roster) SeatOf(playerID string) int {
	return slices.Index(that.players, playerID)
}

// AwardPoints adds points to a seated human. Zero points still registers the player on the leaderboard.
func (that *Roster) AwardPoints(playerID string, points int) {
	if playerID == ComputerID || !that.IsMember(playerID) {
		return
	}

	that.scores[playerID] += points
}

func (that *Roster) Score(playerID string) int {
	return that.scores[playerID]
}

func (that *Roster) Scores() map[string]int {
	scores := make(map[string]int, len(that.scores))
	for id, score := range that.scores {
		scores[id] = score
	}

	return scores
}

// Leaderboard orders players by score, highest first. Ties keep join order.
func (that *Roster) Leaderboard() []LeaderboardEntry {
	board := make([]LeaderboardEntry, 0, len(that.scores))
	for _, id := range that.players {
		score, ok := that.scores[id]
		if !ok {
			continue
		}
		board = append(board, LeaderboardEntry{PlayerID: id, Score: score})
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})

	return board
}

func (that *Roster) IsGameOver() bool {
	return that.gameOver
}

func (that *Roster) Finish() {
	that.gameOver = true
	that.status = StatusFinished
}

func (that *Roster) IsFinished() bool {
	return that.status == StatusFinished
}

func (that *Roster) IsPlaying() bool {
	return that.status == StatusPlaying
}

func (that *Roster) IsWaiting() bool {
	return that.status == StatusWaiting
}
