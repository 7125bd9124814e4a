package tictactoe

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

const (
	MarkX     = "X"
	MarkO     = "O"
	Tie       = "-"
	EmptyCell = ""

	boardSize = 9
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Game is a two seat Tic-Tac-Toe match. Seat 0 plays X and always opens.
type Game struct {
	entity.Roster

	board      [boardSize]string
	turn       int
	winner     string
	winnerMark string
	isDraw     bool
	moves      []int
	difficulty string
	clock      entity.Clock
	rng        *rand.Rand
}

type State struct {
	RoomID        string                    `json:"roomId"`
	GameType      string                    `json:"gameType"`
	GameMode      string                    `json:"gameMode"`
	Status        string                    `json:"status"`
	Board         [boardSize]string         `json:"board"`
	CurrentPlayer string                    `json:"currentPlayer"`
	CurrentMark   string                    `json:"currentMark"`
	Players       []string                  `json:"players"`
	Winner        string                    `json:"winner"`
	WinnerMark    string                    `json:"winnerMark,omitempty"`
	IsDraw        bool                      `json:"isDraw"`
	IsFull        bool                      `json:"isFull"`
	MoveCount     int                       `json:"moveCount"`
	Difficulty    string                    `json:"difficulty,omitempty"`
	Scores        map[string]int            `json:"scores"`
	Leaderboard   []entity.LeaderboardEntry `json:"leaderboard"`
	GameOver      bool                      `json:"gameOver"`
	CreatedAt     time.Time                 `json:"createdAt"`
}

func New(roomID, mode string, players []string, difficulty string, clock entity.Clock, rng *rand.Rand) *Game {
	game := &Game{
		Roster:     entity.NewRoster(roomID, mode, players, clock()),
		difficulty: ParseDifficulty(difficulty),
		clock:      clock,
		rng:        rng,
	}
	game.refreshStatus()

	return game
}

func (that *Game) Type() string {
	return entity.TypeTicTacToe
}

func (that *Game) AddPlayer(playerID string) bool {
	if len(that.Players()) >= 2 {
		return false
	}

	added := that.Roster.AddPlayer(playerID)
	that.refreshStatus()

	return added
}

func (that *Game) HandleAction(playerID string, action entity.Action) (*entity.Outcome, error) {
	if action.Kind != entity.ActionMove {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownAction, action.Kind)
	}

	return that.ApplyMove(playerID, action.Cell)
}

// ApplyMove validates and applies a move. A rejected move leaves the game untouched.
func (that *Game) ApplyMove(playerID string, cell int) (*entity.Outcome, error) {
	if that.IsGameOver() {
		return nil, apperror.ErrGameFinished
	}

	if cell < 0 || cell >= boardSize {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrOutOfRange, cell)
	}

	if that.board[cell] != EmptyCell {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	if that.IsWaiting() {
		return nil, fmt.Errorf("%w: waiting for an opponent", apperror.ErrNotYourTurn)
	}

	if that.Seat(that.turn) != playerID {
		return nil, apperror.ErrNotYourTurn
	}

	that.board[cell] = markOf(that.turn)
	that.moves = append(that.moves, cell)

	outcome := &entity.Outcome{}

	switch result := checkGameStatus(that.board); result {
	case MarkX, MarkO:
		that.winner = playerID
		that.winnerMark = result
		that.AwardPoints(playerID, 1)
		that.Finish()
	case Tie:
		that.isDraw = true
		that.Finish()
	default:
		that.turn = 1 - that.turn
		outcome.ComputerNext = that.Seat(that.turn) == entity.ComputerID
	}

	outcome.GameOver = that.IsGameOver()
	outcome.Winner = that.winner
	outcome.WinnerMark = that.winnerMark
	outcome.IsDraw = that.isDraw

	return outcome, nil
}

func (that *Game) Board() [boardSize]string {
	return that.board
}

func (that *Game) CurrentPlayer() string {
	return that.Seat(that.turn)
}

// Winner returns the id of the winning player, COMPUTER included.
func (that *Game) Winner() string {
	return that.winner
}

func (that *Game) WinnerMark() string {
	return that.winnerMark
}

func (that *Game) IsDraw() bool {
	return that.isDraw
}

func (that *Game) MoveCount() int {
	return len(that.moves)
}

func (that *Game) Difficulty() string {
	return that.difficulty
}

func (that *Game) State() any {
	state := State{
		RoomID:        that.RoomID(),
		GameType:      that.Type(),
		GameMode:      that.Mode(),
		Status:        that.Status(),
		Board:         that.board,
		CurrentPlayer: that.CurrentPlayer(),
		CurrentMark:   markOf(that.turn),
		Players:       that.Players(),
		Winner:        that.winner,
		WinnerMark:    that.winnerMark,
		IsDraw:        that.isDraw,
		IsFull:        len(that.Players()) >= 2,
		MoveCount:     len(that.moves),
		Scores:        that.Scores(),
		Leaderboard:   that.Leaderboard(),
		GameOver:      that.IsGameOver(),
		CreatedAt:     that.CreatedAt(),
	}

	if that.Mode() == entity.ModeSinglePlayer {
		state.Difficulty = that.difficulty
	}

	return state
}

func (that *Game) Result() *entity.MatchResult {
	details, _ := json.Marshal(struct {
		Board [boardSize]string `json:"board"`
		Moves []int             `json:"moves"`
	}{that.board, that.moves})

	return &entity.MatchResult{
		RoomID:      that.RoomID(),
		GameType:    that.Type(),
		GameMode:    that.Mode(),
		Players:     that.Players(),
		Winner:      that.winner,
		WinnerMark:  that.winnerMark,
		IsDraw:      that.isDraw,
		Leaderboard: that.Leaderboard(),
		Details:     details,
		FinishedAt:  that.clock(),
	}
}

func (that *Game) refreshStatus() {
	if that.IsWaiting() && len(that.Players()) >= 2 {
		that.SetStatus(entity.StatusPlaying)
	}
}

func markOf(seat int) string {
	if seat == 0 {
		return MarkX
	}

	return MarkO
}

// checkGameStatus returns the winning mark, Tie for a full board, or an empty string while the game goes on.
func checkGameStatus(board [boardSize]string) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range board {
		if cell == EmptyCell {
			return ""
		}
	}

	return Tie
}
