package tictactoe

import (
	"errors"
	"fmt"
	"math"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// ParseDifficulty falls back to medium for anything it does not know.
func ParseDifficulty(difficulty string) string {
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return difficulty
	default:
		return DifficultyMedium
	}
}

// ComputerMove plays the computer seat. It goes through the same checks as a human move.
func (that *Game) ComputerMove() (*entity.Outcome, error) {
	if that.IsGameOver() {
		return nil, apperror.ErrGameFinished
	}

	if that.CurrentPlayer() != entity.ComputerID {
		return nil, apperror.ErrNotYourTurn
	}

	cell, err := that.chooseCell()
	if err != nil {
		return nil, fmt.Errorf("computer failed to choose a cell: %w", err)
	}

	return that.ApplyMove(entity.ComputerID, cell)
}

func (that *Game) chooseCell() (int, error) {
	available := availableCells(that.board)
	if len(available) == 0 {
		return 0, ErrNoAvailableMoves
	}

	me, opponent := markOf(that.turn), markOf(1-that.turn)

	switch that.difficulty {
	case DifficultyEasy:
		return available[that.rng.IntN(len(available))], nil
	case DifficultyHard:
		return BestMove(that.board, me, opponent), nil
	default:
		if that.rng.IntN(2) == 0 {
			return available[that.rng.IntN(len(available))], nil
		}

		return BestMove(that.board, me, opponent), nil
	}
}

func availableCells(board [boardSize]string) []int {
	cells := make([]int, 0, boardSize)
	for i, cell := range board {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// BestMove returns the lowest indexed cell with the best minimax score for me. Faster wins score higher.
// The board must have at least one empty cell.
func BestMove(board [boardSize]string, me, opponent string) int {
	bestScore := math.MinInt
	bestCell := -1

	for _, cell := range availableCells(board) {
		board[cell] = me
		score := minimax(board, 0, false, me, opponent)
		board[cell] = EmptyCell

		if score > bestScore {
			bestScore = score
			bestCell = cell
		}
	}

	return bestCell
}

func minimax(board [boardSize]string, depth int, maximizing bool, me, opponent string) int {
	switch checkGameStatus(board) {
	case me:
		return 10 - depth
	case opponent:
		return depth - 10
	case Tie:
		return 0
	}

	if maximizing {
		best := math.MinInt
		for _, cell := range availableCells(board) {
			board[cell] = me
			best = max(best, minimax(board, depth+1, false, me, opponent))
			board[cell] = EmptyCell
		}

		return best
	}

	best := math.MaxInt
	for _, cell := range availableCells(board) {
		board[cell] = opponent
		best = min(best, minimax(board, depth+1, true, me, opponent))
		board[cell] = EmptyCell
	}

	return best
}
