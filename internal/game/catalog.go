package game

import (
	"slices"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

type CatalogEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Modes       []string `json:"modes"`
	ComingSoon  bool     `json:"comingSoon,omitempty"`
}

var catalog = []CatalogEntry{
	{
		ID:          entity.TypeTicTacToe,
		Name:        "Tic-Tac-Toe",
		Description: "Classic 3x3 grid game",
		Modes:       []string{entity.ModeSinglePlayer, entity.ModeMultiplayer},
	},
	{
		ID:          entity.TypeReactionTime,
		Name:        "Reaction Time",
		Description: "Test your reflexes!",
		Modes:       []string{entity.ModeSinglePlayer, entity.ModeMultiplayer},
	},
	{
		ID:          entity.TypeQuiz,
		Name:        "Quiz",
		Description: "Answer trivia questions",
		Modes:       []string{entity.ModeSinglePlayer, entity.ModeMultiplayer},
		ComingSoon:  true,
	},
	{
		ID:          entity.TypeMemory,
		Name:        "Memory",
		Description: "Match the cards",
		Modes:       []string{entity.ModeSinglePlayer},
		ComingSoon:  true,
	},
}

// ListAvailable returns the catalog in display order.
func ListAvailable() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(catalog))
	for _, entry := range catalog {
		entry.Modes = slices.Clone(entry.Modes)
		entries = append(entries, entry)
	}

	return entries
}

func Lookup(gameType string) (CatalogEntry, bool) {
	for _, entry := range catalog {
		if entry.ID == gameType {
			entry.Modes = slices.Clone(entry.Modes)
			return entry, true
		}
	}

	return CatalogEntry{}, false
}

func IsValidType(gameType string) bool {
	_, ok := Lookup(gameType)
	return ok
}
