package club

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the club.
type store struct {
	db         *sql.DB
	mu         sync.RWMutex
	initialMMR int
}

// PlayerInfo represents a player in the store.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	MMR  int    `json:"mmr"`
}

// PlayerStanding is one leaderboard row: a player's current rating together
// with their win/loss record.
type PlayerStanding struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	MMR           int     `json:"mmr"`
	MatchesPlayed int     `json:"matches_played"`
	MatchesWon    int     `json:"matches_won"`
	MatchesLost   int     `json:"matches_lost"`
	WinPercentage float64 `json:"win_percentage"`
}
