package club

import (
	"time"

	"github.com/mauv0809/padel-rank/internal/match"
)

// ClubStore defines the interface for interacting with the club's data. It
// includes the three calls the match lifecycle delegates to (CreateMatch,
// GetCurrentRatings, CompleteMatch) plus the player and leaderboard surfaces.
type ClubStore interface {
	CreateMatch(teamA, teamB [2]string, scheduledAt time.Time) (string, error)
	GetCurrentRatings(playerIDs [4]string) ([4]int, error)
	CompleteMatch(matchID string, team1Score, team2Score, team1Delta, team2Delta int) (*match.CompletionResult, error)

	AddPlayer(playerID, name string, mmr int)
	UpsertPlayers(players []PlayerInfo) error
	IsKnownPlayer(playerID string) bool
	GetAllPlayers() ([]PlayerInfo, error)
	GetPlayers(playerIDs []string) ([]PlayerInfo, error)

	GetLeaderboard() ([]PlayerStanding, error)
	GetStandingByName(playerName string) (*PlayerStanding, error)

	GetMatch(matchID string) (*match.Match, error)
	GetAllMatches() ([]*match.Match, error)

	Clear()
	ClearMatch(matchID string)
}
