package lifecycle

import (
	"time"

	"github.com/mauv0809/padel-rank/internal/match"
)

// Backend defines the three remote calls the lifecycle delegates to. The
// production implementation is the club store; tests substitute a fake. The
// backend must apply a completion atomically: match row and all four player
// ratings together, and reject a second completion of the same match.
type Backend interface {
	CreateMatch(teamA, teamB [2]string, scheduledAt time.Time) (string, error)
	GetCurrentRatings(playerIDs [4]string) ([4]int, error)
	CompleteMatch(matchID string, team1Score, team2Score, team1Delta, team2Delta int) (*match.CompletionResult, error)
}
