package notifier

import (
	"github.com/mauv0809/padel-rank/internal/club"
	"github.com/mauv0809/padel-rank/internal/match"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For completed matches
	SendResultNotification(m *match.Match, result *match.CompletionResult, players []club.PlayerInfo, dryRun bool) error
	// For slash commands
	SendLeaderboard(standings []club.PlayerStanding, dryRun bool) error
	SendPlayerStanding(standing *club.PlayerStanding, query string, dryRun bool) error
	SendPlayerNotFound(query string, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(standings []club.PlayerStanding) (any, error)
	FormatPlayerStandingResponse(standing *club.PlayerStanding, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
