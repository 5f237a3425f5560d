package notifier

import (
	"sync"

	"github.com/mauv0809/padel-rank/internal/club"
	"github.com/mauv0809/padel-rank/internal/match"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendResultNotificationCalls []struct {
		Match  *match.Match
		Result *match.CompletionResult
	}
	SendLeaderboardCalls    [][]club.PlayerStanding
	SendPlayerStandingCalls []struct {
		Standing *club.PlayerStanding
		Query    string
	}
	SendPlayerNotFoundCalls []string

	// Spies
	SendResultNotificationFunc       func(m *match.Match, result *match.CompletionResult, players []club.PlayerInfo, dryRun bool) error
	FormatLeaderboardResponseFunc    func(standings []club.PlayerStanding) (any, error)
	FormatPlayerStandingResponseFunc func(standing *club.PlayerStanding, query string) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.SendPlayerStandingCalls = nil
	m.SendPlayerNotFoundCalls = nil
}

func (m *Mock) SendResultNotification(mt *match.Match, result *match.CompletionResult, players []club.PlayerInfo, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct {
		Match  *match.Match
		Result *match.CompletionResult
	}{mt, result})
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(mt, result, players, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(standings []club.PlayerStanding, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, standings)
	return nil
}

func (m *Mock) SendPlayerStanding(standing *club.PlayerStanding, query string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPlayerStandingCalls = append(m.SendPlayerStandingCalls, struct {
		Standing *club.PlayerStanding
		Query    string
	}{standing, query})
	return nil
}

func (m *Mock) SendPlayerNotFound(query string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPlayerNotFoundCalls = append(m.SendPlayerNotFoundCalls, query)
	return nil
}

func (m *Mock) FormatLeaderboardResponse(standings []club.PlayerStanding) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		return m.FormatLeaderboardResponseFunc(standings)
	}
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatPlayerStandingResponse(standing *club.PlayerStanding, query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerStandingResponseFunc != nil {
		return m.FormatPlayerStandingResponseFunc(standing, query)
	}
	return "formatted_player_standing", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerNotFoundResponseFunc != nil {
		return m.FormatPlayerNotFoundResponseFunc(query)
	}
	return "formatted_player_not_found", nil
}
