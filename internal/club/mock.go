package club

import (
	"sync"
	"time"

	"github.com/mauv0809/padel-rank/internal/match"
)

// MockStore is a mock implementation of ClubStore for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateMatchFunc       func(teamA, teamB [2]string, scheduledAt time.Time) (string, error)
	GetCurrentRatingsFunc func(playerIDs [4]string) ([4]int, error)
	CompleteMatchFunc     func(matchID string, team1Score, team2Score, team1Delta, team2Delta int) (*match.CompletionResult, error)
	GetAllPlayersFunc     func() ([]PlayerInfo, error)
	GetPlayersFunc        func(playerIDs []string) ([]PlayerInfo, error)
	GetLeaderboardFunc    func() ([]PlayerStanding, error)
	GetStandingByNameFunc func(playerName string) (*PlayerStanding, error)
	GetMatchFunc          func(matchID string) (*match.Match, error)
	GetAllMatchesFunc     func() ([]*match.Match, error)

	// Call records
	CreateMatchCalls       []CreateMatchCall
	GetCurrentRatingsCalls [][4]string
	CompleteMatchCalls     []CompleteMatchCall
	AddPlayerCalls         []PlayerInfo
	UpsertPlayersCalls     [][]PlayerInfo
	ClearCalls             int
	ClearMatchCalls        []string

	KnownPlayers map[string]bool
}

// CreateMatchCall holds the arguments for a call to CreateMatch.
type CreateMatchCall struct {
	TeamA       [2]string
	TeamB       [2]string
	ScheduledAt time.Time
}

// CompleteMatchCall holds the arguments for a call to CompleteMatch.
type CompleteMatchCall struct {
	MatchID    string
	Team1Score int
	Team2Score int
	Team1Delta int
	Team2Delta int
}

// NewMock creates a new mock ClubStore.
func NewMock() *MockStore {
	return &MockStore{
		KnownPlayers: make(map[string]bool),
	}
}

func (m *MockStore) CreateMatch(teamA, teamB [2]string, scheduledAt time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateMatchCalls = append(m.CreateMatchCalls, CreateMatchCall{TeamA: teamA, TeamB: teamB, ScheduledAt: scheduledAt})
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(teamA, teamB, scheduledAt)
	}
	return "mock-match-id", nil
}

func (m *MockStore) GetCurrentRatings(playerIDs [4]string) ([4]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCurrentRatingsCalls = append(m.GetCurrentRatingsCalls, playerIDs)
	if m.GetCurrentRatingsFunc != nil {
		return m.GetCurrentRatingsFunc(playerIDs)
	}
	return [4]int{1000, 1000, 1000, 1000}, nil
}

func (m *MockStore) CompleteMatch(matchID string, team1Score, team2Score, team1Delta, team2Delta int) (*match.CompletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteMatchCalls = append(m.CompleteMatchCalls, CompleteMatchCall{
		MatchID:    matchID,
		Team1Score: team1Score,
		Team2Score: team2Score,
		Team1Delta: team1Delta,
		Team2Delta: team2Delta,
	})
	if m.CompleteMatchFunc != nil {
		return m.CompleteMatchFunc(matchID, team1Score, team2Score, team1Delta, team2Delta)
	}
	return &match.CompletionResult{MatchID: matchID}, nil
}

func (m *MockStore) AddPlayer(playerID, name string, mmr int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, PlayerInfo{ID: playerID, Name: name, MMR: mmr})
	m.KnownPlayers[playerID] = true
}

func (m *MockStore) UpsertPlayers(players []PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	for _, p := range players {
		m.KnownPlayers[p.ID] = true
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.KnownPlayers[playerID]
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return []PlayerInfo{}, nil
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(playerIDs)
	}
	return []PlayerInfo{}, nil
}

func (m *MockStore) GetLeaderboard() ([]PlayerStanding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLeaderboardFunc != nil {
		return m.GetLeaderboardFunc()
	}
	return []PlayerStanding{}, nil
}

func (m *MockStore) GetStandingByName(playerName string) (*PlayerStanding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetStandingByNameFunc != nil {
		return m.GetStandingByNameFunc(playerName)
	}
	return &PlayerStanding{PlayerName: playerName}, nil
}

func (m *MockStore) GetMatch(matchID string) (*match.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return &match.Match{ID: matchID}, nil
}

func (m *MockStore) GetAllMatches() ([]*match.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return []*match.Match{}, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}

func (m *MockStore) ClearMatch(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearMatchCalls = append(m.ClearMatchCalls, matchID)
}
