// Package lifecycle coordinates the three steps of recording a match: create
// a pending record, compute a rating preview from the players' current MMRs,
// and confirm the final scores with the previewed deltas applied verbatim.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rank/internal/match"
	"github.com/mauv0809/padel-rank/internal/metrics"
	"github.com/mauv0809/padel-rank/internal/rating"
)

// New creates a lifecycle Manager around the given backend.
func New(backend Backend, metrics metrics.Metrics, kFactor float64) *Manager {
	if kFactor <= 0 {
		kFactor = rating.DefaultKFactor
	}
	return &Manager{
		backend: backend,
		metrics: metrics,
		kFactor: kFactor,
		flows:   make(map[string]*flow),
	}
}

// CreatePendingMatch validates the roster and asks the backend to create a
// PENDING match record. The roster check runs before any external call so an
// invalid roster never produces an unusable match row.
func (m *Manager) CreatePendingMatch(teamA, teamB [2]string, scheduledAt time.Time) (string, error) {
	ids := [4]string{teamA[0], teamA[1], teamB[0], teamB[1]}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			return "", fmt.Errorf("%w: got %v", match.ErrInvalidRoster, ids)
		}
		seen[id] = true
	}

	matchID, err := m.backend.CreateMatch(teamA, teamB, scheduledAt)
	if err != nil {
		log.Error("Failed to create pending match", "error", err, "teamA", teamA, "teamB", teamB)
		if errors.Is(err, match.ErrInvalidRoster) {
			return "", err
		}
		return "", fmt.Errorf("%w: create match: %v", match.ErrTransient, err)
	}

	m.mu.Lock()
	m.flows[matchID] = &flow{
		state: StateAwaitingRatingPreview,
		teamA: teamA,
		teamB: teamB,
	}
	m.mu.Unlock()

	m.metrics.IncMatchesCreated()
	log.Info("Pending match created", "matchID", matchID)
	return matchID, nil
}

// FetchRatingPreview fetches the four players' current ratings, reduces them
// to team averages and computes the matchup preview. The preview is cached
// against the match: the deltas shown here are exactly the deltas applied at
// completion, even if ratings move in between. Re-fetching returns the
// cached snapshot.
func (m *Manager) FetchRatingPreview(matchID string) (*rating.Preview, error) {
	f, err := m.flow(matchID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateAwaitingScoreConfirmation:
		return f.preview, nil
	case StateCompleted:
		return nil, fmt.Errorf("%w: match %s is already completed", match.ErrInvalidState, matchID)
	}

	ratings, err := m.backend.GetCurrentRatings([4]string{f.teamA[0], f.teamA[1], f.teamB[0], f.teamB[1]})
	if err != nil {
		log.Error("Failed to fetch current ratings", "error", err, "matchID", matchID)
		return nil, fmt.Errorf("%w: fetch ratings: %v", match.ErrTransient, err)
	}

	team1Avg := rating.TeamAverage(float64(ratings[0]), float64(ratings[1]))
	team2Avg := rating.TeamAverage(float64(ratings[2]), float64(ratings[3]))
	preview := rating.ComputePreview(team1Avg, team2Avg, m.kFactor)

	f.preview = &preview
	f.state = StateAwaitingScoreConfirmation

	m.metrics.IncPreviewsComputed()
	log.Info("Computed rating preview", "matchID", matchID, "team1Avg", team1Avg, "team2Avg", team2Avg,
		"team1ExpectedWinRate", preview.Team1ExpectedWinRate)
	return &preview, nil
}

// CompleteMatch validates the final scores, derives the applied deltas from
// the cached preview snapshot and delegates the atomic completion to the
// backend. The deltas are never recomputed from fresh ratings: what the
// players saw in the preview is what gets applied.
func (m *Manager) CompleteMatch(matchID string, team1Score, team2Score int) (*match.CompletionResult, error) {
	f, err := m.flow(matchID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateCompleted:
		m.metrics.IncCompletionConflicts()
		return nil, fmt.Errorf("%w: %s", match.ErrAlreadyCompleted, matchID)
	case StateAwaitingRatingPreview:
		return nil, fmt.Errorf("%w: no rating preview exists for match %s", match.ErrInvalidState, matchID)
	}

	if team1Score < 0 || team2Score < 0 || team1Score == team2Score {
		return nil, fmt.Errorf("%w: got %d-%d", match.ErrInvalidScore, team1Score, team2Score)
	}

	started := time.Now()
	team1Delta, team2Delta := f.preview.AppliedDeltas(team1Score > team2Score)

	result, err := m.backend.CompleteMatch(matchID, team1Score, team2Score, team1Delta, team2Delta)
	if err != nil {
		if errors.Is(err, match.ErrAlreadyCompleted) {
			// The backend has the authoritative record; align our state so
			// further attempts short-circuit locally.
			f.state = StateCompleted
			m.metrics.IncCompletionConflicts()
			return nil, err
		}
		log.Error("Failed to complete match", "error", err, "matchID", matchID)
		return nil, fmt.Errorf("%w: complete match: %v", match.ErrTransient, err)
	}

	f.state = StateCompleted
	m.metrics.IncMatchesCompleted()
	m.metrics.ObserveCompletionDuration(time.Since(started).Seconds())
	log.Info("Match completed", "matchID", matchID, "team1Score", team1Score, "team2Score", team2Score,
		"team1Delta", team1Delta, "team2Delta", team2Delta)
	return result, nil
}

// State reports where a match flow currently sits. Unknown matches report
// StateAwaitingPlayers since no record exists yet.
func (m *Manager) State(matchID string) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.flows[matchID]; ok {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.state
	}
	return StateAwaitingPlayers
}

func (m *Manager) flow(matchID string) (*flow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.flows[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: no pending match %s", match.ErrInvalidState, matchID)
	}
	return f, nil
}
