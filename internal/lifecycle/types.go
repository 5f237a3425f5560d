package lifecycle

import (
	"sync"

	"github.com/mauv0809/padel-rank/internal/metrics"
	"github.com/mauv0809/padel-rank/internal/rating"
)

// State defines where a match flow currently sits. Transitions only move
// forward; a failed backend call leaves the state where it was so the step
// can be retried.
type State string

const (
	// StateAwaitingPlayers is the implicit state before a match record
	// exists; no flow is tracked yet.
	StateAwaitingPlayers State = "AWAITING_PLAYERS"
	// StateAwaitingRatingPreview means the pending match exists and the
	// rating preview has not been computed.
	StateAwaitingRatingPreview State = "AWAITING_RATING_PREVIEW"
	// StateAwaitingScoreConfirmation means the preview snapshot is cached
	// and the flow is waiting for final scores.
	StateAwaitingScoreConfirmation State = "AWAITING_SCORE_CONFIRMATION"
	// StateCompleted is terminal.
	StateCompleted State = "COMPLETED"
)

// flow tracks one match through the lifecycle. Each flow carries its own
// mutex: steps for the same match are strictly sequential while independent
// matches proceed concurrently.
type flow struct {
	mu      sync.Mutex
	state   State
	teamA   [2]string
	teamB   [2]string
	preview *rating.Preview
}

// Manager sequences match creation, rating preview and result confirmation.
// It holds no rating logic itself; the arithmetic lives in the rating
// package and persistence in the injected Backend.
type Manager struct {
	backend Backend
	metrics metrics.Metrics
	kFactor float64

	mu    sync.RWMutex
	flows map[string]*flow
}
