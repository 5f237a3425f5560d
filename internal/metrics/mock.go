package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	matchesCreated      int
	previewsComputed    int
	matchesCompleted    int
	completionConflicts int
	completionDurations []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		completionDurations: make([]float64, 0),
	}
}

func (m *Mock) IncMatchesCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCreated++
}

func (m *Mock) IncPreviewsComputed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previewsComputed++
}

func (m *Mock) IncMatchesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCompleted++
}

func (m *Mock) IncCompletionConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionConflicts++
}

func (m *Mock) ObserveCompletionDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionDurations = append(m.completionDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesCreatedCount returns the number of times IncMatchesCreated was called.
func (m *Mock) MatchesCreatedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCreated
}

// PreviewsComputedCount returns the number of times IncPreviewsComputed was called.
func (m *Mock) PreviewsComputedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previewsComputed
}

// MatchesCompletedCount returns the number of times IncMatchesCompleted was called.
func (m *Mock) MatchesCompletedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCompleted
}

// CompletionConflictsCount returns the number of times IncCompletionConflicts was called.
func (m *Mock) CompletionConflictsCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completionConflicts
}

// SlackNotifSentCount returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailedCount returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
