package match

// Status defines the lifecycle status of a match record.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// Side holds the two players that make up one team of a doubles match.
type Side struct {
	Player1ID string `json:"player1_id"`
	Player2ID string `json:"player2_id"`
}

// PlayerIDs returns the side's players in order.
func (s Side) PlayerIDs() [2]string {
	return [2]string{s.Player1ID, s.Player2ID}
}

// Match represents a single doubles contest. Scores and deltas are only
// meaningful once Status is COMPLETED. The deltas are the signed rating
// adjustments that were applied to each team, recorded for auditability.
type Match struct {
	ID          string `json:"id"`
	TeamA       Side   `json:"team_a"`
	TeamB       Side   `json:"team_b"`
	ScheduledAt int64  `json:"scheduled_at"`
	CreatedAt   int64  `json:"created_at"`
	Status      Status `json:"status"`
	Team1Score  int    `json:"team1_score"`
	Team2Score  int    `json:"team2_score"`
	Team1Delta  int    `json:"team1_delta"`
	Team2Delta  int    `json:"team2_delta"`
	CompletedAt int64  `json:"completed_at"`
}

// PlayerIDs returns all four player ids, team A first.
func (m *Match) PlayerIDs() [4]string {
	return [4]string{m.TeamA.Player1ID, m.TeamA.Player2ID, m.TeamB.Player1ID, m.TeamB.Player2ID}
}

// CompletionResult is returned once a match has been completed and the
// rating adjustments have been applied.
type CompletionResult struct {
	MatchID     string         `json:"match_id"`
	Team1Score  int            `json:"team1_score"`
	Team2Score  int            `json:"team2_score"`
	Team1Delta  int            `json:"team1_delta"`
	Team2Delta  int            `json:"team2_delta"`
	NewRatings  map[string]int `json:"new_ratings"`
	CompletedAt int64          `json:"completed_at"`
}

// ResultEvent is the payload published after a match completes. Consumers
// use it to notify the club channel and refresh leaderboards.
type ResultEvent struct {
	Match  Match            `json:"match"`
	Result CompletionResult `json:"result"`
}
