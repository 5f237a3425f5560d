package club

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/padel-rank/internal/match"
)

// New creates a new ClubStore. Players registered through AddPlayer start at
// initialMMR.
func New(db *sql.DB, initialMMR int) ClubStore {
	return &store{
		db:         db,
		initialMMR: initialMMR,
	}
}

// CreateMatch inserts a new PENDING match for the given rosters. All four
// players must already be registered.
func (s *store) CreateMatch(teamA, teamB [2]string, scheduledAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playerIDs := []string{teamA[0], teamA[1], teamB[0], teamB[1]}
	for _, id := range playerIDs {
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", id).Scan(&exists); err != nil {
			return "", fmt.Errorf("failed to check player %s: %w", id, err)
		}
		if !exists {
			return "", fmt.Errorf("%w: unknown player %s", match.ErrInvalidRoster, id)
		}
	}

	matchID := uuid.New().String()
	_, err := s.db.Exec(`
		INSERT INTO matches (id, team_a_player1, team_a_player2, team_b_player1, team_b_player2, scheduled_at, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, matchID, teamA[0], teamA[1], teamB[0], teamB[1], scheduledAt.Unix(), time.Now().Unix(), match.StatusPending)
	if err != nil {
		return "", fmt.Errorf("failed to create match: %w", err)
	}

	log.Info("Created pending match", "matchID", matchID, "teamA", teamA, "teamB", teamB)
	return matchID, nil
}

// GetCurrentRatings returns the four players' current MMRs, ordered to match
// the input ids.
func (s *store) GetCurrentRatings(playerIDs [4]string) ([4]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ratings [4]int
	for i, id := range playerIDs {
		err := s.db.QueryRow("SELECT mmr FROM players WHERE id = ?", id).Scan(&ratings[i])
		if err != nil {
			if err == sql.ErrNoRows {
				return ratings, fmt.Errorf("unknown player: %s", id)
			}
			return ratings, fmt.Errorf("failed to read rating for %s: %w", id, err)
		}
	}
	return ratings, nil
}

// CompleteMatch marks a PENDING match COMPLETED and applies the rating
// deltas to both teams in a single transaction. A second completion attempt
// fails with match.ErrAlreadyCompleted and leaves all ratings untouched.
func (s *store) CompleteMatch(matchID string, team1Score, team2Score, team1Delta, team2Delta int) (*match.CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin completion transaction: %w", err)
	}
	defer tx.Rollback()

	var m match.Match
	var status string
	err = tx.QueryRow(`
		SELECT id, team_a_player1, team_a_player2, team_b_player1, team_b_player2, status
		FROM matches WHERE id = ?
	`, matchID).Scan(&m.ID, &m.TeamA.Player1ID, &m.TeamA.Player2ID, &m.TeamB.Player1ID, &m.TeamB.Player2ID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match not found: %s", matchID)
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	if match.Status(status) == match.StatusCompleted {
		return nil, fmt.Errorf("%w: %s", match.ErrAlreadyCompleted, matchID)
	}

	completedAt := time.Now().Unix()
	_, err = tx.Exec(`
		UPDATE matches
		SET status = ?, team1_score = ?, team2_score = ?, team1_delta = ?, team2_delta = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`, match.StatusCompleted, team1Score, team2Score, team1Delta, team2Delta, completedAt, matchID, match.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to complete match %s: %w", matchID, err)
	}

	// Ratings are floored at zero; deltas on the losing side are negative.
	teamDeltas := map[string]int{
		m.TeamA.Player1ID: team1Delta,
		m.TeamA.Player2ID: team1Delta,
		m.TeamB.Player1ID: team2Delta,
		m.TeamB.Player2ID: team2Delta,
	}
	teamWon := map[string]bool{
		m.TeamA.Player1ID: team1Score > team2Score,
		m.TeamA.Player2ID: team1Score > team2Score,
		m.TeamB.Player1ID: team2Score > team1Score,
		m.TeamB.Player2ID: team2Score > team1Score,
	}
	newRatings := make(map[string]int, len(teamDeltas))
	for playerID, delta := range teamDeltas {
		_, err = tx.Exec("UPDATE players SET mmr = MAX(0, mmr + ?) WHERE id = ?", delta, playerID)
		if err != nil {
			return nil, fmt.Errorf("failed to adjust rating for %s: %w", playerID, err)
		}

		won, lost := 0, 0
		if teamWon[playerID] {
			won = 1
		} else {
			lost = 1
		}
		_, err = tx.Exec(`
			INSERT INTO player_stats (player_id, matches_played, matches_won, matches_lost)
			VALUES (?, 1, ?, ?)
			ON CONFLICT(player_id) DO UPDATE SET
				matches_played = matches_played + 1,
				matches_won = matches_won + excluded.matches_won,
				matches_lost = matches_lost + excluded.matches_lost;
		`, playerID, won, lost)
		if err != nil {
			return nil, fmt.Errorf("failed to update stats for %s: %w", playerID, err)
		}

		var newRating int
		if err = tx.QueryRow("SELECT mmr FROM players WHERE id = ?", playerID).Scan(&newRating); err != nil {
			return nil, fmt.Errorf("failed to read new rating for %s: %w", playerID, err)
		}
		newRatings[playerID] = newRating
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit completion for %s: %w", matchID, err)
	}

	log.Info("Completed match", "matchID", matchID, "team1Score", team1Score, "team2Score", team2Score, "team1Delta", team1Delta, "team2Delta", team2Delta)
	return &match.CompletionResult{
		MatchID:     matchID,
		Team1Score:  team1Score,
		Team2Score:  team2Score,
		Team1Delta:  team1Delta,
		Team2Delta:  team2Delta,
		NewRatings:  newRatings,
		CompletedAt: completedAt,
	}, nil
}

func (s *store) AddPlayer(playerID, name string, mmr int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mmr <= 0 {
		mmr = s.initialMMR
	}

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return
	}

	if !exists {
		_, err := s.db.Exec("INSERT INTO players (id, name, mmr) VALUES (?, ?, ?)", playerID, name, mmr)
		if err != nil {
			log.Error("Failed to add player", "error", err, "playerID", playerID)
		} else {
			log.Info("Added new player to the store", "playerID", playerID, "name", name, "mmr", mmr)
		}
	} else {
		_, err := s.db.Exec("UPDATE players SET name = ? WHERE id = ?", name, playerID)
		if err != nil {
			log.Error("Failed to update player", "error", err, "playerID", playerID)
		} else {
			log.Info("Updated existing player in the store", "playerID", playerID, "name", name)
		}
	}
}

// UpsertPlayers inserts or renames players in bulk. Ratings of existing
// players are never touched here; only CompleteMatch mutates MMR.
func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, mmr) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare player upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		mmr := p.MMR
		if mmr <= 0 {
			mmr = s.initialMMR
		}
		if _, err := stmt.Exec(p.ID, p.Name, mmr); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, mmr FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (s *store) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(playerIDs) == 0 {
		return []PlayerInfo{}, nil
	}

	placeholders := strings.Repeat("?,", len(playerIDs)-1) + "?"
	query := fmt.Sprintf("SELECT id, name, mmr FROM players WHERE id IN (%s)", placeholders)

	rows, err := s.db.Query(query, toAnySlice(playerIDs)...)
	if err != nil {
		log.Error("Failed to query players", "error", err, "playerIDs", playerIDs)
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// GetLeaderboard returns all players ordered by MMR, with win/loss records
// joined in.
func (s *store) GetLeaderboard() ([]PlayerStanding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT
			p.id,
			p.name,
			p.mmr,
			COALESCE(ps.matches_played, 0),
			COALESCE(ps.matches_won, 0),
			COALESCE(ps.matches_lost, 0)
		FROM players p
		LEFT JOIN player_stats ps ON p.id = ps.player_id
		ORDER BY p.mmr DESC, ps.matches_won DESC, p.name ASC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []PlayerStanding
	for rows.Next() {
		standing, err := scanStanding(rows)
		if err != nil {
			return nil, err
		}
		standings = append(standings, *standing)
	}
	return standings, nil
}

// GetStandingByName retrieves the leaderboard row for a single player by
// name. It performs a case-insensitive, fuzzy search (e.g., "morten" will
// match "Morten Voss").
func (s *store) GetStandingByName(playerName string) (*PlayerStanding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT
			p.id,
			p.name,
			p.mmr,
			COALESCE(ps.matches_played, 0),
			COALESCE(ps.matches_won, 0),
			COALESCE(ps.matches_lost, 0)
		FROM players p
		LEFT JOIN player_stats ps ON p.id = ps.player_id
		WHERE p.name LIKE ? COLLATE NOCASE
		LIMIT 1
	`
	pattern := "%" + playerName + "%"

	standing, err := scanStanding(s.db.QueryRow(query, pattern))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("No standing found for player matching pattern", "pattern", pattern)
			return nil, fmt.Errorf("player matching '%s' not found", playerName)
		}
		log.Error("Failed to query player standing by name", "error", err, "pattern", pattern)
		return nil, fmt.Errorf("database error: %w", err)
	}
	return standing, nil
}

func (s *store) GetMatch(matchID string) (*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, team_a_player1, team_a_player2, team_b_player1, team_b_player2, scheduled_at, created_at, status, team1_score, team2_score, team1_delta, team2_delta, completed_at
		FROM matches WHERE id = ?
	`, matchID)

	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match not found: %s", matchID)
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	return m, nil
}

// GetAllMatches retrieves all matches from the database, newest first.
func (s *store) GetAllMatches() ([]*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, team_a_player1, team_a_player2, team_b_player1, team_b_player2, scheduled_at, created_at, status, team1_score, team2_score, team1_delta, team2_delta, completed_at
		FROM matches ORDER BY scheduled_at DESC
	`)
	if err != nil {
		log.Error("Failed to query all matches", "error", err)
		return nil, err
	}
	defer rows.Close()

	var matches []*match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}
	defer tx.Rollback()

	for _, table := range []string{"matches", "player_stats", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func (s *store) ClearMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID)
	if err != nil {
		log.Error("Failed to clear match", "error", err, "matchID", matchID)
	}
}

// scanMatch is a helper function to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*match.Match, error) {
	var m match.Match
	var status string
	var team1Score, team2Score, team1Delta, team2Delta, completedAt sql.NullInt64

	err := scanner.Scan(
		&m.ID, &m.TeamA.Player1ID, &m.TeamA.Player2ID, &m.TeamB.Player1ID, &m.TeamB.Player2ID,
		&m.ScheduledAt, &m.CreatedAt, &status,
		&team1Score, &team2Score, &team1Delta, &team2Delta, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Status = match.Status(status)
	m.Team1Score = int(team1Score.Int64)
	m.Team2Score = int(team2Score.Int64)
	m.Team1Delta = int(team1Delta.Int64)
	m.Team2Delta = int(team2Delta.Int64)
	m.CompletedAt = completedAt.Int64

	return &m, nil
}

func scanStanding(scanner interface{ Scan(...any) error }) (*PlayerStanding, error) {
	var standing PlayerStanding
	err := scanner.Scan(
		&standing.PlayerID,
		&standing.PlayerName,
		&standing.MMR,
		&standing.MatchesPlayed,
		&standing.MatchesWon,
		&standing.MatchesLost,
	)
	if err != nil {
		return nil, err
	}
	if standing.MatchesPlayed > 0 {
		standing.WinPercentage = (float64(standing.MatchesWon) / float64(standing.MatchesPlayed)) * 100
	}
	return &standing, nil
}

func scanPlayers(rows *sql.Rows) ([]PlayerInfo, error) {
	players := []PlayerInfo{}
	for rows.Next() {
		var p PlayerInfo
		var name sql.NullString
		if err := rows.Scan(&p.ID, &name, &p.MMR); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Name = name.String // handle NULL name from db
		players = append(players, p)
	}
	return players, nil
}

func toAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
