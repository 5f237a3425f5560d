package club_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mauv0809/padel-rank/internal/club"
	"github.com/mauv0809/padel-rank/internal/database"
	"github.com/mauv0809/padel-rank/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (club.ClubStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := club.New(db, 1000)
	return store, db, dbTeardown
}

func seedFourPlayers(t *testing.T, db *sql.DB, mmrs [4]int) {
	t.Helper()
	ids := []string{"p1", "p2", "p3", "p4"}
	names := []string{"Player One", "Player Two", "Player Three", "Player Four"}
	for i, id := range ids {
		_, err := db.Exec("INSERT INTO players (id, name, mmr) VALUES (?, ?, ?)", id, names[i], mmrs[i])
		require.NoError(t, err)
	}
}

func TestAddAndGetPlayers(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("player1", "Player One", 1200)
	store.AddPlayer("player2", "Player Two", 0) // falls back to initial MMR

	assert.True(t, store.IsKnownPlayer("player1"))
	assert.False(t, store.IsKnownPlayer("player3"))

	allPlayers, err := store.GetAllPlayers()
	require.NoError(t, err)
	require.Len(t, allPlayers, 2)

	playerMap := make(map[string]club.PlayerInfo)
	for _, p := range allPlayers {
		playerMap[p.ID] = p
	}
	assert.Equal(t, 1200, playerMap["player1"].MMR)
	assert.Equal(t, 1000, playerMap["player2"].MMR)
}

func TestUpsertPlayers_DoesNotTouchRatings(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	_, err := db.Exec("INSERT INTO players (id, name, mmr) VALUES ('p1', 'Old Name', 1234)")
	require.NoError(t, err)

	err = store.UpsertPlayers([]club.PlayerInfo{
		{ID: "p1", Name: "New Name"},
		{ID: "p2", Name: "Fresh Player"},
	})
	require.NoError(t, err)

	players, err := store.GetPlayers([]string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, players, 2)

	playerMap := make(map[string]club.PlayerInfo)
	for _, p := range players {
		playerMap[p.ID] = p
	}
	assert.Equal(t, "New Name", playerMap["p1"].Name)
	assert.Equal(t, 1234, playerMap["p1"].MMR, "existing rating must survive a rename")
	assert.Equal(t, 1000, playerMap["p2"].MMR)
}

func TestCreateMatch(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	seedFourPlayers(t, db, [4]int{1000, 1000, 1000, 1000})

	scheduled := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	matchID, err := store.CreateMatch([2]string{"p1", "p2"}, [2]string{"p3", "p4"}, scheduled)
	require.NoError(t, err)
	require.NotEmpty(t, matchID)

	m, err := store.GetMatch(matchID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusPending, m.Status)
	assert.Equal(t, "p1", m.TeamA.Player1ID)
	assert.Equal(t, "p4", m.TeamB.Player2ID)
	assert.Equal(t, scheduled.Unix(), m.ScheduledAt)

	t.Run("unknown player is rejected", func(t *testing.T) {
		_, err := store.CreateMatch([2]string{"p1", "ghost"}, [2]string{"p3", "p4"}, scheduled)
		require.ErrorIs(t, err, match.ErrInvalidRoster)
		assert.Contains(t, err.Error(), "unknown player")
	})
}

func TestGetCurrentRatings(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	seedFourPlayers(t, db, [4]int{1100, 900, 1300, 700})

	ratings, err := store.GetCurrentRatings([4]string{"p1", "p2", "p3", "p4"})
	require.NoError(t, err)
	assert.Equal(t, [4]int{1100, 900, 1300, 700}, ratings)

	// Order follows the input ids, not insertion order.
	ratings, err = store.GetCurrentRatings([4]string{"p4", "p3", "p2", "p1"})
	require.NoError(t, err)
	assert.Equal(t, [4]int{700, 1300, 900, 1100}, ratings)

	_, err = store.GetCurrentRatings([4]string{"p1", "p2", "p3", "ghost"})
	require.Error(t, err)
}

func TestCompleteMatch(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	seedFourPlayers(t, db, [4]int{1000, 1000, 1000, 1000})
	matchID, err := store.CreateMatch([2]string{"p1", "p2"}, [2]string{"p3", "p4"}, time.Now())
	require.NoError(t, err)

	result, err := store.CompleteMatch(matchID, 6, 3, 16, -16)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Team1Score)
	assert.Equal(t, 3, result.Team2Score)
	assert.Equal(t, 16, result.Team1Delta)
	assert.Equal(t, -16, result.Team2Delta)
	assert.NotZero(t, result.CompletedAt)
	assert.Equal(t, 1016, result.NewRatings["p1"])
	assert.Equal(t, 1016, result.NewRatings["p2"])
	assert.Equal(t, 984, result.NewRatings["p3"])
	assert.Equal(t, 984, result.NewRatings["p4"])

	m, err := store.GetMatch(matchID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusCompleted, m.Status)
	assert.Equal(t, 16, m.Team1Delta)
	assert.Equal(t, -16, m.Team2Delta)
	assert.NotZero(t, m.CompletedAt)

	t.Run("win loss records are updated", func(t *testing.T) {
		standing, err := store.GetStandingByName("Player One")
		require.NoError(t, err)
		assert.Equal(t, 1, standing.MatchesPlayed)
		assert.Equal(t, 1, standing.MatchesWon)
		assert.Equal(t, 0, standing.MatchesLost)

		standing, err = store.GetStandingByName("Player Three")
		require.NoError(t, err)
		assert.Equal(t, 1, standing.MatchesLost)
	})

	t.Run("second completion fails and leaves ratings unchanged", func(t *testing.T) {
		_, err := store.CompleteMatch(matchID, 3, 6, -16, 16)
		require.ErrorIs(t, err, match.ErrAlreadyCompleted)

		ratings, err := store.GetCurrentRatings([4]string{"p1", "p2", "p3", "p4"})
		require.NoError(t, err)
		assert.Equal(t, [4]int{1016, 1016, 984, 984}, ratings)
	})
}

func TestCompleteMatch_RatingFloor(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	seedFourPlayers(t, db, [4]int{1000, 1000, 5, 5})
	matchID, err := store.CreateMatch([2]string{"p1", "p2"}, [2]string{"p3", "p4"}, time.Now())
	require.NoError(t, err)

	result, err := store.CompleteMatch(matchID, 6, 0, 16, -16)
	require.NoError(t, err)

	// Ratings never go below zero.
	assert.Equal(t, 0, result.NewRatings["p3"])
	assert.Equal(t, 0, result.NewRatings["p4"])
}

func TestGetLeaderboard(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	seedFourPlayers(t, db, [4]int{1200, 800, 1500, 1000})

	standings, err := store.GetLeaderboard()
	require.NoError(t, err)
	require.Len(t, standings, 4)

	assert.Equal(t, "p3", standings[0].PlayerID, "highest MMR first")
	assert.Equal(t, "p1", standings[1].PlayerID)
	assert.Equal(t, "p4", standings[2].PlayerID)
	assert.Equal(t, "p2", standings[3].PlayerID)
	assert.Equal(t, 0, standings[0].MatchesPlayed, "players without stats rows default to zero")
}

func TestGetStandingByName_FuzzyMatch(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	seedFourPlayers(t, db, [4]int{1000, 1000, 1000, 1000})

	standing, err := store.GetStandingByName("three")
	require.NoError(t, err)
	assert.Equal(t, "p3", standing.PlayerID)

	_, err = store.GetStandingByName("nobody")
	require.Error(t, err)
}

func TestClearMatch(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	seedFourPlayers(t, db, [4]int{1000, 1000, 1000, 1000})
	matchID, err := store.CreateMatch([2]string{"p1", "p2"}, [2]string{"p3", "p4"}, time.Now())
	require.NoError(t, err)

	store.ClearMatch(matchID)

	_, err = store.GetMatch(matchID)
	require.Error(t, err)

	matches, err := store.GetAllMatches()
	require.NoError(t, err)
	assert.Empty(t, matches)
}
