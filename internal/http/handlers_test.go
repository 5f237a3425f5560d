package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mauv0809/padel-rank/internal/club"
	"github.com/mauv0809/padel-rank/internal/config"
	"github.com/mauv0809/padel-rank/internal/database"
	"github.com/mauv0809/padel-rank/internal/lifecycle"
	"github.com/mauv0809/padel-rank/internal/match"
	"github.com/mauv0809/padel-rank/internal/metrics"
	"github.com/mauv0809/padel-rank/internal/notifier"
	"github.com/mauv0809/padel-rank/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, notif notifier.Notifier) (*Server, *pubsub.MockPubSubClient, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	clubStore := club.New(db, 1000)
	cfg := config.Config{}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock("TEST")
	lc := lifecycle.New(clubStore, metricsSvc, 32)
	server := NewServer(clubStore, lc, metricsSvc, metricsHandler, cfg, notif, ps)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return server, ps, teardown
}

func seedRoster(t *testing.T, store club.ClubStore) {
	t.Helper()
	store.AddPlayer("p1", "Player One", 1000)
	store.AddPlayer("p2", "Player Two", 1000)
	store.AddPlayer("p3", "Player Three", 1000)
	store.AddPlayer("p4", "Player Four", 1000)
}

func postJSON(t *testing.T, server *Server, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func createPendingMatch(t *testing.T, server *Server) string {
	t.Helper()
	rr := postJSON(t, server, "/matches/create", map[string]any{
		"team_a": []string{"p1", "p2"},
		"team_b": []string{"p3", "p4"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		MatchID string `json:"match_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.MatchID)
	return resp.MatchID
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestListMembersHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	server.Store.AddPlayer("player1", "Player One", 1000)
	server.Store.AddPlayer("player2", "Player Two", 1000)

	req, err := http.NewRequest("GET", "/members", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Player One")
	assert.Contains(t, rr.Body.String(), "player2")
}

func TestCreateMatchHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedRoster(t, server.Store)

	t.Run("valid roster", func(t *testing.T) {
		matchID := createPendingMatch(t, server)
		assert.Equal(t, lifecycle.StateAwaitingRatingPreview, server.Lifecycle.State(matchID))
	})

	t.Run("duplicate player", func(t *testing.T) {
		rr := postJSON(t, server, "/matches/create", map[string]any{
			"team_a": []string{"p1", "p2"},
			"team_b": []string{"p3", "p1"},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/matches/create", strings.NewReader("{not json"))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/matches/create", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestRatingPreviewHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedRoster(t, server.Store)

	t.Run("returns the expected win rates", func(t *testing.T) {
		matchID := createPendingMatch(t, server)

		req, err := http.NewRequest("GET", "/matches/preview?matchID="+url.QueryEscape(matchID), nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var preview struct {
			Team1ExpectedWinRate float64 `json:"team1_expected_win_rate"`
			Team2ExpectedWinRate float64 `json:"team2_expected_win_rate"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &preview))
		assert.InDelta(t, 0.5, preview.Team1ExpectedWinRate, 1e-9)
		assert.InDelta(t, 0.5, preview.Team2ExpectedWinRate, 1e-9)
	})

	t.Run("missing matchID", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/matches/preview", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown matchID conflicts", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/matches/preview?matchID=nope", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestCompleteMatchHandler(t *testing.T) {
	previewMatch := func(t *testing.T, server *Server, matchID string) {
		t.Helper()
		req, err := http.NewRequest("GET", "/matches/preview?matchID="+url.QueryEscape(matchID), nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	t.Run("applies deltas and publishes a result event", func(t *testing.T) {
		server, ps, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()
		seedRoster(t, server.Store)

		matchID := createPendingMatch(t, server)
		previewMatch(t, server, matchID)

		rr := postJSON(t, server, "/matches/complete", map[string]any{
			"match_id":    matchID,
			"team1_score": 6,
			"team2_score": 4,
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var result match.CompletionResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, 16, result.Team1Delta)
		assert.Equal(t, -16, result.Team2Delta)
		assert.Equal(t, 1016, result.NewRatings["p1"])
		assert.Equal(t, 984, result.NewRatings["p3"])

		require.Len(t, ps.SendMessageCalls, 1)
		assert.Equal(t, "notify-result", ps.SendMessageCalls[0].Topic)
	})

	t.Run("dry run skips the result event", func(t *testing.T) {
		server, ps, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()
		seedRoster(t, server.Store)

		matchID := createPendingMatch(t, server)
		previewMatch(t, server, matchID)

		body, err := json.Marshal(map[string]any{
			"match_id":    matchID,
			"team1_score": 6,
			"team2_score": 4,
		})
		require.NoError(t, err)
		req, err := http.NewRequest("POST", "/matches/complete?dry_run=true", bytes.NewReader(body))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Empty(t, ps.SendMessageCalls)
	})

	t.Run("equal scores are a bad request", func(t *testing.T) {
		server, _, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()
		seedRoster(t, server.Store)

		matchID := createPendingMatch(t, server)
		previewMatch(t, server, matchID)

		rr := postJSON(t, server, "/matches/complete", map[string]any{
			"match_id":    matchID,
			"team1_score": 5,
			"team2_score": 5,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("completion before preview conflicts", func(t *testing.T) {
		server, _, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()
		seedRoster(t, server.Store)

		matchID := createPendingMatch(t, server)
		rr := postJSON(t, server, "/matches/complete", map[string]any{
			"match_id":    matchID,
			"team1_score": 6,
			"team2_score": 4,
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("second completion conflicts", func(t *testing.T) {
		server, _, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()
		seedRoster(t, server.Store)

		matchID := createPendingMatch(t, server)
		previewMatch(t, server, matchID)

		payload := map[string]any{
			"match_id":    matchID,
			"team1_score": 6,
			"team2_score": 4,
		}
		rr := postJSON(t, server, "/matches/complete", payload)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = postJSON(t, server, "/matches/complete", payload)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestNotifyResultHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, _, teardown := setupTestServer(t, mockNotifier)
	defer teardown()
	seedRoster(t, server.Store)

	event := match.ResultEvent{
		Match: match.Match{
			ID:    "m1",
			TeamA: match.Side{Player1ID: "p1", Player2ID: "p2"},
			TeamB: match.Side{Player1ID: "p3", Player2ID: "p4"},
		},
		Result: match.CompletionResult{
			MatchID:    "m1",
			Team1Score: 6,
			Team2Score: 3,
			Team1Delta: 16,
			Team2Delta: -16,
		},
	}
	packed, err := msgpack.Marshal(event)
	require.NoError(t, err)

	wrapper := map[string]any{
		"subscription": "test-sub",
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(packed),
		},
	}
	rr := postJSON(t, server, "/notify-result", wrapper)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.Len(t, mockNotifier.SendResultNotificationCalls, 1)
	call := mockNotifier.SendResultNotificationCalls[0]
	assert.Equal(t, "m1", call.Match.ID)
	assert.Equal(t, 16, call.Result.Team1Delta)
}

func TestNotifyResultHandler_InvalidWrapper(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	req, err := http.NewRequest("POST", "/notify-result", strings.NewReader("{not json"))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatLeaderboardResponseFunc = func(standings []club.PlayerStanding) (any, error) {
		return slack.Message{}, nil
	}
	server, _, teardown := setupTestServer(t, mockNotifier)
	defer teardown()
	seedRoster(t, server.Store)

	req, err := http.NewRequest("POST", "/slack/command/leaderboard", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestPlayerStandingCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatPlayerStandingResponseFunc = func(standing *club.PlayerStanding, query string) (any, error) {
		return slack.Message{}, nil
	}
	mockNotifier.FormatPlayerNotFoundResponseFunc = func(query string) (any, error) {
		return slack.Message{}, nil
	}
	server, _, teardown := setupTestServer(t, mockNotifier)
	defer teardown()
	seedRoster(t, server.Store)

	sendCommand := func(text string) *httptest.ResponseRecorder {
		form := url.Values{}
		form.Set("text", text)
		req, err := http.NewRequest("POST", "/slack/command/player-standing", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("known player", func(t *testing.T) {
		rr := sendCommand("Player One")
		assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	})

	t.Run("unknown player falls back to not found", func(t *testing.T) {
		rr := sendCommand("Zelda")
		assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	})

	t.Run("missing text", func(t *testing.T) {
		rr := sendCommand("")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
