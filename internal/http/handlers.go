package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rank/internal/match"
	"github.com/mauv0809/padel-rank/internal/pubsub"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific match", "matchID", matchID)
			s.Store.ClearMatch(matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared match %s from store!", matchID)
			log.Info("Successfully cleared match from store", "matchID", matchID)
		} else {
			log.Info("Received request to clear entire store")
			s.Store.Clear()
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Store cleared!")
			log.Info("Store cleared successfully")
		}
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetAllMatches()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(matches); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

// LeaderboardHandler returns a handler that serves the club leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.Store.GetLeaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(standings); err != nil {
			log.Error("Failed to encode leaderboard to JSON", "error", err)
		}
	}
}

// statusForError maps lifecycle errors onto HTTP status codes. Validation
// failures are the caller's fault, sequencing violations are conflicts, and
// transient backend failures invite a retry.
func statusForError(err error) int {
	switch {
	case errors.Is(err, match.ErrInvalidRoster), errors.Is(err, match.ErrInvalidScore):
		return http.StatusBadRequest
	case errors.Is(err, match.ErrInvalidState), errors.Is(err, match.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, match.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CreateMatchHandler registers a new pending match from a JSON roster.
func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			TeamA       [2]string `json:"team_a"`
			TeamB       [2]string `json:"team_b"`
			ScheduledAt int64     `json:"scheduled_at"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode create match request", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		scheduledAt := time.Now()
		if req.ScheduledAt != 0 {
			scheduledAt = time.Unix(req.ScheduledAt, 0)
		}

		matchID, err := s.Lifecycle.CreatePendingMatch(req.TeamA, req.TeamB, scheduledAt)
		if err != nil {
			log.Error("Failed to create match", "error", err)
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		log.Info("Created pending match", "matchID", matchID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"match_id": matchID,
			"state":    s.Lifecycle.State(matchID),
		})
	}
}

// RatingPreviewHandler serves the expected win rates and prospective deltas
// for a pending match.
func (s *Server) RatingPreviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}

		preview, err := s.Lifecycle.FetchRatingPreview(matchID)
		if err != nil {
			log.Error("Failed to fetch rating preview", "matchID", matchID, "error", err)
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(preview); err != nil {
			log.Error("Failed to encode preview to JSON", "error", err)
		}
	}
}

// CompleteMatchHandler records the confirmed score, applies the snapshotted
// deltas and publishes a result event for the notifier.
func (s *Server) CompleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			MatchID    string `json:"match_id"`
			Team1Score int    `json:"team1_score"`
			Team2Score int    `json:"team2_score"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode complete match request", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.MatchID == "" {
			http.Error(w, "match_id is required", http.StatusBadRequest)
			return
		}

		result, err := s.Lifecycle.CompleteMatch(req.MatchID, req.Team1Score, req.Team2Score)
		if err != nil {
			log.Error("Failed to complete match", "matchID", req.MatchID, "error", err)
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		isDryRun := isDryRunFromContext(r)
		if isDryRun {
			log.Info("[Dry Run] Would publish result event", "matchID", req.MatchID)
		} else if m, err := s.Store.GetMatch(req.MatchID); err != nil {
			log.Error("Failed to load completed match for event", "matchID", req.MatchID, "error", err)
		} else {
			event := match.ResultEvent{Match: *m, Result: *result}
			if err := s.pubsub.SendMessage(string(pubsub.EventNotifyResult), event); err != nil {
				log.Error("Failed to publish result event", "matchID", req.MatchID, "error", err)
			}
		}

		log.Info("Completed match", "matchID", req.MatchID, "team1Delta", result.Team1Delta, "team2Delta", result.Team2Delta)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Error("Failed to encode completion result to JSON", "error", err)
		}
	}
}

// NotifyResultHandler consumes a pubsub push message carrying a result event
// and forwards it to the notifier.
func (s *Server) NotifyResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received notify result message", "body", string(bodyBytes))
		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		// Parse the outer JSON to get `data`
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		event := match.ResultEvent{}
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		playerIDs := event.Match.PlayerIDs()
		players, err := s.Store.GetPlayers(playerIDs[:])
		if err != nil {
			log.Error("Failed to load players for result notification", "error", err)
		}

		if err := s.Notifier.SendResultNotification(&event.Match, &event.Result, players, isDryRun); err != nil {
			log.Error("Failed to notify result", "error", err)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.Store.GetLeaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(standings)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerStandingCommandHandler returns a handler for the /player-standing Slack command.
func (s *Server) PlayerStandingCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		playerName := r.FormValue("text")
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player standing command", "player", playerName)

		standing, err := s.Store.GetStandingByName(playerName)
		var msg any
		if err != nil {
			log.Warn("Could not find player standing", "player", playerName, "error", err)
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(playerName)
		} else {
			msg, err = s.Notifier.FormatPlayerStandingResponse(standing, playerName)
		}

		if err != nil {
			http.Error(w, "Failed to format player standing", http.StatusInternalServerError)
			log.Error("Failed to format player standing", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}
