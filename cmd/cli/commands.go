package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the members in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/members")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List all matches in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the club leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var createCmd = &cobra.Command{
	Use:   "create <teamA-player1> <teamA-player2> <teamB-player1> <teamB-player2>",
	Short: "Create a pending match between two teams",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"team_a": []string{args[0], args[1]},
			"team_b": []string{args[2], args[3]},
		}
		return performPostRequest("/matches/create", payload)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <matchID>",
	Short: "Fetch the rating preview for a pending match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches/preview?matchID=" + url.QueryEscape(args[0]))
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <matchID> <team1Score> <team2Score>",
	Short: "Record the final score for a match",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		team1Score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid team1 score %q: %w", args[1], err)
		}
		team2Score, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid team2 score %q: %w", args[2], err)
		}
		payload := map[string]any{
			"match_id":    args[0],
			"team1_score": team1Score,
			"team2_score": team2Score,
		}
		return performPostRequest("/matches/complete", payload)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
