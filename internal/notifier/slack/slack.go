package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rank/internal/club"
	"github.com/mauv0809/padel-rank/internal/match"
	"github.com/mauv0809/padel-rank/internal/metrics"
	"github.com/mauv0809/padel-rank/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendResultNotification posts the final score and rating movement for a completed match.
func (s *Notifier) SendResultNotification(m *match.Match, result *match.CompletionResult, players []club.PlayerInfo, dryRun bool) error {
	msg := s.formatResultNotification(m, result, players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(standings []club.PlayerStanding, dryRun bool) error {
	msg := s.formatLeaderboard(standings)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerStanding(standing *club.PlayerStanding, query string, dryRun bool) error {
	msg := s.formatPlayerStanding(standing, query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerNotFound(query string, dryRun bool) error {
	msg := s.formatPlayerNotFound(query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(standings []club.PlayerStanding) (any, error) {
	return s.formatLeaderboard(standings), nil
}

// FormatPlayerStandingResponse formats a player standing message for a slash command response.
func (s *Notifier) FormatPlayerStandingResponse(standing *club.PlayerStanding, query string) (any, error) {
	return s.formatPlayerStanding(standing, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

// formatResultNotification creates the Slack message for a completed match using Block Kit.
func (s *Notifier) formatResultNotification(m *match.Match, result *match.CompletionResult, players []club.PlayerInfo) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match finished! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	// Fall back to the raw ID when the roster lookup came up short.
	nameOf := func(playerID string) string {
		if name, ok := names[playerID]; ok && name != "" {
			return name
		}
		return playerID
	}

	teamAName := fmt.Sprintf("%s & %s", nameOf(m.TeamA.Player1ID), nameOf(m.TeamA.Player2ID))
	teamBName := fmt.Sprintf("%s & %s", nameOf(m.TeamB.Player1ID), nameOf(m.TeamB.Player2ID))

	winnerName := teamAName
	if result.Team2Score > result.Team1Score {
		winnerName = teamBName
	}

	resultText := fmt.Sprintf("Result: %s won! 🏆", winnerName)
	scoreText := fmt.Sprintf("• %s: %d\n• %s: %d", teamAName, result.Team1Score, teamBName, result.Team2Score)
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject("plain_text", resultText, true, false),
		[]*slack.TextBlockObject{slack.NewTextBlockObject("plain_text", scoreText, true, false)},
		nil,
	))

	// Rating movement, one line per player in roster order.
	ratingsText := "Rating changes:"
	deltaFor := func(playerID string) int {
		if playerID == m.TeamA.Player1ID || playerID == m.TeamA.Player2ID {
			return result.Team1Delta
		}
		return result.Team2Delta
	}
	for _, playerID := range m.PlayerIDs() {
		newRating, ok := result.NewRatings[playerID]
		if !ok {
			continue
		}
		ratingsText += fmt.Sprintf("\n• %s: %d (%+d)", nameOf(playerID), newRating, deltaFor(playerID))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", ratingsText, true, false), nil, nil))

	// Context
	loc, err := time.LoadLocation("Europe/Copenhagen")
	var timeStr string
	if err == nil {
		timeStr = time.Unix(result.CompletedAt, 0).In(loc).Format("Monday 02 Jan, 15:04")
	} else {
		timeStr = time.Unix(result.CompletedAt, 0).Format("Monday 02 Jan, 15:04")
	}
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("Completed: %s", timeStr), true, false),
	))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the club leaderboard.
func (s *Notifier) formatLeaderboard(standings []club.PlayerStanding) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Club Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No standings available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player ranks
	for i, standing := range standings {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> MMR: %d | Win %%: %.2f%% (%d/%d)",
			rank,
			medal,
			standing.PlayerName,
			standing.MMR,
			standing.WinPercentage,
			standing.MatchesWon,
			standing.MatchesPlayed,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStanding creates a Slack message to display a single player's standing.
func (s *Notifier) formatPlayerStanding(standing *club.PlayerStanding, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := fmt.Sprintf("🏆 Standing for %s 🏆", standing.PlayerName)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *MMR*: %d\n> *Match Win %%*: %.2f%% (%d/%d)\n> *Matches Lost*: %d",
		standing.MMR,
		standing.WinPercentage,
		standing.MatchesWon,
		standing.MatchesPlayed,
		standing.MatchesLost,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's standing is not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
