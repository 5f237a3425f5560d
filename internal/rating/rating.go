// Package rating implements the MMR computation used when recording match
// results. It is a pure function library: given two team average ratings it
// produces the expected win probability for each side and the symmetric
// rating deltas awarded on win/loss.
package rating

import "math"

// DefaultKFactor is the maximum rating swing per match unless overridden
// through configuration.
const DefaultKFactor = 32.0

// ExpectedWinRate returns the probability that the side with ratingA beats
// the side with ratingB, using the logistic Elo form. The result is strictly
// within (0, 1) for finite inputs and equals 0.5 for equal ratings.
func ExpectedWinRate(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// TeamAverage reduces a two-player team to one comparable rating.
func TeamAverage(rating1, rating2 float64) float64 {
	return (rating1 + rating2) / 2.0
}

// WinDelta is the number of points the side with the given expectation gains
// if it wins. The losing side loses the same amount, mirrored.
func WinDelta(expectedWinRate, kFactor float64) float64 {
	return kFactor * (1.0 - expectedWinRate)
}

// RoundDelta rounds a delta half up to the nearest integer. Rounding happens
// only at the point a delta is persisted, never during intermediate
// computation, so the two derived figures do not compound rounding error.
func RoundDelta(delta float64) int {
	return int(math.Floor(delta + 0.5))
}

// Preview holds the "if you win / if you lose" figures shown to both teams
// before final scores are known. Win rates sum to 1; each delta is the
// prospective gain for that team should it win.
type Preview struct {
	Team1ExpectedWinRate float64 `json:"team1_expected_win_rate"`
	Team2ExpectedWinRate float64 `json:"team2_expected_win_rate"`
	Team1WinDelta        float64 `json:"team1_win_delta"`
	Team2WinDelta        float64 `json:"team2_win_delta"`
}

// ComputePreview combines the matchup functions into the structure the UI
// renders before scores are entered.
func ComputePreview(team1Avg, team2Avg, kFactor float64) Preview {
	team1Expected := ExpectedWinRate(team1Avg, team2Avg)
	team2Expected := 1.0 - team1Expected
	return Preview{
		Team1ExpectedWinRate: team1Expected,
		Team2ExpectedWinRate: team2Expected,
		Team1WinDelta:        WinDelta(team1Expected, kFactor),
		Team2WinDelta:        WinDelta(team2Expected, kFactor),
	}
}

// AppliedDeltas derives the signed per-team deltas for a known outcome. The
// winner gains its previewed win delta rounded to an integer and the loser
// loses the same amount, so the applied pair always sums to zero. This
// mirrored model intentionally uses a single expectation figure for the
// matchup rather than independent per-player Elo updates.
func (p Preview) AppliedDeltas(team1Won bool) (team1Delta, team2Delta int) {
	if team1Won {
		team1Delta = RoundDelta(p.Team1WinDelta)
		return team1Delta, -team1Delta
	}
	team2Delta = RoundDelta(p.Team2WinDelta)
	return -team2Delta, team2Delta
}
