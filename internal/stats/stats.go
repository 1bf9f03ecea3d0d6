// Package stats turns raw vote counts into the derived statistics cached on a
// votable.
package stats

import (
	"math"

	"github.com/emilythestrangee/votables/backend/internal/models"
)

// Z95 is the standard normal quantile for a 95% confidence interval.
const Z95 = 1.96

// wilsonScale matches the eight decimal places the score is stored with.
const wilsonScale = 1e8

// Aggregate computes the statistics for a votable with the given positive and
// negative vote counts out of totalUsers registered users. Votes with value 0
// are not counted by callers and never reach here.
func Aggregate(positive, negative int, totalUsers int64) models.Statistics {
	positive = max(positive, 0)
	negative = max(negative, 0)
	total := positive + negative

	s := models.Statistics{
		TotalVotes:    total,
		PositiveVotes: positive,
		NegativeVotes: negative,
	}
	if totalUsers > 0 {
		s.ParticipationPercentage = min(percent(int64(total), totalUsers), 100)
	}
	if total > 0 {
		s.PositivePercentage = percent(int64(positive), int64(total))
		s.NegativePercentage = percent(int64(negative), int64(total))
		s.WilsonScore = roundScore(WilsonLowerBound(positive, total, Z95))
	}
	return s
}

// WilsonLowerBound returns the lower bound of the Wilson score interval for
// positive successes out of total trials. It is 0 when total is 0.
func WilsonLowerBound(positive, total int, z float64) float64 {
	if total <= 0 {
		return 0
	}
	n := float64(total)
	phat := float64(positive) / n
	z2 := z * z

	numerator := phat + z2/(2*n) - z*math.Sqrt((phat*(1-phat)+z2/(4*n))/n)
	denominator := 1 + z2/n

	return clamp01(numerator / denominator)
}

// percent is round-half-to-even of part/whole*100, done in integers so exact
// halves stay exact. Two complementary shares always sum to 100. whole must be
// positive.
func percent(part, whole int64) int {
	q, r := 100*part/whole, 100*part%whole
	if 2*r > whole || (2*r == whole && q%2 == 1) {
		q++
	}
	return int(q)
}

func roundScore(w float64) float64 {
	return math.Round(w*wilsonScale) / wilsonScale
}

func clamp01(f float64) float64 {
	switch {
	case f < 0 || math.IsNaN(f):
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
