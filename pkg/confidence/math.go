// Package confidence provides confidence score math utilities.
package confidence

import "math"

// FromIssueCount derives prediction confidence from a component's recorded
// issue count: each issue erodes confidence by 5%, bounded to [0.60, 0.95].
func FromIssueCount(issues int) float64 {
	c := 0.9 - float64(issues)*0.05
	return math.Min(0.95, math.Max(0.60, c))
}

// WeightedAverage combines per-dimension scores into one composite score.
// Mismatched lengths or an all-zero weight vector yield 0.
func WeightedAverage(scores []float64, weights []float64) float64 {
	if len(scores) == 0 || len(scores) != len(weights) {
		return 0
	}

	var sum, weightSum float64
	for i, s := range scores {
		sum += s * weights[i]
		weightSum += weights[i]
	}

	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// Clamp bounds a score to [0, 1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
