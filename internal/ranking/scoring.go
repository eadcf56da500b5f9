// Package ranking computes composite scores for content items from
// relevance, recency, and engagement signals, using batch-relative
// percentile normalization and a weighted power-mean blend.
package ranking

import (
	"math"

	"github.com/jonathan/pulsewatch/internal/types"
)

// Blend weights. Platform items carry an engagement dimension; generic
// web items do not, so they use a two-dimension weight set. The weight
// ordering relevance >= recency >= engagement is load-bearing.
const (
	platformRelevanceWeight  = 0.42
	platformRecencyWeight    = 0.30
	platformEngagementWeight = 0.28

	webRelevanceWeight = 0.58
	webRecencyWeight   = 0.42
)

// blendExponent < 1 makes the blend harmonic-mean-like: an item weak on
// any one dimension cannot be fully masked by a strong one.
const blendExponent = 0.5

// Additive post-blend adjustments, in score points.
const (
	penaltyLowConfidence    = 8.0
	penaltyMediumConfidence = 3.0
	penaltyNoEngagement     = 5.0
	penaltyWebSource        = 12.0
)

// recencyRaw converts a publish date into a 0-100 freshness value
// relative to the window length. Future or invalid dates clamp to zero
// days old. Items without a date score the window midpoint.
func recencyRaw(item *types.ContentItem, window types.DateWindow) float64 {
	if item.Published == nil {
		return 50
	}
	days := window.End.Sub(*item.Published).Hours() / 24
	if days < 0 {
		days = 0
	}
	return clamp(100-100*days/window.Days(), 0, 100)
}

// Per-counter engagement weights, applied to log1p-damped raw counters so
// a single viral outlier cannot dominate the batch.
func engagementRaw(e types.Engagement) float64 {
	switch v := e.(type) {
	case types.ForumEngagement:
		return 0.55*math.Log1p(float64(v.Upvotes)) +
			0.40*math.Log1p(float64(v.Comments)) +
			0.05*(v.UpvoteRatio*10)
	case types.MicroblogEngagement:
		return 0.55*math.Log1p(float64(v.Likes)) +
			0.25*math.Log1p(float64(v.Reposts)) +
			0.15*math.Log1p(float64(v.Replies)) +
			0.05*math.Log1p(float64(v.Quotes))
	case types.VideoEngagement:
		return 0.70*math.Log1p(float64(v.Views)) +
			0.30*math.Log1p(float64(v.Likes))
	case types.ProfessionalEngagement:
		return 0.60*math.Log1p(float64(v.Reactions)) +
			0.40*math.Log1p(float64(v.Comments))
	}
	return 0
}

// percentileRanks converts a batch of raw values into 0-100 percentile
// ranks. Ties share the midpoint of their rank range, so identical values
// always get identical percentiles regardless of input order.
func percentileRanks(values []float64) []float64 {
	n := len(values)
	ranks := make([]float64, n)
	if n == 0 {
		return ranks
	}
	if n == 1 {
		ranks[0] = 50
		return ranks
	}
	for i, v := range values {
		less, equal := 0, 0
		for _, other := range values {
			switch {
			case other < v:
				less++
			case other == v:
				equal++
			}
		}
		// equal includes the value itself.
		ranks[i] = 100 * (float64(less) + 0.5*float64(equal-1)) / float64(n-1)
	}
	return ranks
}

// powerMean computes the weighted power mean of the given dimension
// values with the blend exponent. Weights are normalized by their sum, so
// dropping a dimension (absent engagement) renormalizes the rest.
func powerMean(values, weights []float64) float64 {
	var num, den float64
	for i, v := range values {
		if v < 0 {
			v = 0
		}
		num += weights[i] * math.Pow(v, blendExponent)
		den += weights[i]
	}
	if den == 0 {
		return 0
	}
	return math.Pow(num/den, 1/blendExponent)
}

// confidencePenalty returns the additive adjustment for an item after the
// blend: date-trust and source-type discounts.
func confidencePenalty(item *types.ContentItem) float64 {
	penalty := 0.0
	switch item.DateConfidence {
	case types.ConfidenceLow:
		penalty += penaltyLowConfidence
	case types.ConfidenceMedium:
		penalty += penaltyMediumConfidence
	}
	if item.Source.IsPlatform() && item.Engagement == nil {
		penalty += penaltyNoEngagement
	}
	if item.Source == types.SourceWeb {
		penalty += penaltyWebSource
	}
	return penalty
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
