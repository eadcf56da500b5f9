package ranking

import (
	"sort"
	"time"

	"github.com/jonathan/pulsewatch/internal/types"
)

// Rank scores the full candidate set for one run and returns it sorted
// best-first. Scoring is batch-relative: relevance, recency, and (where
// present) engagement are converted to percentile ranks within the
// item's source class (platform vs web) before blending, so the same
// item can score differently in different company. Each item is scored
// exactly once; the breakdown is retained for explainability.
func Rank(items []types.ContentItem, window types.DateWindow) []types.ContentItem {
	platform := make([]int, 0, len(items))
	web := make([]int, 0, len(items))
	for i := range items {
		if items[i].Source.IsPlatform() {
			platform = append(platform, i)
		} else {
			web = append(web, i)
		}
	}

	scoreClass(items, platform, window, true)
	scoreClass(items, web, window, false)

	sortRanked(items)
	return items
}

// scoreClass scores one source class (indexes into items) in place.
func scoreClass(items []types.ContentItem, idx []int, window types.DateWindow, isPlatform bool) {
	if len(idx) == 0 {
		return
	}

	relevance := make([]float64, len(idx))
	recency := make([]float64, len(idx))
	for j, i := range idx {
		relevance[j] = items[i].Relevance
		recency[j] = recencyRaw(&items[i], window)
	}
	relevancePct := percentileRanks(relevance)
	recencyPct := percentileRanks(recency)

	// Engagement percentiles are computed only among items that carry
	// counters; items without them blend on the remaining dimensions and
	// take the missing-engagement penalty instead.
	var engagementPct map[int]float64
	if isPlatform {
		engaged := make([]int, 0, len(idx))
		raw := make([]float64, 0, len(idx))
		for _, i := range idx {
			if items[i].Engagement != nil {
				engaged = append(engaged, i)
				raw = append(raw, engagementRaw(items[i].Engagement))
			}
		}
		pct := percentileRanks(raw)
		engagementPct = make(map[int]float64, len(engaged))
		for j, i := range engaged {
			engagementPct[i] = pct[j]
			eRaw := raw[j]
			items[i].Breakdown = &types.ScoreBreakdown{EngagementRaw: &eRaw}
		}
	}

	for j, i := range idx {
		item := &items[i]
		if item.Breakdown == nil {
			item.Breakdown = &types.ScoreBreakdown{}
		}
		item.Breakdown.RecencyRaw = recency[j]
		item.Breakdown.RelevancePct = relevancePct[j]
		item.Breakdown.RecencyPct = recencyPct[j]

		values := []float64{relevancePct[j], recencyPct[j]}
		var weights []float64
		if isPlatform {
			weights = []float64{platformRelevanceWeight, platformRecencyWeight}
			if pct, ok := engagementPct[i]; ok {
				values = append(values, pct)
				weights = append(weights, platformEngagementWeight)
				e := pct
				item.Breakdown.EngagementPct = &e
			}
		} else {
			weights = []float64{webRelevanceWeight, webRecencyWeight}
		}

		blend := powerMean(values, weights)
		penalty := confidencePenalty(item)
		item.Breakdown.Blend = blend
		item.Breakdown.Penalty = penalty
		item.Score = clamp(blend-penalty, 0, 100)
	}
}

// sortRanked orders items by score descending with a fully deterministic
// tie-break chain: higher date confidence, then more recent publish date,
// then source priority, then permalink. Re-ranking identical inputs
// always yields identical order.
func sortRanked(items []types.ContentItem) {
	sort.SliceStable(items, func(a, b int) bool {
		ia, ib := &items[a], &items[b]
		if ia.Score != ib.Score {
			return ia.Score > ib.Score
		}
		if ia.DateConfidence.Rank() != ib.DateConfidence.Rank() {
			return ia.DateConfidence.Rank() > ib.DateConfidence.Rank()
		}
		pa, pb := publishedOrZero(ia), publishedOrZero(ib)
		if !pa.Equal(pb) {
			return pa.After(pb)
		}
		if ia.Source.Priority() != ib.Source.Priority() {
			return ia.Source.Priority() < ib.Source.Priority()
		}
		return ia.Permalink < ib.Permalink
	})
}

func publishedOrZero(item *types.ContentItem) time.Time {
	if item.Published != nil {
		return *item.Published
	}
	return time.Time{}
}
