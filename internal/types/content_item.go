package types

import (
	"fmt"
	"time"
)

// DateWindow is the requested publication window for a run.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the window length in days (at least one day, so recency
// math never divides by zero on same-day windows).
func (w DateWindow) Days() float64 {
	days := w.End.Sub(w.Start).Hours() / 24
	if days < 1 {
		return 1
	}
	return days
}

// Contains reports whether t falls inside [Start, End].
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Valid reports whether the window is well-formed.
func (w DateWindow) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && !w.End.Before(w.Start)
}

// LastDays builds a window covering the last n days ending at now.
func LastDays(now time.Time, n int) DateWindow {
	if n < 1 {
		n = 1
	}
	return DateWindow{Start: now.AddDate(0, 0, -n), End: now}
}

// ScoreBreakdown keeps the per-dimension values behind a final score so
// rankings stay explainable and testable.
type ScoreBreakdown struct {
	RecencyRaw    float64  `json:"recency_raw"`
	EngagementRaw *float64 `json:"engagement_raw,omitempty"`

	RelevancePct  float64  `json:"relevance_pct"`
	RecencyPct    float64  `json:"recency_pct"`
	EngagementPct *float64 `json:"engagement_pct,omitempty"`

	Blend   float64 `json:"blend"`
	Penalty float64 `json:"penalty"`
}

// ContentItem is one discovered piece of content, normalized from a raw
// provider record. It is created by the normalizer, scored exactly once
// by the ranker, kept or dropped by the deduplicator, and immutable once
// it is part of a returned Report.
type ContentItem struct {
	// ID is stable within a single run (provider-prefixed ordinal).
	ID       string    `json:"id"`
	Source   SourceTag `json:"source"`
	Headline string    `json:"headline"`
	Body     string    `json:"body,omitempty"`
	// Permalink is the canonical URL. Together with Source it forms the
	// dedup pre-check identity: same source+permalink is always a duplicate.
	Permalink string `json:"permalink"`
	Author    string `json:"author,omitempty"`

	Published      *time.Time     `json:"published,omitempty"`
	DateConfidence DateConfidence `json:"date_confidence"`

	Engagement Engagement `json:"engagement,omitempty"`

	// Relevance is the provider- or model-supplied topical fit in [0,1];
	// 0.5 when unknown. RelevanceKnown distinguishes a real estimate from
	// the default so the relevance judge only fills genuine gaps.
	Relevance      float64 `json:"relevance"`
	RelevanceKnown bool    `json:"-"`

	Score     float64         `json:"score"`
	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"`
}

// IdentityKey returns the source+permalink dedup identity.
func (c *ContentItem) IdentityKey() string {
	return fmt.Sprintf("%s|%s", c.Source, c.Permalink)
}

// RawItem is the best-effort structured parse of one provider record,
// before normalization. Field names follow the shared provider payload
// schema; Counters carries whatever engagement numbers the provider
// exposed, keyed by counter name.
type RawItem struct {
	Title       string             `json:"title"`
	Snippet     string             `json:"snippet,omitempty"`
	URL         string             `json:"url"`
	Author      string             `json:"author,omitempty"`
	PublishedAt string             `json:"published_at,omitempty"`
	Relevance   *float64           `json:"relevance,omitempty"`
	Counters    map[string]float64 `json:"engagement,omitempty"`
}
