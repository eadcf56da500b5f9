// Package normalize converts raw provider records into canonical content
// items. It is a stateless pure transform: field mapping, date parsing,
// markup stripping, and the hard publication-window filter.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/pulsewatch/internal/types"
)

// DefaultRelevance is assumed when the provider supplied no topical-fit
// estimate.
const DefaultRelevance = 0.5

// FromRaw maps one raw provider record onto the canonical schema.
// It returns (nil, false) when the item is verifiably stale: a
// high-confidence parsed date outside the requested window means the item
// is dropped entirely, not merely down-ranked. Items with unknown or
// low-confidence dates are kept; the ranker penalizes them instead, since
// dropping them would discard many legitimately in-range items whose
// provider simply omitted a timestamp.
func FromRaw(rec types.RawItem, source types.SourceTag, window types.DateWindow, ordinal int) (*types.ContentItem, bool) {
	if strings.TrimSpace(rec.URL) == "" {
		return nil, false
	}

	published, confidence := ParseDate(rec.PublishedAt)
	if published != nil && confidence == types.ConfidenceHigh && !window.Contains(*published) {
		return nil, false
	}

	item := &types.ContentItem{
		ID:             fmt.Sprintf("%s-%d", source, ordinal),
		Source:         source,
		Headline:       StripMarkup(rec.Title),
		Body:           StripMarkup(rec.Snippet),
		Permalink:      strings.TrimSpace(rec.URL),
		Author:         strings.TrimSpace(rec.Author),
		Published:      published,
		DateConfidence: confidence,
		Engagement:     engagementFor(source, rec.Counters),
		Relevance:      DefaultRelevance,
	}

	if rec.Relevance != nil {
		item.Relevance = clamp01(*rec.Relevance)
		item.RelevanceKnown = true
	}

	return item, true
}

// dateLayouts are the accepted publish-date formats, most specific first.
// Layouts carrying a zone or full timestamp yield high confidence; a bare
// date is only day-granular, so it yields medium.
var dateLayouts = []struct {
	layout     string
	confidence types.DateConfidence
}{
	{time.RFC3339Nano, types.ConfidenceHigh},
	{time.RFC3339, types.ConfidenceHigh},
	{"2006-01-02T15:04:05", types.ConfidenceHigh},
	{"2006-01-02 15:04:05", types.ConfidenceHigh},
	{"2006-01-02", types.ConfidenceMedium},
}

// ParseDate parses a provider publish date. Unparseable or empty strings
// yield a nil time with low confidence.
func ParseDate(s string) (*time.Time, types.DateConfidence) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, types.ConfidenceLow
	}
	for _, candidate := range dateLayouts {
		if t, err := time.Parse(candidate.layout, s); err == nil {
			t = t.UTC()
			return &t, candidate.confidence
		}
	}
	return nil, types.ConfidenceLow
}

// StripMarkup removes HTML tags and collapses whitespace. Provider
// snippets frequently embed markup in titles and bodies.
func StripMarkup(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<>") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// engagementFor builds the per-source engagement union from the generic
// counter bag. Sources without an engagement concept, or records without
// counters, yield nil.
func engagementFor(source types.SourceTag, counters map[string]float64) types.Engagement {
	if len(counters) == 0 {
		return nil
	}
	switch source {
	case types.SourceForum:
		return types.ForumEngagement{
			Upvotes:     int64(counters["upvotes"]),
			Comments:    int64(counters["comments"]),
			UpvoteRatio: counters["upvote_ratio"],
		}
	case types.SourceMicroblog:
		return types.MicroblogEngagement{
			Likes:   int64(counters["likes"]),
			Reposts: int64(counters["reposts"]),
			Replies: int64(counters["replies"]),
			Quotes:  int64(counters["quotes"]),
		}
	case types.SourceVideo:
		return types.VideoEngagement{
			Views: int64(counters["views"]),
			Likes: int64(counters["likes"]),
		}
	case types.SourceProfessional:
		return types.ProfessionalEngagement{
			Reactions: int64(counters["reactions"]),
			Comments:  int64(counters["comments"]),
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
