// Package types defines the canonical data model shared across the
// aggregation pipeline: content items, engagement counters, reports,
// and the small enums (source, depth, date confidence) that drive them.
package types

// SourceTag identifies the channel a content item came from.
type SourceTag string

// Supported source channels.
const (
	SourceForum        SourceTag = "forum"
	SourceMicroblog    SourceTag = "microblog"
	SourceVideo        SourceTag = "video"
	SourceProfessional SourceTag = "professional-network"
	SourceWeb          SourceTag = "web"
)

// AllSources returns every supported source tag in priority order.
func AllSources() []SourceTag {
	return []SourceTag{SourceForum, SourceMicroblog, SourceVideo, SourceProfessional, SourceWeb}
}

// Valid reports whether the tag is one of the supported channels.
func (s SourceTag) Valid() bool {
	switch s {
	case SourceForum, SourceMicroblog, SourceVideo, SourceProfessional, SourceWeb:
		return true
	}
	return false
}

// IsPlatform reports whether the source has an engagement concept.
// Generic web results do not.
func (s SourceTag) IsPlatform() bool {
	return s.Valid() && s != SourceWeb
}

// Priority returns the tie-break ordering of the source (lower wins).
func (s SourceTag) Priority() int {
	switch s {
	case SourceForum:
		return 0
	case SourceMicroblog:
		return 1
	case SourceVideo:
		return 2
	case SourceProfessional:
		return 3
	case SourceWeb:
		return 4
	}
	return 5
}

// ParseSourceTag converts a string into a SourceTag, accepting a few
// common aliases used in config files and CLI flags.
func ParseSourceTag(s string) (SourceTag, bool) {
	switch SourceTag(s) {
	case SourceForum, SourceMicroblog, SourceVideo, SourceProfessional, SourceWeb:
		return SourceTag(s), true
	}
	switch s {
	case "professional", "profnet":
		return SourceProfessional, true
	}
	return "", false
}

// Depth is the requested thoroughness tier for a run. It controls how
// many items each adapter asks its provider for.
type Depth string

// Depth tiers.
const (
	DepthQuick   Depth = "quick"
	DepthDefault Depth = "default"
	DepthDeep    Depth = "deep"
)

// Valid reports whether the depth is one of the supported tiers.
func (d Depth) Valid() bool {
	switch d {
	case DepthQuick, DepthDefault, DepthDeep:
		return true
	}
	return false
}

// DateConfidence is the trust level in a parsed publish date. High means
// the provider-native timestamp was verifiable; low means the date was
// inferred or absent.
type DateConfidence string

// Date confidence levels.
const (
	ConfidenceHigh   DateConfidence = "high"
	ConfidenceMedium DateConfidence = "medium"
	ConfidenceLow    DateConfidence = "low"
)

// Rank returns a numeric ordering for tie-breaks (higher is better).
func (c DateConfidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	}
	return 0
}
