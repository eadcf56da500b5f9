package providers

import "strings"

// qualifierWords are topic tokens that narrow a search without naming the
// subject: superlatives, instructional phrases, comparison glue, and year
// qualifiers. Stripping them is the sparse-result recovery heuristic; it
// is deliberately isolated here so it can be replaced without touching
// the orchestrator.
var qualifierWords = map[string]struct{}{
	"best": {}, "top": {}, "good": {}, "great": {},
	"how": {}, "to": {}, "guide": {}, "tutorial": {}, "review": {}, "reviews": {},
	"vs": {}, "versus": {}, "compared": {}, "comparison": {},
	"using": {}, "with": {}, "for": {}, "the": {}, "a": {}, "an": {}, "in": {}, "of": {},
	"2023": {}, "2024": {}, "2025": {}, "2026": {},
}

// SimplifyTopic strips qualifier words from a topic phrase, returning the
// simplified phrase. If stripping would remove everything, or changes
// nothing, the original topic is returned unchanged.
func SimplifyTopic(topic string) string {
	fields := strings.Fields(topic)
	kept := make([]string, 0, len(fields))
	for _, field := range fields {
		normalized := strings.ToLower(strings.Trim(field, `"'?!.,:;`))
		if _, qualifier := qualifierWords[normalized]; qualifier {
			continue
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 || len(kept) == len(fields) {
		return topic
	}
	return strings.Join(kept, " ")
}
