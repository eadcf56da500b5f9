// Package dedup suppresses near-duplicate and cross-posted content items
// using shingle-based similarity fingerprints. It runs after ranking, so
// whenever two items collide the higher-scored one survives.
package dedup

import (
	"strings"
	"unicode"

	"github.com/jonathan/pulsewatch/internal/types"
)

// SimilarityThreshold is the Jaccard similarity at or above which two
// items are considered the same story.
const SimilarityThreshold = 0.70

// ShingleSize is the token n-gram length used for fingerprinting.
const ShingleSize = 3

// Suppress removes near-duplicates from a ranked (score-descending) item
// list. Two rules apply:
//   - identity short-circuit: same source+permalink is always a duplicate,
//     regardless of textual similarity;
//   - similarity: normalized-text Jaccard >= SimilarityThreshold collapses
//     the pair, cross-platform included.
//
// Suppressed items are discarded, not annotated. The input order is
// preserved for survivors.
func Suppress(items []types.ContentItem) []types.ContentItem {
	kept := make([]types.ContentItem, 0, len(items))
	keptShingles := make([]map[string]struct{}, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for i := range items {
		item := items[i]

		identity := item.IdentityKey()
		if _, dup := seen[identity]; dup {
			continue
		}

		shingles := Shingles(Signature(item.Headline, item.Body), ShingleSize)
		duplicate := false
		for _, other := range keptShingles {
			if Jaccard(shingles, other) >= SimilarityThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		seen[identity] = struct{}{}
		kept = append(kept, item)
		keptShingles = append(keptShingles, shingles)
	}

	return kept
}

// Signature builds the normalized text used for fingerprinting:
// lower-cased headline+body with punctuation stripped and whitespace
// collapsed.
func Signature(headline, body string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(headline + " " + body) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Shingles returns the set of overlapping n-token shingles of the
// signature. Signatures shorter than n tokens fingerprint as a single
// shingle so trivially short items still compare.
func Shingles(signature string, n int) map[string]struct{} {
	tokens := strings.Fields(signature)
	set := make(map[string]struct{})
	if len(tokens) == 0 {
		return set
	}
	if len(tokens) < n {
		set[strings.Join(tokens, " ")] = struct{}{}
		return set
	}
	for i := 0; i+n <= len(tokens); i++ {
		set[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}
	return set
}

// Jaccard computes set similarity in [0,1]. Two empty sets are treated
// as dissimilar: empty-text items should never collapse into each other.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for s := range a {
		if _, ok := b[s]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
