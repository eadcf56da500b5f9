package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/pulsewatch/internal/schemas"
	"github.com/jonathan/pulsewatch/internal/types"
)

// SparseThreshold is the minimum number of distinct items expected from a
// first attempt; fewer triggers the simplified-query retry.
const SparseThreshold = 5

// Query is the adapter-facing search request.
type Query struct {
	Topic  string
	Depth  types.Depth
	Window types.DateWindow
}

// Result is the structured outcome of one adapter search: best-effort
// parsed records plus the raw provider response for diagnostics.
type Result struct {
	Items []types.RawItem
	Raw   json.RawMessage
}

// Adapter is the per-source search capability. Implementations build a
// provider-native request for a topic+depth+window and parse the response
// into raw records.
type Adapter interface {
	Source() types.SourceTag
	Search(ctx context.Context, q Query) (*Result, error)
}

// adapter is the shared implementation: all five sources proxy through
// the hosted search capability and differ only in site filter, search
// mode, depth mapping, and counter vocabulary.
type adapter struct {
	source  types.SourceTag
	client  *SearchClient
	domains []string
	social  bool
	counts  map[types.Depth]int
}

// NewForumAdapter searches discussion-forum threads.
func NewForumAdapter(client *SearchClient) Adapter {
	return &adapter{
		source:  types.SourceForum,
		client:  client,
		domains: []string{"reddit.com"},
		counts:  map[types.Depth]int{types.DepthQuick: 20, types.DepthDefault: 40, types.DepthDeep: 85},
	}
}

// NewMicroblogAdapter searches the microblogging network via the
// provider's dedicated social-search capability.
func NewMicroblogAdapter(client *SearchClient) Adapter {
	return &adapter{
		source: types.SourceMicroblog,
		client: client,
		social: true,
		counts: map[types.Depth]int{types.DepthQuick: 10, types.DepthDefault: 25, types.DepthDeep: 50},
	}
}

// NewVideoAdapter searches video-platform content.
func NewVideoAdapter(client *SearchClient) Adapter {
	return &adapter{
		source:  types.SourceVideo,
		client:  client,
		domains: []string{"youtube.com"},
		counts:  map[types.Depth]int{types.DepthQuick: 10, types.DepthDefault: 20, types.DepthDeep: 38},
	}
}

// NewProfessionalAdapter searches professional-network posts.
func NewProfessionalAdapter(client *SearchClient) Adapter {
	return &adapter{
		source:  types.SourceProfessional,
		client:  client,
		domains: []string{"linkedin.com"},
		counts:  map[types.Depth]int{types.DepthQuick: 8, types.DepthDefault: 16, types.DepthDeep: 32},
	}
}

// NewWebAdapter searches generic web pages, unfiltered.
func NewWebAdapter(client *SearchClient) Adapter {
	return &adapter{
		source: types.SourceWeb,
		client: client,
		counts: map[types.Depth]int{types.DepthQuick: 12, types.DepthDefault: 25, types.DepthDeep: 50},
	}
}

// Source returns the adapter's channel tag.
func (a *adapter) Source() types.SourceTag { return a.source }

// TargetCount returns the depth to item-count mapping for this source.
func (a *adapter) TargetCount(depth types.Depth) int {
	if count, ok := a.counts[depth]; ok {
		return count
	}
	return a.counts[types.DepthDefault]
}

// Search runs the provider-native search. On a sparse first result it
// strips qualifier words from the topic and retries once, merging by
// permalink and preferring first-seen records. Malformed payloads come
// back as an empty list with a descriptive error, never a panic.
func (a *adapter) Search(ctx context.Context, q Query) (*Result, error) {
	items, raw, err := a.searchOnce(ctx, q.Topic, q)
	if err != nil {
		return &Result{Raw: raw}, err
	}

	if len(distinctPermalinks(items)) < SparseThreshold {
		simplified := SimplifyTopic(q.Topic)
		if simplified != q.Topic && simplified != "" {
			retryItems, _, retryErr := a.searchOnce(ctx, simplified, q)
			if retryErr == nil {
				items = mergeByPermalink(items, retryItems)
			}
		}
	}

	return &Result{Items: items, Raw: raw}, nil
}

func (a *adapter) searchOnce(ctx context.Context, topic string, q Query) ([]types.RawItem, json.RawMessage, error) {
	content, raw, err := a.client.Search(ctx, SearchRequest{
		Provider:   string(a.source),
		Query:      a.buildPrompt(topic, q),
		Window:     q.Window,
		MaxResults: a.TargetCount(q.Depth),
		Domains:    a.domains,
		Social:     a.social,
	})
	if err != nil {
		return nil, raw, fmt.Errorf("%s search failed: %w", a.source, err)
	}

	items, err := ParseItems(content)
	if err != nil {
		return nil, raw, fmt.Errorf("%s returned malformed payload: %v", a.source, err)
	}
	return items, raw, nil
}

// buildPrompt renders the provider-native query text.
func (a *adapter) buildPrompt(topic string, q Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find the %d most relevant recent %s about %q published between %s and %s.",
		a.TargetCount(q.Depth), a.describe(), topic,
		q.Window.Start.Format("2006-01-02"), q.Window.End.Format("2006-01-02"))
	if hint := counterHint(a.source); hint != "" {
		fmt.Fprintf(&b, " For each item report these engagement counters when visible: %s.", hint)
	}
	return b.String()
}

func (a *adapter) describe() string {
	switch a.source {
	case types.SourceForum:
		return "discussion-forum threads"
	case types.SourceMicroblog:
		return "public microblog posts"
	case types.SourceVideo:
		return "videos"
	case types.SourceProfessional:
		return "professional-network posts"
	}
	return "web pages"
}

// counterHint names the engagement counters each platform defines.
func counterHint(source types.SourceTag) string {
	switch source {
	case types.SourceForum:
		return "upvotes, comments, upvote_ratio"
	case types.SourceMicroblog:
		return "likes, reposts, replies, quotes"
	case types.SourceVideo:
		return "views, likes"
	case types.SourceProfessional:
		return "reactions, comments"
	}
	return ""
}

// ParseItems decodes a provider content payload into raw records and
// validates it against the shared item schema. It tolerates markdown
// fences and an {"items": [...]} wrapper.
func ParseItems(content string) ([]types.RawItem, error) {
	cleaned := cleanJSONBlock(content)
	if cleaned == "" {
		return nil, fmt.Errorf("empty payload")
	}

	arrayJSON := cleaned
	if strings.HasPrefix(cleaned, "{") {
		var wrapper struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil || wrapper.Items == nil {
			return nil, fmt.Errorf("payload is not an item array")
		}
		arrayJSON = string(wrapper.Items)
	}

	if err := schemas.ValidateItems(arrayJSON); err != nil {
		return nil, err
	}

	var items []types.RawItem
	if err := json.Unmarshal([]byte(arrayJSON), &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// mergeByPermalink merges two record lists, preferring first-seen.
func mergeByPermalink(first, second []types.RawItem) []types.RawItem {
	seen := make(map[string]struct{}, len(first))
	merged := make([]types.RawItem, 0, len(first)+len(second))
	for _, lists := range [][]types.RawItem{first, second} {
		for _, item := range lists {
			key := strings.TrimSpace(item.URL)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged
}

func distinctPermalinks(items []types.RawItem) map[string]struct{} {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if url := strings.TrimSpace(item.URL); url != "" {
			seen[url] = struct{}{}
		}
	}
	return seen
}
