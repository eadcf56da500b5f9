package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/pulsewatch/internal/types"
)

// maxSnippetLen bounds how much body text is sent per item when judging.
const maxSnippetLen = 240

// JudgeRelevance asks the model to score topical fit in [0,1] for each
// item, keyed by item ID. It is used for items whose provider supplied no
// relevance estimate (typically generic web results). Missing IDs in the
// response simply keep their defaults; callers treat any error here as a
// soft failure.
func JudgeRelevance(ctx context.Context, client Client, topic string, items []types.ContentItem) (map[string]float64, error) {
	if client == nil {
		return nil, fmt.Errorf("no judge client configured")
	}
	if len(items) == 0 {
		return map[string]float64{}, nil
	}

	prompt := buildJudgePrompt(topic, items)
	resp, err := client.GenerateJSON(ctx, prompt, TierLite)
	if err != nil {
		return nil, fmt.Errorf("relevance judging failed: %w", err)
	}

	var parsed struct {
		Scores []struct {
			ID        string  `json:"id"`
			Relevance float64 `json:"relevance"`
		} `json:"scores"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse judge response: %w", err)
	}

	scores := make(map[string]float64, len(parsed.Scores))
	for _, s := range parsed.Scores {
		if s.Relevance < 0 {
			s.Relevance = 0
		}
		if s.Relevance > 1 {
			s.Relevance = 1
		}
		scores[s.ID] = s.Relevance
	}
	return scores, nil
}

func buildJudgePrompt(topic string, items []types.ContentItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score how topically relevant each item is to %q on a 0.0-1.0 scale.\n", topic)
	b.WriteString("Respond with JSON: {\"scores\": [{\"id\": string, \"relevance\": number}, ...]}.\n\nItems:\n")
	for _, item := range items {
		snippet := item.Body
		// Cut on a rune boundary so multi-byte text is never split.
		if runes := []rune(snippet); len(runes) > maxSnippetLen {
			snippet = string(runes[:maxSnippetLen])
		}
		fmt.Fprintf(&b, "- id=%s headline=%q", item.ID, item.Headline)
		if snippet != "" {
			fmt.Fprintf(&b, " body=%q", snippet)
		}
		b.WriteString("\n")
	}
	return b.String()
}
