// Package providers implements one adapter per content source. Each
// adapter turns a topic + depth + time window into a provider-native
// request against a hosted search API, and parses the response into raw
// records for the normalizer. Adapters never panic on malformed payloads;
// they return an empty list plus a descriptive error.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/pulsewatch/internal/cache"
	"github.com/jonathan/pulsewatch/internal/httpclient"
	"github.com/jonathan/pulsewatch/internal/types"
)

// DefaultBaseURL is the hosted search API endpoint.
const DefaultBaseURL = "https://api.x.ai/v1"

// DefaultModelCandidates is the fallback chain probed when the model
// side-cache has no fresh entry for a provider.
var DefaultModelCandidates = []string{"grok-4-fast", "grok-3-mini", "grok-3"}

// SearchClient calls the hosted web/social search capability of an LLM
// provider over plain HTTPS JSON, through the retrying HTTP client. One
// client serves all adapters that share a credential.
type SearchClient struct {
	http       *httpclient.Client
	baseURL    string
	apiKey     string
	models     *cache.ModelCache
	candidates []string
}

// SearchClientOptions configures a SearchClient.
type SearchClientOptions struct {
	BaseURL    string
	HTTP       *httpclient.Client
	Models     *cache.ModelCache
	Candidates []string
}

// NewSearchClient creates a search client with the given API key.
func NewSearchClient(apiKey string, opts *SearchClientOptions) *SearchClient {
	if opts == nil {
		opts = &SearchClientOptions{}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTP == nil {
		opts.HTTP = httpclient.New(nil)
	}
	if len(opts.Candidates) == 0 {
		opts.Candidates = DefaultModelCandidates
	}
	return &SearchClient{
		http:       opts.HTTP,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:     apiKey,
		models:     opts.Models,
		candidates: opts.Candidates,
	}
}

// SearchRequest describes one provider-native search.
type SearchRequest struct {
	// Provider names the adapter, used as the model side-cache key.
	Provider string
	Query    string
	Window   types.DateWindow
	// MaxResults caps how many search hits the provider should consider.
	MaxResults int
	// Domains restricts web search to the given sites; ignored for social.
	Domains []string
	// Social selects the dedicated social-search capability instead of
	// general web search.
	Social bool
}

// searchSource is the provider-side source selector.
type searchSource struct {
	Type            string   `json:"type"`
	AllowedWebsites []string `json:"allowed_websites,omitempty"`
}

type searchParameters struct {
	Mode             string         `json:"mode"`
	MaxSearchResults int            `json:"max_search_results,omitempty"`
	FromDate         string         `json:"from_date,omitempty"`
	ToDate           string         `json:"to_date,omitempty"`
	Sources          []searchSource `json:"sources,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string           `json:"model"`
	Messages         []chatMessage    `json:"messages"`
	SearchParameters searchParameters `json:"search_parameters"`
	Temperature      float64          `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Search runs one hosted search and returns the model's text content
// (expected to be an items JSON document) plus the raw response body.
// Models are probed in order, starting from the side-cached last-known
// working model; the first success is recorded back into the cache.
func (c *SearchClient) Search(ctx context.Context, req SearchRequest) (string, json.RawMessage, error) {
	if c.apiKey == "" {
		return "", nil, fmt.Errorf("search API key is empty")
	}

	var lastErr error
	for _, model := range c.modelOrder(req.Provider) {
		content, raw, err := c.searchWithModel(ctx, model, req)
		if err == nil {
			if c.models != nil {
				c.models.Put(req.Provider, model)
			}
			return content, raw, nil
		}
		lastErr = err
		if !isModelError(err) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("no usable search model: %w", lastErr)
}

func (c *SearchClient) searchWithModel(ctx context.Context, model string, req SearchRequest) (string, json.RawMessage, error) {
	sources := []searchSource{{Type: "web", AllowedWebsites: req.Domains}}
	if req.Social {
		sources = []searchSource{{Type: "x"}}
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Query},
		},
		SearchParameters: searchParameters{
			Mode:             "on",
			MaxSearchResults: req.MaxResults,
			FromDate:         req.Window.Start.Format("2006-01-02"),
			ToDate:           req.Window.End.Format("2006-01-02"),
			Sources:          sources,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
	}
	_, respBody, err := c.http.Do(ctx, http.MethodPost, c.baseURL+"/chat/completions", headers, body)
	if err != nil {
		return "", nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("search response has no choices")
	}
	return resp.Choices[0].Message.Content, json.RawMessage(respBody), nil
}

// modelOrder returns the probing order: side-cached model first, then the
// remaining candidates.
func (c *SearchClient) modelOrder(provider string) []string {
	order := make([]string, 0, len(c.candidates)+1)
	if c.models != nil {
		if cached, ok := c.models.Get(provider); ok {
			order = append(order, cached)
		}
	}
	for _, candidate := range c.candidates {
		if len(order) > 0 && order[0] == candidate {
			continue
		}
		order = append(order, candidate)
	}
	return order
}

// isModelError reports whether the failure looks model-specific (unknown
// or retired model), in which case the next candidate is worth probing.
func isModelError(err error) bool {
	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	if statusErr.Code == http.StatusNotFound {
		return true
	}
	return statusErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(statusErr.Body), "model")
}

// systemPrompt instructs the model to emit only the shared items JSON.
const systemPrompt = `You are a research assistant. Use the attached search results to answer.
Respond with ONLY a JSON array (no prose, no markdown fences). Each element:
{"title": string, "url": string, "snippet": string, "author": string,
 "published_at": "ISO-8601 date or datetime, empty if unknown",
 "relevance": number between 0 and 1 for topical fit,
 "engagement": object of numeric counters named in the request, omit if unavailable}.
Only include items with a real, resolvable url. Do not invent counters.`
