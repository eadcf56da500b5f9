// Package pipeline provides the fetch orchestrator: it dispatches all
// enabled provider adapters concurrently through the response cache,
// collects results with per-provider error isolation, runs the pooled
// records through normalize -> rank -> dedup, and returns one immutable
// report.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/pulsewatch/internal/cache"
	"github.com/jonathan/pulsewatch/internal/dedup"
	"github.com/jonathan/pulsewatch/internal/llm"
	"github.com/jonathan/pulsewatch/internal/normalize"
	"github.com/jonathan/pulsewatch/internal/providers"
	"github.com/jonathan/pulsewatch/internal/ranking"
	"github.com/jonathan/pulsewatch/internal/types"
)

// DefaultBudget is the overall wall-clock limit for one run. In-flight
// adapter calls past the budget are abandoned and recorded as provider
// errors, not partial successes.
const DefaultBudget = 4 * time.Minute

// phase labels for verbose logging; the orchestrator moves strictly
// forward through them.
const (
	phaseDispatching = "dispatching"
	phaseCollecting  = "collecting"
	phaseProcessing  = "processing"
	phaseDone        = "done"
)

// Options wires the orchestrator's collaborators.
type Options struct {
	Adapters []providers.Adapter
	Cache    *cache.Store
	// Availability maps each source to whether usable credentials exist.
	// The core never parses credentials itself; this opaque lookup is the
	// sole configuration input.
	Availability map[types.SourceTag]bool
	// Judge optionally estimates relevance for items whose provider
	// supplied none. Nil disables judging.
	Judge llm.Client

	ContentTTL time.Duration
	Budget     time.Duration
	Verbose    bool
}

// cachedSearch is the cache payload for one adapter call.
type cachedSearch struct {
	Items []types.RawItem `json:"items"`
}

// sourceSlot is one provider's result. Each dispatch goroutine owns
// exactly one slot, so no shared mutable state is written concurrently.
type sourceSlot struct {
	source types.SourceTag
	items  []types.RawItem
	err    error
}

// Run executes one aggregation run and returns the finished report. A
// provider failure never aborts the run; the worst outcome is an empty,
// error-annotated report.
func Run(ctx context.Context, req Request, opts Options) (*types.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if opts.ContentTTL <= 0 {
		opts.ContentTTL = cache.DefaultContentTTL
	}
	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}

	started := time.Now()
	report := &types.Report{
		RunID:       uuid.New(),
		Topic:       req.Topic,
		Window:      req.Window,
		Depth:       req.Depth,
		Errors:      make(map[string]string),
		GeneratedAt: started,
	}

	enabled := enabledAdapters(req.Sources, opts)
	if len(enabled) == 0 {
		// Not a failure: the caller must supply content from elsewhere.
		report.Mode = types.ModeNone
		report.Sources = []types.SourceTag{}
		report.Items = []types.ContentItem{}
		report.Elapsed = time.Since(started)
		return report, nil
	}

	report.Mode = types.ModeLive
	for _, a := range enabled {
		report.Sources = append(report.Sources, a.Source())
	}

	runCtx, cancel := context.WithTimeout(ctx, opts.Budget)
	defer cancel()

	logf(opts.Verbose, phaseDispatching, "querying %d sources for %q", len(enabled), req.Topic)
	slots := dispatch(runCtx, req, enabled, opts)

	logf(opts.Verbose, phaseCollecting, "all provider tasks finished")
	pool := make([]types.ContentItem, 0)
	for _, slot := range slots {
		if slot.err != nil {
			report.Errors[string(slot.source)] = slot.err.Error()
			continue
		}
		ordinal := 0
		for _, rec := range slot.items {
			item, ok := normalize.FromRaw(rec, slot.source, req.Window, ordinal)
			if !ok {
				continue
			}
			ordinal++
			pool = append(pool, *item)
		}
	}

	logf(opts.Verbose, phaseProcessing, "normalized %d items from %d sources", len(pool), len(enabled))
	judgeRelevance(runCtx, req.Topic, pool, opts)
	pool = ranking.Rank(pool, req.Window)
	pool = dedup.Suppress(pool)

	report.Items = pool
	report.Elapsed = time.Since(started)
	logf(opts.Verbose, phaseDone, "report ready: %d items, %d provider errors, %s elapsed",
		len(report.Items), len(report.Errors), report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// enabledAdapters selects the adapters that are both requested and backed
// by usable credentials.
func enabledAdapters(requested []types.SourceTag, opts Options) []providers.Adapter {
	want := make(map[types.SourceTag]bool, len(requested))
	for _, s := range requested {
		want[s] = true
	}
	enabled := make([]providers.Adapter, 0, len(opts.Adapters))
	for _, a := range opts.Adapters {
		if !want[a.Source()] {
			continue
		}
		if opts.Availability != nil && !opts.Availability[a.Source()] {
			continue
		}
		enabled = append(enabled, a)
	}
	return enabled
}

// dispatch runs every enabled adapter concurrently through the cache.
// A task failure is captured in its own slot and never cancels siblings.
func dispatch(ctx context.Context, req Request, enabled []providers.Adapter, opts Options) []sourceSlot {
	slots := make([]sourceSlot, len(enabled))

	var g errgroup.Group
	for i, a := range enabled {
		i, a := i, a
		slots[i].source = a.Source()
		g.Go(func() error {
			slots[i].items, slots[i].err = searchCached(ctx, req, a, opts)
			return nil
		})
	}
	// Tasks never return errors; failures live in the slots.
	_ = g.Wait()
	return slots
}

// searchCached wraps one adapter call in the response cache so identical
// requests within the TTL skip network I/O.
func searchCached(ctx context.Context, req Request, a providers.Adapter, opts Options) ([]types.RawItem, error) {
	fetch := func(ctx context.Context) ([]byte, error) {
		result, err := a.Search(ctx, providers.Query{
			Topic:  req.Topic,
			Depth:  req.Depth,
			Window: req.Window,
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(cachedSearch{Items: result.Items})
	}

	var payload []byte
	var err error
	if opts.Cache != nil {
		key := cache.Key(req.Topic,
			req.Window.Start.Format("2006-01-02"), req.Window.End.Format("2006-01-02"),
			string(a.Source()), string(req.Depth))
		var fromCache bool
		payload, fromCache, err = opts.Cache.GetOrFetch(ctx, key, opts.ContentTTL, fetch)
		if err == nil && fromCache {
			logf(opts.Verbose, phaseDispatching, "%s served from cache", a.Source())
		}
	} else {
		payload, err = fetch(ctx)
	}
	if err != nil {
		return nil, err
	}

	var cached cachedSearch
	if err := json.Unmarshal(payload, &cached); err != nil {
		return nil, fmt.Errorf("corrupt cached payload for %s: %w", a.Source(), err)
	}
	return cached.Items, nil
}

// judgeRelevance fills in relevance for items whose provider supplied no
// estimate. Judge failures are soft: defaults stay in place.
func judgeRelevance(ctx context.Context, topic string, pool []types.ContentItem, opts Options) {
	if opts.Judge == nil {
		return
	}
	unknown := make([]types.ContentItem, 0)
	for i := range pool {
		if !pool[i].RelevanceKnown {
			unknown = append(unknown, pool[i])
		}
	}
	if len(unknown) == 0 {
		return
	}

	scores, err := llm.JudgeRelevance(ctx, opts.Judge, topic, unknown)
	if err != nil {
		log.Printf("Warning: relevance judging skipped: %v", err)
		return
	}
	for i := range pool {
		if score, ok := scores[pool[i].ID]; ok && !pool[i].RelevanceKnown {
			pool[i].Relevance = score
			pool[i].RelevanceKnown = true
		}
	}
}

func logf(verbose bool, phase, format string, args ...any) {
	if verbose {
		log.Printf("[PIPELINE] %s: %s", phase, fmt.Sprintf(format, args...))
	}
}
