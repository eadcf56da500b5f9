package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/pulsewatch/internal/cache"
	"github.com/jonathan/pulsewatch/internal/llm"
	"github.com/jonathan/pulsewatch/internal/providers"
	"github.com/jonathan/pulsewatch/internal/types"
)

// fakeAdapter serves canned items (or a canned error) and counts calls.
type fakeAdapter struct {
	source types.SourceTag
	items  []types.RawItem
	err    error
	calls  atomic.Int32
}

func (f *fakeAdapter) Source() types.SourceTag { return f.source }

func (f *fakeAdapter) Search(_ context.Context, _ providers.Query) (*providers.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return &providers.Result{}, f.err
	}
	return &providers.Result{Items: f.items}, nil
}

// fakeJudge scores every item it is asked about with a fixed relevance.
type fakeJudge struct {
	relevance float64
	err       error
}

func (f *fakeJudge) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	// The judge prompt lists item ids as id=<id>; echo a score for each.
	return fmt.Sprintf(`{"scores": [{"id": "web-0", "relevance": %v}]}`, f.relevance), nil
}

func (f *fakeJudge) Close() error { return nil }

func testRequest(sources ...types.SourceTag) Request {
	if len(sources) == 0 {
		sources = types.AllSources()
	}
	return Request{
		Topic: "rust vs go",
		Window: types.DateWindow{
			Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC),
		},
		Depth:   types.DepthDefault,
		Sources: sources,
	}
}

func rawItem(title, url string) types.RawItem {
	return types.RawItem{Title: title, URL: url, PublishedAt: "2026-08-03T10:00:00Z"}
}

func allAvailable() map[types.SourceTag]bool {
	avail := make(map[types.SourceTag]bool)
	for _, s := range types.AllSources() {
		avail[s] = true
	}
	return avail
}

func TestRun_InvalidRequest(t *testing.T) {
	_, err := Run(context.Background(), Request{}, Options{})
	assert.Error(t, err)
}

func TestRun_NoEnabledSourcesReturnsEmptyReport(t *testing.T) {
	report, err := Run(context.Background(), testRequest(), Options{
		Adapters:     []providers.Adapter{&fakeAdapter{source: types.SourceForum}},
		Availability: map[types.SourceTag]bool{}, // nothing credentialed
	})

	require.NoError(t, err)
	assert.Equal(t, types.ModeNone, report.Mode)
	assert.Empty(t, report.Sources)
	assert.Empty(t, report.Items)
	assert.Empty(t, report.Errors)
}

func TestRun_HappyPath(t *testing.T) {
	forum := &fakeAdapter{source: types.SourceForum, items: []types.RawItem{
		rawItem("thread one", "https://forum.example/1"),
		rawItem("thread two", "https://forum.example/2"),
	}}
	web := &fakeAdapter{source: types.SourceWeb, items: []types.RawItem{
		rawItem("an article", "https://example.com/a"),
	}}

	report, err := Run(context.Background(), testRequest(types.SourceForum, types.SourceWeb), Options{
		Adapters:     []providers.Adapter{forum, web},
		Availability: allAvailable(),
	})

	require.NoError(t, err)
	assert.Equal(t, types.ModeLive, report.Mode)
	assert.ElementsMatch(t, []types.SourceTag{types.SourceForum, types.SourceWeb}, report.Sources)
	assert.Len(t, report.Items, 3)
	assert.Empty(t, report.Errors)
	assert.NotZero(t, report.RunID)
	assert.False(t, report.Failed())

	// Items come back scored and sorted best-first.
	for i := 1; i < len(report.Items); i++ {
		assert.GreaterOrEqual(t, report.Items[i-1].Score, report.Items[i].Score)
	}
	for _, item := range report.Items {
		assert.NotNil(t, item.Breakdown)
	}
}

func TestRun_PartialFailureIsIsolated(t *testing.T) {
	forum := &fakeAdapter{source: types.SourceForum, items: []types.RawItem{
		rawItem("thread", "https://forum.example/1"),
	}}
	video := &fakeAdapter{source: types.SourceVideo, err: fmt.Errorf("search failed: status 503")}

	report, err := Run(context.Background(), testRequest(types.SourceForum, types.SourceVideo), Options{
		Adapters:     []providers.Adapter{forum, video},
		Availability: allAvailable(),
	})

	require.NoError(t, err)
	assert.Len(t, report.Items, 1)
	require.Contains(t, report.Errors, "video")
	assert.Contains(t, report.Errors["video"], "503")
	assert.False(t, report.Failed())
}

func TestRun_AllSourcesFailing(t *testing.T) {
	forum := &fakeAdapter{source: types.SourceForum, err: fmt.Errorf("down")}
	web := &fakeAdapter{source: types.SourceWeb, err: fmt.Errorf("down")}

	report, err := Run(context.Background(), testRequest(types.SourceForum, types.SourceWeb), Options{
		Adapters:     []providers.Adapter{forum, web},
		Availability: allAvailable(),
	})

	require.NoError(t, err, "provider failures never abort the run")
	assert.True(t, report.Failed())
	assert.Empty(t, report.Items)
	assert.Len(t, report.Errors, 2)
}

func TestRun_RequestedSourcesFilterAdapters(t *testing.T) {
	forum := &fakeAdapter{source: types.SourceForum, items: []types.RawItem{rawItem("t", "https://forum.example/1")}}
	web := &fakeAdapter{source: types.SourceWeb, items: []types.RawItem{rawItem("a", "https://example.com/a")}}

	report, err := Run(context.Background(), testRequest(types.SourceForum), Options{
		Adapters:     []providers.Adapter{forum, web},
		Availability: allAvailable(),
	})

	require.NoError(t, err)
	assert.Equal(t, []types.SourceTag{types.SourceForum}, report.Sources)
	assert.Equal(t, int32(0), web.calls.Load())
}

func TestRun_DuplicatesSuppressed(t *testing.T) {
	forum := &fakeAdapter{source: types.SourceForum, items: []types.RawItem{
		rawItem("we benchmarked five async runtimes and the results surprised us", "https://forum.example/1"),
	}}
	micro := &fakeAdapter{source: types.SourceMicroblog, items: []types.RawItem{
		rawItem("we benchmarked five async runtimes and the results surprised us all", "https://micro.example/2"),
	}}

	report, err := Run(context.Background(), testRequest(types.SourceForum, types.SourceMicroblog), Options{
		Adapters:     []providers.Adapter{forum, micro},
		Availability: allAvailable(),
	})

	require.NoError(t, err)
	assert.Len(t, report.Items, 1)
}

func TestRun_CachedRerunSkipsAdapters(t *testing.T) {
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)

	forum := &fakeAdapter{source: types.SourceForum, items: []types.RawItem{
		rawItem("thread", "https://forum.example/1"),
	}}
	opts := Options{
		Adapters:     []providers.Adapter{forum},
		Availability: allAvailable(),
		Cache:        store,
	}
	req := testRequest(types.SourceForum)

	first, err := Run(context.Background(), req, opts)
	require.NoError(t, err)

	second, err := Run(context.Background(), req, opts)
	require.NoError(t, err)

	assert.Equal(t, int32(1), forum.calls.Load(), "second run must be served from cache")
	require.Len(t, second.Items, len(first.Items))
	assert.Equal(t, first.Items[0].Permalink, second.Items[0].Permalink)
	assert.InDelta(t, first.Items[0].Score, second.Items[0].Score, 1e-9)
}

func TestRun_JudgeFillsUnknownRelevance(t *testing.T) {
	web := &fakeAdapter{source: types.SourceWeb, items: []types.RawItem{
		rawItem("an article", "https://example.com/a"),
	}}

	report, err := Run(context.Background(), testRequest(types.SourceWeb), Options{
		Adapters:     []providers.Adapter{web},
		Availability: allAvailable(),
		Judge:        &fakeJudge{relevance: 0.9},
	})

	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, 0.9, report.Items[0].Relevance)
}

func TestRun_JudgeDoesNotOverrideProviderRelevance(t *testing.T) {
	rel := 0.3
	item := rawItem("an article", "https://example.com/a")
	item.Relevance = &rel
	web := &fakeAdapter{source: types.SourceWeb, items: []types.RawItem{item}}

	report, err := Run(context.Background(), testRequest(types.SourceWeb), Options{
		Adapters:     []providers.Adapter{web},
		Availability: allAvailable(),
		Judge:        &fakeJudge{relevance: 0.9},
	})

	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, 0.3, report.Items[0].Relevance)
}

func TestRun_JudgeFailureIsSoft(t *testing.T) {
	web := &fakeAdapter{source: types.SourceWeb, items: []types.RawItem{
		rawItem("an article", "https://example.com/a"),
	}}

	report, err := Run(context.Background(), testRequest(types.SourceWeb), Options{
		Adapters:     []providers.Adapter{web},
		Availability: allAvailable(),
		Judge:        &fakeJudge{err: fmt.Errorf("quota exceeded")},
	})

	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, 0.5, report.Items[0].Relevance, "default relevance survives a judge failure")
	assert.Empty(t, report.Errors)
}

func TestRun_NilAvailabilityEnablesEverything(t *testing.T) {
	forum := &fakeAdapter{source: types.SourceForum, items: []types.RawItem{
		rawItem("thread", "https://forum.example/1"),
	}}

	report, err := Run(context.Background(), testRequest(types.SourceForum), Options{
		Adapters: []providers.Adapter{forum},
	})

	require.NoError(t, err)
	assert.Equal(t, types.ModeLive, report.Mode)
	assert.Len(t, report.Items, 1)
}
