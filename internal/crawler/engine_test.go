package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClock struct {
	now time.Time
}

func (c stubClock) Now() time.Time { return c.now }

// stubFetcher serves pages from an in-memory map and records how many times
// each URL was requested.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
	delay time.Duration
}

func newStubFetcher(pages map[string]string) *stubFetcher {
	return &stubFetcher{
		pages: pages,
		calls: make(map[string]int),
	}
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Page{}, ctx.Err()
		}
	}
	s.mu.Lock()
	s.calls[rawURL]++
	body, ok := s.pages[rawURL]
	s.mu.Unlock()
	if !ok {
		return Page{}, fmt.Errorf("no route for %s", rawURL)
	}
	return Page{URL: rawURL, FinalURL: rawURL, StatusCode: 200, Body: []byte(body)}, nil
}

func (s *stubFetcher) callCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[url]
}

func testConfig(concurrency int) Config {
	return Config{
		StartURL:     "https://example.com/",
		Domain:       "example.com",
		Concurrency:  concurrency,
		FetchTimeout: 5 * time.Second,
		UserAgent:    "siteatlas-test/1.0",
	}
}

func anchors(hrefs ...string) string {
	html := "<html><body>"
	for _, h := range hrefs {
		html += `<a href="` + h + `">link</a>`
	}
	return html + "</body></html>"
}

func TestEngineRunSinglePage(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://example.com/": "<html><body><p>no links here</p></body></html>",
	})
	eng := NewEngine(testConfig(2), fetcher, newTestFilter(t), stubClock{now: time.Now()}, zap.NewNop())

	builder, stats, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, builder.Len())
	require.Equal(t, int64(1), stats.Visited)
	require.Equal(t, int64(1), stats.Fetched)
	require.Zero(t, stats.FetchFailed)
}

func TestEngineRunFollowsLinks(t *testing.T) {
	runDate := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	fetcher := newStubFetcher(map[string]string{
		"https://example.com/":     anchors("/docs", "/blog", "https://other.com/off-site"),
		"https://example.com/docs": anchors("/", "/docs#install"),
		"https://example.com/blog": anchors("/blog"),
	})
	eng := NewEngine(testConfig(4), fetcher, newTestFilter(t), stubClock{now: runDate}, zap.NewNop())

	builder, stats, err := eng.Run(context.Background())
	require.NoError(t, err)

	inv := builder.Snapshot("test-run", runDate)
	require.Len(t, inv.URLs, 3)
	require.Contains(t, inv.URLs, "https://example.com/")
	require.Contains(t, inv.URLs, "https://example.com/docs")
	require.Contains(t, inv.URLs, "https://example.com/blog")

	require.Equal(t, int64(3), stats.Visited)
	require.Equal(t, int64(3), stats.Fetched)
	// The off-site link is the only discard; fragment and self links are
	// deduplicated by the frontier, not discarded by the filter.
	require.Equal(t, int64(1), stats.Discarded)

	require.Equal(t, 1.0, inv.URLs["https://example.com/"].Priority)
	require.Equal(t, 0.9, inv.URLs["https://example.com/docs"].Priority)
	require.Equal(t, 0.8, inv.URLs["https://example.com/blog"].Priority)
	require.Equal(t, runDate, inv.URLs["https://example.com/docs"].LastModified)
}

func TestEngineFetchesEachURLOnce(t *testing.T) {
	// Every page links to every other page, plus fragment variants.
	fetcher := newStubFetcher(map[string]string{
		"https://example.com/":  anchors("/a", "/b", "/a#x", "/b#y"),
		"https://example.com/a": anchors("/", "/b", "/a"),
		"https://example.com/b": anchors("/", "/a", "/b#frag"),
	})
	eng := NewEngine(testConfig(8), fetcher, newTestFilter(t), stubClock{now: time.Now()}, zap.NewNop())

	_, stats, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.Visited)
	for _, url := range []string{"https://example.com/", "https://example.com/a", "https://example.com/b"} {
		require.Equal(t, 1, fetcher.callCount(url), "url %q", url)
	}
}

func TestEngineConcurrencyDoesNotChangeResult(t *testing.T) {
	pages := map[string]string{
		"https://example.com/":         anchors("/a", "/b"),
		"https://example.com/a":        anchors("/c", "/d"),
		"https://example.com/b":        anchors("/c", "/e"),
		"https://example.com/c":        anchors("/"),
		"https://example.com/d":        anchors("/e", "/docs"),
		"https://example.com/e":        anchors(),
		"https://example.com/docs":     anchors("/docs/sub"),
		"https://example.com/docs/sub": anchors("/a"),
	}

	crawl := func(concurrency int) map[string]struct{} {
		fetcher := newStubFetcher(pages)
		eng := NewEngine(testConfig(concurrency), fetcher, newTestFilter(t), stubClock{now: time.Now()}, zap.NewNop())
		builder, _, err := eng.Run(context.Background())
		require.NoError(t, err)
		inv := builder.Snapshot("run", time.Now())
		got := make(map[string]struct{}, len(inv.URLs))
		for url := range inv.URLs {
			got[url] = struct{}{}
		}
		return got
	}

	serial := crawl(1)
	parallel := crawl(20)
	require.Equal(t, serial, parallel)
	require.Len(t, serial, len(pages))
}

func TestEngineContinuesPastFetchFailures(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://example.com/":   anchors("/broken", "/ok"),
		"https://example.com/ok": anchors(),
		// /broken has no route and fails.
	})
	eng := NewEngine(testConfig(2), fetcher, newTestFilter(t), stubClock{now: time.Now()}, zap.NewNop())

	builder, stats, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.Visited)
	require.Equal(t, int64(2), stats.Fetched)
	require.Equal(t, int64(1), stats.FetchFailed)

	inv := builder.Snapshot("run", time.Now())
	require.NotContains(t, inv.URLs, "https://example.com/broken")
	require.Contains(t, inv.URLs, "https://example.com/ok")
}

func TestEngineRejectsBadSeed(t *testing.T) {
	cfg := testConfig(2)
	cfg.StartURL = "https://other.com/"
	eng := NewEngine(cfg, newStubFetcher(nil), newTestFilter(t), stubClock{now: time.Now()}, zap.NewNop())

	_, _, err := eng.Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSeedRejected))
}

func TestEngineDeadlineYieldsPartialInventory(t *testing.T) {
	pages := make(map[string]string)
	pages["https://example.com/"] = anchors("/p0")
	for i := 0; i < 50; i++ {
		pages[fmt.Sprintf("https://example.com/p%d", i)] = anchors(fmt.Sprintf("/p%d", i+1))
	}
	fetcher := newStubFetcher(pages)
	fetcher.delay = 20 * time.Millisecond

	cfg := testConfig(1)
	cfg.Deadline = 100 * time.Millisecond
	eng := NewEngine(cfg, fetcher, newTestFilter(t), stubClock{now: time.Now()}, zap.NewNop())

	builder, stats, err := eng.Run(context.Background())
	require.NoError(t, err, "deadline expiry must not be an error")
	require.Greater(t, builder.Len(), 0)
	require.Less(t, stats.Visited, int64(len(pages)), "deadline should cut the run short")
}

func TestEngineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eng := NewEngine(testConfig(1), newStubFetcher(nil), newTestFilter(t), stubClock{now: time.Now()}, zap.NewNop())
	_, _, err := eng.Run(ctx)
	require.Error(t, err)
}
