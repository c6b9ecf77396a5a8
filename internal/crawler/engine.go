package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/siteatlas/siteatlas/internal/inventory"
)

// ErrSeedRejected is returned when the start URL fails normalization or
// filtering. It is the only fatal error class a crawl surfaces; everything
// else degrades into a less complete inventory.
var ErrSeedRejected = errors.New("start URL rejected by filter")

// Engine drives a pool of workers over one shared Frontier until every
// reachable in-scope URL has been attempted exactly once, or the run
// deadline expires.
type Engine struct {
	cfg     Config
	fetcher Fetcher
	filter  *Filter
	clock   Clock
	logger  *zap.Logger
}

// NewEngine constructs an Engine. The filter must be scoped to cfg.Domain.
func NewEngine(cfg Config, fetcher Fetcher, filter *Filter, clock Clock, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		fetcher: fetcher,
		filter:  filter,
		clock:   clock,
		logger:  logger,
	}
}

type runCounters struct {
	visited     atomic.Int64
	fetched     atomic.Int64
	fetchFailed atomic.Int64
	parseFailed atomic.Int64
	discarded   atomic.Int64
}

func (c *runCounters) snapshot() Stats {
	return Stats{
		Visited:     c.visited.Load(),
		Fetched:     c.fetched.Load(),
		FetchFailed: c.fetchFailed.Load(),
		ParseFailed: c.parseFailed.Load(),
		Discarded:   c.discarded.Load(),
	}
}

// Run crawls from the configured start URL and returns the accumulated page
// records. A deadline expiry is not an error: the builder then holds a
// partial but valid record set. Only a rejected seed fails the run.
func (e *Engine) Run(ctx context.Context) (*inventory.Builder, Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	seed, ok := e.filter.ShouldCrawl(e.cfg.StartURL)
	if !ok {
		return nil, Stats{}, fmt.Errorf("%w: %q", ErrSeedRejected, e.cfg.StartURL)
	}

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if e.cfg.Deadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.cfg.Deadline)
	}
	defer cancel()

	frontier := NewFrontier()
	frontier.Add(seed)

	builder := inventory.NewBuilder()
	counters := &runCounters{}
	runDate := e.clock.Now()

	// Release blocked workers when the run deadline or caller context ends.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-runCtx.Done():
			frontier.Close()
		case <-watchDone:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < e.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.work(runCtx, frontier, builder, counters, runDate)
		}()
	}
	wg.Wait()
	close(watchDone)

	stats := counters.snapshot()
	TotalCrawlRuns.Inc()
	e.logger.Info("crawl finished",
		zap.String("seed", seed),
		zap.Int64("visited", stats.Visited),
		zap.Int64("fetched", stats.Fetched),
		zap.Int64("fetch_failed", stats.FetchFailed),
		zap.Int64("parse_failed", stats.ParseFailed),
		zap.Int64("discarded", stats.Discarded),
	)
	return builder, stats, nil
}

// work is one worker's loop: claim a URL, process it, feed accepted links
// back, retire the URL. Links are added before Done so the frontier cannot
// observe a false quiescence while a worker still holds discoveries.
func (e *Engine) work(
	ctx context.Context,
	frontier *Frontier,
	builder *inventory.Builder,
	counters *runCounters,
	runDate time.Time,
) {
	for {
		url, ok := frontier.Next()
		if !ok {
			return
		}

		res := e.processURL(ctx, url, runDate)
		counters.visited.Add(fetchAttemptsPerRun)

		switch res.Outcome {
		case OutcomeFetchFailed:
			counters.fetchFailed.Add(1)
			TotalFetchErrors.Inc()
			e.logger.Warn("fetch failed", zap.String("url", url), zap.Error(res.Err))
		case OutcomeParseFailed:
			counters.parseFailed.Add(1)
			TotalParseErrors.Inc()
			builder.Add(res.Record)
			e.logger.Warn("parse failed", zap.String("url", url), zap.Error(res.Err))
		case OutcomeFetched:
			counters.fetched.Add(1)
			TotalPagesFetched.Inc()
			builder.Add(res.Record)
			for _, link := range res.Links {
				canonical, accepted := e.filter.ShouldCrawl(link)
				if !accepted {
					counters.discarded.Add(1)
					TotalURLsDiscarded.Inc()
					continue
				}
				frontier.Add(canonical)
			}
		}

		frontier.Done()
	}
}

// processURL performs the fetch → extract pipeline for one claimed URL and
// reports the outcome variant.
func (e *Engine) processURL(ctx context.Context, canonical string, runDate time.Time) pageResult {
	fetchCtx := ctx
	cancel := context.CancelFunc(func() {})
	if e.cfg.FetchTimeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, e.cfg.FetchTimeout)
	}
	defer cancel()

	page, err := e.fetcher.Fetch(fetchCtx, canonical)
	if err != nil {
		return pageResult{URL: canonical, Outcome: OutcomeFetchFailed, Err: err}
	}

	record := inventory.PageRecord{
		URL:          canonical,
		LastModified: runDate,
		Priority:     Priority(canonical),
	}

	links, err := ExtractLinks(page.Body, canonical)
	if err != nil {
		return pageResult{URL: canonical, Outcome: OutcomeParseFailed, Record: record, Err: err}
	}
	return pageResult{URL: canonical, Outcome: OutcomeFetched, Record: record, Links: links}
}
