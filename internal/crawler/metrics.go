package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalPagesFetched tracks pages successfully retrieved and recorded.
	TotalPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siteatlas_pages_fetched_total",
		Help: "The total number of pages successfully fetched and recorded.",
	})
	// TotalFetchErrors tracks fetch attempts that failed.
	TotalFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siteatlas_fetch_errors_total",
		Help: "The total number of failed fetch attempts.",
	})
	// TotalParseErrors tracks fetched pages whose content could not be parsed.
	TotalParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siteatlas_parse_errors_total",
		Help: "The total number of pages whose content could not be parsed.",
	})
	// TotalURLsDiscarded tracks discovered links rejected by the filter.
	TotalURLsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siteatlas_urls_discarded_total",
		Help: "The total number of discovered links rejected by the URL filter.",
	})
	// TotalCrawlRuns tracks completed crawl runs.
	TotalCrawlRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siteatlas_crawl_runs_total",
		Help: "The total number of completed crawl runs.",
	})
)
