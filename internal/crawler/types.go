package crawler

import (
	"github.com/siteatlas/siteatlas/internal/inventory"
)

// Page is the raw result of fetching one URL.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
}

// Outcome classifies what happened to one frontier URL. Every dequeued URL
// ends in exactly one outcome; the coordinator consumes these instead of
// silently skipping failures so that per-run statistics stay observable.
type Outcome int

// Per-URL outcomes.
const (
	// OutcomeFetched means the page was retrieved and its links extracted.
	OutcomeFetched Outcome = iota
	// OutcomeFetchFailed means the fetch attempt failed; the URL counts as
	// visited but contributes no PageRecord.
	OutcomeFetchFailed
	// OutcomeParseFailed means the page was retrieved but its content could
	// not be parsed; it is recorded with zero extracted links.
	OutcomeParseFailed
)

// pageResult is the explicit per-URL result variant produced by a worker.
type pageResult struct {
	URL     string
	Outcome Outcome
	Record  inventory.PageRecord
	Links   []string
	Err     error
}

// Stats summarizes one crawl run. Visited equals the number of fetch
// attempts, which by the at-most-once invariant equals the number of
// distinct URLs dequeued from the frontier.
type Stats struct {
	Visited     int64
	Fetched     int64
	FetchFailed int64
	ParseFailed int64
	Discarded   int64
}
