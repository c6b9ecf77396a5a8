// Package crawler implements the crawl engine: URL normalization and
// filtering, priority classification, link extraction, the frontier with its
// visited-set accounting, and the bounded-concurrency coordinator that ties
// them together.
package crawler
