package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultExcludedPatterns rejects binary assets and pages that are never
// worth inventorying. Matching is substring-based over the lowercased
// canonical URL.
var DefaultExcludedPatterns = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".zip",
	".svg", ".webp", ".ico", ".ttf", ".woff",
	".mp4", ".mp3", ".mov",
	"/search", "/login", "/admin",
}

// DefaultTrackingParams are query-parameter markers that identify campaign
// tracking noise. A URL carrying any of them is rejected outright; the same
// page is always reachable through its clean form.
var DefaultTrackingParams = []string{"utm_", "fbclid", "gclid"}

// Filter decides whether a candidate URL is in scope for the crawl and
// canonicalizes accepted URLs. It is pure: malformed input yields a
// rejection, never an error that could abort the run.
type Filter struct {
	host     string
	excluded []string
	tracking []string
}

// NewFilter builds a Filter scoped to the given domain. The domain may be a
// bare host ("example.com") or a full URL; only the lowercased host is kept
// and candidate hosts must match it exactly (no subdomain wildcarding).
func NewFilter(domain string, excluded, tracking []string) (*Filter, error) {
	host := strings.TrimSpace(strings.ToLower(domain))
	if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parse domain %q: %w", domain, err)
		}
		host = u.Hostname()
	}
	if host == "" {
		return nil, fmt.Errorf("domain is required")
	}
	if excluded == nil {
		excluded = DefaultExcludedPatterns
	}
	if tracking == nil {
		tracking = DefaultTrackingParams
	}
	lowered := make([]string, 0, len(excluded))
	for _, p := range excluded {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	markers := make([]string, 0, len(tracking))
	for _, p := range tracking {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			markers = append(markers, p)
		}
	}
	return &Filter{host: host, excluded: lowered, tracking: markers}, nil
}

// Host returns the host this filter is scoped to.
func (f *Filter) Host() string {
	return f.host
}

// Normalize canonicalizes a URL: scheme and host lowercased, default ports
// and fragment stripped, tracking parameters dropped, remaining query keys
// sorted, empty path rewritten to "/", trailing slash trimmed on non-root
// paths. Normalizing an already-normalized URL is a no-op.
func (f *Filter) Normalize(raw string) (string, error) {
	u, err := f.normalize(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (f *Filter) normalize(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	u.Fragment = ""

	if u.Path == "" {
		u.Path = "/"
	} else if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if f.isTrackingKey(key) {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// ShouldCrawl reports whether raw is in scope and returns its canonical
// form. Relative references must already be resolved against the page they
// were found on; this function only sees absolute URLs.
func (f *Filter) ShouldCrawl(raw string) (string, bool) {
	u, err := f.normalize(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Hostname() != f.host {
		return "", false
	}

	// Tracking markers are matched against the original query's parameter
	// names, before normalization strips them.
	if orig, err := url.Parse(strings.TrimSpace(raw)); err == nil && orig.RawQuery != "" {
		for key := range orig.Query() {
			if f.isTrackingKey(key) {
				return "", false
			}
		}
	}

	canonical := u.String()
	lowered := strings.ToLower(canonical)
	for _, pattern := range f.excluded {
		if strings.Contains(lowered, pattern) {
			return "", false
		}
	}
	return canonical, true
}

func (f *Filter) isTrackingKey(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range f.tracking {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
