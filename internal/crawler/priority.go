package crawler

import (
	"net/url"
	"strings"
)

// Priority tiers. Rules are checked in order and the first match wins, so a
// path containing both "/docs" and "/blog" scores as docs.
const (
	homepagePriority = 1.0
	defaultPriority  = 0.7
)

type priorityRule struct {
	marker string
	score  float64
}

var priorityRules = []priorityRule{
	{marker: "/docs", score: 0.9},
	{marker: "/product", score: 0.85},
	{marker: "/features", score: 0.85},
	{marker: "/blog", score: 0.8},
}

// Priority maps a canonical URL to an importance score in [0.0, 1.0].
// Deterministic and side-effect free.
func Priority(canonical string) float64 {
	u, err := url.Parse(canonical)
	if err != nil {
		return defaultPriority
	}
	path := strings.ToLower(u.Path)
	if path == "" || path == "/" {
		return homepagePriority
	}
	for _, rule := range priorityRules {
		if strings.Contains(path, rule.marker) {
			return rule.score
		}
	}
	return defaultPriority
}
