package crawler

import (
	"fmt"
	"time"
)

// Policy constants. A URL gets exactly one fetch attempt per run; the
// at-most-once invariant is what lets the visited count double as the fetch
// count.
const fetchAttemptsPerRun = 1

// Config holds the settings for one crawl run. It is decoupled from Viper so
// the engine can be constructed and tested independently; all values are
// fixed at crawl start and never change mid-run.
type Config struct {
	StartURL         string
	Domain           string
	ExcludedPatterns []string
	TrackingParams   []string
	Concurrency      int
	FetchTimeout     time.Duration
	Deadline         time.Duration
	UserAgent        string
}

// Validate checks for unusable configuration combinations.
func (c Config) Validate() error {
	if c.StartURL == "" {
		return fmt.Errorf("crawler start_url must be set")
	}
	if c.Domain == "" {
		return fmt.Errorf("crawler domain must be set")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("crawler concurrency must be > 0")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("crawler fetch_timeout must be > 0")
	}
	if c.Deadline < 0 {
		return fmt.Errorf("crawler deadline must be >= 0")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("crawler user_agent must be set")
	}
	return nil
}
