package crawler

import (
	"context"
	"time"
)

// Fetcher retrieves one page. Implementations must honor the context
// deadline; failures surface as errors, never as panics or process aborts.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Clock returns the current time (swappable for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces inventory identifiers.
type IDGenerator interface {
	NewID() (string, error)
}
