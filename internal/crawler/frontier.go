package crawler

import "sync"

// Frontier owns the queue of URLs awaiting a fetch attempt and the set of
// URLs ever discovered. The discovered set is what enforces the at-most-once
// invariant: Add performs the membership check and the insert under one lock,
// so two workers racing on the same link can never both enqueue it.
//
// A URL moves Discovered → Enqueued on Add, Enqueued → InFlight on Next, and
// InFlight → retired on Done. Next only reports exhaustion once the queue is
// empty AND no URL is in flight, because an in-flight worker may still feed
// new work back in.
type Frontier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	seen     map[string]struct{}
	queue    []string
	inFlight int
	closed   bool
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	f := &Frontier{
		seen: make(map[string]struct{}),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Add enqueues url unless it was ever discovered before or the frontier is
// closed. The check-and-insert is a single atomic operation. It reports
// whether the URL was enqueued.
func (f *Frontier) Add(url string) bool {
	if url == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	if _, dup := f.seen[url]; dup {
		return false
	}
	f.seen[url] = struct{}{}
	f.queue = append(f.queue, url)
	f.cond.Signal()
	return true
}

// Next blocks until a URL is available, then claims it as in-flight. It
// returns false when no URL can ever become available again: the frontier is
// closed, or the queue is empty with nothing in flight.
func (f *Frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.queue) == 0 && f.inFlight > 0 && !f.closed {
		f.cond.Wait()
	}
	if f.closed || len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	f.inFlight++
	return url, true
}

// Done retires one in-flight URL. Callers must invoke it exactly once per
// successful Next, after any discovered links have been Added.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if f.inFlight == 0 && len(f.queue) == 0 {
		// Quiescent: wake every blocked worker so they can observe it.
		f.cond.Broadcast()
	}
}

// Close stops the frontier: queued work is discarded and blocked workers are
// released. Used for deadline wind-down.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.queue = nil
	f.cond.Broadcast()
}

// DiscoveredCount returns how many distinct URLs were ever accepted.
func (f *Frontier) DiscoveredCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
