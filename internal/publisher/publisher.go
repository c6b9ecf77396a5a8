// Package publisher defines the interface for emitting change events after a
// crawl run. Implementations live in subpackages.
package publisher

import "context"

// Publisher emits one event per completed crawl run carrying the change
// report.
type Publisher interface {
	// Publish sends payload (JSON-marshaled by the implementation) to topic
	// and returns the backend message ID.
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Noop discards every event. Used when no event topic is configured.
type Noop struct{}

// Publish does nothing and returns an empty ID.
func (Noop) Publish(_ context.Context, _ string, _ any) (string, error) {
	return "", nil
}
