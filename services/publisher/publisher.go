package publisher

import "context"

// Publisher represents a service for publishing discount snapshots
type Publisher interface {
	// Publish publishes a message to the stream under the given key
	Publish(ctx context.Context, key string, message []byte) error

	// TrimStreams trims the stream to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}

// Nop is a Publisher that drops every message
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }
func (Nop) TrimStreams(context.Context) error              { return nil }
func (Nop) Close() error                                   { return nil }
