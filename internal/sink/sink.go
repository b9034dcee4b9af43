// Package sink defines where assembled messages are delivered.
package sink

import "context"

// Writer persists a message body under a logical path.
type Writer interface {
	Write(ctx context.Context, path string, data []byte) error
}

// Publisher sends a message body to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, data []byte) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, path string, data []byte) error

func (f WriterFunc) Write(ctx context.Context, path string, data []byte) error {
	return f(ctx, path, data)
}
