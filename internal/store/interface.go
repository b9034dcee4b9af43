package store

import (
	"context"

	"tradebook/internal/store/model"
)

// MessageStore persists booked messages and serves them back by trade.
type MessageStore interface {
	// Write stores one serialized message; ref is the sink path it was booked under.
	Write(ctx context.Context, ref string, data []byte) error
	// ListByTradeID returns the newest messages first.
	ListByTradeID(ctx context.Context, tradeID string, limit int) ([]model.BookedMessageModel, error)
	// FindByChecksum returns nil when no message matches.
	FindByChecksum(ctx context.Context, checksum string) (*model.BookedMessageModel, error)
	Close() error
}
