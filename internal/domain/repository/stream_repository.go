package repository

import (
	"context"

	"github.com/census-statistics-service/internal/domain"
)

// StreamRepository is the Redis Streams job transport.
type StreamRepository interface {
	// CreateConsumerGroup creates the consumer group for a stream.
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeBatch reads up to count pending messages without blocking.
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error)

	// AckMessage acknowledges a processed message.
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// PublishToStream publishes a JSON-serialized message to a stream.
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
