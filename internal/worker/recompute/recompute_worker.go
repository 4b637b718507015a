package recompute

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"github.com/census-statistics-service/internal/usecase"
	"github.com/census-statistics-service/internal/worker"
	"go.uber.org/zap"
)

const (
	maxBatchSize    = 20                     // messages consumed per read
	emptyQueueSleep = 100 * time.Millisecond // pause when the queue is empty
)

// RecomputeWorker consumes POI recompute jobs from the Redis stream and
// runs them one statistic at a time.
type RecomputeWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	recomputeUC  *usecase.RecomputeUseCase
	consumerName string
	maxRetries   int
}

// NewRecomputeWorker creates a new RecomputeWorker.
func NewRecomputeWorker(
	streamRepo repository.StreamRepository,
	recomputeUC *usecase.RecomputeUseCase,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *RecomputeWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &RecomputeWorker{
		BaseWorker:   worker.NewBaseWorker("poi-recompute", consumerGroup, logger),
		streamRepo:   streamRepo,
		recomputeUC:  recomputeUC,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start runs the consume loop until stopped.
func (w *RecomputeWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting RecomputeWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamPOIRecompute, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			if processed == 0 {
				time.Sleep(emptyQueueSleep)
			}
		}
	}
}

// processBatch reads and handles up to maxBatchSize messages. Returns how
// many messages were consumed.
func (w *RecomputeWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamPOIRecompute,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil
	}

	logger.Info("Processing batch", zap.Int("message_count", len(messages)))

	for _, msg := range messages {
		event, err := w.parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// ack malformed messages so they do not stay pending
			w.ack(ctx, msg.ID)
			continue
		}

		w.handleEvent(ctx, msg.ID, event)
	}

	return len(messages), nil
}

// handleEvent runs one recompute job. Failed jobs are re-enqueued with an
// incremented retry count until maxRetries is reached.
func (w *RecomputeWorker) handleEvent(ctx context.Context, messageID string, event *domain.POIRecomputeEvent) {
	logger := w.Logger()

	result, err := w.recomputeUC.Run(ctx, event.StatisticID, event.Force)
	if err != nil {
		logger.Error("POI recompute failed",
			zap.String("statistic_id", event.StatisticID),
			zap.Int("retry_count", event.RetryCount),
			zap.Error(err))

		if event.RetryCount < w.maxRetries {
			retry := domain.POIRecomputeEvent{
				StatisticID: event.StatisticID,
				Force:       event.Force,
				RetryCount:  event.RetryCount + 1,
			}
			if pubErr := w.streamRepo.PublishToStream(ctx, domain.StreamPOIRecompute, retry); pubErr != nil {
				logger.Error("Failed to re-enqueue recompute job",
					zap.String("statistic_id", event.StatisticID),
					zap.Error(pubErr))
			}
		} else {
			logger.Error("Recompute job dropped after max retries",
				zap.String("statistic_id", event.StatisticID),
				zap.Int("max_retries", w.maxRetries))
		}

		w.ack(ctx, messageID)
		return
	}

	logger.Info("POI recompute processed",
		zap.String("statistic_id", result.StatisticID),
		zap.String("run_id", result.RunID),
		zap.Int("upserted", result.Upserted),
		zap.Int("deactivated", result.Deactivated),
		zap.Bool("deactivate_only", result.DeactivateOnly))

	w.ack(ctx, messageID)
}

func (w *RecomputeWorker) parseMessage(msg domain.StreamMessage) (*domain.POIRecomputeEvent, error) {
	var event domain.POIRecomputeEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.StatisticID == "" {
		return nil, fmt.Errorf("event has no statistic id")
	}
	return &event, nil
}

func (w *RecomputeWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamPOIRecompute, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Warn("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}
