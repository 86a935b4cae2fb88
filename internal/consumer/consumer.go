// Package consumer provides Kafka consumer functionality for the device telemetry topic.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	kafkautil "fan-processor/internal/kafka"
)

// Consumer wraps a Kafka reader and provides batch-oriented consumption of
// raw telemetry event bodies.
type Consumer struct {
	reader *kafka.Reader
	topic  string
}

// NewConsumer creates a new Kafka consumer with the specified brokers, topic, and group ID.
// The consumer is configured for at-least-once delivery semantics with explicit commits.
func NewConsumer(brokers string, topic string, groupID string) (*Consumer, error) {
	if err := kafkautil.ValidateConsumerParams(brokers, topic, groupID); err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka consumer",
		"brokers", brokerList,
		"topic", topic,
		"group_id", groupID,
	)

	reader := kafka.NewReader(kafkautil.NewReaderConfig(brokerList, topic, groupID))

	return &Consumer{
		reader: reader,
		topic:  topic,
	}, nil
}

// FetchBatch fetches up to max messages from the topic. The call blocks until
// at least one message is available (or ctx is cancelled); additional messages
// already in flight are drained within a short window so the processor sees
// the same batches the broker delivered.
func (c *Consumer) FetchBatch(ctx context.Context, max int) ([]kafka.Message, error) {
	first, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message from Kafka: %w", err)
	}

	batch := []kafka.Message{first}

	drainCtx, cancel := context.WithTimeout(ctx, kafkautil.BatchDrainWait)
	defer cancel()

	for len(batch) < max {
		msg, err := c.reader.FetchMessage(drainCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			slog.Error("Failed to drain batch", "error", err)
			break
		}
		batch = append(batch, msg)
	}

	return batch, nil
}

// CommitThrough commits the offsets for all given messages.
// This should be called after the whole batch has been processed.
func (c *Consumer) CommitThrough(ctx context.Context, msgs []kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := c.reader.CommitMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to commit offsets: %w", err)
	}
	return nil
}

// Close gracefully closes the Kafka reader and releases resources.
func (c *Consumer) Close() error {
	slog.Info("Closing Kafka consumer", "topic", c.topic)
	if err := c.reader.Close(); err != nil {
		slog.Error("Error closing Kafka consumer", "error", err)
		return err
	}
	return nil
}
