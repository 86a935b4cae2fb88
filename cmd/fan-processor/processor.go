package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"fan-processor/internal/consumer"
	"fan-processor/internal/events"
	"fan-processor/internal/metrics"
)

// eventRouter is the part of the router the batch loop depends on.
type eventRouter interface {
	Route(ctx context.Context, ev *events.Event, raw []byte) error
}

// processEvents fetches telemetry batches from Kafka and processes them
// sequentially. Offsets are committed once the whole batch has been handled,
// giving at-least-once delivery.
func processEvents(ctx context.Context, kafkaConsumer *consumer.Consumer, router eventRouter, recorder metrics.Recorder, batchSize int) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("Event processing loop stopped")
			return nil
		default:
			batch, err := kafkaConsumer.FetchBatch(ctx, batchSize)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("Failed to fetch event batch", "error", err)
				continue
			}

			processBatch(ctx, router, recorder, batch)

			if err := kafkaConsumer.CommitThrough(ctx, batch); err != nil {
				slog.Error("Failed to commit batch offsets", "error", err)
			}
		}
	}
}

// processBatch handles each event in arrival order. One event's failure never
// aborts the rest of the batch.
func processBatch(ctx context.Context, router eventRouter, recorder metrics.Recorder, batch []kafka.Message) {
	slog.Debug("Processing event batch", "size", len(batch))
	for i := range batch {
		processOne(ctx, router, recorder, &batch[i])
	}
}

// processOne decodes and routes a single event, isolating its failures.
func processOne(ctx context.Context, router eventRouter, recorder metrics.Recorder, msg *kafka.Message) {
	startTime := time.Now()
	recorder.RecordReceived()

	ev, err := events.Decode(msg.Value)
	if err != nil {
		slog.Error("Failed to decode event, skipping",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		recorder.RecordError()
		return
	}

	if !ev.Routable() {
		slog.Debug("Event missing device id, skipping", "event_id", ev.ID)
		recorder.RecordSkipped()
		return
	}

	slog.Info("Processing event",
		"event_id", ev.ID,
		"device_id", ev.DeviceID,
		"message_type", ev.MessageType,
	)

	if err := routeIsolated(ctx, router, ev, msg.Value); err != nil {
		slog.Error("Workflow failed, abandoning event",
			"event_id", ev.ID,
			"device_id", ev.DeviceID,
			"message_type", ev.MessageType,
			"error", err,
		)
		recorder.RecordFailed()
		return
	}

	recorder.RecordProcessed(time.Since(startTime))
}

// routeIsolated invokes the router and converts a workflow panic into an
// error so a single poisoned event cannot take down the batch.
func routeIsolated(ctx context.Context, router eventRouter, ev *events.Event, raw []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workflow panicked: %v", r)
		}
	}()
	return router.Route(ctx, ev, raw)
}
