package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// metricsKeyPrefix is the Redis key prefix for service metrics.
	metricsKeyPrefix = "metrics:"
	// metricsTTL is how long metrics stay in Redis if not refreshed.
	metricsTTL = 2 * time.Minute
	// defaultReportInterval is the default interval for writing metrics to Redis.
	defaultReportInterval = 30 * time.Second
)

// ServiceMetrics is the snapshot written to Redis on each report.
type ServiceMetrics struct {
	ServiceName string    `json:"service_name"`
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`

	EventsReceived   uint64 `json:"events_received"`
	EventsProcessed  uint64 `json:"events_processed"`
	EventsSkipped    uint64 `json:"events_skipped"`
	EventsFailed     uint64 `json:"events_failed"`
	ProcessingErrors uint64 `json:"processing_errors"`

	AvgProcessingLatencyNs float64 `json:"avg_processing_latency_ns"`
}

// Collector records event processing metrics and periodically reports them to
// Redis for centralized access.
type Collector struct {
	serviceName    string
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	eventsReceived   atomic.Uint64
	eventsProcessed  atomic.Uint64
	eventsSkipped    atomic.Uint64
	eventsFailed     atomic.Uint64
	processingErrors atomic.Uint64

	totalLatencyNs atomic.Uint64
	latencyCount   atomic.Uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Connect creates and validates a Redis connection for metrics reporting.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return client, nil
}

// NewCollector creates a metrics collector reporting under the given service name.
func NewCollector(serviceName string, redisClient *redis.Client) *Collector {
	return &Collector{
		serviceName:    serviceName,
		redis:          redisClient,
		startedAt:      time.Now().UTC(),
		reportInterval: defaultReportInterval,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the periodic metrics reporting to Redis.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.writeMetrics(context.Background()) // Final write
				return
			case <-c.stopCh:
				c.writeMetrics(context.Background()) // Final write
				return
			case <-ticker.C:
				c.writeMetrics(ctx)
			}
		}
	}()
}

// Stop stops the metrics reporting.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

func (c *Collector) RecordReceived() {
	c.eventsReceived.Add(1)
}

func (c *Collector) RecordProcessed(latency time.Duration) {
	c.eventsProcessed.Add(1)
	c.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
	c.latencyCount.Add(1)
}

func (c *Collector) RecordSkipped() {
	c.eventsSkipped.Add(1)
}

func (c *Collector) RecordError() {
	c.processingErrors.Add(1)
}

func (c *Collector) RecordFailed() {
	c.eventsFailed.Add(1)
}

// Snapshot builds the current metrics snapshot.
func (c *Collector) Snapshot() ServiceMetrics {
	var avgLatency float64
	if count := c.latencyCount.Load(); count > 0 {
		avgLatency = float64(c.totalLatencyNs.Load()) / float64(count)
	}

	return ServiceMetrics{
		ServiceName:            c.serviceName,
		StartedAt:              c.startedAt,
		LastUpdated:            time.Now().UTC(),
		EventsReceived:         c.eventsReceived.Load(),
		EventsProcessed:        c.eventsProcessed.Load(),
		EventsSkipped:          c.eventsSkipped.Load(),
		EventsFailed:           c.eventsFailed.Load(),
		ProcessingErrors:       c.processingErrors.Load(),
		AvgProcessingLatencyNs: avgLatency,
	}
}

// writeMetrics serializes the current snapshot and writes it to Redis.
func (c *Collector) writeMetrics(ctx context.Context) {
	snapshot := c.Snapshot()

	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("Failed to marshal metrics snapshot", "error", err)
		return
	}

	key := metricsKeyPrefix + c.serviceName
	if err := c.redis.Set(ctx, key, data, metricsTTL).Err(); err != nil {
		slog.Warn("Failed to write metrics to Redis", "key", key, "error", err)
	}
}

// Ensure Collector implements Recorder
var _ Recorder = (*Collector)(nil)
