package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/feedback"
	"github.com/eventpulse/backend/internal/realtime"
	"github.com/eventpulse/backend/pkg/queue"
)

const retryBackoff = 2 * time.Second

// StatsDigestProcessor processes stats digest jobs: recompute event stats and
// push the fresh numbers to connected dashboards via Redis pub/sub.
type StatsDigestProcessor struct {
	agg    *feedback.Aggregator
	pub    realtime.RedisPublisher
	queue  *queue.Queue
	logger *zap.Logger
}

// NewStatsDigestProcessor creates a stats digest processor.
func NewStatsDigestProcessor(agg *feedback.Aggregator, pub realtime.RedisPublisher, q *queue.Queue, logger *zap.Logger) *StatsDigestProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsDigestProcessor{agg: agg, pub: pub, queue: q, logger: logger}
}

// Process executes one stats digest job.
func (p *StatsDigestProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeStatsDigest {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.StatsDigestPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	stats, err := p.agg.StatsForEvent(ctx, payload.EventID)
	if err != nil {
		return fmt.Errorf("compute stats: %w", err)
	}
	histogram, err := p.agg.HistogramForEvent(ctx, payload.EventID)
	if err != nil {
		return fmt.Errorf("compute histogram: %w", err)
	}

	body, err := json.Marshal(map[string]interface{}{
		"event_id":  payload.EventID,
		"stats":     stats,
		"histogram": histogram,
	})
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}
	if p.pub != nil {
		if err := p.pub.PublishEvent(payload.EventID, realtime.EventStatsUpdated, body); err != nil {
			return fmt.Errorf("publish digest: %w", err)
		}
	}

	p.logger.Info("stats digest published",
		zap.String("event_id", payload.EventID.String()),
		zap.Int("feedback_count", stats.Count))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *StatsDigestProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stats worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(retryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(retryBackoff)
		}
	}
}
