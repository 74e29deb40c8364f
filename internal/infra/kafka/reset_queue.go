package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
)

// ResetQueue publishes bulk reset jobs to the jobs topic. A consumer group
// member picks them up, so the HTTP request returns before any processing.
type ResetQueue struct {
	producer    *Producer
	topicPrefix string
}

var _ port.ResetQueue = (*ResetQueue)(nil)

func NewResetQueue(producer *Producer, topicPrefix string) *ResetQueue {
	return &ResetQueue{producer: producer, topicPrefix: topicPrefix}
}

func (q *ResetQueue) Enqueue(_ context.Context, job domain.BulkPasswordResetJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal bulk reset job: %w", err)
	}

	q.producer.Send(q.topicPrefix+"."+topicBulkResetJobs, job.JobID, body)
	return nil
}

// InProcessResetQueue runs jobs on a single background worker fed by a
// buffered channel. Used when no Kafka brokers are configured. One worker
// keeps job ordering and avoids concurrent mail bursts.
type InProcessResetQueue struct {
	jobs    chan domain.BulkPasswordResetJob
	handler port.ResetJobHandler
	logger  *zap.Logger
	metrics *telemetry.Provider

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

var _ port.ResetQueue = (*InProcessResetQueue)(nil)

func NewInProcessResetQueue(handler port.ResetJobHandler, buffer int, metrics *telemetry.Provider, logger *zap.Logger) *InProcessResetQueue {
	if buffer <= 0 {
		buffer = 64
	}

	q := &InProcessResetQueue{
		jobs:    make(chan domain.BulkPasswordResetJob, buffer),
		handler: handler,
		logger:  logger,
		metrics: metrics,
		stopped: make(chan struct{}),
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

func (q *InProcessResetQueue) Enqueue(ctx context.Context, job domain.BulkPasswordResetJob) error {
	select {
	case q.jobs <- job:
		q.metrics.ResetQueueDepth.Set(float64(len(q.jobs)))
		return nil
	case <-q.stopped:
		return fmt.Errorf("reset queue is shut down")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *InProcessResetQueue) worker() {
	defer q.wg.Done()

	for job := range q.jobs {
		q.metrics.ResetQueueDepth.Set(float64(len(q.jobs)))

		if err := q.handler.ProcessBulkReset(context.Background(), job); err != nil {
			q.logger.Error("bulk reset job failed",
				zap.String("job_id", job.JobID),
				zap.Int("user_count", len(job.UserIDs)),
				zap.Error(err),
			)
		}
	}
}

// Shutdown stops intake and waits for the worker to drain queued jobs.
func (q *InProcessResetQueue) Shutdown() {
	q.stopOnce.Do(func() {
		close(q.stopped)
		close(q.jobs)
	})
	q.wg.Wait()
}
