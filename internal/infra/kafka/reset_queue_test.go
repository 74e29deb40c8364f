package kafka

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
)

type recordingHandler struct {
	mu   sync.Mutex
	jobs []domain.BulkPasswordResetJob
	done chan struct{}
}

func (h *recordingHandler) ProcessBulkReset(_ context.Context, job domain.BulkPasswordResetJob) error {
	h.mu.Lock()
	h.jobs = append(h.jobs, job)
	h.mu.Unlock()
	h.done <- struct{}{}
	return nil
}

func TestInProcessResetQueueDeliversJobs(t *testing.T) {
	handler := &recordingHandler{done: make(chan struct{}, 4)}
	queue := NewInProcessResetQueue(handler, 4, telemetry.NewProvider("test"), zaptest.NewLogger(t))
	defer queue.Shutdown()

	job := domain.BulkPasswordResetJob{
		JobID:      "job-1",
		UserIDs:    []int64{1, 2, 999},
		EnqueuedAt: time.Now(),
	}

	if err := queue.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-handler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.jobs) != 1 {
		t.Fatalf("expected 1 processed job, got %d", len(handler.jobs))
	}
	if handler.jobs[0].JobID != "job-1" {
		t.Fatalf("unexpected job id %q", handler.jobs[0].JobID)
	}
	if len(handler.jobs[0].UserIDs) != 3 {
		t.Fatalf("expected 3 user ids, got %d", len(handler.jobs[0].UserIDs))
	}
}

func TestInProcessResetQueueRejectsAfterShutdown(t *testing.T) {
	handler := &recordingHandler{done: make(chan struct{}, 1)}
	queue := NewInProcessResetQueue(handler, 1, telemetry.NewProvider("test_shutdown"), zaptest.NewLogger(t))
	queue.Shutdown()

	err := queue.Enqueue(context.Background(), domain.BulkPasswordResetJob{JobID: "late"})
	if err == nil {
		t.Fatal("expected enqueue after shutdown to fail")
	}
}
