package worker

import (
	"context"
	"testing"

	"github.com/bloodlink-next/internal/provider"
	"github.com/bloodlink-next/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleSessionPurgeNilAuthService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewSessionPurgeTask()
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleSessionPurge(context.Background(), task); err != nil {
		t.Fatalf("nil auth service should be skipped, got %v", err)
	}
}

func TestHandleLowStockScanBadPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	if err := consumer.handleLowStockScan(context.Background(), asynq.NewTask(queue.TaskLowStockScan, []byte("not-json"))); err != nil {
		t.Fatalf("nil surplus service should be skipped before unmarshal, got %v", err)
	}
}

func TestRegisterNilMux(t *testing.T) {
	consumer := NewConsumer(nil)
	consumer.Register(nil)

	mux := asynq.NewServeMux()
	consumer.Register(mux)
}
