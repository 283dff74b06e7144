package worker

import (
	"context"
	"encoding/json"

	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/provider"
	"github.com/bloodlink-next/internal/queue"
	"github.com/bloodlink-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSessionPurge, c.handleSessionPurge)
	mux.HandleFunc(queue.TaskLowStockScan, c.handleLowStockScan)
}

func (c *Consumer) handleSessionPurge(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_session_purge_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	if c.AuthService == nil {
		logger.Warnw("worker_session_purge_skip_auth_service_nil")
		return nil
	}
	purged, err := c.AuthService.PurgeExpired(ctx)
	if err != nil {
		logger.Warnw("worker_session_purge_failed", "error", err)
		return err
	}
	if purged > 0 {
		logger.Infow("worker_session_purge_done", "purged", purged)
	}
	return nil
}

func (c *Consumer) handleLowStockScan(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_low_stock_scan_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	if c.SurplusService == nil {
		logger.Warnw("worker_low_stock_scan_skip_surplus_service_nil")
		return nil
	}
	var payload queue.LowStockScanPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Warnw("worker_low_stock_scan_unmarshal_failed", "error", err)
			return err
		}
	}

	var lines []service.NeedLine
	var err error
	if payload.Kind == "" {
		lines, err = c.SurplusService.ScanNeeds(ctx)
	} else {
		lines, err = c.SurplusService.ScanNeedsFor(ctx, payload.Kind)
	}
	if err != nil {
		logger.Warnw("worker_low_stock_scan_failed", "kind", payload.Kind, "error", err)
		return err
	}
	for _, line := range lines {
		logger.Warnw("low_stock_detected",
			"hospital_id", line.HospitalID,
			"hospital_name", line.HospitalName,
			"kind", line.Kind,
			"blood_type", line.BloodType,
			"rh", line.Rh,
			"units", line.Units,
			"deficit", line.Deficit,
			"threshold", line.Threshold,
		)
	}
	logger.Infow("worker_low_stock_scan_done", "kind", payload.Kind, "shortages", len(lines))
	return nil
}
