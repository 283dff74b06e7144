package worker

import (
	"context"
	"errors"
	"time"

	"github.com/bloodlink-next/internal/config"
	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	sessionPurgeInterval = time.Hour
	lowStockScanInterval = 15 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil {
		go s.runMaintenanceLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runMaintenanceLoop 周期性推送会话清理与短缺扫描任务
// 经由队列投递而非直接调用，保证多实例部署时任务不重复堆积在单点
func (s *Service) runMaintenanceLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.QueueClient == nil {
		return
	}
	client := s.consumer.QueueClient

	enqueuePurge := func() {
		if err := client.EnqueueSessionPurge(); err != nil {
			logger.Warnw("worker_enqueue_session_purge_failed", "error", err)
		}
	}
	enqueueScan := func() {
		if err := client.EnqueueLowStockScan(queue.LowStockScanPayload{}); err != nil {
			logger.Warnw("worker_enqueue_low_stock_scan_failed", "error", err)
		}
	}
	enqueuePurge()
	enqueueScan()

	purgeTicker := time.NewTicker(sessionPurgeInterval)
	defer purgeTicker.Stop()
	scanTicker := time.NewTicker(lowStockScanInterval)
	defer scanTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-purgeTicker.C:
			enqueuePurge()
		case <-scanTicker.C:
			enqueueScan()
		}
	}
}
