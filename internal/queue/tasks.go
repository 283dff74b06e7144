package queue

import (
	"encoding/json"

	"github.com/bloodlink-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSessionPurge 过期会话清理任务
	TaskSessionPurge = constants.TaskSessionPurge
	// TaskLowStockScan 全网短缺扫描任务
	TaskLowStockScan = constants.TaskLowStockScan
)

// LowStockScanPayload 短缺扫描任务载荷（kind 为空表示扫描全部成分）
type LowStockScanPayload struct {
	Kind string `json:"kind"`
}

// NewSessionPurgeTask 创建会话清理任务
func NewSessionPurgeTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskSessionPurge, nil), nil
}

// NewLowStockScanTask 创建短缺扫描任务
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body), nil
}
