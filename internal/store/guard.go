package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bloodlink-next/internal/logger"

	"gorm.io/gorm"
)

// ErrConnection 存储连接失败哨兵，所有 *ConnError 均匹配它
var ErrConnection = errors.New("store connection failed")

// ConnError 连接层类型化错误，携带底层错误信息
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	if e.Err == nil {
		return "store: " + e.Op + " failed"
	}
	return "store: " + e.Op + " failed: " + e.Err.Error()
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrConnection) 成立
func (e *ConnError) Is(target error) bool {
	return target == ErrConnection
}

// Status 连接健康状态（进程内瞬时数据，不落库）
type Status struct {
	Connected   bool      `json:"connected"`
	LastChecked time.Time `json:"last_checked"`
	LastError   string    `json:"last_error,omitempty"`
}

// Config 守卫配置
type Config struct {
	CheckInterval time.Duration // 健康探测节流窗口
	OpTimeout     time.Duration // 单次执行超时
	MaxAttempts   int           // 瞬时错误重试上限
	RetryBackoff  time.Duration // 重试间隔
}

func (c Config) normalized() Config {
	if c.CheckInterval <= 0 {
		c.CheckInterval = 5 * time.Second
	}
	if c.OpTimeout <= 0 {
		c.OpTimeout = 10 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
	return c
}

// Guard 连接韧性层
// 所有数据库访问都经由 Execute；健康状态缓存按 last-writer-wins 更新，
// 回退模式是进程级开关，开启后读走示例数据、写短路成功（由服务层分流）
type Guard struct {
	db  *gorm.DB
	cfg Config

	mu     sync.Mutex
	status Status

	fallback atomic.Bool
}

// NewGuard 创建守卫；db 为 nil 时自动进入回退模式
func NewGuard(db *gorm.DB, cfg Config) *Guard {
	g := &Guard{
		db:  db,
		cfg: cfg.normalized(),
	}
	if db == nil {
		g.fallback.Store(true)
	}
	return g
}

// FallbackMode 是否处于回退（演示）模式
func (g *Guard) FallbackMode() bool {
	return g != nil && g.fallback.Load()
}

// SetFallbackMode 设置回退模式
func (g *Guard) SetFallbackMode(on bool) {
	if g == nil {
		return
	}
	g.fallback.Store(on)
	logger.Warnw("store_fallback_mode_changed", "enabled", on)
}

// Execute 执行一次存储操作：限时、有界重试、失败时归类为 ConnError
// 领域性错误（记录不存在、唯一键冲突）原样透传，由上层按业务语义处理
func (g *Guard) Execute(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	if g == nil || g.db == nil {
		return &ConnError{Op: op, Err: errors.New("database not initialized")}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.OpTimeout)
		err := fn(g.db.WithContext(attemptCtx))
		cancel()

		if err == nil {
			g.markSuccess()
			return nil
		}
		if isDomainError(err) {
			return err
		}
		if errors.Is(err, context.Canceled) {
			return err
		}

		g.markFailure(err)
		lastErr = err
		if !isRetryable(err) || attempt == g.cfg.MaxAttempts {
			break
		}
		logger.Warnw("store_execute_retry",
			"op", op,
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return &ConnError{Op: op, Err: ctx.Err()}
		case <-time.After(g.cfg.RetryBackoff):
		}
	}
	return &ConnError{Op: op, Err: lastErr}
}

// CurrentStatus 返回连接健康状态；节流窗口内直接返回上次结论
func (g *Guard) CurrentStatus(ctx context.Context) Status {
	if g == nil {
		return Status{}
	}
	g.mu.Lock()
	if time.Since(g.status.LastChecked) < g.cfg.CheckInterval {
		cached := g.status
		g.mu.Unlock()
		return cached
	}
	g.mu.Unlock()

	return g.probe(ctx)
}

func (g *Guard) probe(ctx context.Context) Status {
	now := time.Now()
	fresh := Status{LastChecked: now}

	if g.db == nil {
		fresh.LastError = "database not initialized"
	} else if sqlDB, err := g.db.DB(); err != nil {
		fresh.LastError = err.Error()
	} else {
		if ctx == nil {
			ctx = context.Background()
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			fresh.LastError = err.Error()
		} else {
			fresh.Connected = true
		}
	}

	g.mu.Lock()
	g.status = fresh
	g.mu.Unlock()
	return fresh
}

func (g *Guard) markSuccess() {
	g.mu.Lock()
	g.status = Status{Connected: true, LastChecked: time.Now()}
	g.mu.Unlock()
}

func (g *Guard) markFailure(err error) {
	g.mu.Lock()
	g.status = Status{Connected: false, LastChecked: time.Now(), LastError: err.Error()}
	g.mu.Unlock()
}

// isDomainError 领域性错误由上层处理，不归类为连接失败
func isDomainError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrInvalidData)
}

// isRetryable 存储侧认证/授权失败不重试，其余视为瞬时故障
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"authentication failed",
		"password authentication",
		"permission denied",
		"access denied",
	} {
		if strings.Contains(msg, fragment) {
			return false
		}
	}
	return true
}
