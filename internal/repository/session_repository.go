package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/store"

	"gorm.io/gorm"
)

// SessionRepository 会话数据访问接口
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// GormSessionRepository GORM 实现
type GormSessionRepository struct {
	guard *store.Guard
}

// NewSessionRepository 创建会话仓库
func NewSessionRepository(guard *store.Guard) *GormSessionRepository {
	return &GormSessionRepository{guard: guard}
}

// Create 写入会话行；令牌唯一键冲突原样返回 gorm.ErrDuplicatedKey
func (r *GormSessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.guard.Execute(ctx, "session_create", func(tx *gorm.DB) error {
		return tx.Create(session).Error
	})
}

// GetByToken 根据令牌获取会话
func (r *GormSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := r.guard.Execute(ctx, "session_get_by_token", func(tx *gorm.DB) error {
		return tx.Where("token = ?", token).First(&session).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// DeleteByToken 删除会话；令牌不存在不视为错误（幂等）
func (r *GormSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.guard.Execute(ctx, "session_delete_by_token", func(tx *gorm.DB) error {
		return tx.Where("token = ?", token).Delete(&models.Session{}).Error
	})
}

// DeleteExpired 清理过期会话，返回删除行数
func (r *GormSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := r.guard.Execute(ctx, "session_delete_expired", func(tx *gorm.DB) error {
		result := tx.Where("expires_at <= ?", now).Delete(&models.Session{})
		purged = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}
