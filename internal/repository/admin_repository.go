package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/store"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	UpdateCredential(ctx context.Context, id uint, credential string) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	guard *store.Guard
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(guard *store.Guard) *GormAdminRepository {
	return &GormAdminRepository{guard: guard}
}

// GetByUsername 根据用户名获取管理员
func (r *GormAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.guard.Execute(ctx, "admin_get_by_username", func(tx *gorm.DB) error {
		return tx.Where("username = ?", username).First(&admin).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByID 根据 ID 获取管理员
func (r *GormAdminRepository) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	err := r.guard.Execute(ctx, "admin_get_by_id", func(tx *gorm.DB) error {
		return tx.First(&admin, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// List 获取管理员列表（不含凭据列）
func (r *GormAdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	admins := make([]models.Admin, 0)
	err := r.guard.Execute(ctx, "admin_list", func(tx *gorm.DB) error {
		return tx.
			Select("id", "username", "hospital_id", "is_super", "last_login_at", "created_at").
			Order("id ASC").
			Find(&admins).Error
	})
	if err != nil {
		return nil, err
	}
	return admins, nil
}

// Create 创建管理员
func (r *GormAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.guard.Execute(ctx, "admin_create", func(tx *gorm.DB) error {
		return tx.Create(admin).Error
	})
}

// UpdateCredential 原地更新凭据（明文迁移为哈希时使用，身份不变）
func (r *GormAdminRepository) UpdateCredential(ctx context.Context, id uint, credential string) error {
	return r.guard.Execute(ctx, "admin_update_credential", func(tx *gorm.DB) error {
		return tx.Model(&models.Admin{}).Where("id = ?", id).Update("credential", credential).Error
	})
}

// UpdateLastLogin 更新最后登录时间
func (r *GormAdminRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.guard.Execute(ctx, "admin_update_last_login", func(tx *gorm.DB) error {
		return tx.Model(&models.Admin{}).Where("id = ?", id).Update("last_login_at", at).Error
	})
}
