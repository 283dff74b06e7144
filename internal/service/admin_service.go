package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/repository"
	"github.com/bloodlink-next/internal/store"

	"gorm.io/gorm"
)

// AdminService 管理员账号管理服务（仅超级管理员可用）
type AdminService struct {
	guard        *store.Guard
	adminRepo    repository.AdminRepository
	hospitalRepo repository.HospitalRepository
	authService  *AuthService
}

// NewAdminService 创建管理员管理服务
func NewAdminService(guard *store.Guard, adminRepo repository.AdminRepository, hospitalRepo repository.HospitalRepository, authService *AuthService) *AdminService {
	return &AdminService{
		guard:        guard,
		adminRepo:    adminRepo,
		hospitalRepo: hospitalRepo,
		authService:  authService,
	}
}

// CreateAdminInput 创建管理员请求
type CreateAdminInput struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	HospitalID uint   `json:"hospital_id"`
	IsSuper    bool   `json:"is_super"`
}

func requireSuper(identity *Identity) error {
	if identity == nil || identity.AdminID == 0 {
		return ErrUnauthorized
	}
	if !identity.IsSuper {
		return ErrForbidden
	}
	return nil
}

// List 列出全部管理员（不含凭据）
func (s *AdminService) List(ctx context.Context, identity *Identity) ([]models.Admin, error) {
	if err := requireSuper(identity); err != nil {
		return nil, err
	}
	if s.guard.FallbackMode() {
		return []models.Admin{}, nil
	}
	return s.adminRepo.List(ctx)
}

// Create 创建管理员，凭据一律落为 bcrypt 哈希
func (s *AdminService) Create(ctx context.Context, identity *Identity, input CreateAdminInput) (*models.Admin, error) {
	if err := requireSuper(identity); err != nil {
		return nil, err
	}
	if s.guard.FallbackMode() {
		return nil, NewValidationError("admin management is disabled in demo mode")
	}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return nil, NewValidationError("username is required")
	}
	if err := s.authService.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if input.HospitalID == 0 {
		return nil, NewValidationError("hospital_id is required")
	}
	hospital, err := s.hospitalRepo.GetByID(ctx, input.HospitalID)
	if err != nil {
		return nil, err
	}
	if hospital == nil {
		return nil, ErrNotFound
	}

	hash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Username:   input.Username,
		Credential: hash,
		HospitalID: input.HospitalID,
		IsSuper:    input.IsSuper,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	logger.Infow("admin_created",
		"admin_id", admin.ID,
		"hospital_id", admin.HospitalID,
		"is_super", admin.IsSuper,
		"created_by", identity.AdminID,
	)
	return admin, nil
}
