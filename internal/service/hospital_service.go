package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bloodlink-next/internal/fallback"
	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/repository"
	"github.com/bloodlink-next/internal/store"

	"gorm.io/gorm"
)

// HospitalService 医院目录服务
// 目录对全部已认证用户可读，调拨登记时用于选择目标医院
type HospitalService struct {
	guard        *store.Guard
	hospitalRepo repository.HospitalRepository
}

// NewHospitalService 创建医院服务
func NewHospitalService(guard *store.Guard, hospitalRepo repository.HospitalRepository) *HospitalService {
	return &HospitalService{guard: guard, hospitalRepo: hospitalRepo}
}

// List 医院目录
func (s *HospitalService) List(ctx context.Context, identity *Identity) ([]models.Hospital, error) {
	if identity == nil || identity.AdminID == 0 {
		return nil, ErrUnauthorized
	}
	if s.guard.FallbackMode() {
		return fallback.Hospitals(), nil
	}
	return s.hospitalRepo.List(ctx)
}

// CreateHospitalInput 创建医院请求
type CreateHospitalInput struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Create 创建医院（仅超级管理员）
func (s *HospitalService) Create(ctx context.Context, identity *Identity, input CreateHospitalInput) (*models.Hospital, error) {
	if err := requireSuper(identity); err != nil {
		return nil, err
	}
	if s.guard.FallbackMode() {
		return nil, NewValidationError("hospital management is disabled in demo mode")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, NewValidationError("name is required")
	}

	hospital := &models.Hospital{
		Name:     input.Name,
		Location: strings.TrimSpace(input.Location),
	}
	if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	logger.Infow("hospital_created", "hospital_id", hospital.ID, "created_by", identity.AdminID)
	return hospital, nil
}
