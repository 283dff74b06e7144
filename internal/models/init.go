package models

import (
	"strings"

	"github.com/bloodlink-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaults 初始化默认医院与默认管理员账号
// 仅在空库时创建，已有数据时只确保默认 admin 保留超级管理员权限
func InitDefaults(username, password string) error {
	var adminCount int64
	DB.Model(&Admin{}).Count(&adminCount)
	if adminCount > 0 {
		if err := DB.Model(&Admin{}).Where("username = ?", "admin").Update("is_super", true).Error; err != nil {
			logger.Warnw("ensure_default_admin_super_failed", "error", err)
		}
		return nil
	}

	hospital := Hospital{Name: "Central General Hospital", Location: "HQ"}
	var hospitalCount int64
	DB.Model(&Hospital{}).Count(&hospitalCount)
	if hospitalCount == 0 {
		if err := DB.Create(&hospital).Error; err != nil {
			return err
		}
	} else {
		if err := DB.Order("id ASC").First(&hospital).Error; err != nil {
			return err
		}
	}

	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Username:   username,
		Credential: string(hash),
		HospitalID: hospital.ID,
		IsSuper:    strings.EqualFold(strings.TrimSpace(username), "admin"),
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}
	return nil
}
