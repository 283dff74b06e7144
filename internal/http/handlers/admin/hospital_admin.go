package admin

import (
	"github.com/bloodlink-next/internal/http/response"
	"github.com/bloodlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListHospitals 医院目录
func (h *Handler) ListHospitals(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	hospitals, err := h.HospitalService.List(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, hospitals)
}

// CreateHospital 创建医院（仅超级管理员）
func (h *Handler) CreateHospital(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	var input service.CreateHospitalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	hospital, err := h.HospitalService.Create(c.Request.Context(), identity, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, hospital)
}

// ListAdmins 管理员列表（仅超级管理员）
func (h *Handler) ListAdmins(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	admins, err := h.AdminService.List(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, admins)
}

// CreateAdmin 创建管理员（仅超级管理员）
func (h *Handler) CreateAdmin(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	var input service.CreateAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	created, err := h.AdminService.Create(c.Request.Context(), identity, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if h.AuthzService != nil {
		if err := h.AuthzService.AssignRoleForAdmin(created.ID, created.IsSuper); err != nil {
			requestLog(c).Warnw("assign_role_failed", "admin_id", created.ID, "error", err)
		}
	}
	response.Success(c, created)
}
