package admin

import (
	"strconv"

	"github.com/bloodlink-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SystemStatus 连接健康状态与运行模式（仅超级管理员）
// 回退模式下 RBAC 中间件不生效，这里自行校验角色
func (h *Handler) SystemStatus(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	if !identity.IsSuper {
		respondError(c, response.CodeForbidden, "access denied", nil)
		return
	}
	status := h.Guard.CurrentStatus(c.Request.Context())
	response.Success(c, gin.H{
		"store":         status,
		"fallback_mode": h.Guard.FallbackMode(),
	})
}

// SystemInventory 跨院全量库存诊断视图（仅超级管理员）
func (h *Handler) SystemInventory(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	page, pageSize = normalizePagination(page, pageSize)

	units, total, err := h.InventoryService.ListAllHospitals(c.Request.Context(), identity, c.Query("kind"), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, units, response.NewPagination(page, pageSize, total))
}
