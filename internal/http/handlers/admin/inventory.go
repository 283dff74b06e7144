package admin

import (
	"strconv"

	"github.com/bloodlink-next/internal/http/response"
	"github.com/bloodlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListInventory 库存列表
func (h *Handler) ListInventory(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	hospitalID, _ := strconv.Atoi(c.Query("hospital_id"))
	if hospitalID < 0 {
		hospitalID = 0
	}

	input := service.ListInput{
		Kind:            c.Param("kind"),
		Page:            page,
		PageSize:        pageSize,
		BloodType:       c.Query("blood_type"),
		Rh:              c.Query("rh"),
		ExpiryStatus:    c.Query("expiry"),
		IncludeInactive: c.Query("include_inactive") == "true",
		HospitalID:      uint(hospitalID),
	}
	units, total, err := h.InventoryService.List(c.Request.Context(), identity, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, units, response.NewPagination(page, pageSize, total))
}

// GetInventoryUnit 单位详情
func (h *Handler) GetInventoryUnit(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	unit, err := h.InventoryService.Get(c.Request.Context(), identity, c.Param("kind"), c.Param("bag_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, unit)
}

// CreateInventoryUnit 入库
func (h *Handler) CreateInventoryUnit(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	var input service.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	input.Kind = c.Param("kind")
	hospitalID, _ := strconv.Atoi(c.Query("hospital_id"))
	if hospitalID < 0 {
		hospitalID = 0
	}

	unit, err := h.InventoryService.Create(c.Request.Context(), identity, uint(hospitalID), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, unit)
}

// UpdateInventoryUnit 修改单位
func (h *Handler) UpdateInventoryUnit(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	var input service.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	unit, err := h.InventoryService.Update(c.Request.Context(), identity, c.Param("kind"), c.Param("bag_id"), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, unit)
}

// SoftDeleteInventoryUnit 软删除单位
func (h *Handler) SoftDeleteInventoryUnit(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	if err := h.InventoryService.SoftDelete(c.Request.Context(), identity, c.Param("kind"), c.Param("bag_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// RestoreInventoryUnit 恢复软删除单位
func (h *Handler) RestoreInventoryUnit(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	if err := h.InventoryService.Restore(c.Request.Context(), identity, c.Param("kind"), c.Param("bag_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
