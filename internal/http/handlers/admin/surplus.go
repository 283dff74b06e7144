package admin

import (
	"strconv"

	"github.com/bloodlink-next/internal/http/response"
	"github.com/bloodlink-next/internal/queue"
	"github.com/bloodlink-next/internal/repository"
	"github.com/bloodlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetSurplus 本院富余组合
func (h *Handler) GetSurplus(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	hospitalID, _ := strconv.Atoi(c.Query("hospital_id"))
	if hospitalID < 0 {
		hospitalID = 0
	}
	lines, err := h.SurplusService.SurplusFor(c.Request.Context(), identity, uint(hospitalID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, lines)
}

// GetNeeds 全网短缺组合
func (h *Handler) GetNeeds(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	lines, err := h.SurplusService.HospitalsNeeding(c.Request.Context(), identity, c.Query("kind"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, lines)
}

// RecordTransfer 登记调拨
func (h *Handler) RecordTransfer(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	var input service.TransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	transfer, err := h.SurplusService.RecordTransfer(c.Request.Context(), identity, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 调拨登记后触发该成分的短缺扫描，刷新全网缺口报告
	if h.QueueClient.Enabled() {
		payload := queue.LowStockScanPayload{Kind: transfer.ComponentKind}
		if err := h.QueueClient.EnqueueLowStockScan(payload); err != nil {
			requestLog(c).Warnw("enqueue_low_stock_scan_failed", "error", err)
		}
	}
	response.Success(c, transfer)
}

// ListTransfers 调拨台账
func (h *Handler) ListTransfers(c *gin.Context) {
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

	filter := repository.TransferListFilter{
		Page:     page,
		PageSize: pageSize,
		Kind:     c.Query("kind"),
	}
	transfers, total, err := h.SurplusService.TransferHistory(c.Request.Context(), identity, uint(hospitalID), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, transfers, response.NewPagination(page, pageSize, total))
}
