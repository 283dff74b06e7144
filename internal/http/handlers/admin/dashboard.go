package admin

import (
	"strconv"

	"github.com/bloodlink-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Dashboard 仪表盘汇总：分成分库存概览 + 富余组合
func (h *Handler) Dashboard(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	hospitalID, _ := strconv.Atoi(c.Query("hospital_id"))
	if hospitalID < 0 {
		hospitalID = 0
	}

	summary, err := h.InventoryService.Summary(c.Request.Context(), identity, uint(hospitalID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	surplus, err := h.SurplusService.SurplusFor(c.Request.Context(), identity, uint(hospitalID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"summary": summary,
		"surplus": surplus,
	})
}
