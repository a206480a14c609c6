// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"

	"sparkchat-api/internal/application/usage"
	"sparkchat-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// UsageHandler 用量查询处理器
type UsageHandler struct {
	usageService *usage.Service
}

// NewUsageHandler 创建用量查询处理器
func NewUsageHandler(usageService *usage.Service) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// Overview 用量汇总
// @Summary 用量汇总
// @Description 返回当前用户当日与当月的 token 消耗及剩余额度
// @Tags Usage
// @Produce json
// @Success 200 {object} dto.Response[usage.Overview]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/usage [get]
func (h *UsageHandler) Overview(c *gin.Context) {
	userID, plan, ok := principal(c)
	if !ok {
		return
	}

	overview, err := h.usageService.Overview(c.Request.Context(), userID, plan)
	if err != nil {
		writeError(c, err)
		return
	}

	dto.Success(c, overview)
}

// RecentActivity 最近用量流水
// @Summary 最近用量流水
// @Tags Usage
// @Produce json
// @Param limit query int false "返回条数"
// @Success 200 {object} dto.Response[[]dto.UsageEventResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/usage/activity [get]
func (h *UsageHandler) RecentActivity(c *gin.Context) {
	userID, _, ok := principal(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	events, err := h.usageService.RecentActivity(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	dto.Success(c, dto.FromUsageEvents(events))
}

// Plans 套餐列表
// @Summary 套餐列表
// @Description 返回全部套餐及其限额
// @Tags Usage
// @Produce json
// @Success 200 {object} dto.Response[[]usage.PlanInfo]
// @Router /v1/plans [get]
func (h *UsageHandler) Plans(c *gin.Context) {
	dto.Success(c, h.usageService.Plans())
}
