// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/repository"
	"sparkchat-api/internal/interfaces/http/dto"
	apperrors "sparkchat-api/pkg/errors"
	"sparkchat-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// principal 从认证中间件注入的上下文提取当前用户与套餐。
// 缺失时写出 401 并返回 ok=false，调用方直接 return。
func principal(c *gin.Context) (string, entity.PlanTier, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		dto.Unauthorized(c, apperrors.ErrPrincipalMissing.Message)
		return "", "", false
	}

	plan, err := entity.ParsePlanTier(c.GetString("plan"))
	if err != nil {
		dto.Error(c, http.StatusForbidden, "unknown plan tier")
		return "", "", false
	}

	return userID, plan, true
}

// writeError 将应用错误映射为 HTTP 响应
func writeError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail := &dto.ErrorDetail{ErrorCode: string(appErr.Code)}
		if appErr.Detail != "" {
			detail.Details = appErr.Detail
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.Error(c.Request.Context(), "request failed", appErr, "path", c.Request.URL.Path)
		}
		dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, detail)
		return
	}

	logger.Error(c.Request.Context(), "request failed", err, "path", c.Request.URL.Path)
	dto.InternalError(c, "internal server error")
}

// bindPagination 从查询参数解析分页
func bindPagination(c *gin.Context) repository.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return repository.NewPagination(page, pageSize)
}
