// Package handler 提供 HTTP 请求处理器
package handler

import (
	"sparkchat-api/internal/application/account"
	"sparkchat-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户账户处理器
type UserHandler struct {
	accountService *account.Service
}

// NewUserHandler 创建用户账户处理器
func NewUserHandler(accountService *account.Service) *UserHandler {
	return &UserHandler{accountService: accountService}
}

// Sync 同步用户投影
// @Summary 同步用户
// @Description 将身份服务下发的用户信息同步到本地，幂等
// @Tags Users
// @Accept json
// @Produce json
// @Param body body dto.SyncUserRequest true "用户信息"
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/users/sync [post]
func (h *UserHandler) Sync(c *gin.Context) {
	userID, plan, ok := principal(c)
	if !ok {
		return
	}

	var req dto.SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.accountService.Sync(c.Request.Context(), userID, req.Email, plan)
	if err != nil {
		writeError(c, err)
		return
	}

	dto.Success(c, dto.FromUser(user))
}

// Me 当前用户信息
// @Summary 当前用户信息
// @Tags Users
// @Produce json
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, _, ok := principal(c)
	if !ok {
		return
	}

	user, err := h.accountService.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	dto.Success(c, dto.FromUser(user))
}
