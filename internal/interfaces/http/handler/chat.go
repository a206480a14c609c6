// Package handler 提供 HTTP 请求处理器
package handler

import (
	"sparkchat-api/internal/application/chat"
	"sparkchat-api/internal/interfaces/http/dto"
	"sparkchat-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	chatService *chat.Service
}

// NewChatHandler 创建对话处理器
func NewChatHandler(chatService *chat.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage 发送消息
// @Summary 发送消息
// @Description 在会话内发送一条消息并返回模型回复
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param body body dto.SendMessageRequest true "消息内容"
// @Success 200 {object} dto.Response[dto.SendMessageResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/conversations/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, plan, ok := principal(c)
	if !ok {
		return
	}

	conversationID := c.Param("id")

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ConversationIDKey, conversationID)

	out, err := h.chatService.SendMessage(ctx, chat.SendMessageInput{
		UserID:         userID,
		Plan:           plan,
		ConversationID: conversationID,
		Message:        req.Message,
		PromptKey:      req.PromptKey,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	dto.Success(c, dto.FromSendMessageOutput(out))
}

// Prompts 可用系统提示词场景
// @Summary 系统提示词场景列表
// @Tags Chat
// @Produce json
// @Success 200 {object} dto.Response[dto.PromptsResponse]
// @Router /v1/chat/prompts [get]
func (h *ChatHandler) Prompts(c *gin.Context) {
	dto.Success(c, &dto.PromptsResponse{
		Keys:    chat.SystemPromptKeys(),
		Default: chat.DefaultPromptKey,
	})
}
