// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"io"

	"sparkchat-api/internal/application/chat"
	"sparkchat-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 会话管理处理器
type ConversationHandler struct {
	chatService *chat.Service
}

// NewConversationHandler 创建会话管理处理器
func NewConversationHandler(chatService *chat.Service) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

// Create 创建会话
// @Summary 创建会话
// @Description 创建一个新会话，标题缺省为占位标题，首轮对话后自动生成；可选 system_prompt 作为会话级提示词落库
// @Tags Conversations
// @Accept json
// @Produce json
// @Param body body dto.CreateConversationRequest false "创建会话请求"
// @Success 201 {object} dto.Response[dto.ConversationResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /v1/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	userID, plan, ok := principal(c)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	conversation, err := h.chatService.CreateConversation(c.Request.Context(), userID, plan, req.Title, req.SystemPrompt)
	if err != nil {
		writeError(c, err)
		return
	}

	dto.Created(c, dto.FromConversation(conversation))
}

// List 分页列出会话
// @Summary 会话列表
// @Description 按最近活跃倒序分页返回当前用户的会话
// @Tags Conversations
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.ConversationResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	userID, _, ok := principal(c)
	if !ok {
		return
	}

	result, err := h.chatService.ListConversations(c.Request.Context(), userID, bindPagination(c))
	if err != nil {
		writeError(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.FromConversations(result.Items), dto.PageMetaFrom(result))
}

// Get 会话详情
// @Summary 会话详情
// @Description 返回会话及其全部消息
// @Tags Conversations
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.ConversationDetailResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/conversations/{id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	userID, _, ok := principal(c)
	if !ok {
		return
	}

	conversation, messages, err := h.chatService.GetConversation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	dto.Success(c, &dto.ConversationDetailResponse{
		Conversation: dto.FromConversation(conversation),
		Messages:     dto.FromMessages(messages),
	})
}

// Delete 删除会话
// @Summary 删除会话
// @Description 删除会话及其全部消息
// @Tags Conversations
// @Produce json
// @Param id path string true "会话 ID"
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, _, ok := principal(c)
	if !ok {
		return
	}

	if err := h.chatService.DeleteConversation(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	dto.NoContent(c)
}
