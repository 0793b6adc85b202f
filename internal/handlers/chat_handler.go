package handlers

import (
	"net/http"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/middleware"
	"tradewizard_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base *BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chatService: chatService,
	}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		chat.POST("/conversations", h.StartConversation)
		chat.GET("/conversations", h.ListConversations)
		chat.GET("/conversations/:id", h.GetConversation)
		chat.GET("/conversations/:id/messages", h.GetMessages)
		chat.POST("/messages", h.SendMessage)
		chat.POST("/messages/:id/read", h.MarkMessageRead)
	}
}

func (h *ChatHandler) StartConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	conversation, err := h.chatService.StartConversation(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conversation)
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	conversations, total, err := h.chatService.ListConversations(userID, h.GetUserRole(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(conversations, total, page, pageSize))
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	conversation, err := h.chatService.GetConversation(userID, h.GetUserRole(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	messages, total, err := h.chatService.GetMessages(userID, h.GetUserRole(c), c.Param("id"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(messages, total, page, pageSize))
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	message, err := h.chatService.SendMessage(userID, h.GetUserRole(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) MarkMessageRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.chatService.MarkMessageRead(userID, h.GetUserRole(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}
