package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gocart-backend/internal/models"
	"gocart-backend/internal/services"
	"gocart-backend/internal/utils"
)

// ChatHandlers contains store-to-admin chat handlers
type ChatHandlers struct {
	chatService *services.ChatService
}

// NewChatHandlers creates new chat handlers
func NewChatHandlers(chatService *services.ChatService) *ChatHandlers {
	return &ChatHandlers{chatService: chatService}
}

// SendStoreMessage posts a message from the caller's store to the admins
func (h *ChatHandlers) SendStoreMessage(c *gin.Context) {
	var req models.ChatMessageCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	message, err := h.chatService.SendAsStore(currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, message)
}

// GetStoreMessages returns the caller's store conversation
func (h *ChatHandlers) GetStoreMessages(c *gin.Context) {
	messages, err := h.chatService.GetStoreConversation(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, messages)
}

// SendAdminMessage posts an admin message into a store conversation
func (h *ChatHandlers) SendAdminMessage(c *gin.Context) {
	var req models.ChatMessageCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	message, err := h.chatService.SendAsAdmin(currentUserID(c), c.Param("storeId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, message)
}

// GetConversation returns one store's conversation for the admin view
func (h *ChatHandlers) GetConversation(c *gin.Context) {
	messages, err := h.chatService.GetConversation(c.Param("storeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, messages)
}

// ListConversations returns unread counts per store for the admin inbox
func (h *ChatHandlers) ListConversations(c *gin.Context) {
	unread, err := h.chatService.ListConversations()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"unread": unread})
}
