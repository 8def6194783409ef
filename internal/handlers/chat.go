package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/chatbot"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// maxChatMessageLength caps user chat messages.
const maxChatMessageLength = 1000

// ChatHandler handles chat assistant requests.
type ChatHandler struct {
	DB        *gorm.DB
	Assistant *chatbot.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(db *gorm.DB, assistant *chatbot.Service) *ChatHandler {
	return &ChatHandler{DB: db, Assistant: assistant}
}

// getOrCreateConversation returns the user's conversation, creating it on
// first contact.
func (h *ChatHandler) getOrCreateConversation(userID string) (*models.ChatConversation, error) {
	var conversation models.ChatConversation
	err := h.DB.Where("user_id = ?", userID).First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		conversation = models.ChatConversation{UserID: userID}
		err = h.DB.Create(&conversation).Error
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ChatMessageResponse is one message in a history response.
type ChatMessageResponse struct {
	Content    string `json:"content"`
	IsFromUser bool   `json:"isFromUser"`
	CreatedAt  string `json:"createdAt"`
}

// GetChatHistory handles fetching the last messages of the user's
// conversation, oldest first.
func (h *ChatHandler) GetChatHistory(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	conversation, err := h.getOrCreateConversation(userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load conversation: "+err.Error())
		return
	}

	// Last 20 messages to avoid overloading the page
	var chatMessages []models.ChatMessage
	err = h.DB.Where("conversation_id = ?", conversation.ID).
		Order("created_at desc").Limit(20).Find(&chatMessages).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}

	// Reverse into chronological order
	responses := make([]ChatMessageResponse, len(chatMessages))
	for i, msg := range chatMessages {
		responses[len(chatMessages)-1-i] = ChatMessageResponse{
			Content:    msg.Content,
			IsFromUser: msg.IsFromUser,
			CreatedAt:  msg.CreatedAt.Format(time.RFC3339),
		}
	}

	utils.Success(c, "Chat history fetched successfully", responses)
}

// SendChatMessageRequest represents the request body for a chat message.
type SendChatMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendChatMessage stores the user's message, asks the assistant for a reply
// with recent history as context, stores the reply, and returns it.
func (h *ChatHandler) SendChatMessage(c *gin.Context) {
	var req SendChatMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		utils.BadRequest(c, "Message cannot be empty")
		return
	}
	if len(message) > maxChatMessageLength {
		utils.BadRequest(c, "Message too long. Please limit to 1000 characters.")
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	conversation, err := h.getOrCreateConversation(userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load conversation: "+err.Error())
		return
	}

	userMessage := models.ChatMessage{
		ConversationID: conversation.ID,
		Content:        message,
		IsFromUser:     true,
	}
	if err := h.DB.Create(&userMessage).Error; err != nil {
		utils.InternalServerError(c, "Failed to save message: "+err.Error())
		return
	}

	// Recent history for context, oldest first, excluding the new message
	var history []models.ChatMessage
	err = h.DB.Where("conversation_id = ? AND id <> ?", conversation.ID, userMessage.ID).
		Order("created_at asc").Find(&history).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch history: "+err.Error())
		return
	}

	reply := h.Assistant.Reply(c.Request.Context(), history, message)

	aiMessage := models.ChatMessage{
		ConversationID: conversation.ID,
		Content:        reply,
		IsFromUser:     false,
	}
	if err := h.DB.Create(&aiMessage).Error; err != nil {
		utils.InternalServerError(c, "Failed to save reply: "+err.Error())
		return
	}

	utils.Success(c, "Message sent successfully", gin.H{
		"reply":         reply,
		"userMessageId": userMessage.ID,
		"aiMessageId":   aiMessage.ID,
	})
}

// ClearChat deletes all messages in the user's conversation.
func (h *ChatHandler) ClearChat(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var conversation models.ChatConversation
	err := h.DB.Where("user_id = ?", userID).First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Success(c, "Chat history cleared", nil)
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to load conversation: "+err.Error())
		return
	}

	if err := h.DB.Where("conversation_id = ?", conversation.ID).Delete(&models.ChatMessage{}).Error; err != nil {
		utils.InternalServerError(c, "Failed to clear chat history: "+err.Error())
		return
	}

	utils.Success(c, "Chat history cleared", nil)
}
