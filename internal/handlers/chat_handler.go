package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/internal/services"
)

type ChatHandler struct {
	whatsappService *services.WhatsAppService
}

func NewChatHandler(whatsappService *services.WhatsAppService) *ChatHandler {
	return &ChatHandler{whatsappService: whatsappService}
}

// @Summary List Chats
// @Description WhatsApp chats ordered by most recent activity
// @Tags Chats
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name or phone"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /chats [get]
func (h *ChatHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")

	chats, total, err := h.whatsappService.ListChats(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chats": chats,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary List Messages
// @Description Messages of a chat, newest first
// @Tags Chats
// @Produce json
// @Param id path string true "Chat ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /chats/{id}/messages [get]
func (h *ChatHandler) Messages(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "50"))

	messages, total, err := h.whatsappService.ListMessages(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// @Summary Send Message
// @Description Send a text message into a chat
// @Tags Chats
// @Accept json
// @Produce json
// @Param id path string true "Chat ID"
// @Param request body SendMessageRequest true "Message Body"
// @Success 201 {object} models.ChatMessage
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /chats/{id}/messages [post]
func (h *ChatHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mensagem é obrigatória"})
		return
	}

	message, err := h.whatsappService.SendMessage(c.Request.Context(), c.Param("id"), req.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

type AutoContactRequest struct {
	LeadName string `json:"lead_name"`
}

// @Summary Start Auto Contact
// @Description Run the scripted first-contact sequence against a chat
// @Tags Chats
// @Accept json
// @Produce json
// @Param id path string true "Chat ID"
// @Param request body AutoContactRequest false "Lead Name"
// @Success 202 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /chats/{id}/auto-contact [post]
func (h *ChatHandler) AutoContact(c *gin.Context) {
	var req AutoContactRequest
	_ = c.ShouldBindJSON(&req)
	if req.LeadName == "" {
		req.LeadName = "tudo bem"
	}

	steps := services.DefaultAutoContactSteps(req.LeadName)
	if err := h.whatsappService.StartAutoContact(c.Request.Context(), c.Param("id"), steps); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Sequência de contato iniciada"})
}
