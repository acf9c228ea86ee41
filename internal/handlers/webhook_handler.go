package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidaplan/corretora-api/internal/integrations/whapi"
	"github.com/vidaplan/corretora-api/internal/services"
	"github.com/vidaplan/corretora-api/pkg/logger"
)

// WebhookHandler receives provider callbacks. These routes are
// unauthenticated; each provider brings its own verification scheme.
type WebhookHandler struct {
	whatsappService *services.WhatsAppService
	facebookService *services.FacebookService
}

func NewWebhookHandler(whatsappService *services.WhatsAppService, facebookService *services.FacebookService) *WebhookHandler {
	return &WebhookHandler{whatsappService: whatsappService, facebookService: facebookService}
}

// @Summary WhatsApp Webhook
// @Description Receives message and status events from the WhatsApp provider
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param X-Whapi-Event header string false "Event name override"
// @Success 200 {object} services.ProcessResult
// @Failure 400 {object} map[string]string
// @Router /webhooks/whatsapp [post]
func (h *WebhookHandler) WhatsApp(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corpo da requisição ilegível"})
		return
	}

	var envelope whapi.Envelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		logger.Warn(fmt.Sprintf("[Webhook] Malformed WhatsApp payload: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payload inválido"})
		return
	}

	result, err := h.whatsappService.ProcessEvent(
		c.Request.Context(),
		c.GetHeader("X-Whapi-Event"),
		rawBody,
		&envelope,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Facebook Webhook Verification
// @Description Answers the lead-ads subscription handshake
// @Tags Webhooks
// @Produce plain
// @Param hub.mode query string true "Mode"
// @Param hub.verify_token query string true "Verify Token"
// @Param hub.challenge query string true "Challenge"
// @Success 200 {string} string "Challenge"
// @Failure 403 {object} map[string]string
// @Router /webhooks/facebook [get]
func (h *WebhookHandler) FacebookVerify(c *gin.Context) {
	challenge, err := h.facebookService.VerifySubscription(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, challenge)
}

// @Summary Facebook Lead Webhook
// @Description Receives lead-ads notifications and imports the leads
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 400 {object} map[string]string
// @Router /webhooks/facebook [post]
func (h *WebhookHandler) FacebookReceive(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corpo da requisição ilegível"})
		return
	}

	var payload services.WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		logger.Warn(fmt.Sprintf("[Webhook] Malformed Facebook payload: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payload inválido"})
		return
	}

	created, err := h.facebookService.HandleLeadEvent(c.Request.Context(), rawBody, &payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}
