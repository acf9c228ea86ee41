package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidaplan/corretora-api/internal/middleware"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/internal/scheduler"
	"github.com/vidaplan/corretora-api/internal/services"
)

type ReminderHandler struct {
	reminderService   *services.ReminderService
	reminderScheduler *scheduler.ReminderScheduler
}

func NewReminderHandler(reminderService *services.ReminderService, reminderScheduler *scheduler.ReminderScheduler) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService, reminderScheduler: reminderScheduler}
}

// @Summary List Reminders
// @Description Reminders of the current user, soonest first
// @Tags Reminders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param pending query bool false "Only reminders not yet completed"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reminders [get]
func (h *ReminderHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if pending := c.Query("pending"); pending != "" {
		query.Filters["pending"] = pending
	}

	reminders, total, err := h.reminderService.FindByUser(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reminders": reminders,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

type ReminderRequest struct {
	Title      string  `json:"title" binding:"required"`
	Notes      *string `json:"notes"`
	DueAt      string  `json:"due_at" binding:"required"`
	LeadID     *uint   `json:"lead_id"`
	ContractID *uint   `json:"contract_id"`
}

// @Summary Create Reminder
// @Description Create a follow-up reminder for the current user
// @Tags Reminders
// @Accept json
// @Produce json
// @Param request body ReminderRequest true "Reminder Data"
// @Success 201 {object} models.Reminder
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /reminders [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	var req ReminderRequest
	if err := BindNestedOrFlat(c, "reminder", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}
	if req.Title == "" || req.DueAt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Título e data de vencimento são obrigatórios"})
		return
	}

	dueAt, err := time.Parse(time.RFC3339, req.DueAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data de vencimento inválida (use RFC3339)"})
		return
	}

	reminder := &models.Reminder{
		UserID:     middleware.GetUserID(c),
		Title:      req.Title,
		Notes:      req.Notes,
		DueAt:      dueAt,
		LeadID:     req.LeadID,
		ContractID: req.ContractID,
	}

	if err := h.reminderService.Create(c.Request.Context(), reminder); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reminder": reminder})
}

// @Summary Complete Reminder
// @Description Mark a reminder as done
// @Tags Reminders
// @Produce json
// @Param id path int true "Reminder ID"
// @Success 200 {object} models.Reminder
// @Security BearerAuth
// @Router /reminders/{id}/complete [put]
func (h *ReminderHandler) Complete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	reminder, err := h.reminderService.Complete(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lembrete não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminder": reminder})
}

// @Summary Trigger Reminder Scan
// @Description Run the due-reminder scan outside the schedule (admin only)
// @Tags Reminders
// @Produce json
// @Success 202 {object} map[string]string
// @Security BearerAuth
// @Router /reminders/scan [post]
func (h *ReminderHandler) Scan(c *gin.Context) {
	h.reminderScheduler.TriggerManual(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"message": "Varredura de lembretes iniciada"})
}

// @Summary Delete Reminder
// @Description Remove a reminder
// @Tags Reminders
// @Produce json
// @Param id path int true "Reminder ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /reminders/{id} [delete]
func (h *ReminderHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	if err := h.reminderService.Delete(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lembrete removido"})
}
