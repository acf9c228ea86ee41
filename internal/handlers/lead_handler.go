package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidaplan/corretora-api/internal/middleware"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/internal/services"
)

type LeadHandler struct {
	leadService     *services.LeadService
	whatsappService *services.WhatsAppService
}

func NewLeadHandler(leadService *services.LeadService, whatsappService *services.WhatsAppService) *LeadHandler {
	return &LeadHandler{leadService: leadService, whatsappService: whatsappService}
}

// @Summary List Leads
// @Description Get a paginated list of leads
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param stage query string false "Filter by pipeline stage"
// @Param source query string false "Filter by source"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leads [get]
func (h *LeadHandler) Index(c *gin.Context) {
	query := &repository.LeadQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Stage = c.Query("stage")
	query.Source = c.Query("source")
	if assigned := c.Query("assigned_to_id"); assigned != "" {
		id, _ := strconv.ParseUint(assigned, 10, 32)
		query.AssignedToID = uint(id)
	}

	leads, total, err := h.leadService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, lead.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Pipeline Stats
// @Description Lead counts grouped by pipeline stage
// @Tags Leads
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /leads/stats [get]
func (h *LeadHandler) Stats(c *gin.Context) {
	stats, err := h.leadService.CountByStage(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Get Lead
// @Description Get a lead by ID
// @Tags Leads
// @Produce json
// @Param id path int true "Lead ID"
// @Success 200 {object} models.LeadResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	lead, err := h.leadService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead.ToResponse()})
}

type CreateLeadRequest struct {
	Name         string  `json:"name" binding:"required"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	CNPJ         *string `json:"cnpj"`
	Notes        *string `json:"notes"`
	AssignedToID *uint   `json:"assigned_to_id"`
}

// @Summary Create Lead
// @Description Create a new lead (manual entry)
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body CreateLeadRequest true "Lead Data"
// @Success 201 {object} models.LeadResponse
// @Security BearerAuth
// @Router /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req CreateLeadRequest
	if err := BindNestedOrFlat(c, "lead", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome é obrigatório"})
		return
	}

	lead := &models.Lead{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		CNPJ:         req.CNPJ,
		Notes:        req.Notes,
		AssignedToID: req.AssignedToID,
		Source:       models.LeadSourceManual,
	}

	if err := h.leadService.Create(c.Request.Context(), lead, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lead": lead.ToResponse()})
}

type UpdateLeadRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	CNPJ         *string `json:"cnpj"`
	Notes        *string `json:"notes"`
	AssignedToID *uint   `json:"assigned_to_id"`
}

// @Summary Update Lead
// @Description Update lead attributes
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body UpdateLeadRequest true "Lead Data"
// @Success 200 {object} models.LeadResponse
// @Security BearerAuth
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	lead, err := h.leadService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead não encontrado"})
		return
	}

	var req UpdateLeadRequest
	if err := BindNestedOrFlat(c, "lead", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.CNPJ != nil {
		lead.CNPJ = req.CNPJ
	}
	if req.Notes != nil {
		lead.Notes = req.Notes
	}
	if req.AssignedToID != nil {
		lead.AssignedToID = req.AssignedToID
	}

	if err := h.leadService.Update(c.Request.Context(), lead); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead.ToResponse()})
}

type AdvanceLeadRequest struct {
	Event string `json:"event" binding:"required"`
}

// @Summary Advance Lead
// @Description Fire a pipeline event (contact, propose, win, lose, revive)
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body AdvanceLeadRequest true "Pipeline Event"
// @Success 200 {object} models.LeadResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /leads/{id}/advance [post]
func (h *LeadHandler) Advance(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var req AdvanceLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Evento é obrigatório"})
		return
	}

	lead, err := h.leadService.Advance(c.Request.Context(), uint(id), req.Event)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead.ToResponse()})
}

// @Summary Delete Lead
// @Description Remove a lead
// @Tags Leads
// @Produce json
// @Param id path int true "Lead ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	if err := h.leadService.Delete(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lead removido"})
}
