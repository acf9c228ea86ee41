package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidaplan/corretora-api/internal/middleware"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// @Summary List Contracts
// @Description Get a paginated list of contracts for the current user (or all for admin)
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
	query := &repository.ContractQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Status = c.Query("status")
	if leadID := c.Query("lead_id"); leadID != "" {
		id, _ := strconv.ParseUint(leadID, 10, 32)
		query.LeadID = uint(id)
	}
	query.UserID = middleware.GetUserID(c)
	query.IsAdmin = middleware.IsAdmin(c)

	contracts, total, err := h.contractService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.ContractResponse, 0, len(contracts))
	for _, contract := range contracts {
		responses = append(responses, contract.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Contract Stats
// @Description Contract count statistics by status
// @Tags Contracts
// @Produce json
// @Success 200 {object} repository.ContractStats
// @Security BearerAuth
// @Router /contracts/stats [get]
func (h *ContractHandler) GetStats(c *gin.Context) {
	stats, err := h.contractService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Get Contract
// @Description Get a contract with its adjustment ledger
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	contract, err := h.contractService.FindByIDWithDetails(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// ContractRequest carries contract attributes for create and update. A
// non-nil ComissaoPrevista overrides the computed commission.
type ContractRequest struct {
	LeadID               *uint                  `json:"lead_id"`
	Titular              string                 `json:"titular"`
	CNPJ                 *string                `json:"cnpj"`
	Operadora            string                 `json:"operadora"`
	Plano                string                 `json:"plano"`
	MensalidadeTotal     *float64               `json:"mensalidade_total"`
	Multiplicador        *float64               `json:"comissao_multiplicador"`
	RecebimentoAdiantado *bool                  `json:"comissao_recebimento_adiantado"`
	Parcelas             models.InstallmentList `json:"comissao_parcelas"`
	ComissaoPrevista     *float64               `json:"comissao_prevista"`
	Vidas                *int                   `json:"vidas"`
	BonusPorVidaValor    *float64               `json:"bonus_por_vida_valor"`
	BonusAplicado        *bool                  `json:"bonus_por_vida_aplicado"`
	BonusLimiteMensal    *float64               `json:"bonus_limite_mensal"`
	Note                 *string                `json:"note"`
}

// @Summary Create Contract
// @Description Create a new contract for the current corretor
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body ContractRequest true "Contract Data"
// @Success 201 {object} models.ContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req ContractRequest
	if err := BindNestedOrFlat(c, "contract", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}
	if req.Titular == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Titular é obrigatório"})
		return
	}

	contract := &models.Contract{
		LeadID:                req.LeadID,
		CorretorID:            middleware.GetUserID(c),
		Titular:               req.Titular,
		CNPJ:                  req.CNPJ,
		Operadora:             req.Operadora,
		Plano:                 req.Plano,
		ComissaoMultiplicador: 2.8,
		RecebimentoAdiantado:  true,
		Vidas:                 1,
		Note:                  req.Note,
	}
	applyContractRequest(contract, &req)

	if err := h.contractService.Create(c.Request.Context(), contract, req.ComissaoPrevista); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contract": contract.ToResponse()})
}

// @Summary Update Contract
// @Description Update contract attributes and recompute the commission
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path int true "Contract ID"
// @Param request body ContractRequest true "Contract Data"
// @Success 200 {object} models.ContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	contract, err := h.contractService.FindByIDWithDetails(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}

	var req ContractRequest
	if err := BindNestedOrFlat(c, "contract", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	if req.Titular != "" {
		contract.Titular = req.Titular
	}
	if req.CNPJ != nil {
		contract.CNPJ = req.CNPJ
	}
	if req.Operadora != "" {
		contract.Operadora = req.Operadora
	}
	if req.Plano != "" {
		contract.Plano = req.Plano
	}
	if req.LeadID != nil {
		contract.LeadID = req.LeadID
	}
	if req.Note != nil {
		contract.Note = req.Note
	}
	applyContractRequest(contract, &req)

	if err := h.contractService.Update(c.Request.Context(), contract, req.ComissaoPrevista); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

func applyContractRequest(contract *models.Contract, req *ContractRequest) {
	if req.MensalidadeTotal != nil {
		contract.MensalidadeTotal = *req.MensalidadeTotal
	}
	if req.Multiplicador != nil {
		contract.ComissaoMultiplicador = *req.Multiplicador
	}
	if req.RecebimentoAdiantado != nil {
		contract.RecebimentoAdiantado = *req.RecebimentoAdiantado
	}
	if req.Parcelas != nil {
		contract.ComissaoParcelas = req.Parcelas
	}
	if req.Vidas != nil {
		contract.Vidas = *req.Vidas
	}
	if req.BonusPorVidaValor != nil {
		contract.BonusPorVidaValor = req.BonusPorVidaValor
	}
	if req.BonusAplicado != nil {
		contract.BonusAplicado = *req.BonusAplicado
	}
	if req.BonusLimiteMensal != nil {
		contract.BonusLimiteMensal = req.BonusLimiteMensal
	}
}

type AdjustmentRequest struct {
	Tipo   string  `json:"tipo" binding:"required"`
	Valor  float64 `json:"valor" binding:"required"`
	Motivo string  `json:"motivo"`
}

// @Summary Add Adjustment
// @Description Append a surcharge or discount to the contract's ledger
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path int true "Contract ID"
// @Param request body AdjustmentRequest true "Adjustment Data"
// @Success 201 {object} models.ContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/adjustments [post]
func (h *ContractHandler) AddAdjustment(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var req AdjustmentRequest
	if err := BindNestedOrFlat(c, "adjustment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}
	if req.Tipo != models.AdjustmentAcrescimo && req.Tipo != models.AdjustmentDesconto {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo deve ser acrescimo ou desconto"})
		return
	}
	if req.Valor <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valor deve ser maior que zero"})
		return
	}

	adjustment := &models.ValueAdjustment{
		Tipo:   req.Tipo,
		Valor:  req.Valor,
		Motivo: req.Motivo,
	}

	contract, err := h.contractService.AddAdjustment(c.Request.Context(), uint(id), adjustment)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contract": contract.ToResponse()})
}

// @Summary Delete Adjustment
// @Description Remove an adjustment and recompute the commission
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Param adjustment_id path int true "Adjustment ID"
// @Success 200 {object} models.ContractResponse
// @Security BearerAuth
// @Router /contracts/{id}/adjustments/{adjustment_id} [delete]
func (h *ContractHandler) DeleteAdjustment(c *gin.Context) {
	adjustmentID, _ := strconv.ParseUint(c.Param("adjustment_id"), 10, 32)

	contract, err := h.contractService.DeleteAdjustment(c.Request.Context(), uint(adjustmentID))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Estimate Bonus
// @Description Per-life bonus total and installment projection
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} services.BonusEstimate
// @Security BearerAuth
// @Router /contracts/{id}/bonus [get]
func (h *ContractHandler) EstimateBonus(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	estimate, err := h.contractService.EstimateBonus(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// @Summary Activate Contract
// @Description Move a contract to ativo (validates the commission plan first)
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/activate [post]
func (h *ContractHandler) Activate(c *gin.Context) {
	h.transition(c, h.contractService.Activate)
}

// @Summary Suspend Contract
// @Description Suspend an active contract
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Security BearerAuth
// @Router /contracts/{id}/suspend [post]
func (h *ContractHandler) Suspend(c *gin.Context) {
	h.transition(c, h.contractService.Suspend)
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// @Summary Cancel Contract
// @Description Cancel a contract with an optional reason
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path int true "Contract ID"
// @Param request body CancelRequest false "Cancellation Reason"
// @Success 200 {object} models.ContractResponse
// @Security BearerAuth
// @Router /contracts/{id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	contract, err := h.contractService.Cancel(c.Request.Context(), uint(id), req.Reason)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Close Contract
// @Description Close out an active contract at end of vigência
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Security BearerAuth
// @Router /contracts/{id}/close [post]
func (h *ContractHandler) Close(c *gin.Context) {
	h.transition(c, h.contractService.Close)
}

func (h *ContractHandler) transition(c *gin.Context, fn func(context.Context, uint) (*models.Contract, error)) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	contract, err := fn(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Delete Contract
// @Description Remove a contract (admin only)
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	if err := h.contractService.Delete(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contrato removido"})
}
