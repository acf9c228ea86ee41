package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidaplan/corretora-api/internal/integrations/brasilapi"
	"github.com/vidaplan/corretora-api/internal/services"
)

type LookupHandler struct {
	lookupService *services.LookupService
}

func NewLookupHandler(lookupService *services.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

// @Summary Lookup CNPJ
// @Description Company registry data for a CNPJ
// @Tags Lookups
// @Produce json
// @Param cnpj path string true "CNPJ (digits or formatted)"
// @Success 200 {object} brasilapi.Company
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /lookups/cnpj/{cnpj} [get]
func (h *LookupHandler) CNPJ(c *gin.Context) {
	company, err := h.lookupService.LookupCNPJ(c.Request.Context(), c.Param("cnpj"))
	if err != nil {
		h.lookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// @Summary Lookup CEP
// @Description Address data for a CEP
// @Tags Lookups
// @Produce json
// @Param cep path string true "CEP (digits or formatted)"
// @Success 200 {object} brasilapi.Address
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /lookups/cep/{cep} [get]
func (h *LookupHandler) CEP(c *gin.Context) {
	address, err := h.lookupService.LookupCEP(c.Request.Context(), c.Param("cep"))
	if err != nil {
		h.lookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *LookupHandler) lookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, brasilapi.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
