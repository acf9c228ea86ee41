package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidaplan/corretora-api/internal/middleware"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/internal/services"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) buildQuery(c *gin.Context) *repository.ContractQuery {
	query := &repository.ContractQuery{ListQuery: repository.NewListQuery()}
	query.Status = c.Query("status")
	query.UserID = middleware.GetUserID(c)
	query.IsAdmin = middleware.IsAdmin(c)
	return query
}

// @Summary Commission Report CSV
// @Description Download the commission report as CSV
// @Tags Exports
// @Produce text/csv
// @Param status query string false "Filter by contract status"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/commissions.csv [get]
func (h *ExportHandler) CommissionsCSV(c *gin.Context) {
	data, filename, err := h.exportService.ExportCSV(c.Request.Context(), h.buildQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

// @Summary Commission Report XLSX
// @Description Download the commission report as an Excel workbook
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by contract status"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/commissions.xlsx [get]
func (h *ExportHandler) CommissionsXLSX(c *gin.Context) {
	data, filename, err := h.exportService.ExportXLSX(c.Request.Context(), h.buildQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Contract Statement PDF
// @Description Download a contract statement with ledger and commission
// @Tags Exports
// @Produce application/pdf
// @Param id path int true "Contract ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /exports/contracts/{id}/pdf [get]
func (h *ExportHandler) ContractPDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	data, filename, err := h.exportService.ExportContractPDF(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}
