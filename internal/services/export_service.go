package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService produces the commission report in CSV, XLSX and PDF
type ExportService struct {
	contractRepo  repository.ContractRepository
	commissionSvc *CommissionService
}

func NewExportService(contractRepo repository.ContractRepository, commissionSvc *CommissionService) *ExportService {
	return &ExportService{contractRepo: contractRepo, commissionSvc: commissionSvc}
}

// CommissionRow is one contract line of the commission report
type CommissionRow struct {
	ContractID       uint
	Titular          string
	Operadora        string
	Corretor         string
	Status           string
	MensalidadeTotal float64
	ValorAjustado    float64
	ComissaoPrevista float64
	Vidas            int
}

func (s *ExportService) buildRows(ctx context.Context, query *repository.ContractQuery) ([]CommissionRow, error) {
	if query.ListQuery == nil {
		query.ListQuery = repository.NewListQuery()
	}
	query.PerPage = 10000
	query.Page = 1
	contracts, _, err := s.contractRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	rows := make([]CommissionRow, 0, len(contracts))
	for _, c := range contracts {
		rows = append(rows, CommissionRow{
			ContractID:       c.ID,
			Titular:          c.Titular,
			Operadora:        c.Operadora,
			Corretor:         c.Corretor.FullName,
			Status:           c.Status,
			MensalidadeTotal: c.MensalidadeTotal,
			ValorAjustado:    c.AdjustedMonthlyValue(),
			ComissaoPrevista: c.ComissaoPrevista,
			Vidas:            c.Vidas,
		})
	}
	return rows, nil
}

func (s *ExportService) ExportCSV(ctx context.Context, query *repository.ContractQuery) ([]byte, string, error) {
	rows, err := s.buildRows(ctx, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Relatório de Comissões", time.Now().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Contrato", "Titular", "Operadora", "Corretor", "Status", "Mensalidade", "Valor Ajustado", "Comissão Prevista", "Vidas"})

	var total float64
	for _, row := range rows {
		_ = writer.Write([]string{
			fmt.Sprintf("%d", row.ContractID),
			row.Titular,
			row.Operadora,
			row.Corretor,
			row.Status,
			fmt.Sprintf("%.2f", row.MensalidadeTotal),
			fmt.Sprintf("%.2f", row.ValorAjustado),
			fmt.Sprintf("%.2f", row.ComissaoPrevista),
			fmt.Sprintf("%d", row.Vidas),
		})
		total += row.ComissaoPrevista
	}
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Total", fmt.Sprintf("%.2f", total)})

	writer.Flush()

	filename := fmt.Sprintf("comissoes_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportXLSX(ctx context.Context, query *repository.ContractQuery) ([]byte, string, error) {
	rows, err := s.buildRows(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Comissões"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Relatório de Comissões")
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	_ = f.SetCellValue(sheet, "B1", time.Now().Format("2006-01-02 15:04"))

	headers := []string{"Contrato", "Titular", "Operadora", "Corretor", "Status", "Mensalidade", "Valor Ajustado", "Comissão Prevista", "Vidas"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	var total float64
	for i, row := range rows {
		r := i + 4
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.ContractID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Titular)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.Operadora)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.Corretor)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", r), row.Status)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", r), row.MensalidadeTotal)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", r), row.ValorAjustado)
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", r), row.ComissaoPrevista)
		_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", r), row.Vidas)
		total += row.ComissaoPrevista
	}

	totalRow := len(rows) + 5
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total")
	_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", totalRow), total)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("comissoes_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportContractPDF renders a single contract statement with the
// adjustment ledger and the commission breakdown.
func (s *ExportService) ExportContractPDF(ctx context.Context, contractID uint) ([]byte, string, error) {
	contract, err := s.contractRepo.FindByIDWithDetails(ctx, contractID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Extrato de Contrato")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Titular:")
	pdf.Cell(80, 8, contract.Titular)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Operadora / Plano:")
	pdf.Cell(80, 8, fmt.Sprintf("%s / %s", contract.Operadora, contract.Plano))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Status:")
	pdf.Cell(80, 8, contract.Status)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Mensalidade base:")
	pdf.Cell(80, 8, fmt.Sprintf("R$ %.2f", contract.MensalidadeTotal))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 8, "Ajustes de Valor")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	if len(contract.Adjustments) == 0 {
		pdf.Cell(80, 8, "Nenhum ajuste registrado")
		pdf.Ln(6)
	}
	for _, adj := range contract.Adjustments {
		sign := "+"
		if adj.Tipo == models.AdjustmentDesconto {
			sign = "-"
		}
		pdf.Cell(80, 6, adj.Motivo)
		pdf.Cell(40, 6, fmt.Sprintf("%s R$ %.2f", sign, adj.Valor))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 8, "Valor ajustado:")
	pdf.Cell(40, 8, fmt.Sprintf("R$ %.2f", contract.AdjustedMonthlyValue()))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Comissao prevista:")
	pdf.Cell(40, 8, fmt.Sprintf("R$ %.2f", contract.ComissaoPrevista))
	pdf.Ln(6)

	if contract.BonusAplicado {
		estimate := s.commissionSvc.EstimateBonus(contract)
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, "Bonus por Vida")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(60, 6, "Total do bonus:")
		pdf.Cell(40, 6, fmt.Sprintf("R$ %.2f", estimate.Total))
		pdf.Ln(5)
		pdf.Cell(60, 6, "Parcelas necessarias:")
		pdf.Cell(40, 6, fmt.Sprintf("%d", estimate.InstallmentsNeeded))
		pdf.Ln(5)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("contrato_%d_%s.pdf", contract.ID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
