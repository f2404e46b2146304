package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"salesflow/internal/reporting/application"
	reporting "salesflow/internal/reporting/domain"
)

var exportHeaders = []string{
	"Representación", "Mes",
	"Unidades AA", "Valor USD AA", "Precio Prom. AA", "T.C. AA",
	"Unidades", "Valor USD", "Precio Prom.", "T.C.",
	"Var. Total %", "Var. Volumen %", "Var. Precio %",
}

func exportCells(row reporting.DisplayRow) []any {
	return []any{
		row.Representation, row.Month,
		row.PreviousYear.Units, row.PreviousYear.USDValue, row.PreviousYear.AveragePrice, row.PreviousYear.ExchangeRate,
		row.CurrentYear.Units, row.CurrentYear.USDValue, row.CurrentYear.AveragePrice, row.CurrentYear.ExchangeRate,
		row.Variance.TotalPct, row.Variance.VolumePct, row.Variance.PricePct,
	}
}

func totalsCells(totals reporting.Totals) []any {
	return []any{
		"Totales", "",
		totals.PreviousYear.Units, totals.PreviousYear.USDValue, totals.PreviousYear.AveragePrice, totals.PreviousYear.ExchangeRate,
		totals.CurrentYear.Units, totals.CurrentYear.USDValue, totals.CurrentYear.AveragePrice, totals.CurrentYear.ExchangeRate,
		totals.Variance.TotalPct, totals.Variance.VolumePct, totals.Variance.PricePct,
	}
}

// BuildGridXLSX renders the projected grid, totals row last, as an XLSX
// workbook.
func BuildGridXLSX(projection application.Projection, style application.ExportStyle) ([]byte, error) {
	f := excelize.NewFile()
	sheet := style.SheetName
	if sheet == "" {
		sheet = "Informes"
	}
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", style.Title)
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("Generado: %s", time.Now().UTC().Format("2006-01-02 15:04")))

	headerRow := 4
	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, header)
	}

	writeRow := func(rowIdx int, values []any) error {
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err != nil {
				return err
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
		return nil
	}

	rowIdx := headerRow + 1
	for _, row := range projection.Rows {
		if err := writeRow(rowIdx, exportCells(row)); err != nil {
			return nil, err
		}
		rowIdx++
	}
	if err := writeRow(rowIdx, totalsCells(projection.Totals)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildGridPDF renders the projected grid, totals row last, as a landscape
// PDF table.
func BuildGridPDF(projection application.Projection, style application.ExportStyle) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, style.Title)
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Generado: %s", time.Now().UTC().Format("2006-01-02 15:04")))
	pdf.Ln(8)

	widths := []float64{34, 20, 19, 19, 19, 16, 19, 19, 19, 16, 19, 19, 19}

	pdf.SetFont("Arial", "B", 7)
	for i, header := range exportHeaders {
		pdf.CellFormat(widths[i], 6, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	writeRow := func(values []any, bold bool) {
		if bold {
			pdf.SetFont("Arial", "B", 7)
		} else {
			pdf.SetFont("Arial", "", 7)
		}
		for i, value := range values {
			text, align := "", "R"
			switch v := value.(type) {
			case string:
				text, align = v, "L"
			case float64:
				text = fmt.Sprintf("%.2f", v)
			default:
				text = fmt.Sprint(v)
			}
			pdf.CellFormat(widths[i], 6, text, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	for _, row := range projection.Rows {
		writeRow(exportCells(row), false)
	}
	writeRow(totalsCells(projection.Totals), true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
