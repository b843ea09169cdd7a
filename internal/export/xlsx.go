// Package export renders extraction results as XLSX workbooks for download.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/signet-dev/signet/internal/signing"
	"github.com/signet-dev/signet/internal/store"
)

// ExtractionXLSX returns an XLSX workbook with one row per detected rule,
// plus a summary sheet.
func ExtractionXLSX(ext *store.Extraction, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	result, err := ext.SigningResult()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const rulesSheet = "Rules"
	if index, _ := f.GetSheetIndex(rulesSheet); index == -1 {
		if _, err := f.NewSheet(rulesSheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(rulesSheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Rule Number",
		"Rule Text",
		"Checkbox Content",
		"Section",
		"Approved",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(rulesSheet, cell, h)
	}

	row := 2
	for _, rule := range result.AllRules {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(rulesSheet, cell, v)
		}

		write(1, rule.RuleNumber)
		write(2, rule.RuleText)
		write(3, rule.CheckboxContent)
		write(4, rule.Section)
		if rule.IsApproved {
			write(5, "APPROVED")
		} else {
			write(5, "NOT APPROVED")
		}
		row++
	}

	_ = f.SetColWidth(rulesSheet, "A", "A", 12)
	_ = f.SetColWidth(rulesSheet, "B", "B", 60)
	_ = f.SetColWidth(rulesSheet, "C", "C", 18)
	_ = f.SetColWidth(rulesSheet, "D", "D", 28)
	_ = f.SetColWidth(rulesSheet, "E", "E", 16)

	if err := writeSummarySheet(f, ext, result); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"extraction_id", ext.ID,
		"rules", len(result.AllRules),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, ext *store.Extraction, result *signing.Result) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][2]any{
		{"Extraction ID", ext.ID},
		{"Document ID", ext.DocumentID},
		{"Provider", ext.Provider},
		{"Model", ext.Model},
		{"Created At", ext.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Status", result.Status},
		{"Message", result.Message},
		{"Total Rules", result.TotalRules},
		{"Approved Rules", result.ApprovedCount},
		{"Sections Found", len(result.SectionsFound)},
	}
	for i, r := range rows {
		keyCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheet, keyCell, r[0])
		_ = f.SetCellValue(sheet, valCell, r[1])
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 60)
	return nil
}
