package export

import (
	"fmt"
	"io"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

const (
	recordsSheet = "Credits"
	yearlySheet  = "Yearly Summary"
)

// WriteXLSX emits a workbook with the normalized records and a yearly
// summary sheet.
func WriteXLSX(w io.Writer, report *domain.CreditReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", recordsSheet)

	header := []any{"Year", "Program", "Claimed", "Used", "Taxpayer Type", "Utilization %"}
	if err := f.SetSheetRow(recordsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, r := range report.Records {
		cell := fmt.Sprintf("A%d", i+2)
		var year any = r.Year.Label
		if r.Year.Known {
			year = r.Year.Value
		}
		row := []any{year, r.Program, r.Claimed, r.Used, r.TaxpayerType, r.UtilizationPct}
		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write record row: %w", err)
		}
	}

	if _, err := f.NewSheet(yearlySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summaryHeader := []any{"Year", "Claimed", "Used", "Utilization %"}
	if err := f.SetSheetRow(yearlySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for i, y := range report.Yearly {
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{y.Year, y.Claimed, y.Used, y.UtilizationPct}
		if err := f.SetSheetRow(yearlySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	totalsCell := fmt.Sprintf("A%d", len(report.Yearly)+2)
	totals := []any{"Total", report.Totals.Claimed, report.Totals.Used, report.Totals.UtilizationPct}
	if err := f.SetSheetRow(yearlySheet, totalsCell, &totals); err != nil {
		return fmt.Errorf("failed to write totals row: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
