package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
)

// csvHeader is the fixed export schema; every row carries exactly these
// five columns regardless of which roles resolved upstream.
var csvHeader = []string{"year", "program", "claimed", "used", "taxpayer_type"}

// WriteCSV emits the normalized records as RFC 4180 CSV.
func WriteCSV(w io.Writer, records []domain.CreditRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Year.String(),
			r.Program,
			formatAmount(r.Claimed),
			formatAmount(r.Used),
			r.TaxpayerType,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
