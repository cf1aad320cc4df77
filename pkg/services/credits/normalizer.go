package credits

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
	"github.com/de-tools/credit-atlas/pkg/store/socrata"
)

// Normalize converts a wire row set into canonical credit records using the
// resolved column map. Rows never fail normalization: missing or garbage
// amounts coerce to 0 and unparseable years become opaque labels, so a
// single bad row cannot take down the whole response.
func Normalize(rows *socrata.RowSet, columns domain.ColumnMap) []domain.CreditRecord {
	records := make([]domain.CreditRecord, 0, rows.Len())
	for _, row := range rows.Rows() {
		records = append(records, normalizeRow(row, columns))
	}
	return records
}

func normalizeRow(row map[string]any, columns domain.ColumnMap) domain.CreditRecord {
	record := domain.CreditRecord{
		Year:         domain.ParseYear(roleValue(row, columns, domain.RoleYear)),
		Program:      parseText(roleValue(row, columns, domain.RoleProgram)),
		Claimed:      parseAmount(roleValue(row, columns, domain.RoleClaimed)),
		Used:         parseAmount(roleValue(row, columns, domain.RoleUsed)),
		TaxpayerType: parseText(roleValue(row, columns, domain.RoleTaxpayerType)),
	}
	if record.Claimed != 0 {
		record.UtilizationPct = record.Used / record.Claimed * 100
	}
	return record
}

func roleValue(row map[string]any, columns domain.ColumnMap, role domain.ColumnRole) any {
	field, ok := columns.Field(role)
	if !ok {
		return nil
	}
	return row[field]
}

func parseText(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// parseAmount coerces whatever the wire delivered into a finite float64.
// Currency formatting ("$1,234.50") is stripped; anything unreadable is 0.
func parseAmount(v any) float64 {
	var f float64
	switch value := v.(type) {
	case nil:
		return 0
	case float64:
		f = value
	case int:
		f = float64(value)
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		cleaned := strings.TrimSpace(value)
		cleaned = strings.TrimPrefix(cleaned, "$")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
