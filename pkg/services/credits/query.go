package credits

import (
	"fmt"
	"strings"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
)

// BuildWhere translates the active filters into a predicate for the remote
// query dialect. Filters whose column could not be resolved are dropped
// silently; an empty result means "no predicate".
func BuildWhere(filters domain.CreditFilters, columns domain.ColumnMap) string {
	var clauses []string

	if yearCol, ok := columns.Field(domain.RoleYear); ok {
		if filters.YearFrom != nil {
			clauses = append(clauses, fmt.Sprintf("%s >= %d", yearCol, *filters.YearFrom))
		}
		if filters.YearTo != nil {
			clauses = append(clauses, fmt.Sprintf("%s <= %d", yearCol, *filters.YearTo))
		}
	}

	if programCol, ok := columns.Field(domain.RoleProgram); ok && len(filters.Programs) > 0 {
		quoted := make([]string, 0, len(filters.Programs))
		for _, program := range filters.Programs {
			quoted = append(quoted, quoteLiteral(program))
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", programCol, strings.Join(quoted, ", ")))
	}

	if taxpayerCol, ok := columns.Field(domain.RoleTaxpayerType); ok && filters.TaxpayerType != "" {
		clauses = append(clauses, fmt.Sprintf("%s = %s", taxpayerCol, quoteLiteral(filters.TaxpayerType)))
	}

	return strings.Join(clauses, " AND ")
}

// quoteLiteral wraps a string literal for the remote dialect, doubling
// embedded quotes so user input cannot break out of the predicate.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
