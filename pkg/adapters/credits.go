package adapters

import (
	"github.com/de-tools/credit-atlas/pkg/models/api"
	"github.com/de-tools/credit-atlas/pkg/models/domain"
)

func MapCreditRecordDomainToApi(record domain.CreditRecord) api.CreditRecord {
	return api.CreditRecord{
		Year:           api.Year{Year: record.Year},
		Program:        record.Program,
		Claimed:        record.Claimed,
		Used:           record.Used,
		TaxpayerType:   record.TaxpayerType,
		UtilizationPct: record.UtilizationPct,
	}
}

func MapCreditFiltersDomainToApi(filters domain.CreditFilters) api.Filters {
	return api.Filters{
		YearFrom:     filters.YearFrom,
		YearTo:       filters.YearTo,
		Programs:     filters.Programs,
		TaxpayerType: filters.TaxpayerType,
		View:         string(filters.View),
		Format:       string(filters.Format),
	}
}

// MapCreditReportDomainToApi builds the response envelope. Normalized rows
// are attached only when the raw view was requested.
func MapCreditReportDomainToApi(report *domain.CreditReport, includeRaw bool) api.CreditReport {
	out := api.CreditReport{
		OK: true,
		Meta: api.Meta{
			Years:         report.Years,
			Programs:      report.Programs,
			TaxpayerTypes: report.TaxpayerTypes,
			Filters:       MapCreditFiltersDomainToApi(report.Filters),
		},
		Totals: api.Totals{
			Claimed:        report.Totals.Claimed,
			Used:           report.Totals.Used,
			UtilizationPct: report.Totals.UtilizationPct,
		},
		Yearly:      make([]api.YearlyAggregate, 0, len(report.Yearly)),
		TopPrograms: make([]api.ProgramTotal, 0, len(report.TopPrograms)),
	}

	for _, y := range report.Yearly {
		out.Yearly = append(out.Yearly, api.YearlyAggregate{
			Year:           y.Year,
			Claimed:        y.Claimed,
			Used:           y.Used,
			UtilizationPct: y.UtilizationPct,
		})
	}
	for _, p := range report.TopPrograms {
		out.TopPrograms = append(out.TopPrograms, api.ProgramTotal{
			Program: p.Program,
			Claimed: p.Claimed,
		})
	}

	if includeRaw {
		out.Raw = make([]api.CreditRecord, 0, len(report.Records))
		for _, r := range report.Records {
			out.Raw = append(out.Raw, MapCreditRecordDomainToApi(r))
		}
	}

	return out
}

func MapColumnMapDomainToApi(columns domain.ColumnMap) api.ColumnMap {
	out := api.ColumnMap{
		OK:      true,
		Columns: make(map[string]string, len(columns)),
	}
	for role, field := range columns {
		out.Columns[string(role)] = field
	}
	return out
}
