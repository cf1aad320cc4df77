package domain

type ReportView string

const (
	ViewAggregated ReportView = "agg"
	ViewRaw        ReportView = "raw"
)

type ReportFormat string

const (
	FormatJSON ReportFormat = "json"
	FormatCSV  ReportFormat = "csv"
	FormatXLSX ReportFormat = "xlsx"
)

// CreditFilters is parsed fresh per request and never persisted.
type CreditFilters struct {
	YearFrom     *int
	YearTo       *int
	Programs     []string
	TaxpayerType string
	View         ReportView
	Format       ReportFormat
}
